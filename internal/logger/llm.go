package logger

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// LLMMessage 表示一次请求中的对话消息。
type LLMMessage struct {
	Role    string
	Content string
}

// LLMLogger 负责输出与补全 API 交互的请求、流式分片与错误信息。
type LLMLogger interface {
	Request(exchangeID, model string, messages []LLMMessage, sampling string)
	StreamChunk(exchangeID string, chunk string, index int)
	StreamComplete(exchangeID string, chunks int)
	Error(exchangeID string, err error)
}

// LLMLog 是全局唯一的 LLM 日志器实例。
var LLMLog LLMLogger = NewLLMLogger(nil)

// SetGlobalLLMLogger 覆盖全局 LLM 日志实例，传入 nil 将重置为默认实现。
func SetGlobalLLMLogger(logger LLMLogger) {
	if logger == nil {
		logger = NewLLMLogger(nil)
	}
	LLMLog = logger
}

// StdLLMLogger 使用 logrus 输出日志。
type StdLLMLogger struct {
	logger *logrus.Entry
}

// NewLLMLogger 构造默认的 LLM 日志记录器。
func NewLLMLogger(l *Logger) *StdLLMLogger {
	if l == nil {
		l = root()
	}
	return &StdLLMLogger{logger: logrus.NewEntry(l).WithField("component", "llm")}
}

// Request 记录一次请求的上下文。
func (l *StdLLMLogger) Request(exchangeID, model string, messages []LLMMessage, sampling string) {
	l.printf(logrus.InfoLevel, exchangeID, "-> request model=%s messages=%d sampling=%s", model, len(messages), sampling)
	for i, msg := range messages {
		l.printf(logrus.DebugLevel, exchangeID, "-> message[%d] role=%s content=%s", i, msg.Role, sanitize(msg.Content))
	}
}

// StreamChunk 记录流式响应的单个分片。
func (l *StdLLMLogger) StreamChunk(exchangeID string, chunk string, index int) {
	l.printf(logrus.DebugLevel, exchangeID, "<- chunk seq=%d text=%s", index, sanitize(chunk))
}

// StreamComplete 记录流式响应完成。
func (l *StdLLMLogger) StreamComplete(exchangeID string, chunks int) {
	l.printf(logrus.InfoLevel, exchangeID, "<- stream completed chunks=%d", chunks)
}

// Error 记录请求错误。
func (l *StdLLMLogger) Error(exchangeID string, err error) {
	l.printf(logrus.ErrorLevel, exchangeID, "!! error err=%v", err)
}

// NoopLLMLogger 忽略所有日志输出。
type NoopLLMLogger struct{}

func (NoopLLMLogger) Request(exchangeID, model string, messages []LLMMessage, sampling string) {}
func (NoopLLMLogger) StreamChunk(exchangeID string, chunk string, index int)                   {}
func (NoopLLMLogger) StreamComplete(exchangeID string, chunks int)                             {}
func (NoopLLMLogger) Error(exchangeID string, err error)                                       {}

// Request 记录一次 LLM 请求。
func Request(exchangeID, model string, messages []LLMMessage, sampling string) {
	if LLMLog != nil {
		LLMLog.Request(exchangeID, model, messages, sampling)
	}
}

// StreamChunk 记录流式响应的分片。
func StreamChunk(exchangeID string, chunk string, index int) {
	if LLMLog != nil {
		LLMLog.StreamChunk(exchangeID, chunk, index)
	}
}

// StreamComplete 记录流式响应完成。
func StreamComplete(exchangeID string, chunks int) {
	if LLMLog != nil {
		LLMLog.StreamComplete(exchangeID, chunks)
	}
}

// Error 记录请求错误。
func Error(exchangeID string, err error) {
	if LLMLog != nil {
		LLMLog.Error(exchangeID, err)
	}
}

func (l *StdLLMLogger) printf(level logrus.Level, exchangeID string, format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	if !l.logger.Logger.IsLevelEnabled(level) {
		return
	}

	entry := l.logger
	if exchangeID != "" {
		entry = entry.WithField("exchange", exchangeID)
	}
	if caller := findCaller(); caller != "" {
		entry = entry.WithField("caller", caller)
	}
	entry.Log(level, fmt.Sprintf(format, args...))
}

func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\n", `\n`)
	text = strings.ReplaceAll(text, "\r", `\r`)
	return text
}

func findCaller() string {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.File != "" && !strings.HasSuffix(frame.File, "/logger/llm.go") {
			return fmt.Sprintf("%s:%d", shortenFilePath(frame.File), frame.Line)
		}
		if !more {
			break
		}
	}
	return ""
}
