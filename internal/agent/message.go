package agent

import "gpt-cli/internal/logger"

// Role 标识一条消息的发送方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation transcript. The JSON shape is also the
// on-disk session format.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Valid reports whether the role is one the completion API accepts.
func (m Message) Valid() bool {
	return m.Role == RoleUser || m.Role == RoleAssistant
}

// ToLLMMessages 将内部消息转换为日志友好的结构。
func ToLLMMessages(msgs []Message) []logger.LLMMessage {
	out := make([]logger.LLMMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, logger.LLMMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}
