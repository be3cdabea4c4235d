package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gpt-cli/internal/agent"
	"gpt-cli/internal/completion"
	"gpt-cli/internal/history"
	"gpt-cli/internal/logger"
	"gpt-cli/internal/render"
	"gpt-cli/internal/session"
)

// PromptText is shown in front of every input line.
const PromptText = "Prompt: "

// Source streams one completion.
type Source interface {
	Stream(ctx context.Context, req completion.Request, onFragment func(string)) error
}

// Options wires a Session. Out, Source, Renderer and Store are required.
type Options struct {
	Out io.Writer
	Err io.Writer

	Source   Source
	Renderer *render.Renderer
	Store    *session.Store
	Input    LineReader
	History  *history.Store
	Styles   Styles

	// Columns reports the terminal width.
	Columns func() int
	// Interval is the minimum spacing between redraws of a streaming reply.
	Interval time.Duration

	Model     string
	MaxTokens int
	Sampling  completion.Sampling

	// Key names the session file; empty until the first save of a new chat.
	Key      string
	Messages []agent.Message
}

// Session is one interactive conversation.
type Session struct {
	opts       Options
	transcript *session.Transcript
	log        *logger.LogEntry

	mu  sync.Mutex
	key string
	// saveMu serializes writes of the session file.
	saveMu sync.Mutex

	shutdownOnce sync.Once
	exitCode     int
}

func New(opts Options) *Session {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Columns == nil {
		opts.Columns = func() int { return render.DefaultColumns }
	}
	return &Session{
		opts:       opts,
		transcript: session.NewTranscript(opts.Messages),
		log:        logger.Named("repl"),
		key:        opts.Key,
	}
}

// Key returns the session key, empty if the chat was never saved.
func (s *Session) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

func (s *Session) Transcript() *session.Transcript { return s.transcript }

// Replay prints the loaded messages in order, assistant replies through the
// markdown renderer.
func (s *Session) Replay() error {
	for _, m := range s.transcript.Messages() {
		if m.Role != agent.RoleAssistant {
			s.printUser(m.Content)
			continue
		}
		fmt.Fprintf(s.opts.Out, "%s\n\n", s.opts.Styles.assistantBanner())
		if err := s.opts.Renderer.Render(m.Content); err != nil {
			return err
		}
		s.opts.Renderer.Reset()
		fmt.Fprintf(s.opts.Out, "%s\n\n", s.opts.Styles.rule(s.opts.Columns()))
	}
	return nil
}

// Run reads prompts until the user quits and returns the process exit code.
func (s *Session) Run(ctx context.Context) int {
	if s.opts.Input == nil {
		fmt.Fprintln(s.opts.Err, s.opts.Styles.Error.Render("no input available"))
		return 1
	}
	defer s.opts.Input.Close()

	for {
		line, err := s.opts.Input.Prompt(PromptText)
		if err != nil {
			if isQuit(err) {
				return s.Shutdown()
			}
			s.reportf("read prompt: %v", err)
			return 1
		}
		switch strings.TrimSpace(line) {
		case "":
			continue
		case "/q", "exit", "quit", "q":
			return s.Shutdown()
		}

		s.opts.Input.AppendHistory(line)
		if s.opts.History != nil {
			if err := s.opts.History.Append(line); err != nil {
				s.log.Warnf("append prompt history: %v", err)
			}
		}
		if err := s.Exchange(ctx, line); err != nil {
			s.reportf("%v", err)
		}
		if ctx.Err() != nil {
			return s.Shutdown()
		}
	}
}

// Exchange sends prompt with the conversation so far and renders the reply
// as it streams in. The transcript is saved once the reply is complete.
func (s *Session) Exchange(ctx context.Context, prompt string) error {
	if prompt == "" {
		return nil
	}
	out := s.opts.Out
	io.WriteString(out, render.EraseRows(1))
	s.printUser(prompt)
	s.transcript.Append(agent.Message{Role: agent.RoleUser, Content: prompt})

	exchangeID := uuid.NewString()
	throttle := render.NewThrottle(s.opts.Interval, s.opts.Renderer.Render)
	onFragment := func(fragment string) {
		content, started := s.transcript.AppendFragment(fragment)
		if started {
			fmt.Fprintf(out, "%s\n\n", s.opts.Styles.assistantBanner())
		}
		if err := throttle.Update(content); err != nil {
			s.log.Warnf("redraw: %v", err)
		}
	}

	req := completion.Request{
		ExchangeID: exchangeID,
		Messages:   s.transcript.Messages(),
		Model:      s.opts.Model,
		MaxTokens:  s.opts.MaxTokens,
		Sampling:   s.opts.Sampling,
	}
	if est, window, over := completion.ExceedsContext(req); over {
		s.reportf("warning: about %d tokens requested, %s allows %d", est, req.Model, window)
	}
	s.log.Infof("exchange %s: %d messages", exchangeID, len(req.Messages))
	streamErr := s.opts.Source.Stream(ctx, req, onFragment)
	if err := throttle.Flush(); err != nil {
		s.log.Warnf("final redraw: %v", err)
	}

	var persistErr error
	if streamErr == nil {
		persistErr = s.persist()
	}
	s.opts.Renderer.Reset()
	fmt.Fprintf(out, "%s\n\n", s.opts.Styles.rule(s.opts.Columns()))

	if streamErr != nil {
		s.log.Errorf("exchange %s failed: %v", exchangeID, streamErr)
		return fmt.Errorf("completion failed: %w", streamErr)
	}
	if persistErr != nil {
		return fmt.Errorf("save session: %w", persistErr)
	}
	return nil
}

// Shutdown saves the transcript, including a partially streamed reply, and
// returns the exit code. Only the first call does any work.
func (s *Session) Shutdown() int {
	s.shutdownOnce.Do(func() {
		if err := s.persist(); err != nil {
			s.reportf("save session: %v", err)
			s.exitCode = 1
		}
	})
	return s.exitCode
}

func (s *Session) persist() error {
	if s.opts.Store == nil || !s.opts.Store.Enabled || s.transcript.Len() == 0 {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.key == "" {
		s.key = session.NewKey()
	}
	key := s.key
	s.mu.Unlock()

	if err := s.opts.Store.Persist(key, s.transcript); err != nil {
		return err
	}
	s.log.Infof("saved session %s (%d messages)", key, s.transcript.Len())
	return nil
}

func (s *Session) printUser(content string) {
	fmt.Fprintf(s.opts.Out, "%s\n\n%s\n\n%s\n\n",
		s.opts.Styles.userBanner(), content, s.opts.Styles.rule(s.opts.Columns()))
}

func (s *Session) reportf(format string, args ...any) {
	fmt.Fprintln(s.opts.Err, s.opts.Styles.Error.Render(fmt.Sprintf(format, args...)))
}
