package session

import (
	"sync"

	"gpt-cli/internal/agent"
)

// Transcript is the ordered message list of one conversation. It is safe for
// concurrent use; the stream callback appends while the interrupt handler may
// snapshot it for persistence.
type Transcript struct {
	mu       sync.Mutex
	messages []agent.Message
}

// NewTranscript returns a transcript holding a copy of msgs.
func NewTranscript(msgs []agent.Message) *Transcript {
	return &Transcript{messages: append([]agent.Message(nil), msgs...)}
}

func (t *Transcript) Append(msg agent.Message) {
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
}

// AppendFragment adds streamed text to the trailing assistant message,
// creating it when the last message is not from the assistant. It returns the
// message content after the append and whether the message was just created.
func (t *Transcript) AppendFragment(fragment string) (content string, started bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.messages)
	if n == 0 || t.messages[n-1].Role != agent.RoleAssistant {
		t.messages = append(t.messages, agent.Message{Role: agent.RoleAssistant})
		n++
		started = true
	}
	t.messages[n-1].Content += fragment
	return t.messages[n-1].Content, started
}

// Messages returns a copy of the current messages.
func (t *Transcript) Messages() []agent.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]agent.Message(nil), t.messages...)
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}
