package repl

import (
	"errors"
	"io"

	"github.com/peterh/liner"
)

// LineReader reads one prompt line at a time.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// ErrInterrupted is returned by a LineReader when the user pressed Ctrl-C.
var ErrInterrupted = liner.ErrPromptAborted

// NewLineReader opens a liner line editor seeded with history, oldest first.
func NewLineReader(history []string) LineReader {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	for _, h := range history {
		st.AppendHistory(h)
	}
	return st
}

func isQuit(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted)
}
