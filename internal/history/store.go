package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultLimit caps how many prompts are handed to the line editor.
const DefaultLimit = 1000

// Entry is one line of history.jsonl.
type Entry struct {
	Text string    `json:"text"`
	TS   time.Time `json:"ts"`
}

// Store is the prompt history file; one JSON entry per line, oldest first.
type Store struct {
	Path string
}

func New(path string) *Store {
	return &Store{Path: path}
}

func (s *Store) ensureDir() error {
	if s == nil || strings.TrimSpace(s.Path) == "" {
		return errors.New("history store path is empty")
	}
	return os.MkdirAll(filepath.Dir(s.Path), 0o755)
}

// Append records a submitted prompt. Blank prompts are skipped.
func (s *Store) Append(text string) error {
	if s == nil {
		return errors.New("history store is nil")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(Entry{Text: text, TS: time.Now()})
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// LoadTexts returns every stored prompt, oldest first. Unparsable lines are
// skipped and a missing file yields no entries.
func (s *Store) LoadTexts() ([]string, error) {
	if s == nil {
		return nil, errors.New("history store is nil")
	}
	if strings.TrimSpace(s.Path) == "" {
		return nil, errors.New("history store path is empty")
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		out = append(out, e.Text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Recent returns at most limit prompts, newest last, with consecutive
// duplicates collapsed.
func (s *Store) Recent(limit int) ([]string, error) {
	texts, err := s.LoadTexts()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(texts))
	for i, t := range texts {
		if i > 0 && t == texts[i-1] {
			continue
		}
		out = append(out, t)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}
