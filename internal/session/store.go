package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gpt-cli/internal/agent"
)

// Latest selects the session with the largest numeric key.
const Latest = "latest"

const ext = ".json"

// ErrNotFound is returned when a session cannot be resumed: the file is
// missing, not a regular file, unparsable or holds no messages.
var ErrNotFound = errors.New("no messages found")

// ErrInvalidKey is returned for keys that do not name a file directly inside
// the message directory.
var ErrInvalidKey = errors.New("invalid session key")

// Store keeps transcripts as <Dir>/<key>.json, each a JSON array of messages.
type Store struct {
	Dir     string
	Enabled bool
}

func NewStore(dir string, enabled bool) *Store {
	return &Store{Dir: dir, Enabled: enabled}
}

// NewKey returns a fresh session key: the current Unix time in seconds.
func NewKey() string {
	return strconv.FormatInt(time.Now().Unix(), 10)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.Dir, key+ext)
}

// ValidateKey rejects empty keys, dot keys and keys with path separators.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if key == "." || strings.Contains(key, "..") || strings.ContainsAny(key, `/\`) || filepath.Base(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Persist writes the whole transcript under key, replacing any previous
// content. Nothing is written when saving is disabled or the transcript is
// empty.
func (s *Store) Persist(key string, t *Transcript) error {
	if s == nil || !s.Enabled || t == nil {
		return nil
	}
	msgs := t.Messages()
	if len(msgs) == 0 {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create message dir: %w", err)
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write session %s: %w", key, err)
	}
	return nil
}

// Load reads the transcript stored under key. Load(Latest) reads the session
// with the largest numeric key.
func (s *Store) Load(key string) ([]agent.Message, error) {
	resolved, err := s.Resolve(key)
	if err != nil {
		return nil, err
	}
	p := s.path(resolved)
	info, err := os.Stat(p)
	if err != nil || !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, resolved)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, resolved, err)
	}
	var msgs []agent.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotFound, resolved, err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNotFound, resolved)
	}
	for i, m := range msgs {
		if !m.Valid() {
			return nil, fmt.Errorf("%w: %s: message %d has role %q", ErrNotFound, resolved, i, m.Role)
		}
	}
	return msgs, nil
}

// Resolve maps Latest to the concrete key of the newest session and returns
// any other valid key unchanged.
func (s *Store) Resolve(key string) (string, error) {
	if key != Latest {
		if err := ValidateKey(key); err != nil {
			return "", err
		}
		return key, nil
	}
	keys, err := s.numericKeys()
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "", ErrNotFound
	}
	return strconv.FormatInt(keys[len(keys)-1], 10), nil
}

// Keys lists stored session keys, numeric keys first in ascending order.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var named []string
	nums, _ := s.numericKeys()
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		key := trimExt(e.Name())
		if _, err := strconv.ParseInt(key, 10, 64); err == nil {
			continue
		}
		named = append(named, key)
	}
	sort.Strings(named)
	out := make([]string, 0, len(nums)+len(named))
	for _, n := range nums {
		out = append(out, strconv.FormatInt(n, 10))
	}
	return append(out, named...), nil
}

func (s *Store) numericKeys() ([]int64, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var keys []int64
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		n, err := strconv.ParseInt(trimExt(e.Name()), 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, n)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
