package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gpt-cli/internal/agent"
)

func TestPersistLoad_RoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "messages"), true)
	tr := NewTranscript(nil)
	tr.Append(agent.Message{Role: agent.RoleUser, Content: "hi"})
	tr.AppendFragment("Hel")
	tr.AppendFragment("lo")
	tr.AppendFragment(" world")

	if err := s.Persist("1700000000", tr); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	got, err := s.Load("1700000000")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []agent.Message{
		{Role: agent.RoleUser, Content: "hi"},
		{Role: agent.RoleAssistant, Content: "Hello world"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Load = %#v, want %#v", got, want)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir, "1700000000.json"))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(data) != `[{"role":"user","content":"hi"},{"role":"assistant","content":"Hello world"}]` {
		t.Fatalf("unexpected file content: %s", data)
	}
}

func TestPersist_NoopWhenEmptyOrDisabled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "messages")

	if err := NewStore(dir, true).Persist("1", NewTranscript(nil)); err != nil {
		t.Fatalf("Persist empty: %v", err)
	}
	tr := NewTranscript([]agent.Message{{Role: agent.RoleUser, Content: "x"}})
	if err := NewStore(dir, false).Persist("1", tr); err != nil {
		t.Fatalf("Persist disabled: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected nothing written, stat err = %v", err)
	}
}

func TestPersist_ReportsWriteFailure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "messages")
	if err := os.WriteFile(blocker, []byte("file"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tr := NewTranscript([]agent.Message{{Role: agent.RoleUser, Content: "x"}})
	if err := NewStore(blocker, true).Persist("1", tr); err == nil {
		t.Fatalf("expected error when message dir is a file")
	}
}

func TestResolveLatest_Numeric(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"100.json", "20.json", "9.json", "notes.json", "7.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(`[{"role":"user","content":"`+name+`"}]`), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	s := NewStore(dir, true)
	key, err := s.Resolve(Latest)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if key != "100" {
		t.Fatalf("latest = %q, want 100", key)
	}
	msgs, err := s.Load(Latest)
	if err != nil {
		t.Fatalf("Load latest: %v", err)
	}
	if msgs[0].Content != "100.json" {
		t.Fatalf("loaded wrong session: %#v", msgs)
	}

	keys, err := s.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"9", "20", "100", "notes"}) {
		t.Fatalf("Keys = %v", keys)
	}
}

func TestLoad_NotFound(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "1.json"), []byte(`[]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "2.json"), []byte(`{not json`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "3.json"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "5.json"), []byte(`[{"role":"system","content":"x"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewStore(dir, true)
	for _, key := range []string{"1", "2", "3", "4", "5"} {
		if _, err := s.Load(key); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Load(%s) err = %v, want ErrNotFound", key, err)
		}
	}

	empty := NewStore(filepath.Join(t.TempDir(), "missing"), true)
	if _, err := empty.Load(Latest); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load(latest) on missing dir err = %v, want ErrNotFound", err)
	}
}

func TestStore_RejectsKeysOutsideDir(t *testing.T) {
	base := t.TempDir()
	s := NewStore(filepath.Join(base, "messages"), true)
	outside := filepath.Join(base, "x.json")
	if err := os.WriteFile(outside, []byte(`[{"role":"user","content":"hi"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tr := NewTranscript([]agent.Message{{Role: agent.RoleUser, Content: "hi"}})
	for _, key := range []string{"../x", "a/b", `a\b`, "..", ".", "", " "} {
		if _, err := s.Load(key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Load(%q) err = %v, want ErrInvalidKey", key, err)
		}
		if err := s.Persist(key, tr); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Persist(%q) err = %v, want ErrInvalidKey", key, err)
		}
	}
	if _, err := os.Stat(filepath.Join(base, "messages")); !os.IsNotExist(err) {
		t.Fatalf("nothing should be written, stat err = %v", err)
	}
	if err := s.Persist("notes", tr); err != nil {
		t.Fatalf("Persist(notes): %v", err)
	}
}

func TestNewKey_IsNumeric(t *testing.T) {
	key := NewKey()
	for _, r := range key {
		if r < '0' || r > '9' {
			t.Fatalf("NewKey = %q, want digits", key)
		}
	}
}
