package highlight

import (
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestHighlight_FenceLanguage(t *testing.T) {
	h := NewHighlighter()
	res, err := h.Highlight("package main\n\nfunc main() {}\n", "go")
	if err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	if res.Plaintext || res.Language != "go" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(res.Markup, `class="kd"`) && !strings.Contains(res.Markup, `class="kn"`) {
		t.Fatalf("expected keyword classes in markup: %s", res.Markup)
	}
	if strings.Contains(res.Markup, "<pre") {
		t.Fatalf("markup must not carry the pre wrapper: %s", res.Markup)
	}
}

func TestHighlight_PlaintextFallback(t *testing.T) {
	h := NewHighlighter()
	res, err := h.Highlight("just some words", "text")
	if err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	if !res.Plaintext || res.Markup != "" {
		t.Fatalf("expected plaintext fallback, got %+v", res)
	}
}

func TestHighlightAndConvert_RoundTripsSource(t *testing.T) {
	src := "if a < b && c > \"d\" {\n\treturn 'x'\n}\n"
	h := NewHighlighter()
	res, err := h.Highlight(src, "go")
	if err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	sheet, err := ChromaStylesheet("monokai")
	if err != nil {
		t.Fatalf("ChromaStylesheet: %v", err)
	}
	plain, err := NewBridge(sheet, termenv.Ascii).Convert(res.Markup)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if plain != src {
		t.Fatalf("Convert(Ascii) = %q, want source back %q", plain, src)
	}
	styled, err := NewBridge(sheet, termenv.TrueColor).Convert(res.Markup)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(styled, "\x1b[") {
		t.Fatalf("expected ANSI decorations, got %q", styled)
	}
}
