package completion

import (
	"strings"
	"testing"

	"gpt-cli/internal/agent"
)

func TestApproxTokenCount(t *testing.T) {
	cases := map[string]int{"": 0, "a": 1, "abcd": 1, "abcde": 2}
	for in, want := range cases {
		if got := ApproxTokenCount(in); got != want {
			t.Fatalf("ApproxTokenCount(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestContextWindowForModel(t *testing.T) {
	t.Setenv("GPT_CLI_MODEL_CONTEXT_WINDOW", "")
	if n, ok := ContextWindowForModel("gpt-3.5-turbo"); !ok || n != 16_385 {
		t.Fatalf("gpt-3.5-turbo = %d, %v", n, ok)
	}
	if n, ok := ContextWindowForModel("gpt-4o-mini"); !ok || n != 128_000 {
		t.Fatalf("gpt-4o-mini = %d, %v", n, ok)
	}
	if _, ok := ContextWindowForModel("local-llama"); ok {
		t.Fatalf("unknown model must not report a window")
	}
	t.Setenv("GPT_CLI_MODEL_CONTEXT_WINDOW", "100")
	if n, ok := ContextWindowForModel("local-llama"); !ok || n != 100 {
		t.Fatalf("override = %d, %v", n, ok)
	}
}

func TestExceedsContext(t *testing.T) {
	t.Setenv("GPT_CLI_MODEL_CONTEXT_WINDOW", "1000")
	small := Request{Model: "m", MaxTokens: 500, Messages: []agent.Message{{Role: agent.RoleUser, Content: "hi"}}}
	if _, _, over := ExceedsContext(small); over {
		t.Fatalf("small request flagged")
	}
	big := small
	big.Messages = []agent.Message{{Role: agent.RoleUser, Content: strings.Repeat("x", 4000)}}
	est, window, over := ExceedsContext(big)
	if !over || window != 1000 || est <= 1000 {
		t.Fatalf("est=%d window=%d over=%v", est, window, over)
	}
}
