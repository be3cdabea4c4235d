package completion

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"gpt-cli/internal/agent"
)

const approxBytesPerToken = 4

// ApproxTokenCount estimates tokens as bytes/4, rounded up.
func ApproxTokenCount(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + approxBytesPerToken - 1) / approxBytesPerToken
}

// EstimatePromptTokens estimates the request size from the serialized
// messages.
func EstimatePromptTokens(msgs []agent.Message) int {
	raw, err := json.Marshal(msgs)
	if err == nil {
		return ApproxTokenCount(string(raw))
	}
	total := 0
	for _, m := range msgs {
		total += ApproxTokenCount(m.Content)
	}
	return total
}

// ContextWindowForModel returns the known context window of model, in tokens.
// GPT_CLI_MODEL_CONTEXT_WINDOW overrides the table.
func ContextWindowForModel(model string) (int, bool) {
	if v := strings.TrimSpace(os.Getenv("GPT_CLI_MODEL_CONTEXT_WINDOW")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n, true
		}
	}

	slug := strings.TrimSpace(model)
	switch slug {
	case "":
		return 0, false
	case "gpt-3.5-turbo", "gpt-3.5-turbo-0125", "gpt-3.5-turbo-1106":
		return 16_385, true
	case "gpt-4", "gpt-4-0613":
		return 8_192, true
	case "gpt-4-32k":
		return 32_768, true
	case "gpt-4.1", "gpt-4.1-mini", "gpt-4.1-nano":
		return 1_047_576, true
	case "o3", "o4-mini":
		return 200_000, true
	}
	switch {
	case strings.HasPrefix(slug, "gpt-4o"), strings.HasPrefix(slug, "gpt-4-turbo"):
		return 128_000, true
	case strings.HasPrefix(slug, "gpt-5"):
		return 272_000, true
	}
	return 0, false
}

// ExceedsContext reports whether req probably does not fit the model's
// context window once the reply budget is added. Unknown models never exceed.
func ExceedsContext(req Request) (estimate, window int, exceeds bool) {
	window, ok := ContextWindowForModel(req.Model)
	estimate = EstimatePromptTokens(req.Messages) + req.MaxTokens
	return estimate, window, ok && estimate > window
}
