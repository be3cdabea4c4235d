package completion

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the public OpenAI endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// NormalizeBaseURL trims endpoint suffixes such as /chat/completions and
// makes sure the path ends in exactly one /v1.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	path := strings.TrimRight(parsed.Path, "/")
	switch {
	case strings.HasSuffix(path, "/chat/completions"):
		path = strings.TrimSuffix(path, "/chat/completions")
	case strings.HasSuffix(path, "/completions"):
		path = strings.TrimSuffix(path, "/completions")
	}
	path = strings.TrimRight(path, "/")

	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	for strings.Contains(path, "/v1/v1") {
		path = strings.ReplaceAll(path, "/v1/v1", "/v1")
	}

	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}
