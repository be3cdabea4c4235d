package completion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gpt-cli/internal/agent"
	"gpt-cli/internal/logger"
)

func silenceRootLogger(t *testing.T) {
	t.Helper()
	root := logger.Root()
	prev := root.Out
	root.SetOutput(io.Discard)
	t.Cleanup(func() {
		root.SetOutput(prev)
	})
}

func chunkLine(content string) string {
	return `data: {"id":"c1","object":"chat.completion.chunk","created":0,"model":"m","choices":[{"index":0,"delta":{"content":` +
		mustJSON(content) + `},"finish_reason":null}]}` + "\n\n"
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

type captured struct {
	path string
	body map[string]any
	auth string
}

func newStreamServer(t *testing.T, events string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got.body)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, events)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestStream_ConcatenatesFragments(t *testing.T) {
	silenceRootLogger(t)

	events := chunkLine("Hel") + chunkLine("") + chunkLine("lo") + chunkLine(" world") + "data: [DONE]\n\n"
	var got captured
	srv := newStreamServer(t, events, &got)

	c, err := New(Options{APIKey: "sk-test", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	var fragments []string
	err = c.Stream(ctx, Request{
		Messages:  []agent.Message{{Role: agent.RoleUser, Content: "hi"}},
		Model:     "gpt-3.5-turbo",
		MaxTokens: 500,
		Sampling:  TopP(0.1),
	}, func(s string) { fragments = append(fragments, s) })
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if strings.Join(fragments, "") != "Hello world" || len(fragments) != 3 {
		t.Fatalf("fragments = %q", fragments)
	}

	if got.path != "/v1/chat/completions" {
		t.Fatalf("path = %q", got.path)
	}
	if got.auth != "Bearer sk-test" {
		t.Fatalf("auth = %q", got.auth)
	}
	if got.body["stream"] != true || got.body["model"] != "gpt-3.5-turbo" {
		t.Fatalf("unexpected body: %v", got.body)
	}
	if got.body["top_p"] != 0.1 || got.body["max_tokens"] != float64(500) {
		t.Fatalf("unexpected sampling: %v", got.body)
	}
	if _, ok := got.body["temperature"]; ok {
		t.Fatalf("temperature must not be sent with top_p: %v", got.body)
	}
}

func TestStream_TemperatureReplacesTopP(t *testing.T) {
	silenceRootLogger(t)

	var got captured
	srv := newStreamServer(t, chunkLine("ok")+"data: [DONE]\n\n", &got)
	c, err := New(Options{APIKey: "k", BaseURL: srv.URL + "/v1/chat/completions", HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Stream(context.Background(), Request{Model: "m", Sampling: Temperature(0.7)}, nil); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if got.body["temperature"] != 0.7 {
		t.Fatalf("temperature = %v", got.body["temperature"])
	}
	if _, ok := got.body["top_p"]; ok {
		t.Fatalf("top_p must not be sent with temperature: %v", got.body)
	}
}

func TestStream_SkipsMalformedLines(t *testing.T) {
	silenceRootLogger(t)

	events := chunkLine("a") +
		"data: {\"choices\":[{\"delta\":{\"content\":\"brok\n\n" +
		chunkLine("b") +
		"data: [DONE]\n\n"
	var got captured
	srv := newStreamServer(t, events, &got)
	c, err := New(Options{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var out strings.Builder
	if err := c.Stream(context.Background(), Request{Model: "m"}, func(s string) { out.WriteString(s) }); err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if out.String() != "ab" {
		t.Fatalf("content = %q, want ab", out.String())
	}
}

func TestStream_HTTPError(t *testing.T) {
	silenceRootLogger(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{APIKey: "k", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = c.Stream(context.Background(), Request{Model: "m"}, nil)
	if err == nil || !strings.Contains(err.Error(), "http_401") {
		t.Fatalf("err = %v, want http_401", err)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}
