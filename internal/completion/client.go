package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"gpt-cli/internal/agent"
	"gpt-cli/internal/logger"
)

// Request is one chat completion call.
type Request struct {
	// ExchangeID correlates log lines of one exchange; generated when empty.
	ExchangeID string
	Messages   []agent.Message
	Model      string
	MaxTokens  int
	Sampling   Sampling
}

type Options struct {
	APIKey  string
	BaseURL string
	// HTTPClient is used as the base client; its transport gets wrapped by the
	// stream line filter.
	HTTPClient *http.Client
}

// Client streams chat completions from an OpenAI compatible endpoint.
type Client struct {
	api *openai.Client
	log *logger.LogEntry
}

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("missing OPENAI_API_KEY")
	}
	base := http.DefaultClient
	if opts.HTTPClient != nil {
		base = opts.HTTPClient
	}
	httpClient := *base
	httpClient.Transport = newSSEFilterTransport(base.Transport)

	baseURL := NormalizeBaseURL(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := openai.NewClient(
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(&httpClient),
	)
	return &Client{api: &client, log: logger.Named("completion")}, nil
}

// Stream sends req with streaming enabled and calls onFragment with every
// non-empty content delta, in order. It returns when the stream ends or fails.
func (c *Client) Stream(ctx context.Context, req Request, onFragment func(string)) error {
	id := req.ExchangeID
	if id == "" {
		id = uuid.NewString()
	}
	logger.Request(id, req.Model, agent.ToLLMMessages(req.Messages), req.Sampling.String())

	stream := c.api.Chat.Completions.NewStreaming(ctx, buildParams(req))
	defer stream.Close()

	chunks := 0
	for stream.Next() {
		chunk := stream.Current()
		for _, choice := range chunk.Choices {
			if delta := choice.Delta.Content; delta != "" {
				logger.StreamChunk(id, delta, chunks)
				chunks++
				if onFragment != nil {
					onFragment(delta)
				}
			}
			if choice.FinishReason != "" {
				c.log.Debugf("exchange %s finished: %s", id, choice.FinishReason)
			}
		}
	}
	if err := stream.Err(); err != nil {
		err = wrapHTTPError(err)
		logger.Error(id, err)
		return err
	}
	logger.StreamComplete(id, chunks)
	return nil
}

func buildParams(req Request) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(req.Model),
		Messages: toChatMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	switch req.Sampling.Kind {
	case SamplingTemperature:
		params.Temperature = openai.Float(req.Sampling.Value)
	default:
		params.TopP = openai.Float(req.Sampling.Value)
	}
	return params
}

func toChatMessages(msgs []agent.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case agent.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func wrapHTTPError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		if raw := strings.TrimSpace(apiErr.RawJSON()); raw != "" {
			return fmt.Errorf("http_%d: %s", apiErr.StatusCode, raw)
		}
		return fmt.Errorf("http_%d: %w", apiErr.StatusCode, err)
	}
	return err
}
