package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultModel = "replicate/black-forest-labs/flux-1.1-pro"

// ImageGenerator performs the single outbound call for an enhanced prompt and
// returns the image reference.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

type ClientConfig struct {
	BaseURL string
	Model   string
	APIKey  string
	// Headers are added to every request, e.g. a customer id required by the gateway.
	Headers map[string]string
}

// ChatCompletionClient talks to an OpenAI compatible chat completions
// endpoint that answers with an image URL as the message content.
type ChatCompletionClient struct {
	client *openai.Client
	model  string
}

func NewChatCompletionClient(cfg ClientConfig) *ChatCompletionClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	// No client-level timeout: the relay bounds every call with a context deadline.
	config.HTTPClient = &http.Client{
		Transport: &headerTransport{base: http.DefaultTransport, headers: cfg.Headers},
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &ChatCompletionClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *ChatCompletionClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	slog.DebugContext(ctx, "relay: sending chat completion request", "model", c.model)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", translateError(err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrInvalidResponseFormat
	}
	return resp.Choices[0].Message.Content, nil
}

func translateError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &StatusError{StatusCode: reqErr.HTTPStatusCode}
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrInvalidResponseFormat
	}
	return err
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	return t.base.RoundTrip(req)
}
