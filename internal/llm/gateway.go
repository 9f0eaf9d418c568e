package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// GatewayClient talks to an OpenAI-compatible gateway through langchaingo.
type GatewayClient struct {
	llm   llms.Model
	model string
}

// NewGatewayClient builds a langchaingo OpenAI client pointed at baseURL.
func NewGatewayClient(baseURL, apiKey, model string) (*GatewayClient, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	m, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create gateway client: %w", err)
	}
	return &GatewayClient{llm: m, model: model}, nil
}

// Name returns the model name.
func (c *GatewayClient) Name() string { return c.model }

// Complete sends the request and returns the first choice's content.
func (c *GatewayClient) Complete(ctx context.Context, req Request) (string, error) {
	msgs := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.User),
	}
	opts := []llms.CallOption{llms.WithTemperature(req.Temperature)}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}
	resp, err := c.llm.GenerateContent(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("gateway API error: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
