package llmapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/taskforge/internal/config"
)

const systemPrompt = "You are a helpful assistant."

// OpenAIClient calls an OpenAI compatible chat completions endpoint.
type OpenAIClient struct {
	model  string
	client *resty.Client
}

func NewOpenAIClient(cfg *config.GeneratorEnvConfig, model string) (*OpenAIClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = cfg.Model
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.OpenAIBaseURL, "/")).
		SetAuthToken(cfg.OpenAIAPIKey).
		SetTimeout(cfg.ClientTimeout).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &OpenAIClient{
		model:  model,
		client: client,
	}, nil
}

func (c *OpenAIClient) Model() string { return c.model }

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	var (
		out    ChatCompletionResponse
		apiErr apiErrorResponse
	)
	req := ChatCompletionRequest{
		Model:    c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		log.Error().Err(err).Str("model", c.model).Msg("chat-completions request failed")
		return "", fmt.Errorf("chat completions: %w", err)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("chat-completions non-2xx")
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("chat-completions status %d: %s", resp.StatusCode(), apiErr.Error.Message)
		}
		return "", fmt.Errorf("chat-completions status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}
