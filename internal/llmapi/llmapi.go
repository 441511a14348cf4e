// Package llmapi talks to the generative text services that produce solution
// units, templates and tests.
package llmapi

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tensorplex-labs/taskforge/internal/config"
)

var (
	// ErrEmptyResponse is returned when a service answers without any content.
	ErrEmptyResponse = errors.New("llmapi: empty response content")
	// ErrRetriesExhausted wraps the last failure once every attempt is used.
	ErrRetriesExhausted = errors.New("llmapi: retries exhausted")
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// New builds the configured provider for model, wrapped with the configured
// retry bound.
func New(ctx context.Context, cfg *config.GeneratorEnvConfig, model string) (Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var (
		g   Generator
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		g, err = NewOpenAIClient(cfg, model)
	case ProviderGemini:
		g, err = NewGeminiClient(ctx, cfg, model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithRetries(g, cfg.MaxAttempts), nil
}
