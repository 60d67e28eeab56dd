// Package llm builds the language model shared by the summarizer and the
// translator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/unibrain/backend/internal/config"
)

// ErrEmptyCompletion is returned when the model answers with nothing.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// New constructs the model selected by cfg.Provider ("ollama" or "openai").
func New(cfg config.LLMConfig) (llms.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.ServerURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.ServerURL))
		}
		m, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("creating ollama client: %w", err)
		}
		return m, nil

	case "openai":
		opts := []openai.Option{openai.WithModel(cfg.Model)}
		if cfg.Token != "" {
			opts = append(opts, openai.WithToken(cfg.Token))
		}
		if cfg.ServerURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.ServerURL))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("creating openai client: %w", err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
}

// Complete sends a single prompt and returns the trimmed answer.
func Complete(ctx context.Context, model llms.Model, prompt string, maxTokens int, temperature float64) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(temperature)}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, model, prompt, opts...)
	if err != nil {
		return "", err
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyCompletion
	}
	return out, nil
}
