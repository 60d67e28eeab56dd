package summarize

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/unibrain/backend/internal/llm"
)

const summaryPrompt = `Summarize the following academic text in %d to %d words.
Write the summary in the same language as the text. Reply with the summary only.

Text:
%s`

// LLMSummarizer asks a language model for the summary.
type LLMSummarizer struct {
	model       llms.Model
	temperature float64
}

// NewLLMSummarizer creates a summarizer backed by model.
func NewLLMSummarizer(model llms.Model, temperature float64) *LLMSummarizer {
	return &LLMSummarizer{model: model, temperature: temperature}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, text string, bounds Bounds) (string, error) {
	prompt := fmt.Sprintf(summaryPrompt, bounds.MinLength, bounds.MaxLength, text)
	// roughly two tokens per word leaves room for non-Latin scripts
	return llm.Complete(ctx, s.model, prompt, bounds.MaxLength*2, s.temperature)
}
