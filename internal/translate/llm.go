package translate

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"

	"github.com/unibrain/backend/internal/llm"
	"github.com/unibrain/backend/internal/models"
)

var languageNames = map[models.Language]string{
	models.LanguageArabic:  "Arabic",
	models.LanguageEnglish: "English",
}

const translatePrompt = `Translate the following academic text into %s.
Keep the meaning and technical terms. Reply with the translation only.

Text:
%s`

// LLMTranslator asks a language model for the translation.
type LLMTranslator struct {
	model       llms.Model
	temperature float64
}

// NewLLMTranslator creates a translator backed by model.
func NewLLMTranslator(model llms.Model, temperature float64) *LLMTranslator {
	return &LLMTranslator{model: model, temperature: temperature}
}

func (t *LLMTranslator) Translate(ctx context.Context, text string, target models.Language) (string, error) {
	name, ok := languageNames[target]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, target)
	}
	prompt := fmt.Sprintf(translatePrompt, name, text)
	// Arabic output can take several tokens per character run
	maxTokens := utf8.RuneCountInString(text)*2 + 64
	return llm.Complete(ctx, t.model, prompt, maxTokens, t.temperature)
}
