// Package translate validates translation requests and forwards a bounded
// prefix of the text to a translation backend.
package translate

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/unibrain/backend/internal/models"
	"github.com/unibrain/backend/internal/textutil"
)

// Translator converts text to the target language.
type Translator interface {
	Translate(ctx context.Context, text string, target models.Language) (string, error)
}

// Service checks the target language and truncates the input before calling
// the backend.
type Service struct {
	backend     Translator
	prefixChars int
	logger      *zap.Logger
}

// NewService wraps backend. prefixChars <= 0 disables truncation.
func NewService(backend Translator, prefixChars int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, prefixChars: prefixChars, logger: logger.Named("translate")}
}

// Translate returns ErrUnsupportedLanguage for an unknown target and wraps any
// backend failure in ErrUnavailable. Blank input translates to "" without a
// backend call.
func (s *Service) Translate(ctx context.Context, text, target string) (string, models.Language, error) {
	lang, ok := models.ParseLanguage(target)
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, target)
	}

	if strings.TrimSpace(text) == "" {
		return "", lang, nil
	}

	prefix := textutil.Truncate(text, s.prefixChars)
	out, err := s.backend.Translate(ctx, prefix, lang)
	if err != nil {
		s.logger.Warn("translation failed", zap.String("target", string(lang)), zap.Error(err))
		return "", lang, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.logger.Info("translated",
		zap.String("target", string(lang)),
		zap.Int("chars", utf8.RuneCountInString(prefix)),
	)
	return out, lang, nil
}
