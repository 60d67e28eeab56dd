// Package summarize gates text before handing it to a summarization backend.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/unibrain/backend/internal/textutil"
)

// ErrTooShort is returned when the input has fewer words than the gate
// requires. The backend is not called.
var ErrTooShort = errors.New("content too short to summarize")

// ErrUnavailable wraps every backend failure.
var ErrUnavailable = errors.New("summarization service unavailable")

// Bounds are the target summary lengths, in words.
type Bounds struct {
	MinLength int
	MaxLength int
}

// Summarizer produces a summary of text within bounds.
type Summarizer interface {
	Summarize(ctx context.Context, text string, bounds Bounds) (string, error)
}

// Options configure the gate in front of a backend.
type Options struct {
	PrefixChars int
	MinWords    int
	Bounds      Bounds
}

// DefaultOptions returns the gate used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		PrefixChars: 2000,
		MinWords:    31,
		Bounds:      Bounds{MinLength: 50, MaxLength: 200},
	}
}

// Service applies the word threshold and prefix truncation, then calls the
// backend.
type Service struct {
	backend Summarizer
	opts    Options
	logger  *zap.Logger
}

// NewService wraps backend with the gate described by opts.
func NewService(backend Summarizer, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{backend: backend, opts: opts, logger: logger.Named("summarize")}
}

// Summarize returns ErrTooShort when text has fewer than MinWords words.
// Otherwise the first PrefixChars characters are summarized.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	words := WordCount(text)
	if words < s.opts.MinWords {
		s.logger.Debug("input below threshold", zap.Int("words", words), zap.Int("min_words", s.opts.MinWords))
		return "", ErrTooShort
	}

	prefix := textutil.Truncate(text, s.opts.PrefixChars)
	summary, err := s.backend.Summarize(ctx, prefix, s.opts.Bounds)
	if err != nil {
		s.logger.Warn("summarization failed", zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.logger.Info("summarized",
		zap.Int("words", words),
		zap.Int("chars", utf8.RuneCountInString(prefix)),
		zap.Int("summary_chars", utf8.RuneCountInString(summary)),
	)
	return summary, nil
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
