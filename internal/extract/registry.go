package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/unibrain/backend/internal/models"
)

// ErrExtractorPanic marks an extraction that panicked.
var ErrExtractorPanic = errors.New("extractor panicked")

// Registry maps format classes to extractors.
type Registry struct {
	extractors []Extractor
	logger     *zap.Logger
}

// NewRegistry creates a registry with the four built-in extractors. ocr backs
// the image extractor.
func NewRegistry(ocr OCREngine, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		extractors: []Extractor{
			NewImageExtractor(ocr),
			NewPDFExtractor(),
			NewDOCXExtractor(),
			NewPPTXExtractor(),
		},
		logger: logger.Named("extract"),
	}
}

// Register adds an extractor. A later registration for the same format takes
// precedence over earlier ones.
func (r *Registry) Register(e Extractor) {
	r.extractors = append([]Extractor{e}, r.extractors...)
}

// UseCache wraps every registered extractor with the result cache.
func (r *Registry) UseCache(c *Cache) {
	if c == nil {
		return
	}
	for i, e := range r.extractors {
		r.extractors[i] = NewCachedExtractor(e, c, r.logger)
	}
}

// FindExtractor returns the extractor for a format.
func (r *Registry) FindExtractor(format models.Format) (Extractor, error) {
	for _, e := range r.extractors {
		if e.Format() == format {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

// GetExtractorByName returns an extractor by its name.
func (r *Registry) GetExtractorByName(name string) (Extractor, error) {
	name = strings.ToLower(name)
	for _, e := range r.extractors {
		if strings.ToLower(e.Name()) == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("extractor not found: %s", name)
}

// Extract detects the format of a named blob and runs its extractor.
// A panic inside an extractor is returned as an error so one bad file cannot
// take down the batch it belongs to.
func (r *Registry) Extract(ctx context.Context, name, contentType string, data []byte) (text string, format models.Format, err error) {
	format, err = DetectFormat(name, contentType)
	if err != nil {
		return "", "", err
	}

	e, err := r.FindExtractor(format)
	if err != nil {
		return "", format, err
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("extractor panicked",
				zap.String("file", name),
				zap.String("extractor", e.Name()),
				zap.Any("panic", p),
			)
			text, err = "", fmt.Errorf("%s: %w: %v", e.Name(), ErrExtractorPanic, p)
		}
	}()

	text, err = e.Extract(ctx, data)
	if err != nil {
		return "", format, fmt.Errorf("%s: %w", e.Name(), err)
	}

	r.logger.Debug("extracted",
		zap.String("file", name),
		zap.String("format", string(format)),
		zap.Int("chars", len([]rune(text))),
	)
	return text, format, nil
}
