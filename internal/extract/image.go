package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"strings"

	"github.com/unibrain/backend/internal/models"
)

// OCREngine recognizes text in raster image bytes. It returns the recognized
// fragments in reading order.
type OCREngine interface {
	Recognize(ctx context.Context, img []byte) ([]string, error)
}

// ErrNoOCREngine is returned when images arrive but no engine was configured.
var ErrNoOCREngine = errors.New("no OCR engine configured")

// ErrImageTooLarge is returned for images whose header declares more than
// MaxImagePixels pixels. They are rejected before any pixel data is decoded.
var ErrImageTooLarge = errors.New("image dimensions too large")

// MaxImagePixels bounds width*height of an accepted image.
const MaxImagePixels = 64 << 20

// ImageExtractor runs OCR over png and jpeg images.
type ImageExtractor struct {
	ocr OCREngine
}

// NewImageExtractor creates an image extractor backed by ocr.
func NewImageExtractor(ocr OCREngine) *ImageExtractor {
	return &ImageExtractor{ocr: ocr}
}

func (e *ImageExtractor) Name() string          { return "image" }
func (e *ImageExtractor) Format() models.Format { return models.FormatImage }

// Extract validates the image and joins the recognized fragments with single
// spaces.
func (e *ImageExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	if e.ocr == nil {
		return "", ErrNoOCREngine
	}

	fragments, err := e.ocr.Recognize(ctx, data)
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}

	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " "), nil
}
