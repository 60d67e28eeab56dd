package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine is an OCREngine backed by a local tesseract installation.
// One client is reused across calls and guarded by a mutex since the
// underlying API handle is not safe for concurrent use.
type TesseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractEngine creates an engine for the given tesseract language codes
// (for example "ara" and "eng").
func NewTesseractEngine(languages ...string) (*TesseractEngine, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, fmt.Errorf("setting OCR languages: %w", err)
		}
	}
	client.SetVariable("preserve_interword_spaces", "1")

	return &TesseractEngine{client: client}, nil
}

// Recognize returns one fragment per recognized text line.
func (t *TesseractEngine) Recognize(ctx context.Context, img []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(img); err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}

	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("running OCR: %w", err)
	}

	fragments := make([]string, 0, len(boxes))
	for _, b := range boxes {
		fragments = append(fragments, b.Word)
	}
	return fragments, nil
}

// Close releases the tesseract handle.
func (t *TesseractEngine) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
