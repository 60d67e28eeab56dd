// Package extract turns uploaded document bytes into plain text.
//
// Each supported format has one Extractor. Extractors are pure: the same
// bytes always give the same text, and empty content gives "" with no error.
package extract

import (
	"context"

	"github.com/unibrain/backend/internal/models"
)

// Extractor pulls plain text out of one document format.
type Extractor interface {
	// Name returns the unique name of the extractor.
	Name() string
	// Format returns the format class the extractor handles.
	Format() models.Format
	// Extract returns the document text in reading order.
	Extract(ctx context.Context, data []byte) (string, error)
}
