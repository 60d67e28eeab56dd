package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/unibrain/backend/internal/extract"
	"github.com/unibrain/backend/internal/models"
)

var (
	// ErrEmptyBatch is returned when a batch has no files.
	ErrEmptyBatch = errors.New("no files in batch")
	// ErrTooManyFiles is returned when a batch exceeds the configured size.
	ErrTooManyFiles = errors.New("too many files in batch")
)

// TextExtractor detects a file's format and extracts its text.
// *extract.Registry satisfies it.
type TextExtractor interface {
	Extract(ctx context.Context, name, contentType string, data []byte) (string, models.Format, error)
}

// Input is one uploaded file, in upload order.
type Input struct {
	FileID      string
	Name        string
	ContentType string
	Data        []byte
}

// Batch is the result of running one upload batch through extraction.
type Batch struct {
	Documents   []models.ExtractedDocument
	Reports     []models.FileReport
	Text        string
	Fingerprint string
	Elapsed     time.Duration
}

// Failed returns the number of files that could not be read.
func (b *Batch) Failed() int {
	n := 0
	for _, r := range b.Reports {
		if r.Status != models.FileStatusExtracted {
			n++
		}
	}
	return n
}

// Pipeline extracts and aggregates upload batches.
type Pipeline struct {
	extractor TextExtractor
	maxFiles  int
	logger    *zap.Logger
}

// New creates a pipeline. maxFiles <= 0 disables the batch size limit.
func New(extractor TextExtractor, maxFiles int, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		extractor: extractor,
		maxFiles:  maxFiles,
		logger:    logger.Named("pipeline"),
	}
}

// BatchFingerprint computes the fingerprint of inputs without extracting.
func BatchFingerprint(inputs []Input) string {
	digests := make([]FileDigest, len(inputs))
	for i, in := range inputs {
		digests[i] = FileDigest{Name: in.Name, SHA256: Digest(in.Data)}
	}
	return Fingerprint(digests)
}

// ExtractBatch processes inputs sequentially in upload order. A file that
// fails to decode is reported and the batch continues; files of an
// unrecognized format are reported as unsupported and left out of the
// aggregated text.
func (p *Pipeline) ExtractBatch(ctx context.Context, inputs []Input) (*Batch, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyBatch
	}
	if p.maxFiles > 0 && len(inputs) > p.maxFiles {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyFiles, len(inputs), p.maxFiles)
	}

	start := time.Now()
	batch := &Batch{
		Documents: make([]models.ExtractedDocument, 0, len(inputs)),
		Reports:   make([]models.FileReport, 0, len(inputs)),
	}
	sections := make([]Section, 0, len(inputs))
	digests := make([]FileDigest, 0, len(inputs))

	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		digest := Digest(in.Data)
		digests = append(digests, FileDigest{Name: in.Name, SHA256: digest})

		doc := models.ExtractedDocument{
			Position: i,
			FileID:   in.FileID,
			Name:     in.Name,
			SHA256:   digest,
		}
		report := models.FileReport{FileID: in.FileID, Name: in.Name}

		text, format, err := p.extractor.Extract(ctx, in.Name, in.ContentType, in.Data)
		doc.Format = format
		report.Format = format

		switch {
		case errors.Is(err, extract.ErrUnsupportedFormat):
			report.Status = models.FileStatusUnsupported
			report.Message = fmt.Sprintf("unsupported format: %s", in.Name)
			doc.Error = report.Message
			p.logger.Info("unsupported file", zap.String("file", in.Name))

		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			report.Status = models.FileStatusFailed
			report.Message = fmt.Sprintf("could not read file %s", in.Name)
			doc.Error = report.Message
			p.logger.Warn("extraction failed",
				zap.String("file", in.Name),
				zap.String("format", string(format)),
				zap.Error(err),
			)
			sections = append(sections, Section{Name: in.Name})

		default:
			report.Status = models.FileStatusExtracted
			report.Chars = utf8.RuneCountInString(text)
			doc.Text = text
			sections = append(sections, Section{Name: in.Name, Text: text})
		}

		batch.Documents = append(batch.Documents, doc)
		batch.Reports = append(batch.Reports, report)
	}

	batch.Text = Aggregate(sections)
	batch.Fingerprint = Fingerprint(digests)
	batch.Elapsed = time.Since(start)

	p.logger.Info("batch extracted",
		zap.Int("files", len(inputs)),
		zap.Int("failed", batch.Failed()),
		zap.Int("chars", utf8.RuneCountInString(batch.Text)),
		zap.Duration("elapsed", batch.Elapsed),
	)
	return batch, nil
}
