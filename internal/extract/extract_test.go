package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unibrain/backend/internal/models"
	"github.com/unibrain/backend/internal/testutil"
)

type stubOCR struct {
	fragments []string
	err       error
	calls     int
}

func (s *stubOCR) Recognize(ctx context.Context, img []byte) ([]string, error) {
	s.calls++
	return s.fragments, s.err
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		contentType string
		want        models.Format
		wantErr     bool
	}{
		{"png", "scan.png", "", models.FormatImage, false},
		{"upper jpg", "SCAN.JPG", "", models.FormatImage, false},
		{"jpeg", "photo.jpeg", "", models.FormatImage, false},
		{"pdf", "paper.pdf", "", models.FormatPDF, false},
		{"docx", "essay.docx", "", models.FormatDOCX, false},
		{"pptx", "deck.pptx", "", models.FormatPPTX, false},
		{"extension beats content type", "deck.pptx", "application/pdf", models.FormatPPTX, false},
		{"content type fallback", "upload", "application/pdf; charset=binary", models.FormatPDF, false},
		{"legacy doc", "old.doc", "application/msword", "", true},
		{"text file", "notes.txt", "text/plain", "", true},
		{"no extension", "README", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.file, tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractors_EmptyContent(t *testing.T) {
	ctx := context.Background()
	ocr := &stubOCR{}

	tests := []struct {
		name string
		ext  Extractor
		data []byte
	}{
		{"image zero bytes", NewImageExtractor(ocr), nil},
		{"image without text", NewImageExtractor(ocr), testutil.BuildPNG(4, 4)},
		{"pdf zero bytes", NewPDFExtractor(), nil},
		{"pdf without pages", NewPDFExtractor(), testutil.BuildPDF()},
		{"pdf with blank page", NewPDFExtractor(), testutil.BuildPDF([]string{})},
		{"docx zero bytes", NewDOCXExtractor(), nil},
		{"docx without paragraphs", NewDOCXExtractor(), testutil.BuildDOCX()},
		{"pptx zero bytes", NewPPTXExtractor(), nil},
		{"pptx without slides", NewPPTXExtractor(), testutil.BuildPPTX()},
		{"pptx with picture only", NewPPTXExtractor(), testutil.BuildPPTX(testutil.Slide{Pictures: 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.ext.Extract(ctx, tt.data)
			require.NoError(t, err)
			assert.Equal(t, "", text)
		})
	}
}

func TestImageExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("joins fragments with single spaces", func(t *testing.T) {
		ocr := &stubOCR{fragments: []string{"Hello\n", "  world", "", "again"}}
		text, err := NewImageExtractor(ocr).Extract(ctx, testutil.BuildPNG(8, 8))
		require.NoError(t, err)
		assert.Equal(t, "Hello world again", text)
		assert.Equal(t, 1, ocr.calls)
	})

	t.Run("accepts jpeg", func(t *testing.T) {
		ocr := &stubOCR{fragments: []string{"مرحبا"}}
		text, err := NewImageExtractor(ocr).Extract(ctx, testutil.BuildJPEG(8, 8))
		require.NoError(t, err)
		assert.Equal(t, "مرحبا", text)
	})

	t.Run("rejects non-image bytes before OCR", func(t *testing.T) {
		ocr := &stubOCR{fragments: []string{"x"}}
		_, err := NewImageExtractor(ocr).Extract(ctx, []byte("not an image"))
		assert.Error(t, err)
		assert.Zero(t, ocr.calls)
	})

	t.Run("rejects oversized dimensions before decoding", func(t *testing.T) {
		ocr := &stubOCR{fragments: []string{"x"}}
		_, err := NewImageExtractor(ocr).Extract(ctx, testutil.BuildPNGHeader(1<<29, 1<<30))
		assert.ErrorIs(t, err, ErrImageTooLarge)
		assert.Zero(t, ocr.calls)
	})

	t.Run("propagates OCR failure", func(t *testing.T) {
		ocr := &stubOCR{err: errors.New("engine crashed")}
		_, err := NewImageExtractor(ocr).Extract(ctx, testutil.BuildPNG(8, 8))
		assert.Error(t, err)
	})

	t.Run("missing engine", func(t *testing.T) {
		_, err := NewImageExtractor(nil).Extract(ctx, testutil.BuildPNG(8, 8))
		assert.ErrorIs(t, err, ErrNoOCREngine)
	})
}

func TestPDFExtractor(t *testing.T) {
	ctx := context.Background()
	e := NewPDFExtractor()

	t.Run("one line per page", func(t *testing.T) {
		data := testutil.BuildPDF([]string{"First page line"}, []string{"Second page line"})
		text, err := e.Extract(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, "First page line\nSecond page line\n", text)
	})

	t.Run("blank pages contribute nothing", func(t *testing.T) {
		data := testutil.BuildPDF([]string{"alpha"}, []string{}, []string{"omega"})
		text, err := e.Extract(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, "alpha\nomega\n", text)
	})

	t.Run("corrupt file", func(t *testing.T) {
		_, err := e.Extract(ctx, []byte("%PDF-1.4 truncated"))
		assert.Error(t, err)
	})
}

func TestDOCXExtractor(t *testing.T) {
	ctx := context.Background()
	e := NewDOCXExtractor()

	t.Run("paragraphs in order with trailing newline", func(t *testing.T) {
		data := testutil.BuildDOCX("Introduction", "Name\tValue", "", "الخلاصة")
		text, err := e.Extract(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, "Introduction\nName\tValue\n\nالخلاصة\n", text)
	})

	t.Run("not a zip", func(t *testing.T) {
		_, err := e.Extract(ctx, []byte("plain text"))
		assert.Error(t, err)
	})

	t.Run("zip without document part", func(t *testing.T) {
		_, err := e.Extract(ctx, testutil.BuildPPTX(testutil.Slide{Shapes: []string{"x"}}))
		assert.Error(t, err)
	})
}

func TestPPTXExtractor(t *testing.T) {
	ctx := context.Background()
	e := NewPPTXExtractor()

	t.Run("only text-bearing shapes contribute", func(t *testing.T) {
		data := testutil.BuildPPTX(
			testutil.Slide{Shapes: []string{"Hello deck"}},
			testutil.Slide{Pictures: 2},
		)
		text, err := e.Extract(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, "Hello deck\n", text)
	})

	t.Run("shapes in stored order, paragraphs joined by newline", func(t *testing.T) {
		data := testutil.BuildPPTX(
			testutil.Slide{Shapes: []string{"Title", "point one\npoint two"}, Pictures: 1},
			testutil.Slide{Shapes: []string{"Closing"}},
		)
		text, err := e.Extract(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, "Title\npoint one\npoint two\nClosing\n", text)
	})

	t.Run("presentation order wins over file names", func(t *testing.T) {
		slides := []testutil.Slide{
			{Shapes: []string{"stored first"}},
			{Shapes: []string{"stored second"}},
		}
		data := testutil.BuildPPTXWithOrder(slides, []int{1, 0})
		text, err := e.Extract(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, "stored second\nstored first\n", text)
	})

	t.Run("not a slide deck", func(t *testing.T) {
		_, err := e.Extract(ctx, testutil.BuildDOCX("x"))
		assert.Error(t, err)
	})
}

func TestExtraction_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(&stubOCR{fragments: []string{"same"}}, nil)

	inputs := map[string][]byte{
		"a.png":  testutil.BuildPNG(4, 4),
		"a.pdf":  testutil.BuildPDF([]string{"page"}),
		"a.docx": testutil.BuildDOCX("para"),
		"a.pptx": testutil.BuildPPTX(testutil.Slide{Shapes: []string{"shape"}}),
	}
	for name, data := range inputs {
		first, _, err := r.Extract(ctx, name, "", data)
		require.NoError(t, err, name)
		second, _, err := r.Extract(ctx, name, "", data)
		require.NoError(t, err, name)
		assert.Equal(t, first, second, name)
	}
}
