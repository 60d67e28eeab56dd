package export

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/unibrain/backend/internal/extract"
	"github.com/unibrain/backend/internal/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"TXT", FormatText, false},
		{"docx", FormatWord, false},
		{"word", FormatWord, false},
		{"xlsx", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestText(t *testing.T) {
	doc := Text("", "نص عربي\nline two")
	assert.Equal(t, ExtractTextName, doc.FileName)
	assert.Equal(t, ContentTypeText, doc.ContentType)
	assert.Equal(t, []byte("نص عربي\nline two"), doc.Data)
}

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestWord(t *testing.T) {
	doc, err := Word(SummaryWordName, SummaryTitle, "First line\nSecond <line> & more\tend")
	require.NoError(t, err)
	assert.Equal(t, "Summary.docx", doc.FileName)
	assert.Equal(t, ContentTypeDOCX, doc.ContentType)

	body := readPart(t, doc.Data, "word/document.xml")
	assert.Equal(t, 2, strings.Count(body, "</w:p>"), "one heading and one paragraph")
	assert.Contains(t, body, `<w:pStyle w:val="Title"/>`)
	assert.Contains(t, body, "Second &lt;line&gt; &amp; more")
	assert.Contains(t, body, "<w:br/>")
	assert.Contains(t, readPart(t, doc.Data, "word/styles.xml"), `w:styleId="Title"`)

	// the document reads back through the extractor
	text, err := extract.NewDOCXExtractor().Extract(context.Background(), doc.Data)
	require.NoError(t, err)
	assert.Equal(t, "Smart Summary\nFirst line\nSecond <line> & more\tend\n", text)
}

func TestWord_EmptyText(t *testing.T) {
	doc, err := Word("", ExtractTitle, "")
	require.NoError(t, err)
	assert.Equal(t, ExtractWordName, doc.FileName)

	text, err := extract.NewDOCXExtractor().Extract(context.Background(), doc.Data)
	require.NoError(t, err)
	assert.Equal(t, ExtractTitle+"\n\n", text)
}

func TestWorkbook(t *testing.T) {
	docs := []models.ExtractedDocument{
		{Position: 0, Name: "lecture.pdf", Format: models.FormatPDF, Text: "one two three"},
		{Position: 1, Name: "broken.docx", Format: models.FormatDOCX, Error: "could not read file broken.docx"},
	}

	doc, err := Workbook("", docs)
	require.NoError(t, err)
	assert.Equal(t, ExtractSheetName, doc.FileName)
	assert.Equal(t, ContentTypeXLSX, doc.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Position", "File", "Format", "Characters", "Words", "Status", "Text"}, rows[0])
	assert.Equal(t, []string{"1", "lecture.pdf", "pdf", "13", "3", "extracted", "one two three"}, rows[1])
	assert.Equal(t, "broken.docx", rows[2][1])
	assert.Equal(t, "could not read file broken.docx", rows[2][5])
}
