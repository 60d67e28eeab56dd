// Package export serializes text into downloadable documents. Nothing here
// touches the filesystem: every function returns an in-memory buffer.
package export

import (
	"errors"
	"strings"

	"github.com/unibrain/backend/internal/models"
)

const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Default download names and titles.
const (
	ExtractTextName  = "UniBrain_Extract.txt"
	ExtractWordName  = "UniBrain_Extract.docx"
	ExtractSheetName = "UniBrain_Extract.xlsx"
	SummaryWordName  = "Summary.docx"
	TranslationName  = "Translation.docx"

	ExtractTitle     = "Extracted Text - UniBrain"
	SummaryTitle     = "Smart Summary"
	TranslationTitle = "Academic Translation"
)

// Format is a download format.
type Format string

const (
	FormatText Format = "txt"
	FormatWord Format = "docx"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned by ParseFormat for anything but txt, docx, xlsx.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat normalizes a requested download format. An empty value means txt.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "txt", "text":
		return FormatText, nil
	case "docx", "word":
		return FormatWord, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", ErrUnknownFormat
}

// Text returns the raw UTF-8 bytes of text.
func Text(name, text string) *models.ExportedDocument {
	if name == "" {
		name = ExtractTextName
	}
	return &models.ExportedDocument{
		FileName:    name,
		ContentType: ContentTypeText,
		Data:        []byte(text),
	}
}
