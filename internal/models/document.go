// Package models contains domain types for the UniBrain document helper.
package models

import "strings"

// Format is the class of document an uploaded file belongs to.
type Format string

const (
	FormatImage Format = "image"
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatPPTX  Format = "pptx"
)

// Language is a translation target.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// SupportedLanguages lists the accepted translation targets.
var SupportedLanguages = []Language{LanguageArabic, LanguageEnglish}

// ParseLanguage normalizes a language code. The second return is false for
// anything outside SupportedLanguages.
func ParseLanguage(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range SupportedLanguages {
		if string(l) == code {
			return l, true
		}
	}
	return "", false
}

// ExtractedDocument is the text pulled out of one uploaded file.
type ExtractedDocument struct {
	Position int    `json:"position" msgpack:"position"`
	FileID   string `json:"fileId" msgpack:"fileId"`
	Name     string `json:"name" msgpack:"name"`
	Format   Format `json:"format,omitempty" msgpack:"format,omitempty"`
	SHA256   string `json:"sha256" msgpack:"sha256"`
	Text     string `json:"text" msgpack:"text"`
	Error    string `json:"error,omitempty" msgpack:"error,omitempty"`
}

// ExportedDocument is a download-ready byte buffer.
type ExportedDocument struct {
	FileName    string
	ContentType string
	Data        []byte
}
