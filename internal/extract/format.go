package extract

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"

	"github.com/unibrain/backend/internal/models"
)

// ErrUnsupportedFormat is returned for files outside the recognized set.
var ErrUnsupportedFormat = errors.New("unsupported format")

var extensionFormats = map[string]models.Format{
	".png":  models.FormatImage,
	".jpg":  models.FormatImage,
	".jpeg": models.FormatImage,
	".pdf":  models.FormatPDF,
	".docx": models.FormatDOCX,
	".pptx": models.FormatPPTX,
}

var contentTypeFormats = map[string]models.Format{
	"image/png":       models.FormatImage,
	"image/jpeg":      models.FormatImage,
	"image/jpg":       models.FormatImage,
	"application/pdf": models.FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   models.FormatDOCX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": models.FormatPPTX,
}

// DetectFormat maps a file to its format class. The extension wins; the
// declared content type is only consulted when the extension is unknown.
func DetectFormat(name, contentType string) (models.Format, error) {
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(name))]; ok {
		return f, nil
	}

	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if f, ok := contentTypeFormats[strings.ToLower(mediaType)]; ok {
				return f, nil
			}
		}
	}

	return "", ErrUnsupportedFormat
}

// SupportedExtensions lists the accepted file extensions, without dots.
func SupportedExtensions() []string {
	return []string{"png", "jpg", "jpeg", "pdf", "docx", "pptx"}
}
