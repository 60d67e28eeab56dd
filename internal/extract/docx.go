package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/unibrain/backend/internal/models"
)

const docxMainPart = "word/document.xml"

var (
	docxTabs   = map[string]bool{"tab": true}
	docxBreaks = map[string]bool{"br": true, "cr": true}
	// Text boxes and deleted revisions are not part of the body text.
	docxSkip = map[string]bool{"txbxContent": true, "del": true, "pPr": true, "rPr": true}
)

// DOCXExtractor reads the body paragraphs of a word-processor document.
type DOCXExtractor struct{}

// NewDOCXExtractor creates a DOCX extractor.
func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

func (e *DOCXExtractor) Name() string          { return "docx" }
func (e *DOCXExtractor) Format() models.Format { return models.FormatDOCX }

// Extract writes each top-level body paragraph followed by a newline.
func (e *DOCXExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	pkg, err := openPackage(data)
	if err != nil {
		return "", err
	}
	if !pkg.has(docxMainPart) {
		return "", fmt.Errorf("not a word document: missing %s", docxMainPart)
	}

	doc, err := pkg.parse(docxMainPart)
	if err != nil {
		return "", err
	}

	body := xmlquery.FindOne(doc, "//*[local-name()='document']/*[local-name()='body']")
	if body == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, p := range childElements(body, "p") {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		sb.WriteString(runText(p, "t", docxTabs, docxBreaks, docxSkip))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
