// handlers_export.go - Download handlers
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/unibrain/backend/internal/export"
	"github.com/unibrain/backend/internal/models"
)

// ExportHandlerImpl implements the ExportHandler interface
type ExportHandlerImpl struct {
	sessions SessionManager
}

// NewExportHandler creates a new export handler
func NewExportHandler(sessions SessionManager) ExportHandler {
	return &ExportHandlerImpl{sessions: sessions}
}

// Export sources of a session.
const (
	sourceText        = "text"
	sourceSummary     = "summary"
	sourceTranslation = "translation"
)

type exportSource struct {
	wordName string
	title    string
}

var exportSources = map[string]exportSource{
	sourceText:        {wordName: export.ExtractWordName, title: export.ExtractTitle},
	sourceSummary:     {wordName: export.SummaryWordName, title: export.SummaryTitle},
	sourceTranslation: {wordName: export.TranslationName, title: export.TranslationTitle},
}

// HandleExportSession downloads the session text, summary or translation.
// Query: format=txt|docx|xlsx (default txt), source=text|summary|translation
// (default text). xlsx is only available for the extracted text.
func (h *ExportHandlerImpl) HandleExportSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	format, err := export.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return NewValidationError("format")
	}
	source := strings.ToLower(c.QueryParam("source"))
	if source == "" {
		source = sourceText
	}
	src, ok := exportSources[source]
	if !ok {
		return NewValidationError("source")
	}

	sess, ok := h.sessions.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	h.sessions.TouchSession(id)

	var text string
	switch source {
	case sourceSummary:
		text = sess.Summary
	case sourceTranslation:
		text = sess.Translation
	default:
		text = sess.Text
	}
	if text == "" {
		return NewBadRequestError(fmt.Sprintf("nothing to export: no %s available", source), nil)
	}

	var doc *models.ExportedDocument
	switch format {
	case export.FormatXLSX:
		if source != sourceText {
			return NewBadRequestError("xlsx export is only available for extracted text", nil)
		}
		docs, err := h.sessions.Documents(c.Request().Context(), id, "")
		if err != nil {
			return mapError(err, id)
		}
		doc, err = export.Workbook(export.ExtractSheetName, docs)
		if err != nil {
			return NewInternalError("failed to build workbook", err)
		}
	case export.FormatWord:
		doc, err = export.Word(src.wordName, src.title, text)
		if err != nil {
			return NewInternalError("failed to build document", err)
		}
	default:
		doc = export.Text(textName(src.wordName), text)
	}

	return download(c, doc)
}

// HandleExport converts posted text into a download without a session.
func (h *ExportHandlerImpl) HandleExport(c echo.Context) error {
	var req exportRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return NewValidationError("format")
	}

	var doc *models.ExportedDocument
	switch format {
	case export.FormatWord:
		name := req.Name
		if name == "" {
			name = export.ExtractWordName
		}
		title := req.Title
		if title == "" {
			title = export.ExtractTitle
		}
		doc, err = export.Word(name, title, req.Text)
		if err != nil {
			return NewInternalError("failed to build document", err)
		}
	case export.FormatText:
		doc = export.Text(req.Name, req.Text)
	default:
		return NewBadRequestError("xlsx export needs a session", nil)
	}

	return download(c, doc)
}

func download(c echo.Context, doc *models.ExportedDocument) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	return c.Blob(http.StatusOK, doc.ContentType, doc.Data)
}

// textName turns a .docx download name into its .txt sibling.
func textName(wordName string) string {
	if wordName == export.ExtractWordName {
		return export.ExtractTextName
	}
	return strings.TrimSuffix(wordName, ".docx") + ".txt"
}

type exportRequest struct {
	Format string `json:"format"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Text   string `json:"text"`
}

func (r *exportRequest) validate() error {
	if r.Text == "" {
		return NewValidationError("text")
	}
	return nil
}
