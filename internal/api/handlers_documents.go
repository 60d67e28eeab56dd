// handlers_documents.go - Per-file extraction results
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/unibrain/backend/internal/models"
)

// DocumentHandlerImpl implements the DocumentHandler interface
type DocumentHandlerImpl struct {
	sessions SessionManager
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(sessions SessionManager) DocumentHandler {
	return &DocumentHandlerImpl{sessions: sessions}
}

func (h *DocumentHandlerImpl) documents(c echo.Context) (string, []models.ExtractedDocument, error) {
	id := c.Param("sessionId")
	if id == "" {
		return "", nil, NewValidationError("sessionId")
	}
	docs, err := h.sessions.Documents(c.Request().Context(), id, c.QueryParam("q"))
	if err != nil {
		return "", nil, mapError(err, id)
	}
	h.sessions.TouchSession(id)
	return id, docs, nil
}

// HandleGetDocuments returns the extracted documents of a session in upload
// order. ?q= keeps documents whose name or text contains the query.
func (h *DocumentHandlerImpl) HandleGetDocuments(c echo.Context) error {
	id, docs, err := h.documents(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessionId": id,
		"documents": docs,
		"total":     len(docs),
	})
}

// HandleGetDocumentsMsgpack returns documents in MessagePack format
func (h *DocumentHandlerImpl) HandleGetDocumentsMsgpack(c echo.Context) error {
	id, docs, err := h.documents(c)
	if err != nil {
		return err
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"sessionId": id,
		"documents": docs,
		"total":     len(docs),
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}
