// handlers_session.go - Session lifecycle handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SessionHandlerImpl implements the SessionHandler interface
type SessionHandlerImpl struct {
	sessions SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions SessionManager) SessionHandler {
	return &SessionHandlerImpl{sessions: sessions}
}

// HandleCreateSession starts an empty session
func (h *SessionHandlerImpl) HandleCreateSession(c echo.Context) error {
	sess, err := h.sessions.CreateSession()
	if err != nil {
		return NewInternalError("failed to create session", err)
	}
	return c.JSON(http.StatusCreated, sess)
}

// HandleGetSession returns the current state of a session
func (h *SessionHandlerImpl) HandleGetSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	sess, ok := h.sessions.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	h.sessions.TouchSession(id)
	return c.JSON(http.StatusOK, sess)
}

// HandleDeleteSession drops a session and its documents
func (h *SessionHandlerImpl) HandleDeleteSession(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	if !h.sessions.DeleteSession(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSessionKeepAlive keeps a session from being cleaned up while the
// page is open
func (h *SessionHandlerImpl) HandleSessionKeepAlive(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	if !h.sessions.TouchSession(id) {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
