// handlers_process.go - Summarization and translation handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ProcessHandlerImpl implements the ProcessHandler interface
type ProcessHandlerImpl struct {
	sessions SessionManager
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(sessions SessionManager) ProcessHandler {
	return &ProcessHandlerImpl{sessions: sessions}
}

// HandleSummarize summarizes the session text, or the text in the body when
// one is given. Too little text yields a 422 warning.
func (h *ProcessHandlerImpl) HandleSummarize(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	var req summarizeRequest
	if err := bindOptional(c, &req); err != nil {
		return err
	}

	h.sessions.TouchSession(id)
	summary, err := h.sessions.Summarize(c.Request().Context(), id, req.Text)
	if err != nil {
		return mapError(err, id)
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": summary})
}

// HandleTranslate translates the session text, or the text in the body, into
// the requested language. Backend failures yield a 503 with a transient
// message.
func (h *ProcessHandlerImpl) HandleTranslate(c echo.Context) error {
	id := c.Param("sessionId")
	if id == "" {
		return NewValidationError("sessionId")
	}

	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	h.sessions.TouchSession(id)
	translation, lang, err := h.sessions.Translate(c.Request().Context(), id, req.Target, req.Text)
	if err != nil {
		return mapError(err, id)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"translation": translation,
		"language":    string(lang),
	})
}

// bindOptional binds a JSON body when there is one.
func bindOptional(c echo.Context, v interface{}) error {
	if c.Request().ContentLength == 0 {
		return nil
	}
	if err := c.Bind(v); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	return nil
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type translateRequest struct {
	Target string `json:"target"`
	Text   string `json:"text"`
}

func (r *translateRequest) validate() error {
	if r.Target == "" {
		return NewValidationError("target")
	}
	return nil
}
