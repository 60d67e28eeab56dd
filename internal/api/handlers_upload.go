// handlers_upload.go - Upload batch handlers
package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/unibrain/backend/internal/models"
	"github.com/unibrain/backend/internal/storage"
)

// UploadHandlerImpl implements the UploadHandler interface
type UploadHandlerImpl struct {
	store    storage.Store
	sessions SessionManager
	logger   *zap.Logger
}

// NewUploadHandler creates a new upload handler instance
func NewUploadHandler(store storage.Store, sessions SessionManager, logger *zap.Logger) UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandlerImpl{
		store:    store,
		sessions: sessions,
		logger:   logger.Named("upload"),
	}
}

// HandleUploadFiles accepts a multipart batch. Files are taken from the
// repeated "files" field in the order the client sent them.
func (h *UploadHandlerImpl) HandleUploadFiles(c echo.Context) error {
	id := c.Param("sessionId")
	if _, ok := h.sessions.GetSession(id); !ok {
		return NewNotFoundError("session", id)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form", err)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return NewValidationError("files")
	}

	ctx := c.Request().Context()
	saved := make([]*models.FileInfo, 0, len(headers))
	for _, fh := range headers {
		info, err := h.saveMultipart(ctx, fh)
		if err != nil {
			h.discard(saved)
			return NewInternalError("failed to save file", err)
		}
		saved = append(saved, info)
	}

	return h.process(c, id, saved)
}

func (h *UploadHandlerImpl) saveMultipart(ctx context.Context, fh *multipart.FileHeader) (*models.FileInfo, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	info, err := h.store.Save(ctx, filepath.Base(fh.Filename), src)
	if err != nil {
		return nil, err
	}
	return withContentType(info, fh.Header.Get("Content-Type")), nil
}

// HandleUploadFilesJSON accepts a batch of base64-encoded files
func (h *UploadHandlerImpl) HandleUploadFilesJSON(c echo.Context) error {
	id := c.Param("sessionId")
	if _, ok := h.sessions.GetSession(id); !ok {
		return NewNotFoundError("session", id)
	}

	var req uploadBatchRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	decoded := make([][]byte, len(req.Files))
	for i, f := range req.Files {
		data, err := base64.StdEncoding.DecodeString(f.Data)
		if err != nil {
			return NewBadRequestError(fmt.Sprintf("invalid base64 data for %s", f.Name), err)
		}
		decoded[i] = data
	}

	ctx := c.Request().Context()
	saved := make([]*models.FileInfo, 0, len(req.Files))
	for i, f := range req.Files {
		info, err := h.store.SaveBytes(ctx, filepath.Base(f.Name), decoded[i])
		if err != nil {
			h.discard(saved)
			return NewInternalError("failed to save file", err)
		}
		saved = append(saved, withContentType(info, f.ContentType))
	}

	return h.process(c, id, saved)
}

func (h *UploadHandlerImpl) process(c echo.Context, id string, files []*models.FileInfo) error {
	h.sessions.TouchSession(id)
	sess, err := h.sessions.ProcessFiles(c.Request().Context(), id, files)
	if err != nil {
		return mapError(err, id)
	}
	h.logger.Info("batch processed",
		zap.String("session", id),
		zap.Int("files", sess.FileCount),
		zap.Bool("reused", sess.Reused),
	)
	return c.JSON(http.StatusOK, sess)
}

func (h *UploadHandlerImpl) discard(files []*models.FileInfo) {
	for _, f := range files {
		h.store.Delete(context.Background(), f.ID)
	}
}

// withContentType returns a copy of info carrying the content type the
// client declared, when it declared one.
func withContentType(info *models.FileInfo, declared string) *models.FileInfo {
	f := *info
	if declared != "" && declared != "application/octet-stream" {
		f.ContentType = declared
	}
	return &f
}

// Request types with validation

type uploadFile struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        string `json:"data"` // Base64-encoded
}

type uploadBatchRequest struct {
	Files []uploadFile `json:"files"`
}

func (r *uploadBatchRequest) validate() error {
	if len(r.Files) == 0 {
		return NewValidationError("files")
	}
	for _, f := range r.Files {
		if f.Name == "" {
			return NewValidationError("name")
		}
	}
	return nil
}
