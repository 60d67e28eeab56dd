// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/unibrain/backend/internal/models"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// SessionHandler handles session lifecycle operations
type SessionHandler interface {
	HandleCreateSession(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleDeleteSession(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error
}

// UploadHandler accepts upload batches and runs them through extraction
type UploadHandler interface {
	HandleUploadFiles(c echo.Context) error
	HandleUploadFilesJSON(c echo.Context) error
}

// DocumentHandler exposes per-file extraction results
type DocumentHandler interface {
	HandleGetDocuments(c echo.Context) error
	HandleGetDocumentsMsgpack(c echo.Context) error
}

// ProcessHandler handles summarization and translation
type ProcessHandler interface {
	HandleSummarize(c echo.Context) error
	HandleTranslate(c echo.Context) error
}

// ExportHandler builds downloads
type ExportHandler interface {
	HandleExportSession(c echo.Context) error
	HandleExport(c echo.Context) error
}

// SessionManager defines the interface for session management
// This allows mocking in tests
type SessionManager interface {
	CreateSession() (*models.Session, error)
	GetSession(id string) (*models.Session, bool)
	DeleteSession(id string) bool
	TouchSession(id string) bool
	Count() int
	ProcessFiles(ctx context.Context, id string, files []*models.FileInfo) (*models.Session, error)
	Documents(ctx context.Context, id, query string) ([]models.ExtractedDocument, error)
	Summarize(ctx context.Context, id, override string) (string, error)
	Translate(ctx context.Context, id, target, override string) (string, models.Language, error)
}
