// routes.go - Route registration helpers
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/unibrain/backend/internal/config"
	"github.com/unibrain/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store    storage.Store
	Sessions SessionManager
	Version  string
	Logger   *zap.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health    HealthHandler
	Session   SessionHandler
	Upload    UploadHandler
	Documents DocumentHandler
	Process   ProcessHandler
	Export    ExportHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Version, deps.Sessions),
		Session:   NewSessionHandler(deps.Sessions),
		Upload:    NewUploadHandler(deps.Store, deps.Sessions, deps.Logger),
		Documents: NewDocumentHandler(deps.Sessions),
		Process:   NewProcessHandler(deps.Sessions),
		Export:    NewExportHandler(deps.Sessions),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Stateless export
	e.POST("/api/export", handlers.Export.HandleExport)

	sessionGroup := e.Group("/api/sessions")
	sessionGroup.POST("", handlers.Session.HandleCreateSession)
	sessionGroup.GET("/:sessionId", handlers.Session.HandleGetSession)
	sessionGroup.DELETE("/:sessionId", handlers.Session.HandleDeleteSession)
	sessionGroup.POST("/:sessionId/keepalive", handlers.Session.HandleSessionKeepAlive)

	sessionGroup.POST("/:sessionId/files", handlers.Upload.HandleUploadFiles)
	sessionGroup.POST("/:sessionId/files/json", handlers.Upload.HandleUploadFilesJSON)

	sessionGroup.GET("/:sessionId/documents", handlers.Documents.HandleGetDocuments)
	sessionGroup.GET("/:sessionId/documents/msgpack", handlers.Documents.HandleGetDocumentsMsgpack)

	sessionGroup.POST("/:sessionId/summarize", handlers.Process.HandleSummarize)
	sessionGroup.POST("/:sessionId/translate", handlers.Process.HandleTranslate)

	sessionGroup.GET("/:sessionId/export", handlers.Export.HandleExportSession)
}

// SetupMiddleware configures the error handler, panic recovery, body limit,
// CORS and request logging.
func SetupMiddleware(e *echo.Echo, server config.ServerConfig, advanced config.AdvancedConfig, logger *zap.Logger) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.Recover())

	if server.BodyLimit != "" {
		e.Use(middleware.BodyLimit(server.BodyLimit))
	}

	if server.EnableCORS {
		origins := strings.Split(server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:  origins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			ExposeHeaders: []string{echo.HeaderContentDisposition},
		}))
	}

	if advanced.EnableRequestLogging && logger != nil {
		reqLogger := logger.Named("http")
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/api/health"
			},
			LogMethod:   true,
			LogURI:      true,
			LogStatus:   true,
			LogLatency:  true,
			LogRemoteIP: true,
			LogError:    true,
			HandleError: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				fields := []zap.Field{
					zap.String("method", v.Method),
					zap.String("uri", v.URI),
					zap.Int("status", v.Status),
					zap.Duration("latency", v.Latency),
					zap.String("remote_ip", v.RemoteIP),
				}
				if v.Error != nil {
					reqLogger.Warn("request", append(fields, zap.Error(v.Error))...)
					return nil
				}
				reqLogger.Info("request", fields...)
				return nil
			},
		}))
	}
}
