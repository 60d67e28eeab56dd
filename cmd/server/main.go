package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unibrain/backend/internal/api"
	"github.com/unibrain/backend/internal/config"
	"github.com/unibrain/backend/internal/extract"
	"github.com/unibrain/backend/internal/llm"
	"github.com/unibrain/backend/internal/pipeline"
	"github.com/unibrain/backend/internal/session"
	"github.com/unibrain/backend/internal/storage"
	"github.com/unibrain/backend/internal/summarize"
	"github.com/unibrain/backend/internal/translate"
	"github.com/unibrain/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Config lives next to the executable
	exePath, err := os.Executable()
	if err != nil {
		log.Fatalf("failed to get executable path: %v", err)
	}
	configPath := filepath.Join(filepath.Dir(exePath), "unibrain.yaml")
	if p := os.Getenv("UNIBRAIN_CONFIG"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := newLogger(cfg.Advanced)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()
	api.ShowErrorDetails = cfg.Advanced.LogLevel == "debug"

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("failed to create directories", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// =========
	// Storage
	// =========
	fileStore, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}

	// =========
	// Extraction
	// =========
	var ocr extract.OCREngine
	tesseract, err := extract.NewTesseractEngine(cfg.Extraction.OCRLanguages...)
	if err != nil {
		logger.Warn("OCR unavailable, image uploads will fail", zap.Error(err))
	} else {
		defer tesseract.Close()
		ocr = tesseract
	}

	registry := extract.NewRegistry(ocr, logger)
	if cfg.Extraction.EnableCache {
		cache, err := extract.OpenCache(cfg.Extraction.CachePath)
		if err != nil {
			logger.Warn("extraction cache disabled", zap.String("path", cfg.Extraction.CachePath), zap.Error(err))
		} else {
			defer cache.Close()
			registry.UseCache(cache)
		}
	}
	batches := pipeline.New(registry, cfg.Extraction.MaxFilesPerBatch, logger)

	// =========
	// Post-processing
	// =========
	summarizer, translator, err := newPostProcessors(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize post-processors", zap.Error(err))
	}

	// =========
	// Sessions
	// =========
	sessionMgr := session.NewManager(fileStore, batches, session.Options{
		TempDir:     cfg.GetTempDir(),
		MaxSessions: cfg.Session.MaxSessions,
		Summarizer:  summarizer,
		Translator:  translator,
		Logger:      logger,
	})
	defer sessionMgr.Close()
	sessionMgr.StartCleanup(ctx,
		time.Duration(cfg.Session.CleanupIntervalMinutes)*time.Minute,
		time.Duration(cfg.Session.TimeoutMinutes)*time.Minute,
	)

	// =========
	// HTTP
	// =========
	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e, cfg.Server, cfg.Advanced, logger)
	api.RegisterRoutes(e, api.NewHandlers(&api.Dependencies{
		Store:    fileStore,
		Sessions: sessionMgr,
		Version:  Version,
		Logger:   logger,
	}))

	if web.HasEmbeddedFiles() {
		if err := web.RegisterStaticRoutes(e); err != nil {
			logger.Warn("failed to register static routes", zap.Error(err))
		}
	}

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	logger.Info("UniBrain server starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("config", configPath),
		zap.String("listen", "http://"+cfg.GetServerAddr()),
		zap.String("data_dir", cfg.GetDataDir()),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("summarizer", cfg.Summarizer.Provider),
		zap.String("translator", cfg.Translator.Provider),
	)

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg config.AdvancedConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.LogFormat == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func newStore(ctx context.Context, cfg *config.AppConfig) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return storage.NewS3Store(ctx, cfg.Storage.S3)
	case "", "local":
		return storage.NewLocalStore(cfg.GetUploadDir())
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func newPostProcessors(cfg *config.AppConfig, logger *zap.Logger) (*summarize.Service, *translate.Service, error) {
	needsModel := cfg.Summarizer.Provider != "heuristic" || cfg.Translator.Provider != "libretranslate"

	var model llms.Model
	if needsModel {
		m, err := llm.New(cfg.LLM)
		if err != nil {
			return nil, nil, err
		}
		model = m
	}

	var sumBackend summarize.Summarizer
	switch cfg.Summarizer.Provider {
	case "heuristic":
		sumBackend = summarize.NewHeuristicSummarizer()
	case "", "llm":
		sumBackend = summarize.NewLLMSummarizer(model, cfg.LLM.Temperature)
	default:
		return nil, nil, fmt.Errorf("unknown summarizer provider %q", cfg.Summarizer.Provider)
	}
	summarizer := summarize.NewService(sumBackend, summarize.Options{
		PrefixChars: cfg.Summarizer.PrefixChars,
		MinWords:    cfg.Summarizer.MinWords,
		Bounds: summarize.Bounds{
			MinLength: cfg.Summarizer.MinLength,
			MaxLength: cfg.Summarizer.MaxLength,
		},
	}, logger)

	var trBackend translate.Translator
	switch cfg.Translator.Provider {
	case "libretranslate":
		trBackend = translate.NewLibreTranslator(cfg.Translator.Endpoint, cfg.Translator.APIKey,
			time.Duration(cfg.Translator.TimeoutSeconds)*time.Second)
	case "", "llm":
		trBackend = translate.NewLLMTranslator(model, cfg.LLM.Temperature)
	default:
		return nil, nil, fmt.Errorf("unknown translator provider %q", cfg.Translator.Provider)
	}
	translator := translate.NewService(trBackend, cfg.Translator.PrefixChars, logger)

	return summarizer, translator, nil
}
