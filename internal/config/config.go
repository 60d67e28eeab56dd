// Package config provides YAML-based configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. UNIBRAIN_SERVER_PORT.
const EnvPrefix = "UNIBRAIN"

// AppConfig represents the root configuration structure
type AppConfig struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Storage    StorageConfig    `mapstructure:"storage" yaml:"storage"`
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`
	Summarizer SummarizerConfig `mapstructure:"summarizer" yaml:"summarizer"`
	Translator TranslatorConfig `mapstructure:"translator" yaml:"translator"`
	LLM        LLMConfig        `mapstructure:"llm" yaml:"llm"`
	Session    SessionConfig    `mapstructure:"session" yaml:"session"`
	Advanced   AdvancedConfig   `mapstructure:"advanced" yaml:"advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `mapstructure:"port" yaml:"port"`
	BindAddress  string `mapstructure:"bind_address" yaml:"bind_address"`
	EnableCORS   bool   `mapstructure:"enable_cors" yaml:"enable_cors"`
	AllowOrigins string `mapstructure:"allow_origins" yaml:"allow_origins"`
	ReadTimeout  int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeout int    `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	IdleTimeout  int    `mapstructure:"idle_timeout_seconds" yaml:"idle_timeout_seconds"`
	BodyLimit    string `mapstructure:"body_limit" yaml:"body_limit"`
}

// StorageConfig contains upload storage settings
type StorageConfig struct {
	Backend          string   `mapstructure:"backend" yaml:"backend"` // "local" or "s3"
	DataDirectory    string   `mapstructure:"data_directory" yaml:"data_directory"`
	UploadsDirectory string   `mapstructure:"uploads_directory" yaml:"uploads_directory"`
	TempDirectory    string   `mapstructure:"temp_directory" yaml:"temp_directory"`
	S3               S3Config `mapstructure:"s3" yaml:"s3"`
}

// S3Config holds S3 settings for the "s3" storage backend.
type S3Config struct {
	Region    string `mapstructure:"region" yaml:"region"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key"`
	SecretKey string `mapstructure:"secret_key" yaml:"secret_key"`
}

// ExtractionConfig contains text extraction settings
type ExtractionConfig struct {
	OCRLanguages     []string `mapstructure:"ocr_languages" yaml:"ocr_languages"`
	EnableCache      bool     `mapstructure:"enable_cache" yaml:"enable_cache"`
	CachePath        string   `mapstructure:"cache_path" yaml:"cache_path"`
	MaxFilesPerBatch int      `mapstructure:"max_files_per_batch" yaml:"max_files_per_batch"`
}

// SummarizerConfig contains summarization gate and backend settings
type SummarizerConfig struct {
	Provider    string `mapstructure:"provider" yaml:"provider"` // "llm" or "heuristic"
	PrefixChars int    `mapstructure:"prefix_chars" yaml:"prefix_chars"`
	MinWords    int    `mapstructure:"min_words" yaml:"min_words"`
	MinLength   int    `mapstructure:"min_length" yaml:"min_length"`
	MaxLength   int    `mapstructure:"max_length" yaml:"max_length"`
}

// TranslatorConfig contains translation gate and backend settings
type TranslatorConfig struct {
	Provider       string `mapstructure:"provider" yaml:"provider"` // "llm" or "libretranslate"
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	PrefixChars    int    `mapstructure:"prefix_chars" yaml:"prefix_chars"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// LLMConfig selects the language model used by the llm providers
type LLMConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"` // "ollama" or "openai"
	ServerURL   string  `mapstructure:"server_url" yaml:"server_url"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Token       string  `mapstructure:"token" yaml:"token"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

// SessionConfig contains session lifetime settings
type SessionConfig struct {
	TimeoutMinutes         int `mapstructure:"timeout_minutes" yaml:"timeout_minutes"`
	CleanupIntervalMinutes int `mapstructure:"cleanup_interval_minutes" yaml:"cleanup_interval_minutes"`
	MaxSessions            int `mapstructure:"max_sessions" yaml:"max_sessions"`
}

// AdvancedConfig contains logging and tuning options
type AdvancedConfig struct {
	LogLevel             string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat            string `mapstructure:"log_format" yaml:"log_format"` // "json" or "console"
	EnableRequestLogging bool   `mapstructure:"enable_request_logging" yaml:"enable_request_logging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8501,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  120,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "200M",
		},
		Storage: StorageConfig{
			Backend:          "local",
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			TempDirectory:    "./data/temp",
			S3: S3Config{
				Region: "us-east-1",
				Bucket: "unibrain-uploads",
				Prefix: "uploads/",
			},
		},
		Extraction: ExtractionConfig{
			OCRLanguages:     []string{"ara", "eng"},
			EnableCache:      true,
			CachePath:        "./data/cache/extract.db",
			MaxFilesPerBatch: 20,
		},
		Summarizer: SummarizerConfig{
			Provider:    "llm",
			PrefixChars: 2000,
			MinWords:    31,
			MinLength:   50,
			MaxLength:   200,
		},
		Translator: TranslatorConfig{
			Provider:       "llm",
			Endpoint:       "http://localhost:5000",
			PrefixChars:    2000,
			TimeoutSeconds: 60,
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			ServerURL:   "http://localhost:11434",
			Model:       "llama3.1",
			Temperature: 0.2,
		},
		Session: SessionConfig{
			TimeoutMinutes:         30,
			CleanupIntervalMinutes: 5,
			MaxSessions:            100,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFormat:            "json",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file is created
// with the defaults first.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := DefaultConfig().Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// setDefaults registers every default key so AutomaticEnv can override keys
// that are absent from the file.
func setDefaults(v *viper.Viper, d *AppConfig) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.bind_address", d.Server.BindAddress)
	v.SetDefault("server.enable_cors", d.Server.EnableCORS)
	v.SetDefault("server.allow_origins", d.Server.AllowOrigins)
	v.SetDefault("server.read_timeout_seconds", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout_seconds", d.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout_seconds", d.Server.IdleTimeout)
	v.SetDefault("server.body_limit", d.Server.BodyLimit)

	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.data_directory", d.Storage.DataDirectory)
	v.SetDefault("storage.uploads_directory", d.Storage.UploadsDirectory)
	v.SetDefault("storage.temp_directory", d.Storage.TempDirectory)
	v.SetDefault("storage.s3.region", d.Storage.S3.Region)
	v.SetDefault("storage.s3.bucket", d.Storage.S3.Bucket)
	v.SetDefault("storage.s3.prefix", d.Storage.S3.Prefix)
	v.SetDefault("storage.s3.endpoint", d.Storage.S3.Endpoint)
	v.SetDefault("storage.s3.access_key", d.Storage.S3.AccessKey)
	v.SetDefault("storage.s3.secret_key", d.Storage.S3.SecretKey)

	v.SetDefault("extraction.ocr_languages", d.Extraction.OCRLanguages)
	v.SetDefault("extraction.enable_cache", d.Extraction.EnableCache)
	v.SetDefault("extraction.cache_path", d.Extraction.CachePath)
	v.SetDefault("extraction.max_files_per_batch", d.Extraction.MaxFilesPerBatch)

	v.SetDefault("summarizer.provider", d.Summarizer.Provider)
	v.SetDefault("summarizer.prefix_chars", d.Summarizer.PrefixChars)
	v.SetDefault("summarizer.min_words", d.Summarizer.MinWords)
	v.SetDefault("summarizer.min_length", d.Summarizer.MinLength)
	v.SetDefault("summarizer.max_length", d.Summarizer.MaxLength)

	v.SetDefault("translator.provider", d.Translator.Provider)
	v.SetDefault("translator.endpoint", d.Translator.Endpoint)
	v.SetDefault("translator.api_key", d.Translator.APIKey)
	v.SetDefault("translator.prefix_chars", d.Translator.PrefixChars)
	v.SetDefault("translator.timeout_seconds", d.Translator.TimeoutSeconds)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.server_url", d.LLM.ServerURL)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.token", d.LLM.Token)
	v.SetDefault("llm.temperature", d.LLM.Temperature)

	v.SetDefault("session.timeout_minutes", d.Session.TimeoutMinutes)
	v.SetDefault("session.cleanup_interval_minutes", d.Session.CleanupIntervalMinutes)
	v.SetDefault("session.max_sessions", d.Session.MaxSessions)

	v.SetDefault("advanced.log_level", d.Advanced.LogLevel)
	v.SetDefault("advanced.log_format", d.Advanced.LogFormat)
	v.SetDefault("advanced.enable_request_logging", d.Advanced.EnableRequestLogging)
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# UniBrain configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides keeps the short PORT and DATA_DIR variables that
// container platforms set.
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
		c.Storage.UploadsDirectory = filepath.Join(dataDir, "uploads")
		c.Storage.TempDirectory = filepath.Join(dataDir, "temp")
		c.Extraction.CachePath = filepath.Join(dataDir, "cache", "extract.db")
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Storage.DataDirectory)
	resolve(&c.Storage.UploadsDirectory)
	resolve(&c.Storage.TempDirectory)
	resolve(&c.Extraction.CachePath)
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetTempDir returns the directory holding per-session databases
func (c *AppConfig) GetTempDir() string {
	return c.Storage.TempDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.TempDirectory,
	}
	if c.Storage.Backend != "s3" {
		dirs = append(dirs, c.Storage.UploadsDirectory)
	}
	if c.Extraction.EnableCache && c.Extraction.CachePath != "" {
		dirs = append(dirs, filepath.Dir(c.Extraction.CachePath))
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
