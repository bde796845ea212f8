package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Model server hosting the line classifier and name extractor.
	// Empty ModelURL runs on textual heuristics only.
	ModelURL     string
	ModelName    string
	ModelTimeout time.Duration

	// Extraction
	Threshold  float64
	PartyHints []string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Storage
	DataDir string
	DBPath  string

	// PDF
	PDFFallbackPdftotext bool
	OCREnabled           bool
	OCRLanguage          string
}

// fileConfig mirrors Config for the optional YAML overlay. Pointers tell
// "absent" from zero values.
type fileConfig struct {
	Port   *string `yaml:"port"`
	APIKey *string `yaml:"api_key"`
	Model  struct {
		URL     *string `yaml:"url"`
		Name    *string `yaml:"name"`
		Timeout *string `yaml:"timeout"`
	} `yaml:"model"`
	Threshold      *float64 `yaml:"threshold"`
	PartyHints     []string `yaml:"party_hints"`
	WorkerCount    *int     `yaml:"worker_count"`
	MaxQueueSize   *int     `yaml:"max_queue_size"`
	MaxUploadBytes *int64   `yaml:"max_upload_bytes"`
	JobTTL         *string  `yaml:"job_ttl"`
	DataDir        *string  `yaml:"data_dir"`
	DBPath         *string  `yaml:"db_path"`
	PDF            struct {
		FallbackPdftotext *bool   `yaml:"fallback_pdftotext"`
		OCR               *bool   `yaml:"ocr"`
		OCRLanguage       *string `yaml:"ocr_language"`
	} `yaml:"pdf"`
}

func defaults() Config {
	return Config{
		Port:                 "8090",
		ModelName:            "line-cls",
		ModelTimeout:         10 * time.Second,
		Threshold:            0.55,
		WorkerCount:          4,
		MaxQueueSize:         100,
		MaxUploadBytes:       52428800, // 50MB
		JobTTL:               1 * time.Hour,
		DataDir:              "data/out",
		DBPath:               "data/candgest.db",
		PDFFallbackPdftotext: true,
		OCREnabled:           false,
		OCRLanguage:          "por",
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CANDGEST_CONFIG (if set) and environment variables, in that order.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CANDGEST_CONFIG"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("CANDGEST_API_KEY", cfg.APIKey)
	cfg.ModelURL = envOr("MODEL_URL", cfg.ModelURL)
	cfg.ModelName = envOr("MODEL_NAME", cfg.ModelName)
	cfg.ModelTimeout = envDuration("MODEL_TIMEOUT", cfg.ModelTimeout)
	cfg.Threshold = envFloat("CONF_THRESHOLD", cfg.Threshold)
	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)
	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)
	cfg.DataDir = envOr("DATA_DIR", cfg.DataDir)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)
	cfg.OCREnabled = envBool("OCR_ENABLED", cfg.OCREnabled)
	cfg.OCRLanguage = envOr("OCR_LANGUAGE", cfg.OCRLanguage)

	d := defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = d.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = d.MaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = d.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = d.JobTTL
	}
	if cfg.ModelTimeout <= 0 {
		cfg.ModelTimeout = d.ModelTimeout
	}

	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&c.Port, fc.Port)
	setString(&c.APIKey, fc.APIKey)
	setString(&c.ModelURL, fc.Model.URL)
	setString(&c.ModelName, fc.Model.Name)
	if err := setDuration(&c.ModelTimeout, fc.Model.Timeout); err != nil {
		return fmt.Errorf("config model.timeout: %w", err)
	}
	if fc.Threshold != nil {
		c.Threshold = *fc.Threshold
	}
	if len(fc.PartyHints) > 0 {
		c.PartyHints = fc.PartyHints
	}
	if fc.WorkerCount != nil {
		c.WorkerCount = *fc.WorkerCount
	}
	if fc.MaxQueueSize != nil {
		c.MaxQueueSize = *fc.MaxQueueSize
	}
	if fc.MaxUploadBytes != nil {
		c.MaxUploadBytes = *fc.MaxUploadBytes
	}
	if err := setDuration(&c.JobTTL, fc.JobTTL); err != nil {
		return fmt.Errorf("config job_ttl: %w", err)
	}
	setString(&c.DataDir, fc.DataDir)
	setString(&c.DBPath, fc.DBPath)
	if fc.PDF.FallbackPdftotext != nil {
		c.PDFFallbackPdftotext = *fc.PDF.FallbackPdftotext
	}
	if fc.PDF.OCR != nil {
		c.OCREnabled = *fc.PDF.OCR
	}
	setString(&c.OCRLanguage, fc.PDF.OCRLanguage)
	return nil
}

// Validate checks the settings shared by every entry point.
func (c Config) Validate() error {
	if c.Threshold <= 0 || c.Threshold > 1 {
		return fmt.Errorf("CONF_THRESHOLD must be in (0,1], got %v", c.Threshold)
	}
	if c.OCREnabled && c.OCRLanguage == "" {
		return errors.New("OCR_LANGUAGE is required when OCR is enabled")
	}
	return nil
}

// ValidateServer additionally checks what the HTTP service needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return errors.New("CANDGEST_API_KEY is required")
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR is required")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
