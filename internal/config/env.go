package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// SplitConfig holds defaults for the page operations.
type SplitConfig struct {
	Input         string
	PagesPerSplit int
	TOCPages      string
	TextBackend   string // "fitz"|"pure"
	PlanFile      string
	OutputDir     string
}

// ServerConfig defines service-mode behavior and limits.
type ServerConfig struct {
	Port        string
	RedisURL    string
	Concurrency int
	JobTTL      time.Duration
	WorkDir     string
	TempMaxAge  time.Duration
	S3Bucket    string // probed by /ready when set
}

// Config is the top-level configuration.
type Config struct {
	Logging         LoggingConfig
	Axiom           AxiomConfig
	Split           SplitConfig
	Server          ServerConfig
	MetricsTextfile string
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_pdfslicer",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Split = SplitConfig{
		Input:         getEnv("INPUT_PDF", "AI Engineering Guidebook.pdf"),
		PagesPerSplit: parseInt(getEnv("PAGES_PER_SPLIT", "50"), 50),
		TOCPages:      getEnv("TOC_PAGES", "4,5,6"),
		TextBackend:   getEnv("TEXT_BACKEND", "fitz"),
		PlanFile:      getEnv("PLAN_FILE", ""),
		OutputDir:     getEnv("OUTPUT_DIR", ""),
	}

	cfg.Server = ServerConfig{
		Port:        getEnv("PORT", "8080"),
		RedisURL:    getEnv("REDIS_URL", ""),
		Concurrency: parseInt(getEnv("WORKER_CONCURRENCY", "2"), 2),
		JobTTL:      parseDuration(getEnv("JOB_TTL", "24h"), 24*time.Hour),
		WorkDir:     getEnv("WORK_DIR", "results"),
		TempMaxAge:  parseDuration(getEnv("TEMP_MAX_AGE", "1h"), time.Hour),
		S3Bucket:    getEnv("S3_BUCKET", ""),
	}
	if cfg.Server.Concurrency <= 0 {
		cfg.Server.Concurrency = 1
	}

	cfg.MetricsTextfile = getEnv("METRICS_TEXTFILE", "")

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "dev" || env == "development" || env == "local" {
		return "true"
	}
	return "false"
}
