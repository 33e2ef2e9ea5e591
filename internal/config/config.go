package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type StorageBackend string

const (
	StorageMemory    StorageBackend = "memory"
	StorageFirestore StorageBackend = "firestore"
)

type Config struct {
	Port string

	APIKey   string
	Language string // "vi" or "en"

	RouterModel    string
	CanvasModel    string
	SearchModel    string
	ThinkingBudget int32

	StorageBackend StorageBackend
	GCPProjectID   string
	UseMockLLM     bool

	LogLevel slog.Level
	LogFile  string // optional JSON log file, in addition to stdout

	RateLimit float64 // LLM-backed requests per second, 0 = unlimited
}

// ErrMissingAPIKey is returned by Load when no credential is configured.
var ErrMissingAPIKey = errors.New("CANVAS_API_KEY (or GEMINI_API_KEY / API_KEY) must be set")

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getFloatEnv(key string, def float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return def
	}
	return v
}

// Load reads all env vars and builds the config
func Load() (*Config, error) {
	budget, err := strconv.ParseInt(getEnv("CANVAS_THINKING_BUDGET", "32768"), 10, 32)
	if err != nil {
		return nil, errors.New("CANVAS_THINKING_BUDGET must be an integer")
	}

	cfg := &Config{
		Port: getEnv("CANVAS_PORT", getEnv("PORT", "8080")),

		APIKey:   getEnv("CANVAS_API_KEY", getEnv("GEMINI_API_KEY", os.Getenv("API_KEY"))),
		Language: parseLanguage(getEnv("CANVAS_LANGUAGE", "vi")),

		RouterModel:    getEnv("CANVAS_ROUTER_MODEL", "gemini-2.5-flash"),
		CanvasModel:    getEnv("CANVAS_CANVAS_MODEL", "gemini-2.5-pro"),
		SearchModel:    getEnv("CANVAS_SEARCH_MODEL", "gemini-2.5-flash"),
		ThinkingBudget: int32(budget),

		StorageBackend: StorageBackend(getEnv("CANVAS_STORAGE_BACKEND", string(StorageMemory))),
		GCPProjectID:   getEnv("CANVAS_GCP_PROJECT", ""),
		UseMockLLM:     getBoolEnv("CANVAS_USE_MOCK_LLM", false),

		LogLevel: parseLogLevel(getEnv("CANVAS_LOG_LEVEL", "INFO")),
		LogFile:  getEnv("CANVAS_LOG_FILE", ""),

		RateLimit: getFloatEnv("CANVAS_RATE_LIMIT", 2),
	}

	if cfg.APIKey == "" && !cfg.UseMockLLM {
		return nil, ErrMissingAPIKey
	}

	switch cfg.StorageBackend {
	case StorageMemory:
	case StorageFirestore:
		if cfg.GCPProjectID == "" {
			return nil, errors.New("CANVAS_GCP_PROJECT is required for the firestore storage backend")
		}
	default:
		return nil, errors.New("CANVAS_STORAGE_BACKEND must be memory or firestore")
	}

	return cfg, nil
}

func parseLanguage(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return "en"
	default:
		return "vi"
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
