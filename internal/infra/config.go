package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// History persistence backends understood by LoadConfig.
const (
	HistoryBackendMemory   = "memory"
	HistoryBackendFile     = "file"
	HistoryBackendPostgres = "postgres"
	HistoryBackendSQLite   = "sqlite"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	HistoryBackend string
	HistoryPath    string
	HistoryKey     string
	DatabaseURL    string
	SQLitePath     string

	MockFailureRate float64
	MockMinLatency  time.Duration
	MockMaxLatency  time.Duration

	MaxUploadBytes     int64
	CORSAllowedOrigins []string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		HistoryBackend:     strings.ToLower(getEnv("HISTORY_BACKEND", HistoryBackendFile)),
		HistoryPath:        getEnv("HISTORY_PATH", "./data/history"),
		HistoryKey:         getEnv("HISTORY_KEY", "ai_studio_generations"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		SQLitePath:         getEnv("SQLITE_PATH", "./data/studio.db"),
		MockFailureRate:    getEnvFloat("MOCK_FAILURE_RATE", 0.2),
		MockMinLatency:     time.Millisecond * time.Duration(getEnvInt("MOCK_MIN_LATENCY_MS", 1000)),
		MockMaxLatency:     time.Millisecond * time.Duration(getEnvInt("MOCK_MAX_LATENCY_MS", 2000)),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	switch cfg.HistoryBackend {
	case HistoryBackendMemory, HistoryBackendFile, HistoryBackendSQLite:
	case HistoryBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres history backend")
		}
	default:
		return nil, fmt.Errorf("unsupported HISTORY_BACKEND %q", cfg.HistoryBackend)
	}

	if cfg.MockFailureRate < 0 || cfg.MockFailureRate > 1 {
		return nil, fmt.Errorf("MOCK_FAILURE_RATE must be within [0,1], got %v", cfg.MockFailureRate)
	}
	if cfg.MockMaxLatency < cfg.MockMinLatency {
		cfg.MockMaxLatency = cfg.MockMinLatency
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
