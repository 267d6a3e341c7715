package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string

	DetectURL string

	GenerateBackend string
	OllamaHost      string
	OllamaModel     string
	ClaudeAPIKey    string
	ClaudeModel     string

	RequestTimeout time.Duration
	HealthTimeout  time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration

	HistoryWindow   int
	HistoryMaxTurns int

	InventoryBackend string
	InventoryPath    string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// Load resolves the configuration once at startup. Request-handling code
// never reads the environment; it receives these values through constructors.
func Load() *Config {
	// A missing .env file is fine; the environment wins either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("DB_PATH", "/data/fridgechef.db"),

		DetectURL: getEnv("DETECT_URL", "http://localhost:8001"),

		GenerateBackend: getEnv("GENERATE_BACKEND", "ollama"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:     getEnv("OLLAMA_MODEL", "llama3"),
		ClaudeAPIKey:    getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:     getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-latest"),

		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 120*time.Second),
		HealthTimeout:  getEnvDuration("HEALTH_TIMEOUT", 2*time.Second),
		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		RetryBackoff:   getEnvDuration("RETRY_BACKOFF", time.Second),

		HistoryWindow:   getEnvInt("HISTORY_WINDOW", 8),
		HistoryMaxTurns: getEnvInt("HISTORY_MAX_TURNS", 40),

		InventoryBackend: getEnv("INVENTORY_BACKEND", "sqlite"),
		InventoryPath:    getEnv("INVENTORY_PATH", "/data/inventory.json"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", val)
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", val)
		return defaultVal
	}
	return d
}
