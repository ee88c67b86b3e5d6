package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel string
	Debug    bool

	WebAddr    string
	CatalogDir string

	StoreDriver  string
	SQLitePath   string
	RedisAddr    string
	RedisPrefix  string
	HistoryLimit int

	TelegramToken    string
	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiAPIVersion string

	PreferIPv4     bool
	MaxConcurrent  int
	RequestTimeout time.Duration
	HTTPTimeout    time.Duration
}

// Load reads the environment. Only values every binary needs are checked
// here; see RequireTelegram for the bot token.
func Load() (Config, error) {
	cfg := Config{
		AppEnv:           strings.ToLower(getEnv("APP_ENV", "production")),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Debug:            getEnvBool("DEBUG", false),
		WebAddr:          getEnv("WEB_ADDR", ":8080"),
		CatalogDir:       getEnv("CATALOG_DIR", "public"),
		StoreDriver:      strings.ToLower(getEnv("STORE_DRIVER", "memory")),
		SQLitePath:       getEnv("SQLITE_PATH", "data/prompts.db"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPrefix:      getEnv("REDIS_PREFIX", "mjug"),
		HistoryLimit:     getEnvInt("HISTORY_LIMIT", 100),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIVersion: getEnv("GEMINI_API_VERSION", "v1beta"),
		PreferIPv4:       getEnvBool("PREFER_IPV4", true),
		MaxConcurrent:    getEnvInt("MAX_CONCURRENT", 4),
		RequestTimeout:   time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 180)) * time.Second,
		HTTPTimeout:      time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
	}

	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))

	switch cfg.StoreDriver {
	case "memory", "sqlite", "redis":
	default:
		return Config{}, errors.New("STORE_DRIVER must be one of memory, sqlite, redis")
	}

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.HistoryLimit < 1 {
		cfg.HistoryLimit = 1
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 180 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}

	return cfg, nil
}

func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

// RenderEnabled reports whether image rendering is configured.
func (c Config) RenderEnabled() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
