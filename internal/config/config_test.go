package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "LOG_LEVEL", "STORE_DRIVER", "HISTORY_LIMIT", "MAX_CONCURRENT", "TELEGRAM_BOT_TOKEN", "GEMINI_API_KEY", "REQUEST_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StoreDriver != "memory" {
		t.Fatalf("StoreDriver = %q, want %q", cfg.StoreDriver, "memory")
	}
	if cfg.HistoryLimit != 100 {
		t.Fatalf("HistoryLimit = %d, want 100", cfg.HistoryLimit)
	}
	if cfg.RequestTimeout != 180*time.Second {
		t.Fatalf("RequestTimeout = %v, want 180s", cfg.RequestTimeout)
	}
	if cfg.RenderEnabled() {
		t.Fatalf("RenderEnabled = true without GEMINI_API_KEY")
	}
	if err := cfg.RequireTelegram(); err == nil {
		t.Fatalf("RequireTelegram should fail without a token")
	}
}

func TestLoadOverridesAndClamps(t *testing.T) {
	t.Setenv("STORE_DRIVER", " SQLite ")
	t.Setenv("HISTORY_LIMIT", "0")
	t.Setenv("MAX_CONCURRENT", "-2")
	t.Setenv("DEBUG", "true")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("TELEGRAM_BOT_TOKEN", " 123:abc ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.StoreDriver != "sqlite" {
		t.Fatalf("StoreDriver = %q, want %q", cfg.StoreDriver, "sqlite")
	}
	if cfg.HistoryLimit != 1 || cfg.MaxConcurrent != 1 {
		t.Fatalf("HistoryLimit = %d, MaxConcurrent = %d; want clamped to 1", cfg.HistoryLimit, cfg.MaxConcurrent)
	}
	if !cfg.Debug {
		t.Fatalf("Debug = false, want true")
	}
	if cfg.HTTPTimeout != 180*time.Second {
		t.Fatalf("HTTPTimeout = %v, want fallback 180s", cfg.HTTPTimeout)
	}
	if cfg.TelegramToken != "123:abc" {
		t.Fatalf("TelegramToken = %q", cfg.TelegramToken)
	}
	if err := cfg.RequireTelegram(); err != nil {
		t.Fatalf("RequireTelegram returned error: %v", err)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	if _, err := Load(); err == nil {
		t.Fatalf("Load should reject an unknown store driver")
	}
}
