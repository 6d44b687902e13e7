package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != "127.0.0.1:58586" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.OllamaURL != "http://localhost:11434" {
		t.Fatalf("OllamaURL = %q", cfg.OllamaURL)
	}
	if cfg.SayVoice != "Alex" {
		t.Fatalf("SayVoice = %q", cfg.SayVoice)
	}
	if cfg.HealthCheckRetries != 15 || cfg.HealthCheckInterval != time.Second {
		t.Fatalf("health checks = %d every %v", cfg.HealthCheckRetries, cfg.HealthCheckInterval)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL = %q, want empty default", cfg.DatabaseURL)
	}
	if cfg.PrefsPath == "" || cfg.FavoritesPath == "" {
		t.Fatalf("data paths empty: %q %q", cfg.PrefsPath, cfg.FavoritesPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("JULIE_BIND_ADDR", ":9090")
	t.Setenv("OLLAMA_URL", "http://127.0.0.1:12345")
	t.Setenv("JULIE_OLLAMA_READ_TIMEOUT", "45s")
	t.Setenv("JULIE_HEALTH_CHECK_RETRIES", "3")
	t.Setenv("DATABASE_URL", "postgres://julie@localhost/julie")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.OllamaURL != "http://127.0.0.1:12345" {
		t.Fatalf("OllamaURL = %q", cfg.OllamaURL)
	}
	if cfg.OllamaReadTimeout != 45*time.Second {
		t.Fatalf("OllamaReadTimeout = %v", cfg.OllamaReadTimeout)
	}
	if cfg.HealthCheckRetries != 3 {
		t.Fatalf("HealthCheckRetries = %d", cfg.HealthCheckRetries)
	}
	if cfg.DatabaseURL != "postgres://julie@localhost/julie" {
		t.Fatalf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("JULIE_HEALTH_CHECK_RETRIES", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() expected error for zero retries")
	}

	setCoreEnvEmpty(t)
	t.Setenv("JULIE_OLLAMA_READ_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("Load() expected error for bad duration")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"JULIE_BIND_ADDR",
		"JULIE_SHUTDOWN_TIMEOUT",
		"JULIE_ALLOW_ANY_ORIGIN",
		"JULIE_DATA_DIR",
		"JULIE_PREFS_PATH",
		"JULIE_FAVORITES_DB",
		"JULIE_STATIONS_FILE",
		"DATABASE_URL",
		"GOOGLE_TTS_API_KEY",
		"GOOGLE_TTS_VOICE",
		"GOOGLE_TTS_LANGUAGE",
		"JULIE_AUDIO_PLAYER",
		"JULIE_SAY_COMMAND",
		"JULIE_SAY_VOICE",
		"OLLAMA_URL",
		"OLLAMA_BINARY",
		"JULIE_OLLAMA_READ_TIMEOUT",
		"JULIE_HEALTH_CHECK_RETRIES",
		"JULIE_HEALTH_CHECK_INTERVAL",
		"JULIE_SPEECH_MIN_CHARS",
		"JULIE_NOMINATIM_URL",
		"JULIE_NWS_URL",
		"JULIE_WIKIPEDIA_URL",
		"JULIE_DEFAULT_LOCATION",
		"JULIE_BROWSER_OPENER",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
