package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the command engine.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	AllowAnyOrigin   bool
	MetricsNamespace string

	DataDir       string
	PrefsPath     string
	FavoritesPath string
	StationsPath  string
	DatabaseURL   string

	GoogleTTSAPIKey   string
	GoogleTTSVoice    string
	GoogleTTSLanguage string
	AudioPlayerCmd    string
	SayCommand        string
	SayVoice          string

	OllamaURL           string
	OllamaBinary        string
	OllamaReadTimeout   time.Duration
	HealthCheckRetries  int
	HealthCheckInterval time.Duration
	SpeechMinChars      int

	NominatimURL    string
	NWSURL          string
	WikipediaURL    string
	DefaultLocation string

	BrowserCommand string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	dataDir := envOrDefault("JULIE_DATA_DIR", defaultDataDir())

	cfg := Config{
		// The port the original menu-bar app listened on.
		BindAddr:         envOrDefault("JULIE_BIND_ADDR", "127.0.0.1:58586"),
		AllowAnyOrigin:   false,
		MetricsNamespace: envOrDefault("JULIE_METRICS_NAMESPACE", "juliejulie"),

		DataDir:       dataDir,
		PrefsPath:     envOrDefault("JULIE_PREFS_PATH", filepath.Join(dataDir, "preferences.json")),
		FavoritesPath: envOrDefault("JULIE_FAVORITES_DB", filepath.Join(dataDir, "favorites.db")),
		StationsPath:  strings.TrimSpace(os.Getenv("JULIE_STATIONS_FILE")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),

		GoogleTTSAPIKey:   strings.TrimSpace(os.Getenv("GOOGLE_TTS_API_KEY")),
		GoogleTTSVoice:    envOrDefault("GOOGLE_TTS_VOICE", "en-US-Standard-A"),
		GoogleTTSLanguage: envOrDefault("GOOGLE_TTS_LANGUAGE", "en-US"),
		AudioPlayerCmd:    envOrDefault("JULIE_AUDIO_PLAYER", "afplay"),
		SayCommand:        envOrDefault("JULIE_SAY_COMMAND", "say"),
		SayVoice:          envOrDefault("JULIE_SAY_VOICE", "Alex"),

		OllamaURL:           envOrDefault("OLLAMA_URL", "http://localhost:11434"),
		OllamaBinary:        envOrDefault("OLLAMA_BINARY", "ollama"),
		OllamaReadTimeout:   30 * time.Second,
		HealthCheckRetries:  15,
		HealthCheckInterval: time.Second,
		SpeechMinChars:      48,

		NominatimURL:    envOrDefault("JULIE_NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NWSURL:          envOrDefault("JULIE_NWS_URL", "https://api.weather.gov"),
		WikipediaURL:    envOrDefault("JULIE_WIKIPEDIA_URL", "https://en.wikipedia.org"),
		DefaultLocation: strings.TrimSpace(os.Getenv("JULIE_DEFAULT_LOCATION")),

		BrowserCommand: strings.TrimSpace(os.Getenv("JULIE_BROWSER_OPENER")),

		ShutdownTimeout: 15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("JULIE_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.OllamaReadTimeout, err = durationFromEnv("JULIE_OLLAMA_READ_TIMEOUT", cfg.OllamaReadTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.HealthCheckInterval, err = durationFromEnv("JULIE_HEALTH_CHECK_INTERVAL", cfg.HealthCheckInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.HealthCheckRetries, err = intFromEnv("JULIE_HEALTH_CHECK_RETRIES", cfg.HealthCheckRetries)
	if err != nil {
		return Config{}, err
	}
	cfg.SpeechMinChars, err = intFromEnv("JULIE_SPEECH_MIN_CHARS", cfg.SpeechMinChars)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("JULIE_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.HealthCheckRetries <= 0 {
		return Config{}, fmt.Errorf("JULIE_HEALTH_CHECK_RETRIES must be positive")
	}
	if cfg.HealthCheckInterval <= 0 {
		return Config{}, fmt.Errorf("JULIE_HEALTH_CHECK_INTERVAL must be positive")
	}
	if cfg.SpeechMinChars <= 0 {
		return Config{}, fmt.Errorf("JULIE_SPEECH_MIN_CHARS must be positive")
	}

	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".juliejulie"
	}
	return filepath.Join(home, "Library", "Application Support", "JulieJulie")
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
