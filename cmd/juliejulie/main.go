package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/juliejulie/juliejulie/internal/assistant"
	"github.com/juliejulie/juliejulie/internal/browser"
	"github.com/juliejulie/juliejulie/internal/config"
	"github.com/juliejulie/juliejulie/internal/favorites"
	"github.com/juliejulie/juliejulie/internal/httpapi"
	"github.com/juliejulie/juliejulie/internal/media"
	"github.com/juliejulie/juliejulie/internal/observability"
	"github.com/juliejulie/juliejulie/internal/ollama"
	"github.com/juliejulie/juliejulie/internal/prefs"
	"github.com/juliejulie/juliejulie/internal/tts"
	"github.com/juliejulie/juliejulie/internal/weather"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("no .env loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	prefsStore, err := prefs.NewStore(ctx, cfg.DatabaseURL, cfg.PrefsPath)
	if err != nil {
		log.Fatalf("preference store init failed: %v", err)
	}
	defer prefsStore.Close()

	prefsMgr, err := prefs.NewManager(ctx, prefsStore)
	if err != nil {
		log.Fatalf("preferences load failed: %v", err)
	}

	voice := tts.NewChain(
		tts.NewGoogleProvider(tts.GoogleConfig{
			APIKey:        cfg.GoogleTTSAPIKey,
			Voice:         cfg.GoogleTTSVoice,
			LanguageCode:  cfg.GoogleTTSLanguage,
			PlayerCommand: cfg.AudioPlayerCmd,
		}),
		tts.NewSayProvider(tts.SayConfig{Command: cfg.SayCommand, Voice: cfg.SayVoice}),
		prefsMgr,
		metrics,
	)

	client := ollama.NewClient(cfg.OllamaURL, cfg.OllamaReadTimeout)
	supervisor := ollama.NewSupervisor(client, prefsMgr, metrics, ollama.SupervisorConfig{
		BinaryPath:          cfg.OllamaBinary,
		HealthCheckRetries:  cfg.HealthCheckRetries,
		HealthCheckInterval: cfg.HealthCheckInterval,
	})

	broker := httpapi.NewBroker()
	converser := ollama.NewConverser(client, voice, prefsMgr, metrics, broker, cfg.SpeechMinChars)

	favStore, err := favorites.Open(cfg.FavoritesPath)
	if err != nil {
		log.Fatalf("favorites store init failed: %v", err)
	}
	defer favStore.Close()

	catalog := media.DefaultCatalog()
	if cfg.StationsPath != "" {
		catalog, err = media.LoadCatalog(cfg.StationsPath)
		if err != nil {
			log.Fatalf("station catalog load failed: %v", err)
		}
		log.Printf("station catalog loaded from %s", cfg.StationsPath)
	}

	orchestrator := assistant.NewOrchestrator(assistant.OrchestratorDeps{
		Voice:      voice,
		Runtime:    supervisor,
		Models:     client,
		Converser:  converser,
		Prefs:      prefsMgr,
		Weather:    weather.NewClient(weather.WithBaseURLs(cfg.NominatimURL, cfg.NWSURL)),
		Wiki:       assistant.NewWikiClient(cfg.WikipediaURL),
		Catalog:    catalog,
		Visualizer: media.NewVisualizer(),
		Favorites:  favStore,
		Opener:     browser.NewExecOpener(cfg.BrowserCommand),
		Metrics:    metrics,
		Notify:     broker,

		DefaultWeatherLocation: cfg.DefaultLocation,
	})

	// Warm the runtime up front when the preference allows it; first
	// conversational command should not pay the cold-start wait.
	if prefsMgr.Snapshot().AutoStartEnabled {
		go func() {
			mode := supervisor.EnsureRunning(ctx)
			log.Printf("ai runtime warmup finished: %s", mode)
		}()
	}

	api := httpapi.New(cfg, orchestrator, supervisor, voice, broker, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	converser.CancelActive()
	if supervisor.ManagedProcess() {
		supervisor.Stop(shutdownCtx)
	}

	log.Printf("shutdown complete")
}
