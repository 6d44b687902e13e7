package assistant

import (
	"context"
	"time"

	"github.com/juliejulie/juliejulie/internal/favorites"
	"github.com/juliejulie/juliejulie/internal/ollama"
)

// Voice is the slice of the TTS chain the intent rules need.
type Voice interface {
	Speak(ctx context.Context, text string, interrupt bool) error
	UseNetworked()
	UseLocal()
	ActiveProviderName() string
}

// Runtime controls the local AI runtime lifecycle.
type Runtime interface {
	Status(ctx context.Context) ollama.Mode
	EnsureRunning(ctx context.Context) ollama.Mode
	Start(ctx context.Context) ollama.Mode
	Stop(ctx context.Context) ollama.Mode
}

// ModelClient lists and downloads models on the runtime.
type ModelClient interface {
	ListModels(ctx context.Context) ([]ollama.Model, error)
	Pull(ctx context.Context, model string) error
}

// Converser streams AI answers for commands no rule claimed. CancelActive
// reports whether an answer was still streaming when it was cut off.
type Converser interface {
	Start(prompt string) *ollama.Stream
	CancelActive() bool
}

// WeatherService produces one spoken-ready forecast line.
type WeatherService interface {
	Summary(ctx context.Context, location string) (string, error)
}

// VisualizerController drives the desktop audio visualizer.
type VisualizerController interface {
	Start() error
	Stop() error
}

// FavoritesStore remembers played and saved music searches.
type FavoritesStore interface {
	RecordPlay(ctx context.Context, service, query, url string) error
	Remember(ctx context.Context, service string) (favorites.Track, error)
	List(ctx context.Context, service string) ([]favorites.Track, error)
}

// Notifier publishes orchestrator events to connected clients.
type Notifier interface {
	Publish(event string, payload map[string]any)
}

// Clock is injectable time for the time-of-day rule.
type Clock func() time.Time
