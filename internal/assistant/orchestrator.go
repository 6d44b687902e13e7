package assistant

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/juliejulie/juliejulie/internal/browser"
	"github.com/juliejulie/juliejulie/internal/media"
	"github.com/juliejulie/juliejulie/internal/observability"
	"github.com/juliejulie/juliejulie/internal/ollama"
	"github.com/juliejulie/juliejulie/internal/prefs"
)

// OrchestratorDeps collects the collaborators behind the intent rules.
type OrchestratorDeps struct {
	Voice      Voice
	Runtime    Runtime
	Models     ModelClient
	Converser  Converser
	Prefs      *prefs.Manager
	Weather    WeatherService
	Wiki       *WikiClient
	Catalog    *media.Catalog
	Visualizer VisualizerController
	Favorites  FavoritesStore
	Opener     browser.Opener
	Metrics    *observability.Metrics
	Notify     Notifier
	Clock      Clock

	DefaultWeatherLocation string
}

// Orchestrator is the single entry point for command handling: normalize,
// dispatch through the registry, fall back to the conversational AI, then
// deliver the response (speech, browser, events).
type Orchestrator struct {
	registry  *Registry
	voice     Voice
	runtime   Runtime
	converser Converser
	opener    browser.Opener
	metrics   *observability.Metrics
	notify    Notifier
}

func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Catalog == nil {
		deps.Catalog = media.DefaultCatalog()
	}
	if deps.Opener == nil {
		deps.Opener = browser.NopOpener{}
	}

	registry := NewRegistry(deps.Metrics)
	registry.Register(runtimeRules(deps.Runtime, deps.Models, deps.Prefs)...)
	registry.Register(voiceRules(deps.Voice)...)
	registry.Register(
		timeRule(deps.Clock),
		calculationRule(),
		visualizerRule(deps.Visualizer),
		radioRule(deps.Catalog),
		rememberRule(deps.Favorites),
		favoritesRule(deps.Favorites),
		appleMusicRule(deps.Favorites),
		spotifyRule(deps.Favorites),
		youtubeRule(),
		wikiRule(deps.Wiki),
		weatherRule(deps.Weather, deps.DefaultWeatherLocation),
	)
	registry.Register(helpRule(registry))

	return &Orchestrator{
		registry:  registry,
		voice:     deps.Voice,
		runtime:   deps.Runtime,
		converser: deps.Converser,
		opener:    deps.Opener,
		metrics:   deps.Metrics,
		notify:    deps.Notify,
	}
}

// Registry exposes the rule list, mainly for the status endpoint.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// Handle processes one command and returns exactly one Response. A new
// command always cancels an in-flight conversational answer first; only
// when one was actually streaming does this response's speech interrupt
// playback instead of queueing behind it.
func (o *Orchestrator) Handle(ctx context.Context, raw string) Response {
	turnID := uuid.NewString()
	command := normalize(raw)
	log.Printf("assistant: [%s] command %q", turnID, command)

	interrupt := o.converser.CancelActive()

	if command == "" {
		resp := spoken("I didn't catch that. Could you say it again?")
		o.deliver(ctx, turnID, "empty", resp, interrupt)
		return resp
	}

	resp, intent, matched := o.registry.Dispatch(ctx, command)
	if !matched {
		intent = "conversation"
		resp = o.fallback(ctx, command)
	}

	if o.metrics != nil {
		o.metrics.CommandsTotal.WithLabelValues(intent).Inc()
	}
	o.deliver(ctx, turnID, intent, resp, interrupt)
	return resp
}

// fallback hands the command to the conversational AI. The spoken answer
// arrives out of band, sentence by sentence, while the HTTP caller gets an
// immediate acknowledgement in AdditionalContext.
func (o *Orchestrator) fallback(ctx context.Context, command string) Response {
	mode := o.runtime.EnsureRunning(ctx)
	if mode != ollama.ModeRunning {
		return Response{
			Spoken: "I don't have a quick answer for that, and the AI runtime isn't available. " + modeSentence(mode),
		}
	}

	o.converser.Start(command)
	return Response{
		AdditionalContext: "Thinking it over; the answer is spoken as it streams.",
	}
}

func (o *Orchestrator) deliver(ctx context.Context, turnID, intent string, resp Response, interrupt bool) {
	if resp.Spoken != "" {
		if err := o.voice.Speak(ctx, resp.Spoken, interrupt); err != nil {
			log.Printf("assistant: [%s] speak failed: %v", turnID, err)
		}
	}
	if resp.OpenedURL != "" {
		o.opener.Open(resp.OpenedURL)
	}
	if o.notify != nil {
		o.notify.Publish("command.handled", map[string]any{
			"turn_id":    turnID,
			"intent":     intent,
			"spoken":     resp.Spoken,
			"opened_url": resp.OpenedURL,
		})
	}
}

// normalize trims, lowercases, and collapses internal whitespace.
func normalize(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}
