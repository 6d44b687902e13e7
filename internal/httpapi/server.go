// Package httpapi is the local HTTP ingress: the menu-bar shell and any
// scripts submit commands here and subscribe to the event feed.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/juliejulie/juliejulie/internal/assistant"
	"github.com/juliejulie/juliejulie/internal/config"
	"github.com/juliejulie/juliejulie/internal/observability"
	"github.com/juliejulie/juliejulie/internal/ollama"
)

// CommandHandler is the orchestrator surface the ingress needs.
type CommandHandler interface {
	Handle(ctx context.Context, raw string) assistant.Response
}

// RuntimeReporter reports the AI runtime mode for the status endpoint.
type RuntimeReporter interface {
	Status(ctx context.Context) ollama.Mode
}

// VoiceReporter names the active TTS provider for the status endpoint.
type VoiceReporter interface {
	ActiveProviderName() string
}

type Server struct {
	cfg      config.Config
	commands CommandHandler
	runtime  RuntimeReporter
	voice    VoiceReporter
	broker   *Broker
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func New(cfg config.Config, commands CommandHandler, runtime RuntimeReporter, voice VoiceReporter, broker *Broker, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		commands: commands,
		runtime:  runtime,
		voice:    voice,
		broker:   broker,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browser connections unless explicitly
				// opened up; this service can speak and open URLs on the
				// user's desktop.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleStatus)
	r.Post("/command", s.handleCommand)
	r.Post("/activate", s.handleActivate)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/events/ws", s.handleEventsWS)

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "running",
		"service":         "Julie Julie",
		"tts_provider":    s.voice.ActiveProviderName(),
		"ai_runtime":      string(s.runtime.Status(r.Context())),
		"event_listeners": s.broker.SubscriberCount(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

type commandRequest struct {
	TextCommand string `json:"text_command"`
}

// handleCommand accepts the command as JSON or as a form field, the way the
// AppleScript shell posts it. Well-formed commands always come back 200; the
// outcome lives in the details object.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	text, err := commandText(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing_text_command", "No text_command provided")
		return
	}

	resp := s.commands.Handle(r.Context(), text)
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Command processed",
		"details": resp,
	})
}

// handleActivate is the push-to-talk hook. Without a capture pipeline the
// activation is acknowledged as an empty submission.
func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	resp := s.commands.Handle(r.Context(), "")
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Activation acknowledged",
		"details": resp,
	})
}

func commandText(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var req commandRequest
		if err := decodeJSON(r, &req); err != nil {
			return "", err
		}
		if strings.TrimSpace(req.TextCommand) == "" {
			return "", errors.New("missing text_command")
		}
		return req.TextCommand, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", err
	}
	text := r.PostFormValue("text_command")
	if strings.TrimSpace(text) == "" {
		return "", errors.New("missing text_command")
	}
	return text, nil
}

// handleEventsWS streams broker events to the client. Writes stay on this
// single goroutine; reads only watch for the peer going away.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events := s.broker.subscribe()
	defer s.broker.unsubscribe(events)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		conn.SetReadLimit(1 << 16)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

type errorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Status: "error", Code: code, Message: message})
}
