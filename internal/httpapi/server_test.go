package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/juliejulie/juliejulie/internal/assistant"
	"github.com/juliejulie/juliejulie/internal/config"
	"github.com/juliejulie/juliejulie/internal/ollama"
)

type stubCommands struct {
	received []string
	resp     assistant.Response
}

func (s *stubCommands) Handle(ctx context.Context, raw string) assistant.Response {
	s.received = append(s.received, raw)
	return s.resp
}

type stubRuntime struct{ mode ollama.Mode }

func (s *stubRuntime) Status(ctx context.Context) ollama.Mode { return s.mode }

type stubVoice struct{ name string }

func (s *stubVoice) ActiveProviderName() string { return s.name }

func newTestServer(t *testing.T) (*httptest.Server, *stubCommands, *Broker) {
	t.Helper()
	commands := &stubCommands{resp: assistant.Response{
		Spoken:    "The current time is 3:45 PM.",
		OpenedURL: "",
	}}
	broker := NewBroker()
	srv := New(config.Config{}, commands, &stubRuntime{mode: ollama.ModeRunning}, &stubVoice{name: "networked"}, broker, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, commands, broker
}

func TestCommandAcceptsJSON(t *testing.T) {
	ts, commands, _ := newTestServer(t)

	res, err := http.Post(ts.URL+"/command", "application/json",
		strings.NewReader(`{"text_command":"what time is it"}`))
	if err != nil {
		t.Fatalf("POST /command error = %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	var body struct {
		Status  string             `json:"status"`
		Details assistant.Response `json:"details"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "success" {
		t.Fatalf("status field = %q", body.Status)
	}
	if body.Details.Spoken != "The current time is 3:45 PM." {
		t.Fatalf("details.spoken_response = %q", body.Details.Spoken)
	}
	if len(commands.received) != 1 || commands.received[0] != "what time is it" {
		t.Fatalf("received = %v", commands.received)
	}
}

func TestCommandAcceptsForm(t *testing.T) {
	ts, commands, _ := newTestServer(t)

	res, err := http.PostForm(ts.URL+"/command", url.Values{"text_command": {"play jazz radio"}})
	if err != nil {
		t.Fatalf("POST /command error = %v", err)
	}
	res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if len(commands.received) != 1 || commands.received[0] != "play jazz radio" {
		t.Fatalf("received = %v", commands.received)
	}
}

func TestCommandRejectsMissingText(t *testing.T) {
	ts, commands, _ := newTestServer(t)

	for _, body := range []string{`{}`, `{"text_command":"  "}`} {
		res, err := http.Post(ts.URL+"/command", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST /command error = %v", err)
		}
		res.Body.Close()
		if res.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d for body %s, want 400", res.StatusCode, body)
		}
	}
	if len(commands.received) != 0 {
		t.Fatalf("handler invoked for bad requests: %v", commands.received)
	}
}

func TestActivateSubmitsEmptyCommand(t *testing.T) {
	ts, commands, _ := newTestServer(t)

	res, err := http.Post(ts.URL+"/activate", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /activate error = %v", err)
	}
	res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
	if len(commands.received) != 1 || commands.received[0] != "" {
		t.Fatalf("received = %v, want one empty submission", commands.received)
	}
}

func TestStatusEndpoint(t *testing.T) {
	ts, _, _ := newTestServer(t)

	res, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer res.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if body["status"] != "running" || body["ai_runtime"] != "running" {
		t.Fatalf("status body = %v", body)
	}
	if body["tts_provider"] != "networked" {
		t.Fatalf("tts_provider = %v", body["tts_provider"])
	}
}

func TestEventsWebSocketReceivesPublishedEvents(t *testing.T) {
	ts, _, broker := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/events/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for broker.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	broker.Publish("command.handled", map[string]any{"intent": "time"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if event.Event != "command.handled" {
		t.Fatalf("event = %+v", event)
	}
	if event.Payload["intent"] != "time" {
		t.Fatalf("payload = %v", event.Payload)
	}
}
