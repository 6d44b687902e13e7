package httpapi

import (
	"sync"
	"time"
)

// Event is one orchestrator or stream notification pushed to listeners.
type Event struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}

// Broker fans events out to connected websocket clients. Publishing never
// blocks: a subscriber that cannot keep up loses events, not the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: map[chan Event]struct{}{}}
}

// Publish satisfies the notifier interfaces of the orchestrator and the
// conversation streamer.
func (b *Broker) Publish(event string, payload map[string]any) {
	e := Event{Event: event, Payload: payload, At: time.Now().UTC()}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Slow consumer; drop rather than stall command handling.
		}
	}
}

func (b *Broker) subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// SubscriberCount reports connected event listeners.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
