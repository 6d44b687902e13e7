package ollama

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/juliejulie/juliejulie/internal/observability"
	"github.com/juliejulie/juliejulie/internal/prefs"
)

// StreamState tracks one conversational answer from launch to rest.
type StreamState string

const (
	StreamIdle      StreamState = "idle"
	StreamStreaming StreamState = "streaming"
	StreamCancelled StreamState = "cancelled"
	StreamCompleted StreamState = "completed"
	StreamFailed    StreamState = "failed"
)

// Speaker voices one speech unit. interrupt stops whatever is playing first.
type Speaker interface {
	Speak(ctx context.Context, text string, interrupt bool) error
}

// Notifier publishes stream lifecycle events to interested listeners.
type Notifier interface {
	Publish(event string, payload map[string]any)
}

var errStreamCancelled = errors.New("stream cancelled")

// Stream is one in-flight conversational answer.
type Stream struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	state StreamState
	text  string
}

// Cancel stops generation and reports whether an in-flight answer was
// interrupted. Safe to call more than once; a stream that already finished
// keeps its terminal state. Audio already handed to the speaker plays out.
func (s *Stream) Cancel() bool {
	s.mu.Lock()
	interrupted := s.state == StreamStreaming
	if interrupted {
		s.state = StreamCancelled
	}
	s.mu.Unlock()
	s.cancel()
	return interrupted
}

// State reports where the stream is in its lifecycle.
func (s *Stream) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Text returns the answer accumulated so far.
func (s *Stream) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Done is closed when the stream reaches a terminal state.
func (s *Stream) Done() <-chan struct{} { return s.done }

// finish moves to a terminal state unless cancellation already won the race.
func (s *Stream) finish(state StreamState) StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StreamStreaming {
		s.state = state
	}
	return s.state
}

func (s *Stream) cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StreamCancelled
}

func (s *Stream) setText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

// Converser streams model answers and speaks them sentence by sentence while
// generation is still in flight. At most one stream is active at a time;
// starting a new one cancels its predecessor.
type Converser struct {
	client   *Client
	speaker  Speaker
	prefs    *prefs.Manager
	metrics  *observability.Metrics
	notify   Notifier
	minChars int

	mu     sync.Mutex
	active *Stream
}

func NewConverser(client *Client, speaker Speaker, prefsMgr *prefs.Manager, metrics *observability.Metrics, notify Notifier, minChars int) *Converser {
	return &Converser{
		client:   client,
		speaker:  speaker,
		prefs:    prefsMgr,
		metrics:  metrics,
		notify:   notify,
		minChars: minChars,
	}
}

// CancelActive stops any in-flight stream and reports whether one was still
// streaming. New spoken commands take priority over an answer still being
// voiced.
func (c *Converser) CancelActive() bool {
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active == nil {
		return false
	}
	return active.Cancel()
}

// Active returns the current stream, or nil when the converser is idle.
func (c *Converser) Active() *Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		select {
		case <-c.active.done:
			return nil
		default:
			return c.active
		}
	}
	return nil
}

// Start launches generation for the prompt and returns immediately. Speech
// flows out of band as sentence-sized units become available.
func (c *Converser) Start(prompt string) *Stream {
	ctx, cancel := context.WithCancel(context.Background())
	stream := &Stream{
		cancel: cancel,
		done:   make(chan struct{}),
		state:  StreamStreaming,
	}

	c.mu.Lock()
	prev := c.active
	c.active = stream
	c.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}

	go c.run(ctx, stream, prompt)
	return stream
}

func (c *Converser) run(ctx context.Context, stream *Stream, prompt string) {
	defer close(stream.done)

	model := c.prefs.Snapshot().SelectedModel
	seg := newSegmenter(c.minChars)
	started := time.Now()
	spoke := false

	// Cancel means stop listening to the stream, not cut off the voice: a
	// unit already handed to the speaker plays out under its own context.
	speakCtx := context.WithoutCancel(ctx)

	c.event("started", map[string]any{"model": model})

	speakUnits := func(units []string) error {
		for _, unit := range units {
			if stream.cancelled() {
				return errStreamCancelled
			}
			if !spoke {
				spoke = true
				if c.metrics != nil {
					c.metrics.ObserveFirstSpeechLatency(time.Since(started))
				}
			}
			if err := c.speaker.Speak(speakCtx, unit, false); err != nil {
				log.Printf("converse: speak failed: %v", err)
			}
			c.event("speech_unit", map[string]any{"chars": len(unit)})
		}
		return nil
	}

	full, err := c.client.Generate(ctx, model, prompt, func(delta string) error {
		stream.setText(stream.Text() + delta)
		return speakUnits(seg.consume(delta))
	})
	stream.setText(full)

	switch {
	case err == nil:
		if speakErr := speakUnits(seg.finalize()); speakErr == nil {
			if stream.finish(StreamCompleted) == StreamCompleted {
				c.event("completed", map[string]any{"chars": len(full)})
				return
			}
		}
		c.event("cancelled", nil)
	case errors.Is(err, errStreamCancelled), errors.Is(err, context.Canceled), stream.cancelled():
		stream.finish(StreamCancelled)
		c.event("cancelled", nil)
	default:
		log.Printf("converse: generation failed: %v", err)
		stream.finish(StreamFailed)
		c.event("failed", map[string]any{"error": err.Error()})
	}
}

func (c *Converser) event(name string, payload map[string]any) {
	if c.metrics != nil {
		c.metrics.StreamEvents.WithLabelValues(name).Inc()
	}
	if c.notify != nil {
		c.notify.Publish("stream."+name, payload)
	}
}
