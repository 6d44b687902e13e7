package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the assistant.
type Metrics struct {
	CommandsTotal      *prometheus.CounterVec
	HandlerFaults      prometheus.Counter
	TTSSpeaks          *prometheus.CounterVec
	TTSDemotions       prometheus.Counter
	RuntimeTransitions *prometheus.CounterVec
	StreamEvents       *prometheus.CounterVec
	FirstSpeechLatency prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		CommandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands dispatched by matched intent.",
		}, []string{"intent"}),
		HandlerFaults: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_faults_total",
			Help:      "Handler panics recovered at the dispatch boundary.",
		}),
		TTSSpeaks: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_speaks_total",
			Help:      "Speech attempts by provider and result.",
		}, []string{"provider", "result"}),
		TTSDemotions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tts_demotions_total",
			Help:      "Automatic demotions from the networked to the local voice.",
		}),
		RuntimeTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runtime_transitions_total",
			Help:      "AI runtime supervisor mode transitions.",
		}, []string{"mode"}),
		StreamEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "Conversation stream events by terminal state or flush.",
		}, []string{"event"}),
		FirstSpeechLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "first_speech_latency_ms",
			Help:      "Latency from fallback dispatch to first flushed speech unit in milliseconds.",
			Buckets:   []float64{100, 200, 300, 500, 700, 900, 1200, 2000, 5000},
		}),
	}
}

func (m *Metrics) ObserveFirstSpeechLatency(d time.Duration) {
	m.FirstSpeechLatency.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
