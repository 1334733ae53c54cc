package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the bot. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Messages          *prometheus.CounterVec
	Replies           *prometheus.CounterVec
	GenerationErrors  *prometheus.CounterVec
	SendErrors        prometheus.Counter
	GenerationLatency prometheus.Histogram
	TrackedUsers      prometheus.Gauge
	FeedSubscribers   prometheus.Gauge
	RulesReloads      *prometheus.CounterVec

	window *LatencyWindow
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Messages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Inbound messages by chat kind and dispatch decision.",
		}, []string{"chat_kind", "decision"}),
		Replies: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_total",
			Help:      "Replies produced by source.",
		}, []string{"source"}),
		GenerationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_errors_total",
			Help:      "Failed generation calls by error class.",
		}, []string{"code"}),
		SendErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_errors_total",
			Help:      "Replies that could not be delivered.",
		}),
		GenerationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_ms",
			Help:      "Latency of generation calls in milliseconds.",
			Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 15000, 30000},
		}),
		TrackedUsers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_users",
			Help:      "Users present in the interaction ledger.",
		}),
		FeedSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_subscribers",
			Help:      "Connected live feed websocket clients.",
		}),
		RulesReloads: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rules_reloads_total",
			Help:      "Rule file reload attempts by result.",
		}, []string{"result"}),
		window: NewLatencyWindow(256),
	}
}

func (m *Metrics) ObserveMessage(chatKind, decision string) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues(chatKind, decision).Inc()
}

func (m *Metrics) ObserveReply(source string) {
	if m == nil {
		return
	}
	m.Replies.WithLabelValues(source).Inc()
	m.window.ObserveIndicator(source)
}

func (m *Metrics) ObserveGeneration(d time.Duration, errCode string) {
	if m == nil {
		return
	}
	ms := float64(d.Milliseconds())
	m.GenerationLatency.Observe(ms)
	m.window.Observe(StageGeneration, ms)
	if errCode != "" {
		m.GenerationErrors.WithLabelValues(errCode).Inc()
	}
}

func (m *Metrics) ObserveTurn(d time.Duration) {
	if m == nil {
		return
	}
	m.window.Observe(StageTurnTotal, float64(d.Milliseconds()))
}

func (m *Metrics) ObserveSendError() {
	if m == nil {
		return
	}
	m.SendErrors.Inc()
}

func (m *Metrics) SetTrackedUsers(n int) {
	if m == nil {
		return
	}
	m.TrackedUsers.Set(float64(n))
}

func (m *Metrics) SetFeedSubscribers(n int) {
	if m == nil {
		return
	}
	m.FeedSubscribers.Set(float64(n))
}

func (m *Metrics) ObserveRulesReload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RulesReloads.WithLabelValues(result).Inc()
}

// Latency returns the rolling latency snapshot.
func (m *Metrics) Latency() LatencySnapshot {
	if m == nil {
		return LatencySnapshot{GeneratedAt: time.Now().UTC()}
	}
	return m.window.Snapshot()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
