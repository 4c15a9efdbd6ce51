package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification outcomes.
const (
	ResultSent       = "sent"
	ResultFailed     = "failed"
	ResultSuppressed = "suppressed"
	ResultInvalid    = "invalid"
)

// Metrics holds the dispatch collectors. A nil *Metrics records nothing.
type Metrics struct {
	events        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	sendDuration  prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bouncemail",
			Name:      "events_total",
			Help:      "Total number of classified delivery events.",
		}, []string{"category"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bouncemail",
			Name:      "notifications_total",
			Help:      "Total number of chat notifications by outcome.",
		}, []string{"result"}),
		sendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bouncemail",
			Name:      "notification_send_duration_seconds",
			Help:      "Duration of chat notification sends.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// Event counts a classified event.
func (m *Metrics) Event(category string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(category).Inc()
}

// Notification counts a notification outcome.
func (m *Metrics) Notification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}

// ObserveSend records how long a send took.
func (m *Metrics) ObserveSend(d time.Duration) {
	if m == nil {
		return
	}
	m.sendDuration.Observe(d.Seconds())
}
