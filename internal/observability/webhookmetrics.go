package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebhookMetrics covers the ingestion pipeline and the outbound dispatcher.
type WebhookMetrics struct {
	eventsTotal     *prometheus.CounterVec
	dispatchTotal   *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
	queueDepth      prometheus.GaugeFunc
}

// NewWebhookMetrics wires the domain counters. queueLen feeds the queue depth
// gauge and must be safe for concurrent calls.
func NewWebhookMetrics(queueLen func() float64) *WebhookMetrics {
	m := &WebhookMetrics{
		eventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triggerd",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Webhook deliveries by platform and terminal outcome.",
		}, []string{"platform", "outcome"}),
		dispatchTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "triggerd",
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "Outbound response dispatches by platform and result.",
		}, []string{"platform", "result"}),
		handlerDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "triggerd",
			Subsystem: "webhook",
			Name:      "handler_duration_seconds",
			Help:      "Verify+parse+normalize+filter latency per delivery.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"platform"}),
	}
	if queueLen != nil {
		m.queueDepth = promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "triggerd",
			Subsystem: "webhook",
			Name:      "queue_depth",
			Help:      "Messages waiting in the handoff queue.",
		}, queueLen)
	}
	return m
}

func (m *WebhookMetrics) ObserveEvent(platform, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(platform, outcome).Inc()
	m.handlerDuration.WithLabelValues(platform).Observe(seconds)
}

func (m *WebhookMetrics) ObserveDispatch(platform, result string) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(platform, result).Inc()
}
