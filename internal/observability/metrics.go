package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Commands         *prometheus.CounterVec
	IntentRejections *prometheus.CounterVec
	StoreOperations  *prometheus.CounterVec
	UpstreamLatency  prometheus.Histogram
	UpstreamFailures prometheus.Counter
	ActiveWSChats    prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Commands: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Interpreted commands by action and result.",
		}, []string{"action", "result"}),
		IntentRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intent_rejections_total",
			Help:      "Rejected intents by reason.",
		}, []string{"reason"}),
		StoreOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Task store operations by op and result.",
		}, []string{"op", "result"}),
		UpstreamLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_latency_ms",
			Help:      "Latency of upstream model classification in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000},
		}),
		UpstreamFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_failures_total",
			Help:      "Upstream model calls that failed after retries.",
		}),
		ActiveWSChats: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_ws_chats",
			Help:      "Number of open websocket chat connections.",
		}),
	}
}

func (m *Metrics) ObserveUpstreamLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamLatency.Observe(float64(d.Milliseconds()))
}

func (m *Metrics) ObserveCommand(action, result string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(action, result).Inc()
}

func (m *Metrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.IntentRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveStoreOp(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreOperations.WithLabelValues(op, result).Inc()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
