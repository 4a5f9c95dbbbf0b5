package metrics

import "github.com/prometheus/client_golang/prometheus"

// HoneypotMetrics exposes counters/histograms for the conversation engine.
type HoneypotMetrics struct {
	registerer      prometheus.Registerer
	inboundTotal    *prometheus.CounterVec
	scamDetections  *prometheus.CounterVec
	llmRequests     *prometheus.CounterVec
	keyRotations    prometheus.Counter
	fallbackReplies *prometheus.CounterVec
	callbacks       *prometheus.CounterVec
	turnLatency     prometheus.Histogram
}

func NewHoneypotMetrics(reg prometheus.Registerer) *HoneypotMetrics {
	m := &HoneypotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "engine",
			Name:      "inbound_messages_total",
			Help:      "Total inbound honeypot messages",
		}, []string{"status"}),
		scamDetections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "engine",
			Name:      "scam_detections_total",
			Help:      "Total scam classifications by detection method",
		}, []string{"method"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "model",
			Name:      "requests_total",
			Help:      "Total model gateway calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		keyRotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "model",
			Name:      "key_rotations_total",
			Help:      "Total credential rotations triggered by quota errors",
		}),
		fallbackReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "engine",
			Name:      "fallback_replies_total",
			Help:      "Total canned fallback replies served by stage",
		}, []string{"stage"}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeypot",
			Subsystem: "callback",
			Name:      "deliveries_total",
			Help:      "Total intelligence callback attempts",
		}, []string{"status"}),
		turnLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "honeypot",
			Subsystem: "engine",
			Name:      "turn_latency_seconds",
			Help:      "Latency of full turn processing",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m.registerer = reg
	reg.MustRegister(
		m.inboundTotal,
		m.scamDetections,
		m.llmRequests,
		m.keyRotations,
		m.fallbackReplies,
		m.callbacks,
		m.turnLatency,
	)
	return m
}

// RegisterActiveSessions exposes a gauge backed by the session store count.
func (m *HoneypotMetrics) RegisterActiveSessions(count func() float64) {
	if m == nil {
		return
	}
	m.registerer.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "honeypot",
		Subsystem: "engine",
		Name:      "active_sessions",
		Help:      "Number of live sessions in the store",
	}, count))
}

func (m *HoneypotMetrics) ObserveInbound(status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(status).Inc()
}

func (m *HoneypotMetrics) ObserveScamDetection(method string) {
	if m == nil {
		return
	}
	m.scamDetections.WithLabelValues(method).Inc()
}

func (m *HoneypotMetrics) ObserveLLMRequest(operation, outcome string) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(operation, outcome).Inc()
}

func (m *HoneypotMetrics) ObserveKeyRotation() {
	if m == nil {
		return
	}
	m.keyRotations.Inc()
}

func (m *HoneypotMetrics) ObserveFallback(stage string) {
	if m == nil {
		return
	}
	m.fallbackReplies.WithLabelValues(stage).Inc()
}

func (m *HoneypotMetrics) ObserveCallback(status string) {
	if m == nil {
		return
	}
	m.callbacks.WithLabelValues(status).Inc()
}

func (m *HoneypotMetrics) ObserveTurnLatency(seconds float64) {
	if m == nil {
		return
	}
	m.turnLatency.Observe(seconds)
}
