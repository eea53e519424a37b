package metrics

import "github.com/prometheus/client_golang/prometheus"

// DialogueMetrics exposes counters/histograms for the dialogue engine.
type DialogueMetrics struct {
	turnsTotal          *prometheus.CounterVec
	decisionsTotal      *prometheus.CounterVec
	interpreterFallback prometheus.Counter
	searchLatency       prometheus.Histogram
}

func NewDialogueMetrics(reg prometheus.Registerer) *DialogueMetrics {
	m := &DialogueMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopguide",
			Subsystem: "dialogue",
			Name:      "turns_total",
			Help:      "Total processed dialogue turns by outcome",
		}, []string{"outcome"}),
		decisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopguide",
			Subsystem: "dialogue",
			Name:      "decisions_total",
			Help:      "Total decisions by type",
		}, []string{"type"}),
		interpreterFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shopguide",
			Subsystem: "dialogue",
			Name:      "interpreter_fallback_total",
			Help:      "Turns where the AI interpreter fell back to patterns",
		}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shopguide",
			Subsystem: "dialogue",
			Name:      "search_latency_seconds",
			Help:      "Latency of catalog search calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.decisionsTotal, m.interpreterFallback, m.searchLatency)
	return m
}

func (m *DialogueMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *DialogueMetrics) ObserveDecision(decisionType string) {
	if m == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(decisionType).Inc()
}

func (m *DialogueMetrics) ObserveInterpreterFallback() {
	if m == nil {
		return
	}
	m.interpreterFallback.Inc()
}

func (m *DialogueMetrics) ObserveSearchLatency(seconds float64) {
	if m == nil {
		return
	}
	m.searchLatency.Observe(seconds)
}
