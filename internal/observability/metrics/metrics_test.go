package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestDialogueMetricsObserve(t *testing.T) {
	m := NewDialogueMetrics(prometheus.NewRegistry())
	m.ObserveTurn("recommend")
	m.ObserveDecision("requery")
	m.ObserveInterpreterFallback()
	m.ObserveSearchLatency(0.25)
}

func TestDialogueMetricsNilReceiver(t *testing.T) {
	var m *DialogueMetrics
	// Every observe method must be safe on a nil receiver.
	m.ObserveTurn("invalid")
	m.ObserveDecision("invalid")
	m.ObserveInterpreterFallback()
	m.ObserveSearchLatency(1.0)
}

func TestDialogueMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDialogueMetrics(reg)
	m.ObserveTurn("requery")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected registered metric families")
	}
}
