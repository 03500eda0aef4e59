package obs

import "testing"

func TestMockMetricsIncCounter(t *testing.T) {
	m := NewMockMetrics()
	m.IncCounter(MetricDocsTotal, map[string]string{"status": "ok"})
	m.IncCounter(MetricDocsTotal, map[string]string{"status": "ok"})
	if m.Counters[MetricDocsTotal] != 2 {
		t.Fatalf("Counters[%s] = %d, want 2", MetricDocsTotal, m.Counters[MetricDocsTotal])
	}
}

func TestMockMetricsObserveHistogram(t *testing.T) {
	m := NewMockMetrics()
	m.ObserveHistogram(MetricStageDurationMS, 12.5, map[string]string{"stage": "chunk"})
	m.ObserveHistogram(MetricStageDurationMS, 7.0, map[string]string{"stage": "chunk"})
	if len(m.Hists[MetricStageDurationMS]) != 2 {
		t.Fatalf("expected 2 recorded observations, got %d", len(m.Hists[MetricStageDurationMS]))
	}
}

func TestOtelMetricsNilSafe(t *testing.T) {
	var o *OtelMetrics
	o.IncCounter("noop", nil)
	o.ObserveHistogram("noop", 1, nil)
}
