package middleware

import (
	"testing"
	"time"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricHistogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg), WithNamespace("test"))

	d := differ.New(differ.WithObserver(m))
	steps := [][]string{
		{"a", "b", "c"},
		{"a", "b", "c"},
		{"c", "a", "x"},
	}
	for _, s := range steps {
		if _, err := d.Check(s); err != nil {
			t.Fatal(err)
		}
	}

	if got := metricCounterValue(t, m.checksTotal.WithLabelValues("true")); got != 2 {
		t.Errorf("checks_total{dirty=true} = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.checksTotal.WithLabelValues("false")); got != 1 {
		t.Errorf("checks_total{dirty=false} = %v, want 1", got)
	}

	// a,b,c added; then x added, b removed, c and a moved.
	want := map[string]float64{KindAdded: 4, KindRemoved: 1, KindMoved: 2, KindIdentity: 0}
	for kind, v := range want {
		if got := metricCounterValue(t, m.changesTotal.WithLabelValues(kind)); got != v {
			t.Errorf("changes_total{kind=%s} = %v, want %v", kind, got, v)
		}
	}
	if got := metricHistogramCount(t, m.checkDuration); got != 3 {
		t.Errorf("check_duration_seconds count = %d, want 3", got)
	}
	if got := metricHistogramCount(t, m.collectionLength); got != 3 {
		t.Errorf("collection_length count = %d, want 3", got)
	}
}

func TestPrometheusRegistersNamespacedMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(
		WithRegistry(reg),
		WithNamespace("ns"),
		WithSubsystem("sub"),
		WithConstLabels(prometheus.Labels{"app": "x"}),
		WithBuckets([]float64{0.1, 1}),
	)
	m.ObserveCheck(differ.Stats{Length: 2, Dirty: true, Added: 2, Duration: time.Millisecond})

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"ns_sub_checks_total",
		"ns_sub_changes_total",
		"ns_sub_check_duration_seconds",
		"ns_sub_collection_length",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered; have %v", want, names)
		}
	}
}

func TestPrometheusDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Prometheus(WithRegistry(reg))
	defer func() {
		if recover() == nil {
			t.Error("second Prometheus() on the same registry did not panic")
		}
	}()
	Prometheus(WithRegistry(reg))
}
