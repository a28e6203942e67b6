package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/canopy/pkg/dom/memdom"
	"github.com/vango-dev/canopy/pkg/render"
	"github.com/vango-dev/canopy/pkg/vdom"
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

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsRecordDrains(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	items := []string{"a", "b", "c"}
	r := render.New(memdom.NewDocument(), func() *vdom.VNode {
		return vdom.Ul(vdom.Range(items, func(s string, _ int) *vdom.VNode {
			return vdom.Li(vdom.Key(s), vdom.Text(s))
		}))
	}, render.WithSync(true), render.WithObserver(m))
	if err := r.Mount(); err != nil {
		t.Fatal(err)
	}

	if got := metricCounterValue(t, m.drains.WithLabelValues("sync")); got != 1 {
		t.Errorf("sync drains = %v, want 1", got)
	}
	created := metricCounterValue(t, m.instructions.WithLabelValues("create"))
	if created == 0 {
		t.Error("mount recorded no create instructions")
	}
	if got, want := metricGaugeValue(t, m.instances), float64(r.Instances()); got != want {
		t.Errorf("instances = %v, want %v", got, want)
	}

	items = []string{"c", "a", "b"}
	r.Invalidate()

	if got := metricCounterValue(t, m.drains.WithLabelValues("sync")); got != 2 {
		t.Errorf("sync drains = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.instructions.WithLabelValues("move")); got != 1 {
		t.Errorf("moves = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.instructions.WithLabelValues("create")); got != created {
		t.Errorf("creates after reorder = %v, want %v", got, created)
	}
	if got := metricCounterValue(t, m.invalidations); got != 1 {
		t.Errorf("invalidations = %v, want 1", got)
	}
	if got := metricHistogramCount(t, m.drainDuration); got != 2 {
		t.Errorf("duration samples = %d, want 2", got)
	}
}

func TestMetricsFrameMode(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	m.DrainFinished(render.DrainStats{Rendered: 3, Removed: 2})

	if got := metricCounterValue(t, m.drains.WithLabelValues("frame")); got != 1 {
		t.Errorf("frame drains = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.renders); got != 3 {
		t.Errorf("renders = %v, want 3", got)
	}
	if got := metricCounterValue(t, m.instructions.WithLabelValues("remove")); got != 2 {
		t.Errorf("removes = %v, want 2", got)
	}
}

func TestMetricsRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg), WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"app": "demo"}),
		WithBuckets([]float64{0.001, 0.01}))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	// Vectors without children are not gathered until first use.
	for _, want := range []string{
		"canopy_ui_drain_duration_seconds",
		"canopy_ui_renders_total",
		"canopy_ui_invalidations_total",
		"canopy_ui_instances",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered; have %v", want, names)
		}
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(WithRegistry(reg))
	defer func() {
		if recover() == nil {
			t.Error("second NewMetrics on the same registry did not panic")
		}
	}()
	NewMetrics(WithRegistry(reg))
}
