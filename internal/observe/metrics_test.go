package observe

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetrics_CreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestRecordEvaluation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordEvaluation(ctx, "local", true)
	m.RecordEvaluation(ctx, "remote", false)

	rm := collect(t, reader)
	found := findMetric(rm, "linecue.evaluations")
	if found == nil {
		t.Fatal("linecue.evaluations metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Errorf("total evaluations = %d, want 2", total)
	}
}

func TestEvaluationDurationHistogram(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.EvaluationDuration.Record(ctx, 0.002)
	m.EvaluationDuration.Record(ctx, 1.2)

	rm := collect(t, reader)
	found := findMetric(rm, "linecue.evaluation.duration")
	if found == nil {
		t.Fatal("linecue.evaluation.duration metric not found")
	}

	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", found.Data)
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no histogram data points recorded")
	}
	if got := hist.DataPoints[0].Count; got != 2 {
		t.Errorf("histogram count = %d, want 2", got)
	}
}

func TestRecordPrescreenShortcut(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordPrescreenShortcut(ctx, "perfect")
	m.RecordPrescreenShortcut(ctx, "confident")
	m.RecordPrescreenShortcut(ctx, "confident")

	rm := collect(t, reader)
	found := findMetric(rm, "linecue.prescreen.shortcuts")
	if found == nil {
		t.Fatal("linecue.prescreen.shortcuts metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("unexpected data type %T", found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("total shortcuts = %d, want 3", total)
	}
}

func TestDefaultMetricsIsSingleton(t *testing.T) {
	a := DefaultMetrics()
	b := DefaultMetrics()
	if a != b {
		t.Error("DefaultMetrics returned different instances")
	}
}
