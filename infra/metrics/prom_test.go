package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/pvsim/core/metrics"
)

func TestPromSink_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	ev := coremetrics.RunEvent{
		Tariff:         "dynamic_dynamic_fee",
		Mode:           "continuous",
		NetBalanceEUR:  12.5,
		FinalSoCKWh:    3,
		ViolationCount: 2,
		Duration:       3 * time.Millisecond,
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP simulation_runs_total Number of completed simulation runs
# TYPE simulation_runs_total counter
simulation_runs_total{mode="continuous",tariff="dynamic_dynamic_fee"} 1
`
	if err := testutil.CollectAndCompare(sink.runs, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if v := testutil.ToFloat64(sink.balance.WithLabelValues("dynamic_dynamic_fee")); v != 12.5 {
		t.Errorf("expected balance 12.5 got %v", v)
	}
	if v := testutil.ToFloat64(sink.anomalies.WithLabelValues("invariant_violation")); v != 2 {
		t.Errorf("expected 2 violations got %v", v)
	}
	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("duration not recorded")
	}

	if err := sink.RecordFailure(coremetrics.FailureEvent{Reason: "x"}); err != nil {
		t.Fatalf("failure error: %v", err)
	}
	if v := testutil.ToFloat64(sink.failures); v != 1 {
		t.Errorf("expected 1 failure got %v", v)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	b, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	_ = a.RecordRun(coremetrics.RunEvent{Tariff: "static", Mode: "continuous"})
	_ = b.RecordRun(coremetrics.RunEvent{Tariff: "static", Mode: "continuous"})
	if v := testutil.ToFloat64(a.(*PromSink).runs.WithLabelValues("static", "continuous")); v != 2 {
		t.Errorf("expected shared counter at 2 got %v", v)
	}
}

func TestRegisteredSinks(t *testing.T) {
	if _, err := coremetrics.NewMetricsSink(nil); err != nil {
		t.Fatalf("nop: %v", err)
	}
}
