package metrics

import "time"

// RunEvent summarizes a finished simulation run.
type RunEvent struct {
	RunID              string
	Tariff             string
	Mode               string
	Hours              int
	AnomalyHours       int
	BoundaryCount      int
	ViolationCount     int
	TotalCostEUR       float64
	TotalRevenueEUR    float64
	NetBalanceEUR      float64
	FinalSoCKWh        float64
	SelfSufficiencyPct float64
	Duration           time.Duration
	Time               time.Time
}

// MetricsSink records simulation runs for observability purposes.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// HourPoint is one hour of a run, as exported to time series stores.
type HourPoint struct {
	Index       int
	Time        time.Time
	PriceCt     float64
	SoCKWh      float64
	GridDrawKWh float64
	FeedInKWh   float64
	CostEUR     float64
	RevenueEUR  float64
}

// HourRecorder is implemented by sinks able to store hourly series.
type HourRecorder interface {
	RecordHours(runID, tariff string, points []HourPoint) error
}

// FailureEvent records a run rejected before any hour was processed.
type FailureEvent struct {
	Reason string
	Time   time.Time
}

// FailureRecorder records rejected runs.
type FailureRecorder interface {
	RecordFailure(ev FailureEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error                    { return nil }
func (NopSink) RecordHours(string, string, []HourPoint) error { return nil }
func (NopSink) RecordFailure(FailureEvent) error            { return nil }
