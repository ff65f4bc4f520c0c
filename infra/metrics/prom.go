package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/pvsim/core/metrics"
)

// PromSink records simulation runs in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	failures  prometheus.Counter
	anomalies *prometheus.CounterVec
	balance   *prometheus.GaugeVec
	finalSoC  *prometheus.GaugeVec
	duration  prometheus.Histogram
}

// NewPromSink registers simulation metrics on the default Prometheus registerer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simulation_runs_total",
			Help: "Number of completed simulation runs",
		}, []string{"tariff", "mode"}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulation_failures_total",
			Help: "Number of runs rejected because of invalid configuration",
		}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simulation_anomalies_total",
			Help: "Hours recovered by defensive handling",
		}, []string{"kind"}),
		balance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simulation_net_balance_eur",
			Help: "Net balance (cost minus revenue) of the last run",
		}, []string{"tariff"}),
		finalSoC: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "simulation_final_soc_kwh",
			Help: "Battery state of charge at the end of the last run",
		}, []string{"tariff"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulation_duration_seconds",
			Help:    "Wall time of a simulation run",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
	}
	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.failures, err = register(reg, s.failures); err != nil {
		return nil, err
	}
	if s.anomalies, err = register(reg, s.anomalies); err != nil {
		return nil, err
	}
	if s.balance, err = register(reg, s.balance); err != nil {
		return nil, err
	}
	if s.finalSoC, err = register(reg, s.finalSoC); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates counters and gauges for a finished run.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Tariff, ev.Mode).Inc()
	s.anomalies.WithLabelValues("boundary_condition").Add(float64(ev.BoundaryCount))
	s.anomalies.WithLabelValues("invariant_violation").Add(float64(ev.ViolationCount))
	s.balance.WithLabelValues(ev.Tariff).Set(ev.NetBalanceEUR)
	s.finalSoC.WithLabelValues(ev.Tariff).Set(ev.FinalSoCKWh)
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordFailure counts a rejected run.
func (s *PromSink) RecordFailure(coremetrics.FailureEvent) error {
	s.failures.Inc()
	return nil
}
