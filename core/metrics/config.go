package metrics

import "github.com/kilianp07/pvsim/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr enables the standalone /metrics listener when set.
	PrometheusAddr string `json:"prometheus_addr"`
}
