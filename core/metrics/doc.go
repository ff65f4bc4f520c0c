// Package metrics defines the sinks simulation runs report to. A sink
// implements MetricsSink and may additionally implement HourRecorder or
// FailureRecorder. Sinks are built from configuration through the registry in
// factory.go; infra/metrics registers the Prometheus and InfluxDB sinks.
package metrics
