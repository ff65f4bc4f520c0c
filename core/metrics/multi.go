package metrics

import "errors"

// MultiSink fans out every record to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink returns a sink forwarding to all given sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the event to all sinks. Every sink is tried; the
// returned error joins all failures.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordHours forwards hourly points to sinks implementing HourRecorder.
func (m *MultiSink) RecordHours(runID, tariff string, points []HourPoint) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(HourRecorder); ok {
			if err := rec.RecordHours(runID, tariff, points); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RecordFailure forwards failures to sinks implementing FailureRecorder.
func (m *MultiSink) RecordFailure(ev FailureEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(FailureRecorder); ok {
			if err := rec.RecordFailure(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
