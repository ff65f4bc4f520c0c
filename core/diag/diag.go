// Package diag records per-hour anomalies that a simulation run recovered
// from without aborting.
package diag

import "fmt"

// Kind classifies a contained anomaly.
type Kind string

const (
	// BoundaryCondition marks a degenerate optimizer window or an index that
	// fell outside the horizon. The affected shift is skipped.
	BoundaryCondition Kind = "boundary_condition"
	// InvariantViolation marks a state of charge computed outside
	// [0, capacity] before clamping.
	InvariantViolation Kind = "invariant_violation"
)

// Stage names used in diagnostics.
const (
	StageShift   = "load_shift"
	StageBattery = "battery"
)

// Diagnostic describes one recovered anomaly.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Stage   string `json:"stage"`
	Index   int    `json:"index"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s[%s] hour %d: %s", d.Kind, d.Stage, d.Index, d.Message)
}

// Report collects diagnostics for one run.
type Report struct {
	Items []Diagnostic `json:"items"`
}

// Add appends a diagnostic.
func (r *Report) Add(d Diagnostic) {
	r.Items = append(r.Items, d)
}

// Merge appends all diagnostics of other.
func (r *Report) Merge(other []Diagnostic) {
	r.Items = append(r.Items, other...)
}

// Count returns the number of diagnostics of the given kind.
func (r Report) Count(kind Kind) int {
	n := 0
	for _, d := range r.Items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// AffectedHours returns how many distinct hours needed defensive handling.
func (r Report) AffectedHours() int {
	seen := make(map[int]struct{}, len(r.Items))
	for _, d := range r.Items {
		seen[d.Index] = struct{}{}
	}
	return len(seen)
}

// Empty reports whether no anomaly was recorded.
func (r Report) Empty() bool { return len(r.Items) == 0 }
