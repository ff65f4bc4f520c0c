package events

import (
	"time"

	"github.com/kilianp07/pvsim/core/accounting"
)

// RunFinished is published once per simulation request, whether it
// completed or was rejected. Err is empty for completed runs.
type RunFinished struct {
	RunID        string             `json:"run_id,omitempty"`
	Tariff       string             `json:"tariff,omitempty"`
	Mode         string             `json:"mode,omitempty"`
	StartedAt    time.Time          `json:"started_at"`
	Duration     time.Duration      `json:"duration_ns"`
	Summary      accounting.Summary `json:"summary"`
	FinalSoCKWh  float64            `json:"final_soc_kwh"`
	AnomalyHours int                `json:"anomaly_hours"`
	Err          string             `json:"error,omitempty"`
}

// Failed reports whether the run was rejected.
func (e RunFinished) Failed() bool { return e.Err != "" }
