package sim

import (
	"fmt"
	"time"

	"github.com/kilianp07/pvsim/core/accounting"
	"github.com/kilianp07/pvsim/core/battery"
	"github.com/kilianp07/pvsim/core/diag"
	"github.com/kilianp07/pvsim/core/shift"
	"github.com/kilianp07/pvsim/core/tariff"
)

// Row is one line of the hourly result table.
type Row struct {
	Index                  int       `json:"index"`
	Time                   time.Time `json:"time,omitempty"`
	Hour                   int       `json:"hour"`
	GenerationKWh          float64   `json:"generation_kwh"`
	FixedLoadKWh           float64   `json:"fixed_load_kwh"`
	DeferrableLoadKWh      float64   `json:"deferrable_load_kwh"`
	OptimizedDeferrableKWh float64   `json:"optimized_deferrable_kwh"`
	SpotCt                 float64   `json:"spot_ct"`
	HasSpot                bool      `json:"has_spot"`
	PriceCt                float64   `json:"price_ct"`
	SoCKWh                 float64   `json:"soc_kwh"`
	accounting.HourResult
}

// Result is the outcome of one run.
type Result struct {
	RunID       string                `json:"run_id"`
	StartedAt   time.Time             `json:"started_at"`
	Tariff      tariff.Kind           `json:"tariff"`
	Rows        []Row                 `json:"rows"`
	Summary     accounting.Summary    `json:"summary"`
	Daily       []accounting.DayTotal `json:"daily"`
	Plans       []battery.DayPlan     `json:"plans,omitempty"`
	Moves       []shift.Move          `json:"moves,omitempty"`
	FinalSoCKWh float64               `json:"final_soc_kwh"`
	Diagnostics diag.Report           `json:"diagnostics"`
}

// AnomalyHours returns how many hours needed defensive handling.
func (r *Result) AnomalyHours() int {
	return r.Diagnostics.AffectedHours()
}

// HourResults returns the accounted part of every row.
func (r *Result) HourResults() []accounting.HourResult {
	out := make([]accounting.HourResult, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.HourResult
	}
	return out
}

// Series are the time series used by charts.
type Series struct {
	Labels  []string  `json:"labels"`
	PriceCt []float64 `json:"price_ct"`
	SpotCt  []float64 `json:"spot_ct,omitempty"`
	SoCKWh  []float64 `json:"soc_kwh"`
}

// Series extracts price, spot price and state of charge over time. Spot is
// left empty when the input carried no spot prices.
func (r *Result) Series() Series {
	s := Series{
		Labels:  make([]string, len(r.Rows)),
		PriceCt: make([]float64, len(r.Rows)),
		SoCKWh:  make([]float64, len(r.Rows)),
	}
	spot := true
	for i, row := range r.Rows {
		s.Labels[i] = row.Label()
		s.PriceCt[i] = row.PriceCt
		s.SoCKWh[i] = row.SoCKWh
		spot = spot && row.HasSpot
	}
	if spot && len(r.Rows) > 0 {
		s.SpotCt = make([]float64, len(r.Rows))
		for i, row := range r.Rows {
			s.SpotCt[i] = row.SpotCt
		}
	}
	return s
}

// Label returns the timestamp of the row, or its index and hour of day when
// no timestamp is known.
func (r Row) Label() string {
	if !r.Time.IsZero() {
		return r.Time.Format("2006-01-02 15:04")
	}
	return fmt.Sprintf("#%d h%02d", r.Index, r.Hour)
}
