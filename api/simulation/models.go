package simulation

import (
	"encoding/json"
	"time"

	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/accounting"
	"github.com/kilianp07/pvsim/core/diag"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/sim"
	"github.com/kilianp07/pvsim/core/tariff"
)

// Hour is one input hour as sent by clients.
type Hour struct {
	Timestamp         *time.Time `json:"timestamp,omitempty"`
	Hour              int        `json:"hour"`
	GenerationKWh     float64    `json:"generation_kwh"`
	FixedLoadKWh      float64    `json:"fixed_load_kwh"`
	DeferrableLoadKWh float64    `json:"deferrable_load_kwh"`
	SpotCt            *float64   `json:"spot_ct,omitempty"`
}

func (h Hour) record(i int) model.HourRecord {
	r := model.HourRecord{
		Index:             i,
		Hour:              h.Hour,
		GenerationKWh:     h.GenerationKWh,
		FixedLoadKWh:      h.FixedLoadKWh,
		DeferrableLoadKWh: h.DeferrableLoadKWh,
	}
	if h.Timestamp != nil {
		r.Time = h.Timestamp.UTC()
	}
	if h.SpotCt != nil {
		r.SpotCt = *h.SpotCt
		r.HasSpot = true
	}
	return r
}

// Request runs a simulation. Simulation holds overrides applied on top of
// the server defaults. Without hours a synthetic profile is generated.
type Request struct {
	Simulation  json.RawMessage         `json:"simulation,omitempty"`
	Hours       []Hour                  `json:"hours,omitempty"`
	Synthetic   *config.GeneratorConfig `json:"synthetic,omitempty"`
	IncludeRows bool                    `json:"include_rows"`
}

// Response is the outcome of a simulation.
type Response struct {
	RunID        string                `json:"run_id"`
	Tariff       tariff.Kind           `json:"tariff"`
	Summary      accounting.Summary    `json:"summary"`
	Daily        []accounting.DayTotal `json:"daily"`
	FinalSoCKWh  float64               `json:"final_soc_kwh"`
	AnomalyHours int                   `json:"anomaly_hours"`
	Diagnostics  diag.Report           `json:"diagnostics"`
	Series       sim.Series            `json:"series"`
	Rows         []sim.Row             `json:"rows,omitempty"`
}

func newResponse(res *sim.Result, rows bool) Response {
	out := Response{
		RunID:        res.RunID,
		Tariff:       res.Tariff,
		Summary:      res.Summary,
		Daily:        res.Daily,
		FinalSoCKWh:  res.FinalSoCKWh,
		AnomalyHours: res.AnomalyHours(),
		Diagnostics:  res.Diagnostics,
		Series:       res.Series(),
	}
	if rows {
		out.Rows = res.Rows
	}
	return out
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
