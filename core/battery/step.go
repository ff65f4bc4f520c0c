// Package battery simulates the state of charge of a home battery hour by
// hour.
package battery

import (
	"math"

	"github.com/kilianp07/pvsim/core/model"
)

// DefaultEfficiency is the charge and discharge efficiency used when none is
// configured.
const DefaultEfficiency = 0.96

// DefaultCapacityKWh is the default usable capacity.
const DefaultCapacityKWh = 10.46

// clampTolerance ignores float noise when deciding whether a clamp was an
// invariant violation.
const clampTolerance = 1e-9

// Params are the constants of a battery for one run.
type Params struct {
	CapacityKWh  float64 `json:"capacity_kwh"`
	ChargeEff    float64 `json:"charge_efficiency"`
	DischargeEff float64 `json:"discharge_efficiency"`
}

// Validate checks capacity and efficiencies.
func (p Params) Validate() error {
	if p.CapacityKWh < 0 || !model.Finite(p.CapacityKWh) {
		return model.NewConfigurationError("battery_capacity_kwh", "must not be negative, got %v", p.CapacityKWh)
	}
	if !(p.ChargeEff > 0 && p.ChargeEff <= 1) {
		return model.NewConfigurationError("charge_efficiency", "must be in (0,1], got %v", p.ChargeEff)
	}
	if !(p.DischargeEff > 0 && p.DischargeEff <= 1) {
		return model.NewConfigurationError("discharge_efficiency", "must be in (0,1], got %v", p.DischargeEff)
	}
	return nil
}

// State is the battery state between two hours.
type State struct {
	SoCKWh float64 `json:"soc_kwh"`
}

// StepInput is what one hour offers to the battery.
type StepInput struct {
	GenerationKWh float64
	LoadKWh       float64
	// GridAllowanceKWh bounds the grid charge of this hour. Zero disables
	// grid charging.
	GridAllowanceKWh float64
}

// StepOutput are the flows of one hour and the state of charge after it.
type StepOutput struct {
	ChargeKWh     float64 `json:"charge_kwh"`
	GridChargeKWh float64 `json:"grid_charge_kwh"`
	DischargeKWh  float64 `json:"discharge_kwh"`
	SoCKWh        float64 `json:"soc_kwh"`
	// Violation is set when soc left [0, capacity] before clamping.
	Violation bool `json:"violation"`
	// ClampedKWh is the absolute amount removed by clamping.
	ClampedKWh float64 `json:"clamped_kwh"`
}

// Step advances the battery by one hour. It does not mutate s.
func Step(p Params, s State, in StepInput) (State, StepOutput) {
	var out StepOutput
	soc := s.SoCKWh

	surplus := math.Max(in.GenerationKWh-in.LoadKWh, 0)
	out.ChargeKWh = math.Max(math.Min(p.CapacityKWh-soc, surplus), 0)
	soc = out.clamp(soc+out.ChargeKWh*p.ChargeEff, p.CapacityKWh)

	if in.GridAllowanceKWh > 0 && soc < p.CapacityKWh {
		out.GridChargeKWh = math.Min(p.CapacityKWh-soc, in.GridAllowanceKWh)
		soc = out.clamp(soc+out.GridChargeKWh*p.ChargeEff, p.CapacityKWh)
	}

	deficit := math.Max(in.LoadKWh-in.GenerationKWh, 0)
	out.DischargeKWh = math.Max(math.Min(soc, deficit), 0)
	soc = out.clamp(soc-out.DischargeKWh/p.DischargeEff, p.CapacityKWh)

	out.SoCKWh = soc
	return State{SoCKWh: soc}, out
}

func (o *StepOutput) clamp(v, capacity float64) float64 {
	c := math.Min(math.Max(v, 0), capacity)
	if d := math.Abs(v - c); d > 0 {
		o.ClampedKWh += d
		if d > clampTolerance {
			o.Violation = true
		}
	}
	return c
}
