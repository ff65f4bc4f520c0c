package battery

import (
	"fmt"
	"math"

	"github.com/kilianp07/pvsim/core/diag"
	"github.com/kilianp07/pvsim/core/logger"
	"github.com/kilianp07/pvsim/core/model"
)

// Mode selects how the state of charge is carried across days.
type Mode string

const (
	// ModeContinuous keeps the state of charge across the whole horizon.
	ModeContinuous Mode = "continuous"
	// ModeDailyReset empties the battery at the start of every day and plans
	// one grid charge from the day's energy deficit.
	ModeDailyReset Mode = "daily_reset"
)

// ParseMode validates a configured mode. An empty string selects
// ModeContinuous.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeContinuous:
		return ModeContinuous, nil
	case ModeDailyReset:
		return ModeDailyReset, nil
	}
	return "", model.NewConfigurationError("battery_mode", "unknown mode %q", s)
}

// ChargeWindow is the inclusive range of hours of day in which the daily
// grid charge may happen.
type ChargeWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// DefaultChargeWindow covers the night hours 0 to 6.
var DefaultChargeWindow = ChargeWindow{StartHour: 0, EndHour: 6}

// Contains reports whether hour lies in the window.
func (w ChargeWindow) Contains(hour int) bool {
	return hour >= w.StartHour && hour <= w.EndHour
}

// Input is one hour as seen by the dispatcher.
type Input struct {
	Index         int
	Day           int
	Hour          int
	GenerationKWh float64
	LoadKWh       float64 // fixed plus optimized deferrable load
	PriceCt       float64
}

// DayPlan describes the daily-reset budget of one day.
type DayPlan struct {
	Day          int     `json:"day"`
	DeficitKWh   float64 `json:"deficit_kwh"`
	ChargeIndex  int     `json:"charge_index"` // -1 when no grid charge is planned
	AllowanceKWh float64 `json:"allowance_kwh"`
}

// Schedule is the dispatcher output for a horizon.
type Schedule struct {
	Steps       []StepOutput
	FinalSoCKWh float64
	Plans       []DayPlan
	Diagnostics []diag.Diagnostic
}

// Dispatcher runs Step over a horizon.
type Dispatcher struct {
	Params       Params
	Mode         Mode
	GridCharging bool
	Window       ChargeWindow
	Log          logger.Logger
}

// Dispatch simulates every hour in order. The state of charge starts at 0.
func (d *Dispatcher) Dispatch(inputs []Input) (Schedule, error) {
	if err := d.Params.Validate(); err != nil {
		return Schedule{}, err
	}
	log := logger.OrNop(d.Log)
	allowance := make([]float64, len(inputs))
	var plans []DayPlan
	switch d.Mode {
	case ModeDailyReset:
		plans = d.planDays(inputs, allowance)
	case ModeContinuous, "":
		if d.GridCharging {
			for i, in := range inputs {
				// grid charge per hour is capped by the numeric price value
				allowance[i] = math.Max(in.PriceCt, 0)
			}
		}
	default:
		return Schedule{}, model.NewConfigurationError("battery_mode", "unknown mode %q", d.Mode)
	}

	sched := Schedule{Steps: make([]StepOutput, len(inputs)), Plans: plans}
	state := State{}
	for i, in := range inputs {
		if d.Mode == ModeDailyReset && (i == 0 || inputs[i-1].Day != in.Day) {
			state = State{}
		}
		var out StepOutput
		state, out = Step(d.Params, state, StepInput{
			GenerationKWh:    in.GenerationKWh,
			LoadKWh:          in.LoadKWh,
			GridAllowanceKWh: allowance[i],
		})
		if out.Violation {
			dg := diag.Diagnostic{
				Kind:    diag.InvariantViolation,
				Stage:   diag.StageBattery,
				Index:   in.Index,
				Message: fmt.Sprintf("soc clamped by %.6f kWh", out.ClampedKWh),
			}
			log.Debugw("battery soc clamped", map[string]any{"index": in.Index, "clamped_kwh": out.ClampedKWh})
			sched.Diagnostics = append(sched.Diagnostics, dg)
		}
		sched.Steps[i] = out
	}
	sched.FinalSoCKWh = state.SoCKWh
	return sched, nil
}

// planDays fills allowance with the daily grid-charge budget and returns the
// plan of every day.
func (d *Dispatcher) planDays(inputs []Input, allowance []float64) []DayPlan {
	var plans []DayPlan
	for start := 0; start < len(inputs); {
		end := start
		for end < len(inputs) && inputs[end].Day == inputs[start].Day {
			end++
		}
		plan := DayPlan{Day: inputs[start].Day, ChargeIndex: -1}
		var net float64
		for _, in := range inputs[start:end] {
			net += in.LoadKWh - in.GenerationKWh
		}
		plan.DeficitKWh = math.Max(net, 0)

		if d.GridCharging && plan.DeficitKWh > 0 {
			best := -1
			for k := start; k < end; k++ {
				if !d.Window.Contains(inputs[k].Hour) {
					continue
				}
				if best < 0 || inputs[k].PriceCt < inputs[best].PriceCt {
					best = k
				}
			}
			if best >= 0 {
				plan.ChargeIndex = inputs[best].Index
				plan.AllowanceKWh = math.Min(plan.DeficitKWh, d.Params.CapacityKWh)
				allowance[best] = plan.AllowanceKWh
			}
		}
		plans = append(plans, plan)
		start = end
	}
	return plans
}
