package scenarios

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/shift"
	"github.com/kilianp07/pvsim/core/sim"
)

// Outcome is the result of running one scenario.
type Outcome struct {
	Name     string
	Result   *sim.Result
	Err      error
	Failures []string
}

// Passed reports whether every expectation held.
func (o Outcome) Passed() bool { return len(o.Failures) == 0 }

// Run simulates sc on top of base and compares the result with the
// scenario's expectations.
func Run(engine *sim.Engine, base config.SimulationConfig, sc *Scenario) Outcome {
	out := Outcome{Name: sc.Name}
	res, err := run(engine, base, sc)
	out.Result, out.Err = res, err

	exp := sc.Expected
	if exp.Error != "" {
		switch {
		case err == nil:
			out.failf("expected %s error, run succeeded", exp.Error)
		case !matchesError(err, exp.Error):
			out.failf("expected %s error, got %v", exp.Error, err)
		}
		return out
	}
	if err != nil {
		out.failf("run failed: %v", err)
		return out
	}

	tol := exp.Tolerance
	if tol == 0 {
		tol = DefaultTolerance
	}
	if exp.Hours != nil && res.Summary.Hours != *exp.Hours {
		out.failf("hours: expected %d, got %d", *exp.Hours, res.Summary.Hours)
	}
	if exp.Days != nil && len(res.Daily) != *exp.Days {
		out.failf("days: expected %d, got %d", *exp.Days, len(res.Daily))
	}
	out.near("cost_eur", exp.CostEUR, res.Summary.TotalCostEUR, tol)
	out.near("revenue_eur", exp.RevenueEUR, res.Summary.TotalRevenueEUR, tol)
	out.near("net_balance_eur", exp.NetBalanceEUR, res.Summary.NetBalanceEUR, tol)
	out.near("final_soc_kwh", exp.FinalSoCKWh, res.FinalSoCKWh, tol)
	if exp.AnomalyHours != nil && res.AnomalyHours() != *exp.AnomalyHours {
		out.failf("anomaly_hours: expected %d, got %d", *exp.AnomalyHours, res.AnomalyHours())
	}
	if exp.MaxNetBalance != nil && res.Summary.NetBalanceEUR > *exp.MaxNetBalance+tol {
		out.failf("net_balance_eur: expected at most %v, got %v", *exp.MaxNetBalance, res.Summary.NetBalanceEUR)
	}
	if exp.ConservesShift {
		before := make([]float64, len(res.Rows))
		after := make([]float64, len(res.Rows))
		for i, row := range res.Rows {
			before[i] = row.DeferrableLoadKWh
			after[i] = row.OptimizedDeferrableKWh
		}
		if !shift.Conserved(before, after) {
			out.failf("deferrable load not conserved")
		}
	}
	return out
}

func run(engine *sim.Engine, base config.SimulationConfig, sc *Scenario) (*sim.Result, error) {
	cfg, err := sc.Config(base)
	if err != nil {
		return nil, err
	}
	simCfg, err := cfg.ToSimConfig()
	if err != nil {
		return nil, err
	}
	hours, err := sc.Records()
	if err != nil {
		return nil, err
	}
	return engine.Run(hours, simCfg)
}

// Error names accepted in expected.error.
const (
	ErrorInvalidConfiguration = "invalid_configuration"
	ErrorEmptyHorizon         = "empty_horizon"
)

func matchesError(err error, name string) bool {
	switch name {
	case ErrorInvalidConfiguration:
		return errors.Is(err, model.ErrInvalidConfiguration)
	case ErrorEmptyHorizon:
		return errors.Is(err, model.ErrEmptyHorizon)
	}
	return false
}

func (o *Outcome) near(name string, want *float64, got, tol float64) {
	if want != nil && math.Abs(*want-got) > tol {
		o.failf("%s: expected %v, got %v", name, *want, got)
	}
}

func (o *Outcome) failf(format string, args ...any) {
	o.Failures = append(o.Failures, fmt.Sprintf(format, args...))
}
