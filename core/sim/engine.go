// Package sim runs the dispatch pipeline: tariff prices, load shifting,
// battery dispatch and accounting, in that order.
package sim

import (
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/pvsim/core/accounting"
	"github.com/kilianp07/pvsim/core/battery"
	"github.com/kilianp07/pvsim/core/diag"
	"github.com/kilianp07/pvsim/core/logger"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/shift"
	"github.com/kilianp07/pvsim/core/tariff"
)

// Config holds everything a run needs besides the hourly input.
type Config struct {
	PVCapacityKWp        float64
	ReferenceCapacityKWp float64
	Tariff               tariff.Tariff
	FeedInCt             float64
	Battery              battery.Params
	Mode                 battery.Mode
	LoadShifting         bool
	GridCharging         bool
	ShiftRadius          int
	ChargeWindow         battery.ChargeWindow
}

// Engine executes simulation runs. It holds no per-run state and may be
// shared between goroutines.
type Engine struct {
	log logger.Logger
}

// NewEngine returns an Engine logging to log.
func NewEngine(log logger.Logger) *Engine {
	return &Engine{log: logger.OrNop(log)}
}

// Run simulates the horizon described by hours. Configuration problems are
// returned as *model.ConfigurationError before any hour is processed.
func (e *Engine) Run(hours []model.HourRecord, cfg Config) (*Result, error) {
	log := logger.OrNop(e.log)
	if len(hours) == 0 {
		return nil, model.ErrEmptyHorizon
	}
	for _, h := range hours {
		if err := h.Validate(); err != nil {
			return nil, model.NewConfigurationError("hours", "%v", err)
		}
	}
	if err := cfg.Battery.Validate(); err != nil {
		return nil, err
	}
	ref := cfg.ReferenceCapacityKWp
	if ref == 0 {
		ref = model.ReferenceCapacityKWp
	}
	factor, err := model.ScalingFactor(cfg.PVCapacityKWp, ref)
	if err != nil {
		return nil, err
	}
	if cfg.FeedInCt < 0 || !model.Finite(cfg.FeedInCt) {
		return nil, model.NewConfigurationError("feed_in_ct", "must be a non-negative finite number, got %v", cfg.FeedInCt)
	}

	records := model.ScaleGeneration(model.Reindex(hours), factor)
	prices, err := tariff.Prices(cfg.Tariff, records)
	if err != nil {
		return nil, err
	}

	dynamic := tariff.IsDynamic(cfg.Tariff)
	gridCharging := cfg.GridCharging && dynamic
	loadShifting := cfg.LoadShifting && dynamic
	if cfg.GridCharging && !dynamic {
		log.Infof("grid charging ignored for tariff %s", cfg.Tariff.Kind())
	}
	if cfg.LoadShifting && !dynamic {
		log.Infof("load shifting ignored for tariff %s", cfg.Tariff.Kind())
	}

	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Tariff:    cfg.Tariff.Kind(),
	}

	deferrable := make([]float64, len(records))
	for i, r := range records {
		deferrable[i] = r.DeferrableLoadKWh
	}
	shifted := shift.Passthrough(deferrable)
	if loadShifting {
		shifted, err = shift.New(cfg.ShiftRadius, log).Optimize(prices, deferrable)
		if err != nil {
			return nil, err
		}
	}
	res.Moves = shifted.Moves
	res.Diagnostics.Merge(shifted.Diagnostics)

	days := model.DayIndex(records)
	inputs := make([]battery.Input, len(records))
	for i, r := range records {
		inputs[i] = battery.Input{
			Index:         r.Index,
			Day:           days[i],
			Hour:          r.Hour,
			GenerationKWh: r.GenerationKWh,
			LoadKWh:       r.FixedLoadKWh + shifted.Load[i],
			PriceCt:       prices[i],
		}
	}
	window := cfg.ChargeWindow
	if window == (battery.ChargeWindow{}) {
		window = battery.DefaultChargeWindow
	}
	mode := cfg.Mode
	if mode == "" {
		mode = battery.ModeContinuous
	}
	disp := battery.Dispatcher{Params: cfg.Battery, Mode: mode, GridCharging: gridCharging, Window: window, Log: log}
	sched, err := disp.Dispatch(inputs)
	if err != nil {
		return nil, err
	}
	res.Plans = sched.Plans
	res.FinalSoCKWh = sched.FinalSoCKWh
	res.Diagnostics.Merge(sched.Diagnostics)

	flows := make([]accounting.Flow, len(records))
	for i, st := range sched.Steps {
		flows[i] = accounting.Flow{
			GenerationKWh: records[i].GenerationKWh,
			LoadKWh:       inputs[i].LoadKWh,
			ChargeKWh:     st.ChargeKWh,
			DischargeKWh:  st.DischargeKWh,
			GridChargeKWh: st.GridChargeKWh,
			PriceCt:       prices[i],
		}
	}
	acct := accounting.Accountant{FeedInCt: cfg.FeedInCt}
	hourly := acct.Account(flows)
	res.Summary = accounting.Summarize(flows, hourly)
	res.Daily = accounting.Daily(records, hourly)

	res.Rows = make([]Row, len(records))
	for i, r := range records {
		res.Rows[i] = Row{
			Index:                  r.Index,
			Time:                   r.Time,
			Hour:                   r.Hour,
			GenerationKWh:          r.GenerationKWh,
			FixedLoadKWh:           r.FixedLoadKWh,
			DeferrableLoadKWh:      r.DeferrableLoadKWh,
			OptimizedDeferrableKWh: shifted.Load[i],
			SpotCt:                 r.SpotCt,
			HasSpot:                r.HasSpot,
			PriceCt:                prices[i],
			SoCKWh:                 sched.Steps[i].SoCKWh,
			HourResult:             hourly[i],
		}
	}

	if n := res.Diagnostics.AffectedHours(); n > 0 {
		log.Warnf("run %s: %d hours needed defensive handling (%d boundary, %d clamped)", res.RunID, n,
			res.Diagnostics.Count(diag.BoundaryCondition), res.Diagnostics.Count(diag.InvariantViolation))
	}
	log.Infof("run %s: tariff=%s hours=%d cost=%.2f revenue=%.2f net=%.2f", res.RunID, res.Tariff,
		res.Summary.Hours, res.Summary.TotalCostEUR, res.Summary.TotalRevenueEUR, res.Summary.NetBalanceEUR)
	return res, nil
}
