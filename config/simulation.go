package config

import (
	"github.com/kilianp07/pvsim/core/accounting"
	"github.com/kilianp07/pvsim/core/battery"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/shift"
	"github.com/kilianp07/pvsim/core/sim"
	"github.com/kilianp07/pvsim/core/tariff"
)

// Ranges accepted for the user-facing scalars.
const (
	MinPVCapacityKWp      = 5.0
	MaxPVCapacityKWp      = 20.0
	MinBatteryCapacityKWh = 5.0
	MaxBatteryCapacityKWh = 15.0
	MinMarginCt           = 5.0
	MaxMarginCt           = 20.0

	DefaultPVCapacityKWp = 11.0
	DefaultMarginCt      = 10.0
)

// SimulationConfig holds the scenario parameters of one run.
type SimulationConfig struct {
	PVCapacityKWp        float64               `json:"pv_capacity_kwp"`
	ReferenceCapacityKWp float64               `json:"reference_capacity_kwp"`
	BatteryCapacityKWh   float64               `json:"battery_capacity_kwh"`
	ChargeEfficiency     float64               `json:"charge_efficiency"`
	DischargeEfficiency  float64               `json:"discharge_efficiency"`
	Tariff               string                `json:"tariff"`
	MarginCt             float64               `json:"margin_ct"`
	Rates                tariff.Rates          `json:"rates"`
	FeedInCt             *float64              `json:"feed_in_ct"` // nil selects the standard rate, 0 disables feed-in pay
	LoadShifting         bool                  `json:"load_shifting"`
	GridCharging         bool                  `json:"grid_charging"`
	BatteryMode          string                `json:"battery_mode"`
	ShiftRadius          int                   `json:"shift_radius"`
	ChargeWindow         *battery.ChargeWindow `json:"charge_window"`
}

// SetDefaults fills unset fields.
func (c *SimulationConfig) SetDefaults() {
	if c.PVCapacityKWp == 0 {
		c.PVCapacityKWp = DefaultPVCapacityKWp
	}
	if c.ReferenceCapacityKWp == 0 {
		c.ReferenceCapacityKWp = model.ReferenceCapacityKWp
	}
	if c.BatteryCapacityKWh == 0 {
		c.BatteryCapacityKWh = battery.DefaultCapacityKWh
	}
	if c.ChargeEfficiency == 0 {
		c.ChargeEfficiency = battery.DefaultEfficiency
	}
	if c.DischargeEfficiency == 0 {
		c.DischargeEfficiency = battery.DefaultEfficiency
	}
	if c.Tariff == "" {
		c.Tariff = string(tariff.KindStatic)
	}
	if c.MarginCt == 0 {
		c.MarginCt = DefaultMarginCt
	}
	c.Rates.SetDefaults()
	if c.FeedInCt == nil {
		v := accounting.FeedInStandard
		c.FeedInCt = &v
	}
	if c.BatteryMode == "" {
		c.BatteryMode = string(battery.ModeContinuous)
	}
	if c.ShiftRadius == 0 {
		c.ShiftRadius = shift.DefaultRadius
	}
	if c.ChargeWindow == nil {
		w := battery.DefaultChargeWindow
		c.ChargeWindow = &w
	}
}

// Validate enforces the accepted ranges.
func (c SimulationConfig) Validate() error {
	for field, v := range map[string]float64{
		"pv_capacity_kwp":        c.PVCapacityKWp,
		"reference_capacity_kwp": c.ReferenceCapacityKWp,
		"battery_capacity_kwh":   c.BatteryCapacityKWh,
		"charge_efficiency":      c.ChargeEfficiency,
		"discharge_efficiency":   c.DischargeEfficiency,
		"margin_ct":              c.MarginCt,
	} {
		if !model.Finite(v) {
			return model.NewConfigurationError("simulation."+field, "must be a finite number, got %v", v)
		}
	}
	if c.FeedInCt != nil && !model.Finite(*c.FeedInCt) {
		return model.NewConfigurationError("simulation.feed_in_ct", "must be a finite number, got %v", *c.FeedInCt)
	}
	if c.PVCapacityKWp < MinPVCapacityKWp || c.PVCapacityKWp > MaxPVCapacityKWp {
		return model.NewConfigurationError("simulation.pv_capacity_kwp", "must be within [%v, %v], got %v",
			MinPVCapacityKWp, MaxPVCapacityKWp, c.PVCapacityKWp)
	}
	if c.ReferenceCapacityKWp <= 0 {
		return model.NewConfigurationError("simulation.reference_capacity_kwp", "must be positive")
	}
	if c.BatteryCapacityKWh < MinBatteryCapacityKWh || c.BatteryCapacityKWh > MaxBatteryCapacityKWh {
		return model.NewConfigurationError("simulation.battery_capacity_kwh", "must be within [%v, %v], got %v",
			MinBatteryCapacityKWh, MaxBatteryCapacityKWh, c.BatteryCapacityKWh)
	}
	if c.MarginCt < MinMarginCt || c.MarginCt > MaxMarginCt {
		return model.NewConfigurationError("simulation.margin_ct", "must be within [%v, %v], got %v",
			MinMarginCt, MaxMarginCt, c.MarginCt)
	}
	if c.FeedInCt != nil && !accounting.ValidFeedIn(*c.FeedInCt) {
		return model.NewConfigurationError("simulation.feed_in_ct", "must be one of %v, got %v",
			accounting.FeedInRates(), *c.FeedInCt)
	}
	if _, err := tariff.New(tariff.Kind(c.Tariff), c.Rates, c.MarginCt); err != nil {
		return err
	}
	if err := c.Rates.Validate(); err != nil {
		return err
	}
	if _, err := battery.ParseMode(c.BatteryMode); err != nil {
		return err
	}
	if c.ShiftRadius < 0 {
		return model.NewConfigurationError("simulation.shift_radius", "must not be negative")
	}
	if w := c.ChargeWindow; w != nil && (w.StartHour < 0 || w.EndHour > 23 || w.StartHour > w.EndHour) {
		return model.NewConfigurationError("simulation.charge_window", "invalid window %d-%d", w.StartHour, w.EndHour)
	}
	return battery.Params{
		CapacityKWh:  c.BatteryCapacityKWh,
		ChargeEff:    c.ChargeEfficiency,
		DischargeEff: c.DischargeEfficiency,
	}.Validate()
}

// ToSimConfig builds the engine configuration. The receiver must have
// defaults applied.
func (c SimulationConfig) ToSimConfig() (sim.Config, error) {
	t, err := tariff.New(tariff.Kind(c.Tariff), c.Rates, c.MarginCt)
	if err != nil {
		return sim.Config{}, err
	}
	mode, err := battery.ParseMode(c.BatteryMode)
	if err != nil {
		return sim.Config{}, err
	}
	cfg := sim.Config{
		PVCapacityKWp:        c.PVCapacityKWp,
		ReferenceCapacityKWp: c.ReferenceCapacityKWp,
		Tariff:               t,
		Battery: battery.Params{
			CapacityKWh:  c.BatteryCapacityKWh,
			ChargeEff:    c.ChargeEfficiency,
			DischargeEff: c.DischargeEfficiency,
		},
		Mode:         mode,
		LoadShifting: c.LoadShifting,
		GridCharging: c.GridCharging,
		ShiftRadius:  c.ShiftRadius,
	}
	if c.FeedInCt != nil {
		cfg.FeedInCt = *c.FeedInCt
	}
	if c.ChargeWindow != nil {
		cfg.ChargeWindow = *c.ChargeWindow
	}
	return cfg, nil
}

// Clone returns a deep copy, so that decoding overrides into the copy
// leaves c untouched.
func (c SimulationConfig) Clone() SimulationConfig {
	out := c
	if c.FeedInCt != nil {
		v := *c.FeedInCt
		out.FeedInCt = &v
	}
	if c.ChargeWindow != nil {
		w := *c.ChargeWindow
		out.ChargeWindow = &w
	}
	out.Rates.PeakHours = append([]int(nil), c.Rates.PeakHours...)
	out.Rates.OffPeakHours = append([]int(nil), c.Rates.OffPeakHours...)
	return out
}
