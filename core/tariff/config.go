package tariff

import (
	"github.com/kilianp07/pvsim/core/model"
)

// Rates configures the fixed components of all tariff variants.
type Rates struct {
	StaticCt           float64 `json:"static_ct"`
	HeatPumpCt         float64 `json:"heat_pump_ct"`
	StaticGridFeeCt    float64 `json:"static_grid_fee_ct"`
	PeakSurchargeCt    float64 `json:"peak_surcharge_ct"`
	OffPeakSurchargeCt float64 `json:"offpeak_surcharge_ct"`
	PeakHours          []int   `json:"peak_hours"`
	OffPeakHours       []int   `json:"offpeak_hours"`
}

// SetDefaults fills zero values with the standard rates.
func (r *Rates) SetDefaults() {
	if r.StaticCt == 0 {
		r.StaticCt = DefaultStaticCt
	}
	if r.HeatPumpCt == 0 {
		r.HeatPumpCt = DefaultHeatPumpCt
	}
	if r.StaticGridFeeCt == 0 {
		r.StaticGridFeeCt = DefaultStaticGridFeeCt
	}
	if r.PeakSurchargeCt == 0 {
		r.PeakSurchargeCt = DefaultPeakSurchargeCt
	}
	if r.OffPeakSurchargeCt == 0 {
		r.OffPeakSurchargeCt = DefaultOffPeakSurchargeCt
	}
	if len(r.PeakHours) == 0 {
		r.PeakHours = append([]int(nil), DefaultPeakHours...)
	}
	if len(r.OffPeakHours) == 0 {
		r.OffPeakHours = append([]int(nil), DefaultOffPeakHours...)
	}
}

// Validate checks that all rates are non-negative and surcharge hours are
// valid hours of day.
func (r Rates) Validate() error {
	for field, v := range map[string]float64{
		"static_ct":            r.StaticCt,
		"heat_pump_ct":         r.HeatPumpCt,
		"static_grid_fee_ct":   r.StaticGridFeeCt,
		"peak_surcharge_ct":    r.PeakSurchargeCt,
		"offpeak_surcharge_ct": r.OffPeakSurchargeCt,
	} {
		if v < 0 || !model.Finite(v) {
			return model.NewConfigurationError("tariff_rates."+field, "must be a non-negative finite number, got %v", v)
		}
	}
	for _, h := range append(append([]int(nil), r.PeakHours...), r.OffPeakHours...) {
		if h < 0 || h > 23 {
			return model.NewConfigurationError("tariff_rates", "hour %d out of range", h)
		}
	}
	return nil
}

// DefaultRates returns Rates with all defaults applied.
func DefaultRates() Rates {
	var r Rates
	r.SetDefaults()
	return r
}

// New builds the variant named by kind. margin is only used by the dynamic
// variants.
func New(kind Kind, rates Rates, marginCt float64) (Tariff, error) {
	switch kind {
	case KindStatic:
		return Static{PriceCt: rates.StaticCt}, nil
	case KindCombined:
		return Combined{HouseholdCt: rates.StaticCt, HeatPumpCt: rates.HeatPumpCt}, nil
	case KindDynamicStaticFee:
		return DynamicStaticFee{MarginCt: marginCt, GridFeeCt: rates.StaticGridFeeCt}, nil
	case KindDynamicDynamicFee:
		return DynamicDynamicFee{
			MarginCt:           marginCt,
			PeakSurchargeCt:    rates.PeakSurchargeCt,
			OffPeakSurchargeCt: rates.OffPeakSurchargeCt,
			PeakHours:          rates.PeakHours,
			OffPeakHours:       rates.OffPeakHours,
		}, nil
	default:
		return nil, model.NewConfigurationError("tariff", "unknown tariff %q", kind)
	}
}

// Kinds lists every supported variant.
func Kinds() []Kind {
	return []Kind{KindStatic, KindCombined, KindDynamicStaticFee, KindDynamicDynamicFee}
}
