// Package tariff derives the per-hour grid price from a tariff selection.
//
// A Tariff is one of four variants: Static, Combined, DynamicStaticFee and
// DynamicDynamicFee. The set is closed; other packages cannot add variants.
package tariff

import (
	"fmt"

	"github.com/kilianp07/pvsim/core/model"
)

// Kind names a tariff variant in configuration.
type Kind string

const (
	KindStatic            Kind = "static"
	KindCombined          Kind = "combined"
	KindDynamicStaticFee  Kind = "dynamic_static_fee"
	KindDynamicDynamicFee Kind = "dynamic_dynamic_fee"
)

// Default rates in Ct/kWh.
const (
	DefaultStaticCt           = 33.9
	DefaultHeatPumpCt         = 24.5
	DefaultStaticGridFeeCt    = 8.35
	DefaultPeakSurchargeCt    = 9.76
	DefaultOffPeakSurchargeCt = 2.09
)

var (
	DefaultPeakHours    = []int{17, 18, 19}
	DefaultOffPeakHours = []int{1, 2, 3}
)

// PriceSeries holds the grid price in Ct/kWh for every hour of the horizon.
type PriceSeries []float64

// Tariff is implemented by the four tariff variants only.
type Tariff interface {
	Kind() Kind
	price(h model.HourRecord) float64
}

// Static charges the same price every hour.
type Static struct {
	PriceCt float64
}

// Combined charges the heat-pump rate in hours with deferrable load and the
// household rate otherwise.
type Combined struct {
	HouseholdCt float64
	HeatPumpCt  float64
}

// DynamicStaticFee charges spot + margin + a flat grid fee.
type DynamicStaticFee struct {
	MarginCt  float64
	GridFeeCt float64
}

// DynamicDynamicFee charges spot + margin plus a time-of-use grid surcharge.
type DynamicDynamicFee struct {
	MarginCt           float64
	PeakSurchargeCt    float64
	OffPeakSurchargeCt float64
	PeakHours          []int
	OffPeakHours       []int
}

func (Static) Kind() Kind            { return KindStatic }
func (Combined) Kind() Kind          { return KindCombined }
func (DynamicStaticFee) Kind() Kind  { return KindDynamicStaticFee }
func (DynamicDynamicFee) Kind() Kind { return KindDynamicDynamicFee }

func (t Static) price(model.HourRecord) float64 { return t.PriceCt }

func (t Combined) price(h model.HourRecord) float64 {
	if h.DeferrableLoadKWh > 0 {
		return t.HeatPumpCt
	}
	return t.HouseholdCt
}

func (t DynamicStaticFee) price(h model.HourRecord) float64 {
	return h.SpotCt + t.MarginCt + t.GridFeeCt
}

func (t DynamicDynamicFee) price(h model.HourRecord) float64 {
	p := h.SpotCt + t.MarginCt
	switch {
	case contains(t.PeakHours, h.Hour):
		p += t.PeakSurchargeCt
	case contains(t.OffPeakHours, h.Hour):
		p += t.OffPeakSurchargeCt
	}
	return p
}

// IsDynamic reports whether the tariff follows the spot market.
func IsDynamic(t Tariff) bool {
	switch t.(type) {
	case DynamicStaticFee, DynamicDynamicFee:
		return true
	}
	return false
}

// Prices returns the grid price of every hour. Dynamic tariffs require a spot
// price on every record.
func Prices(t Tariff, hours []model.HourRecord) (PriceSeries, error) {
	if t == nil {
		return nil, &model.ConfigurationError{Field: "tariff", Reason: "no tariff selected"}
	}
	if IsDynamic(t) && !model.HasSpotSeries(hours) {
		return nil, &model.ConfigurationError{
			Field:  "spot_ct",
			Reason: fmt.Sprintf("tariff %s requires a spot price series", t.Kind()),
		}
	}
	out := make(PriceSeries, len(hours))
	for i, h := range hours {
		out[i] = t.price(h)
	}
	return out, nil
}

func contains(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
