// Package accounting turns per-hour energy flows into grid draw, feed-in,
// cost and revenue.
package accounting

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/pvsim/core/model"
)

// Feed-in rates in Ct/kWh offered by the configuration.
const (
	FeedInNone     = 0.0
	FeedInReduced  = 7.95
	FeedInStandard = 8.11
)

// FeedInRates lists the accepted feed-in rates.
func FeedInRates() []float64 {
	return []float64{FeedInNone, FeedInReduced, FeedInStandard}
}

// ValidFeedIn reports whether rate is one of FeedInRates.
func ValidFeedIn(rate float64) bool {
	for _, r := range FeedInRates() {
		if math.Abs(r-rate) < 1e-9 {
			return true
		}
	}
	return false
}

// Flow is one hour of energy flows handed to the accountant.
type Flow struct {
	GenerationKWh float64
	LoadKWh       float64 // fixed plus optimized deferrable load
	ChargeKWh     float64
	DischargeKWh  float64
	GridChargeKWh float64
	PriceCt       float64
}

// HourResult is the accounted outcome of one hour.
type HourResult struct {
	ChargeKWh     float64 `json:"charge_kwh"`
	DischargeKWh  float64 `json:"discharge_kwh"`
	GridChargeKWh float64 `json:"grid_charge_kwh"`
	GridDrawKWh   float64 `json:"grid_draw_kwh"`
	FeedInKWh     float64 `json:"feed_in_kwh"`
	CostEUR       float64 `json:"cost_eur"`
	RevenueEUR    float64 `json:"revenue_eur"`
}

// Summary is the reduction of all hour results of a run.
type Summary struct {
	Hours              int     `json:"hours"`
	TotalCostEUR       float64 `json:"total_cost_eur"`
	TotalRevenueEUR    float64 `json:"total_revenue_eur"`
	NetBalanceEUR      float64 `json:"net_balance_eur"`
	GenerationKWh      float64 `json:"generation_kwh"`
	LoadKWh            float64 `json:"load_kwh"`
	GridDrawKWh        float64 `json:"grid_draw_kwh"`
	FeedInKWh          float64 `json:"feed_in_kwh"`
	ChargeKWh          float64 `json:"charge_kwh"`
	DischargeKWh       float64 `json:"discharge_kwh"`
	GridChargeKWh      float64 `json:"grid_charge_kwh"`
	SelfSufficiencyPct float64 `json:"self_sufficiency_pct"`
}

// Accountant prices energy flows with a fixed feed-in rate.
type Accountant struct {
	FeedInCt float64
}

// Hour accounts a single hour.
func (a Accountant) Hour(f Flow) HourResult {
	draw := math.Max(f.LoadKWh-f.GenerationKWh-f.DischargeKWh, 0) + f.GridChargeKWh
	feedIn := math.Max(f.GenerationKWh-(f.LoadKWh-f.DischargeKWh), 0)
	return HourResult{
		ChargeKWh:     f.ChargeKWh,
		DischargeKWh:  f.DischargeKWh,
		GridChargeKWh: f.GridChargeKWh,
		GridDrawKWh:   draw,
		FeedInKWh:     feedIn,
		CostEUR:       draw * f.PriceCt / 100,
		RevenueEUR:    feedIn * a.FeedInCt / 100,
	}
}

// Account accounts every hour in order.
func (a Accountant) Account(flows []Flow) []HourResult {
	out := make([]HourResult, len(flows))
	for i, f := range flows {
		out[i] = a.Hour(f)
	}
	return out
}

// Summarize reduces hour results into totals. flows supplies generation and
// load totals and must be aligned with results.
func Summarize(flows []Flow, results []HourResult) Summary {
	n := len(results)
	col := func(get func(int) float64) float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = get(i)
		}
		return floats.Sum(v)
	}
	s := Summary{Hours: n}
	s.TotalCostEUR = col(func(i int) float64 { return results[i].CostEUR })
	s.TotalRevenueEUR = col(func(i int) float64 { return results[i].RevenueEUR })
	s.NetBalanceEUR = s.TotalCostEUR - s.TotalRevenueEUR
	s.GridDrawKWh = col(func(i int) float64 { return results[i].GridDrawKWh })
	s.FeedInKWh = col(func(i int) float64 { return results[i].FeedInKWh })
	s.ChargeKWh = col(func(i int) float64 { return results[i].ChargeKWh })
	s.DischargeKWh = col(func(i int) float64 { return results[i].DischargeKWh })
	s.GridChargeKWh = col(func(i int) float64 { return results[i].GridChargeKWh })
	if len(flows) == n {
		s.GenerationKWh = col(func(i int) float64 { return flows[i].GenerationKWh })
		s.LoadKWh = col(func(i int) float64 { return flows[i].LoadKWh })
	}
	if s.LoadKWh > 0 {
		fromGrid := s.GridDrawKWh - s.GridChargeKWh
		s.SelfSufficiencyPct = math.Max(0, 100*(1-fromGrid/s.LoadKWh))
	}
	return s
}

// DayTotal aggregates one day of a run.
type DayTotal struct {
	Day           int     `json:"day"`
	GridDrawKWh   float64 `json:"grid_draw_kwh"`
	FeedInKWh     float64 `json:"feed_in_kwh"`
	CostEUR       float64 `json:"cost_eur"`
	RevenueEUR    float64 `json:"revenue_eur"`
	NetBalanceEUR float64 `json:"net_balance_eur"`
}

// Daily groups results by the day numbers returned by model.DayIndex.
func Daily(records []model.HourRecord, results []HourResult) []DayTotal {
	days := model.DayIndex(records)
	var out []DayTotal
	for i, r := range results {
		if i >= len(days) {
			break
		}
		if len(out) == 0 || out[len(out)-1].Day != days[i] {
			out = append(out, DayTotal{Day: days[i]})
		}
		d := &out[len(out)-1]
		d.GridDrawKWh += r.GridDrawKWh
		d.FeedInKWh += r.FeedInKWh
		d.CostEUR += r.CostEUR
		d.RevenueEUR += r.RevenueEUR
		d.NetBalanceEUR = d.CostEUR - d.RevenueEUR
	}
	return out
}
