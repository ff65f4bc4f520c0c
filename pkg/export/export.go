// Package export writes simulation results as CSV, JSON, XLSX, PDF and HTML
// charts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/pvsim/core/sim"
)

// Columns is the header of the hourly table, in output order.
var Columns = []string{
	"index",
	"timestamp",
	"hour",
	"generation_kwh",
	"fixed_load_kwh",
	"deferrable_load_kwh",
	"optimized_deferrable_kwh",
	"spot_ct",
	"price_ct",
	"charge_kwh",
	"grid_charge_kwh",
	"discharge_kwh",
	"soc_kwh",
	"grid_draw_kwh",
	"feed_in_kwh",
	"cost_eur",
	"revenue_eur",
}

// WriteJSON writes the full result, summary and hourly rows, to w.
func WriteJSON(w io.Writer, res *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteCSV writes the hourly table to w with a header row. Spot prices and
// timestamps are left empty when unknown.
func WriteCSV(w io.Writer, rows []sim.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(r sim.Row) []string {
	ts := ""
	if !r.Time.IsZero() {
		ts = r.Time.Format(time.RFC3339)
	}
	spot := ""
	if r.HasSpot {
		spot = ff(r.SpotCt)
	}
	return []string{
		strconv.Itoa(r.Index),
		ts,
		strconv.Itoa(r.Hour),
		ff(r.GenerationKWh),
		ff(r.FixedLoadKWh),
		ff(r.DeferrableLoadKWh),
		ff(r.OptimizedDeferrableKWh),
		spot,
		ff(r.PriceCt),
		ff(r.ChargeKWh),
		ff(r.GridChargeKWh),
		ff(r.DischargeKWh),
		ff(r.SoCKWh),
		ff(r.GridDrawKWh),
		ff(r.FeedInKWh),
		ff(r.CostEUR),
		ff(r.RevenueEUR),
	}
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
