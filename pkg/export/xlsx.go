package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/pvsim/core/sim"
)

const (
	hoursSheet   = "Hours"
	summarySheet = "Summary"
)

// WriteXLSX writes a workbook with the hourly table on the "Hours" sheet and
// the run totals on the "Summary" sheet.
func WriteXLSX(w io.Writer, res *sim.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", hoursSheet); err != nil {
		return err
	}
	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(hoursSheet, "A1", &header); err != nil {
		return err
	}
	for i, r := range res.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := cells(r)
		if err := f.SetSheetRow(hoursSheet, cell, &values); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	s := res.Summary
	lines := [][]any{
		{"Run", res.RunID},
		{"Tariff", string(res.Tariff)},
		{"Hours", s.Hours},
		{"Total cost (EUR)", s.TotalCostEUR},
		{"Total revenue (EUR)", s.TotalRevenueEUR},
		{"Net balance (EUR)", s.NetBalanceEUR},
		{"Grid draw (kWh)", s.GridDrawKWh},
		{"Feed-in (kWh)", s.FeedInKWh},
		{"Self-sufficiency (%)", s.SelfSufficiencyPct},
		{"Final SoC (kWh)", res.FinalSoCKWh},
		{"Hours with anomalies", res.AnomalyHours()},
	}
	for i, l := range lines {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &l); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func cells(r sim.Row) []any {
	var ts any = ""
	if !r.Time.IsZero() {
		ts = r.Time.Format(time.RFC3339)
	}
	var spot any = ""
	if r.HasSpot {
		spot = r.SpotCt
	}
	return []any{
		r.Index, ts, r.Hour,
		r.GenerationKWh, r.FixedLoadKWh, r.DeferrableLoadKWh, r.OptimizedDeferrableKWh,
		spot, r.PriceCt,
		r.ChargeKWh, r.GridChargeKWh, r.DischargeKWh, r.SoCKWh,
		r.GridDrawKWh, r.FeedInKWh, r.CostEUR, r.RevenueEUR,
	}
}
