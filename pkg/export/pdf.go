package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/kilianp07/pvsim/core/sim"
)

// WritePDF renders a one-page report with the run totals and the per-day
// breakdown.
func WritePDF(w io.Writer, res *sim.Result) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "PV & Battery Simulation")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	s := res.Summary
	for _, line := range []string{
		fmt.Sprintf("Run: %s", res.RunID),
		fmt.Sprintf("Started: %s", res.StartedAt.Format(time.RFC3339)),
		fmt.Sprintf("Tariff: %s", res.Tariff),
		fmt.Sprintf("Hours: %d", s.Hours),
		fmt.Sprintf("Total cost (EUR): %.2f", s.TotalCostEUR),
		fmt.Sprintf("Total revenue (EUR): %.2f", s.TotalRevenueEUR),
		fmt.Sprintf("Net balance (EUR): %.2f", s.NetBalanceEUR),
		fmt.Sprintf("Self-sufficiency: %.1f %%", s.SelfSufficiencyPct),
		fmt.Sprintf("Final SoC (kWh): %.3f", res.FinalSoCKWh),
		fmt.Sprintf("Hours with anomalies: %d", res.AnomalyHours()),
	} {
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	for _, h := range []string{"Day", "Grid draw (kWh)", "Feed-in (kWh)", "Cost", "Revenue", "Net"} {
		pdf.CellFormat(30, 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, d := range res.Daily {
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", d.Day+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", d.GridDrawKWh), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.3f", d.FeedInKWh), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", d.CostEUR), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", d.RevenueEUR), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.2f", d.NetBalanceEUR), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}
