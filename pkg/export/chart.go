package export

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/pvsim/core/sim"
)

// WriteChartHTML renders the price and state-of-charge series as an HTML
// page with two line charts.
func WriteChartHTML(w io.Writer, s sim.Series) error {
	price := charts.NewLine()
	price.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Grid price"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Ct/kWh"}),
	)
	price.SetXAxis(s.Labels).AddSeries("Grid price", lineData(s.PriceCt))
	if len(s.SpotCt) > 0 {
		price.AddSeries("Spot price", lineData(s.SpotCt))
	}

	soc := charts.NewLine()
	soc.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Battery state of charge"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Hour"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kWh"}),
	)
	soc.SetXAxis(s.Labels).AddSeries("SoC", lineData(s.SoCKWh))

	if err := price.Render(w); err != nil {
		return fmt.Errorf("render price chart: %w", err)
	}
	if err := soc.Render(w); err != nil {
		return fmt.Errorf("render soc chart: %w", err)
	}
	return nil
}

func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		out[i] = opts.LineData{Value: v}
	}
	return out
}
