package plugins

import (
	"io"

	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/sim"
	"github.com/kilianp07/pvsim/pkg/export"
)

func init() {
	RegisterExporter(config.FormatCSV, Plugin{Ext: "csv", Export: func(w io.Writer, res *sim.Result) error {
		return export.WriteCSV(w, res.Rows)
	}})
	RegisterExporter(config.FormatJSON, Plugin{Ext: "json", Export: export.WriteJSON})
	RegisterExporter(config.FormatXLSX, Plugin{Ext: "xlsx", Export: export.WriteXLSX})
	RegisterExporter(config.FormatPDF, Plugin{Ext: "pdf", Export: export.WritePDF})
	RegisterExporter(config.FormatChart, Plugin{Ext: "html", Export: func(w io.Writer, res *sim.Result) error {
		return export.WriteChartHTML(w, res.Series())
	}})
}
