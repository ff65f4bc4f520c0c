// Package plugins maps output format names to result exporters.
package plugins

import (
	"io"
	"sort"

	"github.com/kilianp07/pvsim/core/sim"
)

// Exporter writes a run result in one file format.
type Exporter func(w io.Writer, res *sim.Result) error

// Plugin couples an exporter with the file extension it produces.
type Plugin struct {
	Ext    string
	Export Exporter
}

var Exporters = map[string]Plugin{}

func RegisterExporter(name string, p Plugin) { Exporters[name] = p }

// Names returns the registered formats in sorted order.
func Names() []string {
	out := make([]string, 0, len(Exporters))
	for n := range Exporters {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
