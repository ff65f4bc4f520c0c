package config

import (
	"time"

	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/infra/input"
)

// InputConfig selects the hourly profile. Without a path a synthetic
// profile is generated.
type InputConfig struct {
	Path  string          `json:"path"`
	Sheet string          `json:"sheet"`
	Synth GeneratorConfig `json:"synthetic"`
}

// GeneratorConfig configures the synthetic profile.
type GeneratorConfig struct {
	Seed  int64  `json:"seed"`
	Days  int    `json:"days"`
	Start string `json:"start"` // YYYY-MM-DD, empty leaves timestamps unset
}

func (c *InputConfig) SetDefaults() {
	if c.Synth.Seed == 0 {
		c.Synth.Seed = input.DefaultGenerator.Seed
	}
	if c.Synth.Days <= 0 {
		c.Synth.Days = input.DefaultGenerator.Days
	}
}

func (c InputConfig) Validate() error {
	if c.Synth.Start != "" {
		if _, err := time.Parse(time.DateOnly, c.Synth.Start); err != nil {
			return model.NewConfigurationError("input.synthetic.start", "%v", err)
		}
	}
	return nil
}

// Generator returns the configured synthetic generator.
func (c InputConfig) Generator() input.Generator {
	g := input.Generator{Seed: c.Synth.Seed, Days: c.Synth.Days}
	if c.Synth.Start != "" {
		g.Start, _ = time.Parse(time.DateOnly, c.Synth.Start)
	}
	return g
}

// Output formats.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatXLSX  = "xlsx"
	FormatPDF   = "pdf"
	FormatChart = "html"
)

// OutputConfig lists the export files written after a run.
type OutputConfig struct {
	Dir     string   `json:"dir"`
	Formats []string `json:"formats"`
}

func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "out"
	}
	if len(c.Formats) == 0 {
		c.Formats = []string{FormatCSV, FormatJSON}
	}
}

func (c OutputConfig) Validate() error {
	for _, f := range c.Formats {
		switch f {
		case FormatCSV, FormatJSON, FormatXLSX, FormatPDF, FormatChart:
		default:
			return model.NewConfigurationError("output.formats", "unknown format %q", f)
		}
	}
	return nil
}
