// Package scenarios runs named simulation scenarios described in YAML files
// and checks their outcome against expected figures.
package scenarios

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/infra/input"
)

// HourDef is one inline input hour.
type HourDef struct {
	Timestamp         string   `yaml:"timestamp,omitempty"`
	Hour              int      `yaml:"hour"`
	GenerationKWh     float64  `yaml:"generation_kwh"`
	FixedLoadKWh      float64  `yaml:"fixed_load_kwh"`
	DeferrableLoadKWh float64  `yaml:"deferrable_load_kwh"`
	SpotCt            *float64 `yaml:"spot_ct,omitempty"`
}

// SyntheticDef asks for a generated profile instead of inline hours.
type SyntheticDef struct {
	Seed  int64  `yaml:"seed"`
	Days  int    `yaml:"days"`
	Start string `yaml:"start,omitempty"`
}

// Expected lists the figures a scenario must reproduce. Unset fields are
// not checked.
type Expected struct {
	Hours          *int     `yaml:"hours,omitempty"`
	Days           *int     `yaml:"days,omitempty"`
	CostEUR        *float64 `yaml:"cost_eur,omitempty"`
	RevenueEUR     *float64 `yaml:"revenue_eur,omitempty"`
	NetBalanceEUR  *float64 `yaml:"net_balance_eur,omitempty"`
	FinalSoCKWh    *float64 `yaml:"final_soc_kwh,omitempty"`
	AnomalyHours   *int     `yaml:"anomaly_hours,omitempty"`
	MaxNetBalance  *float64 `yaml:"max_net_balance_eur,omitempty"`
	Error          string   `yaml:"error,omitempty"`
	Tolerance      float64  `yaml:"tolerance,omitempty"`
	ConservesShift bool     `yaml:"conserves_shift,omitempty"`
}

// Scenario is one named run with its expectations.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Simulation  map[string]any `yaml:"simulation"`
	Hours       []HourDef      `yaml:"hours,omitempty"`
	Synthetic   *SyntheticDef  `yaml:"synthetic,omitempty"`
	Expected    Expected       `yaml:"expected"`
}

// DefaultTolerance is used when a scenario sets none.
const DefaultTolerance = 1e-6

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	return &sc, nil
}

// LoadDir reads every *.yaml and *.yml file of dir, sorted by name.
func LoadDir(dir string) ([]*Scenario, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, m...)
	}
	sort.Strings(files)
	out := make([]*Scenario, 0, len(files))
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

// Config merges the scenario's simulation section into base. The section
// uses the same keys as the simulation block of the configuration file.
func (s *Scenario) Config(base config.SimulationConfig) (config.SimulationConfig, error) {
	sc := base.Clone()
	if len(s.Simulation) > 0 {
		raw, err := json.Marshal(s.Simulation)
		if err != nil {
			return sc, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sc); err != nil {
			return sc, model.NewConfigurationError("simulation", "scenario %s: %v", s.Name, err)
		}
	}
	sc.SetDefaults()
	return sc, sc.Validate()
}

// Records builds the input horizon of the scenario.
func (s *Scenario) Records() ([]model.HourRecord, error) {
	if s.Synthetic != nil {
		g := input.Generator{Seed: s.Synthetic.Seed, Days: s.Synthetic.Days}
		if s.Synthetic.Start != "" {
			t, err := time.Parse(time.DateOnly, s.Synthetic.Start)
			if err != nil {
				return nil, model.NewConfigurationError("synthetic.start", "%v", err)
			}
			g.Start = t
		}
		return g.Generate(), nil
	}
	out := make([]model.HourRecord, len(s.Hours))
	for i, h := range s.Hours {
		rec := model.HourRecord{
			Index:             i,
			Hour:              h.Hour,
			GenerationKWh:     h.GenerationKWh,
			FixedLoadKWh:      h.FixedLoadKWh,
			DeferrableLoadKWh: h.DeferrableLoadKWh,
		}
		if h.Timestamp != "" {
			t, err := time.Parse(time.RFC3339, h.Timestamp)
			if err != nil {
				return nil, model.NewConfigurationError("hours", "row %d: %v", i, err)
			}
			rec.Time = t.UTC()
			rec.Hour = rec.Time.Hour()
		}
		if h.SpotCt != nil {
			rec.SpotCt = *h.SpotCt
			rec.HasSpot = true
		}
		out[i] = rec
	}
	return out, nil
}
