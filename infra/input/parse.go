// Package input loads hourly profiles from CSV or XLSX files and generates
// synthetic ones.
package input

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

// ErrMalformed is wrapped by every parse error.
var ErrMalformed = errors.New("malformed input")

// Column names understood by the loaders.
const (
	ColTimestamp  = "timestamp"
	ColDate       = "date"
	ColHour       = "hour"
	ColGeneration = "generation_kwh"
	ColFixed      = "fixed_load_kwh"
	ColDeferrable = "deferrable_load_kwh"
	ColSpot       = "spot_ct"
)

var required = []string{ColHour, ColGeneration, ColFixed, ColDeferrable}

// Parse converts a header row followed by data rows into hour records.
// Column order is free and unknown columns are ignored. Blank rows are
// skipped. When only a date is given the timestamp is the date plus the hour
// of day in UTC.
func Parse(rows [][]string) ([]model.HourRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformed, c)
		}
	}

	var out []model.HourRecord
	for line, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec, err := parseRow(cols, row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line+2, err)
		}
		rec.Index = len(out)
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, model.ErrEmptyHorizon
	}
	return out, nil
}

func parseRow(cols map[string]int, row []string) (model.HourRecord, error) {
	var rec model.HourRecord
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	num := func(name string) (float64, error) {
		v, err := strconv.ParseFloat(cell(name), 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", name, err)
		}
		if !model.Finite(v) {
			return 0, fmt.Errorf("column %s: %q is not a finite number", name, cell(name))
		}
		return v, nil
	}

	hour, err := strconv.Atoi(cell(ColHour))
	if err != nil {
		return rec, fmt.Errorf("column %s: %w", ColHour, err)
	}
	rec.Hour = hour
	if rec.GenerationKWh, err = num(ColGeneration); err != nil {
		return rec, err
	}
	if rec.FixedLoadKWh, err = num(ColFixed); err != nil {
		return rec, err
	}
	if rec.DeferrableLoadKWh, err = num(ColDeferrable); err != nil {
		return rec, err
	}
	if s := cell(ColSpot); s != "" {
		if rec.SpotCt, err = num(ColSpot); err != nil {
			return rec, err
		}
		rec.HasSpot = true
	}
	switch {
	case cell(ColTimestamp) != "":
		if rec.Time, err = time.Parse(time.RFC3339, cell(ColTimestamp)); err != nil {
			return rec, fmt.Errorf("column %s: %w", ColTimestamp, err)
		}
	case cell(ColDate) != "":
		d, err := time.Parse(time.DateOnly, cell(ColDate))
		if err != nil {
			return rec, fmt.Errorf("column %s: %w", ColDate, err)
		}
		rec.Time = d.Add(time.Duration(hour) * time.Hour)
	}
	return rec, rec.Validate()
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// LoadFile picks the loader from the file extension. sheet is only used for
// workbooks; empty selects the first sheet.
func LoadFile(path, sheet string) ([]model.HourRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSVFile(path)
	case ".xlsx":
		return LoadXLSXFile(path, sheet)
	default:
		return nil, model.NewConfigurationError("input.path", "unsupported file extension %q", filepath.Ext(path))
	}
}
