package model

import (
	"fmt"
	"math"
	"time"
)

// ReferenceCapacityKWp is the installed PV capacity the bundled generation
// profiles were recorded with.
const ReferenceCapacityKWp = 11.0

// HourRecord is one simulated hour of input data.
type HourRecord struct {
	Index             int       // position in the horizon, 0-based
	Time              time.Time // optional timestamp, zero when only Hour is known
	Hour              int       // hour of day, 0-23
	GenerationKWh     float64   // PV generation
	FixedLoadKWh      float64   // household consumption
	DeferrableLoadKWh float64   // heat-pump consumption that may be shifted
	SpotCt            float64   // wholesale price in Ct/kWh, valid when HasSpot is set
	HasSpot           bool
}

// Load returns the fixed plus deferrable load of the hour.
func (h HourRecord) Load() float64 {
	return h.FixedLoadKWh + h.DeferrableLoadKWh
}

// Validate checks that the record is usable by the engine.
func (h HourRecord) Validate() error {
	if h.Hour < 0 || h.Hour > 23 {
		return fmt.Errorf("hour %d: hour of day %d out of range", h.Index, h.Hour)
	}
	if !Finite(h.GenerationKWh) || !Finite(h.FixedLoadKWh) || !Finite(h.DeferrableLoadKWh) {
		return fmt.Errorf("hour %d: energy value is not a finite number", h.Index)
	}
	if h.HasSpot && !Finite(h.SpotCt) {
		return fmt.Errorf("hour %d: spot price is not a finite number", h.Index)
	}
	if h.GenerationKWh < 0 || h.FixedLoadKWh < 0 || h.DeferrableLoadKWh < 0 {
		return fmt.Errorf("hour %d: negative energy value", h.Index)
	}
	return nil
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ScalingFactor returns target/reference, the factor applied to generation
// profiles recorded for the reference installation.
func ScalingFactor(targetKWp, referenceKWp float64) (float64, error) {
	if !Finite(referenceKWp) || referenceKWp <= 0 {
		return 0, &ConfigurationError{Field: "reference_capacity_kwp", Reason: "must be positive"}
	}
	if !Finite(targetKWp) || targetKWp < 0 {
		return 0, &ConfigurationError{Field: "pv_capacity_kwp", Reason: "must not be negative"}
	}
	return targetKWp / referenceKWp, nil
}

// ScaleGeneration returns a copy of records with generation multiplied by
// factor. The input slice is not modified.
func ScaleGeneration(records []HourRecord, factor float64) []HourRecord {
	out := make([]HourRecord, len(records))
	for i, r := range records {
		r.GenerationKWh *= factor
		out[i] = r
	}
	return out
}

// Reindex returns a copy of records with Index set to the slice position.
func Reindex(records []HourRecord) []HourRecord {
	out := make([]HourRecord, len(records))
	for i, r := range records {
		r.Index = i
		out[i] = r
	}
	return out
}

// DayIndex assigns a day number to every record. Records with a timestamp are
// grouped by calendar date; otherwise a new day starts whenever the hour of
// day does not increase.
func DayIndex(records []HourRecord) []int {
	days := make([]int, len(records))
	day := 0
	for i, r := range records {
		if i > 0 {
			prev := records[i-1]
			if newDay(prev, r) {
				day++
			}
		}
		days[i] = day
	}
	return days
}

func newDay(prev, cur HourRecord) bool {
	if !prev.Time.IsZero() && !cur.Time.IsZero() {
		py, pm, pd := prev.Time.Date()
		cy, cm, cd := cur.Time.Date()
		return py != cy || pm != cm || pd != cd
	}
	return cur.Hour <= prev.Hour
}

// HasSpotSeries reports whether every record carries a spot price.
func HasSpotSeries(records []HourRecord) bool {
	if len(records) == 0 {
		return false
	}
	for _, r := range records {
		if !r.HasSpot {
			return false
		}
	}
	return true
}
