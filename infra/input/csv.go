package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

// LoadCSV reads hour records from CSV data with a header row.
func LoadCSV(r io.Reader) ([]model.HourRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Parse(rows)
}

// LoadCSVFile opens path and reads it with LoadCSV.
func LoadCSVFile(path string) ([]model.HourRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// WriteCSV writes records in the format LoadCSV reads.
func WriteCSV(w io.Writer, records []model.HourRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColTimestamp, ColHour, ColGeneration, ColFixed, ColDeferrable, ColSpot}); err != nil {
		return err
	}
	for _, r := range records {
		ts := ""
		if !r.Time.IsZero() {
			ts = r.Time.Format(time.RFC3339)
		}
		spot := ""
		if r.HasSpot {
			spot = ff(r.SpotCt)
		}
		row := []string{ts, strconv.Itoa(r.Hour), ff(r.GenerationKWh), ff(r.FixedLoadKWh), ff(r.DeferrableLoadKWh), spot}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
