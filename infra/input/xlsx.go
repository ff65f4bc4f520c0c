package input

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/pvsim/core/model"
)

// LoadXLSX reads hour records from a workbook sheet laid out like the CSV
// format. An empty sheet name selects the first sheet.
func LoadXLSX(r io.Reader, sheet string) ([]model.HourRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer f.Close()
	return readSheet(f, sheet)
}

// LoadXLSXFile opens path and reads it with LoadXLSX.
func LoadXLSXFile(path, sheet string) ([]model.HourRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) ([]model.HourRecord, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrMalformed, sheet, err)
	}
	return Parse(rows)
}
