// Package pricefile serves hourly spot prices from a local CSV file, for
// offline runs against recorded market data.
//
// The file has a header row with a "start" column (RFC3339) and either an
// "eur_mwh" or a "ct_kwh" column.
package pricefile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/pvsim/connectors"
)

// Column names.
const (
	ColStart  = "start"
	ColEURMWh = "eur_mwh"
	ColCtKWh  = "ct_kwh"
)

type Client struct {
	path     string
	from, to time.Time
}

// New returns a source reading path on every fetch.
func New(path string) *Client {
	return &Client{path: path}
}

// SetRange implements connectors.Ranged.
func (c *Client) SetRange(from, to time.Time) {
	c.from, c.to = from, to
}

// Fetch returns the prices of the file inside the configured range, or all
// of them when no range is set, sorted by start time.
func (c *Client) Fetch(ctx context.Context, opts ...connectors.Option) ([]connectors.Price, error) {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()
	prices, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}
	if c.from.IsZero() && c.to.IsZero() {
		return prices, nil
	}
	out := prices[:0]
	for _, p := range prices {
		if !c.from.IsZero() && p.Start.Before(c.from) {
			continue
		}
		if !c.to.IsZero() && !p.Start.Before(c.to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Read parses a price CSV.
func Read(r io.Reader) ([]connectors.Price, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	start, value, div := -1, -1, 1.0
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case ColStart:
			start = i
		case ColEURMWh:
			value, div = i, 10
		case ColCtKWh:
			value, div = i, 1
		}
	}
	if start < 0 || value < 0 {
		return nil, fmt.Errorf("header needs %q and %q or %q", ColStart, ColEURMWh, ColCtKWh)
	}

	var prices []connectors.Price
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[start]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[value]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("line %d: price %q is not a finite number", line, rec[value])
		}
		prices = append(prices, connectors.Price{Start: t.UTC(), Ct: v / div})
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].Start.Before(prices[j].Start) })
	return prices, nil
}
