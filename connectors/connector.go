// Package connectors fetches wholesale spot prices from remote market APIs
// and aligns them with an hourly horizon.
package connectors

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/pvsim/core/model"
)

// ErrIncompatibleOption is returned when an option targets another client.
const ErrIncompatibleOption = "option %s is not compatible with client %s"

// Price is one hourly wholesale price.
type Price struct {
	Start time.Time
	Ct    float64 // Ct/kWh
}

// SpotSource fetches hourly spot prices.
type SpotSource interface {
	Fetch(ctx context.Context, opts ...Option) ([]Price, error)
}

// Option configures a SpotSource before a fetch.
type Option func(SpotSource) error

// Ranged is implemented by sources that fetch a bounded time range.
type Ranged interface {
	SetRange(from, to time.Time)
}

// WithRange limits the fetch to [from, to). It applies to every source
// implementing Ranged.
func WithRange(from, to time.Time) Option {
	return func(s SpotSource) error {
		r, ok := s.(Ranged)
		if !ok {
			return fmt.Errorf(ErrIncompatibleOption, "WithRange", fmt.Sprintf("%T", s))
		}
		r.SetRange(from, to)
		return nil
	}
}

// Align copies prices onto records whose timestamp matches the start of a
// price hour. Records without a timestamp or without a matching price are
// left untouched. It returns the aligned copy and the number of records
// that received no price.
func Align(records []model.HourRecord, prices []Price) ([]model.HourRecord, int) {
	byHour := make(map[int64]float64, len(prices))
	for _, p := range prices {
		byHour[p.Start.UTC().Truncate(time.Hour).Unix()] = p.Ct
	}
	out := make([]model.HourRecord, len(records))
	copy(out, records)
	missing := 0
	for i := range out {
		if out[i].Time.IsZero() {
			missing++
			continue
		}
		ct, ok := byHour[out[i].Time.UTC().Truncate(time.Hour).Unix()]
		if !ok {
			missing++
			continue
		}
		out[i].SpotCt = ct
		out[i].HasSpot = true
	}
	return out, missing
}
