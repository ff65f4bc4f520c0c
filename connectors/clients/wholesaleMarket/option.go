package wholesalemarket

import (
	"fmt"
	"time"

	"github.com/kilianp07/pvsim/connectors"
)

func WithStartDate(startDate time.Time) connectors.Option {
	return func(c connectors.SpotSource) error {
		if w, ok := c.(*Client); ok {
			w.startDate = startDate
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithStartDate", "wholesale_market")
	}
}

func WithEndDate(endDate time.Time) connectors.Option {
	return func(c connectors.SpotSource) error {
		if w, ok := c.(*Client); ok {
			w.endDate = endDate
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithEndDate", "wholesale_market")
	}
}

// SetRange implements connectors.Ranged.
func (w *Client) SetRange(from, to time.Time) {
	w.startDate, w.endDate = from, to
}

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) connectors.Option {
	return func(c connectors.SpotSource) error {
		if w, ok := c.(*Client); ok {
			w.baseURL = u
			return nil
		}
		return fmt.Errorf(connectors.ErrIncompatibleOption, "WithBaseURL", "wholesale_market")
	}
}
