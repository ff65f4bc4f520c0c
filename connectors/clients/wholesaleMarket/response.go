package wholesalemarket

import (
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/pvsim/connectors"
)

// quote is one hourly auction result.
type quote struct {
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Price     float64 `json:"price"`
}

type Response struct {
	FrancePowerExchanges []struct {
		StartDate string  `json:"start_date"`
		EndDate   string  `json:"end_date"`
		Values    []quote `json:"values"`
	} `json:"france_power_exchanges"`
}

// Prices flattens the exchanges into hourly prices sorted by start time.
// The API quotes EUR/MWh, which is divided by ten to get Ct/kWh. When two
// exchanges quote the same hour the later one wins.
func (r *Response) Prices() ([]connectors.Price, error) {
	byStart := make(map[time.Time]float64)
	for _, exchange := range r.FrancePowerExchanges {
		for _, q := range exchange.Values {
			start, err := time.Parse(time.RFC3339, q.StartDate)
			if err != nil {
				return nil, fmt.Errorf("quote start %q: %w", q.StartDate, err)
			}
			byStart[start.UTC()] = q.Price / 10
		}
	}
	out := make([]connectors.Price, 0, len(byStart))
	for start, ct := range byStart {
		out = append(out, connectors.Price{Start: start, Ct: ct})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
