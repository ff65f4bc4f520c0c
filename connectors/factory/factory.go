// Package factory builds spot price sources from their configured id.
package factory

import (
	"fmt"

	"github.com/kilianp07/pvsim/auth"
	"github.com/kilianp07/pvsim/connectors"
	pricefile "github.com/kilianp07/pvsim/connectors/clients/priceFile"
	wholesalemarket "github.com/kilianp07/pvsim/connectors/clients/wholesaleMarket"
)

const (
	IDWholesaleMarket = "wholesale_market"
	IDPriceFile       = "price_file"
)

var (
	errUnknownClient = "unknown connector id: %s"
)

// Params carries what the individual sources need. Cred is used by the
// wholesale market client, Path by the price file source.
type Params struct {
	Cred    *auth.ClientCred
	BaseURL string
	Path    string
}

// IDs lists the known source ids.
func IDs() []string { return []string{IDWholesaleMarket, IDPriceFile} }

// NewSpotSource returns the spot price source registered under id.
func NewSpotSource(id string, p Params) (connectors.SpotSource, error) {
	switch id {
	case IDWholesaleMarket:
		c := wholesalemarket.New(p.Cred)
		if p.BaseURL != "" {
			if err := wholesalemarket.WithBaseURL(p.BaseURL)(c); err != nil {
				return nil, err
			}
		}
		return c, nil
	case IDPriceFile:
		if p.Path == "" {
			return nil, fmt.Errorf("%s: path is required", IDPriceFile)
		}
		return pricefile.New(p.Path), nil
	default:
		return nil, fmt.Errorf(errUnknownClient, id)
	}
}
