package factory

import (
	"testing"

	pricefile "github.com/kilianp07/pvsim/connectors/clients/priceFile"
	wholesalemarket "github.com/kilianp07/pvsim/connectors/clients/wholesaleMarket"
)

func TestNewSpotSource(t *testing.T) {
	tests := []struct {
		id          string
		params      Params
		expectedErr bool
	}{
		{IDWholesaleMarket, Params{}, false},
		{IDWholesaleMarket, Params{BaseURL: "http://localhost:1"}, false},
		{IDPriceFile, Params{Path: "prices.csv"}, false},
		{IDPriceFile, Params{}, true},
		{"unknown_id", Params{}, true},
	}

	for _, tt := range tests {
		client, err := NewSpotSource(tt.id, tt.params)
		if tt.expectedErr {
			if err == nil {
				t.Errorf("expected error for id %s, got nil", tt.id)
			}
			continue
		}
		if err != nil {
			t.Errorf("did not expect error for id %s, got %v", tt.id, err)
		}
		switch tt.id {
		case IDWholesaleMarket:
			if _, ok := client.(*wholesalemarket.Client); !ok {
				t.Errorf("expected wholesale market client, got %T", client)
			}
		case IDPriceFile:
			if _, ok := client.(*pricefile.Client); !ok {
				t.Errorf("expected price file client, got %T", client)
			}
		}
	}
}
