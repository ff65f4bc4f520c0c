// Package wholesalemarket reads day-ahead power exchange prices from the
// RTE wholesale market API.
package wholesalemarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/pvsim/auth"
	"github.com/kilianp07/pvsim/connectors"
)

// DefaultBaseURL is the production endpoint.
const DefaultBaseURL = "https://digital.iservices.rte-france.com/open_api/wholesale_market/v2/france_power_exchanges"

type Client struct {
	baseURL   string
	http      *http.Client
	auth      *auth.ClientCred
	startDate time.Time
	endDate   time.Time
}

// New returns a client authenticating with cred. cred may be nil for
// endpoints that need no token.
func New(cred *auth.ClientCred) *Client {
	return &Client{baseURL: DefaultBaseURL, http: &http.Client{Timeout: 30 * time.Second}, auth: cred}
}

// Fetch retrieves the prices between the start and end dates, which must
// both be set through options.
func (w *Client) Fetch(ctx context.Context, opts ...connectors.Option) ([]connectors.Price, error) {
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	if w.startDate.IsZero() || w.endDate.IsZero() {
		return nil, fmt.Errorf("missing options: start and end dates are required")
	}
	if !w.endDate.After(w.startDate) {
		return nil, fmt.Errorf("end date %s is not after start date %s", w.endDate, w.startDate)
	}

	q := url.Values{}
	q.Set("start_date", w.startDate.Format(time.RFC3339))
	q.Set("end_date", w.endDate.Format(time.RFC3339))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if w.auth != nil {
		if err := w.auth.SetAuthHeader(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to set auth header: %w", err)
		}
	}

	resp, err := w.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	var marketResponse Response
	if err := json.NewDecoder(resp.Body).Decode(&marketResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return marketResponse.Prices()
}
