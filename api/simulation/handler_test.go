package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/auth"
	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/sim"
	"github.com/kilianp07/pvsim/core/tariff"
)

type engineSim struct {
	last config.SimulationConfig
}

func (e *engineSim) Simulate(_ context.Context, hours []model.HourRecord, sc config.SimulationConfig) (*sim.Result, error) {
	e.last = sc
	cfg, err := sc.ToSimConfig()
	if err != nil {
		return nil, err
	}
	return sim.NewEngine(nil).Run(hours, cfg)
}

func newRouter(t *testing.T, token string) (*gin.Engine, *engineSim) {
	t.Helper()
	return newAuthRouter(t, config.APIConfig{Token: token})
}

func newAuthRouter(t *testing.T, api config.APIConfig) (*gin.Engine, *engineSim) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Input.Synth.Days = 1
	cfg.API.MaxHours = 48
	s := &engineSim{}
	r := gin.New()
	NewHandler(s, cfg).Register(r.Group("/api/v1"), RequireAuth(api))
	return r, s
}

func post(t *testing.T, r http.Handler, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulate", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out.Error
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t, "secret")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestSimulateSynthetic(t *testing.T) {
	r, s := newRouter(t, "")
	rr := post(t, r, map[string]any{
		"simulation":   map[string]any{"tariff": "dynamic_static_fee", "margin_ct": 12, "load_shifting": true},
		"include_rows": true,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, tariff.KindDynamicStaticFee, resp.Tariff)
	assert.Equal(t, 24, resp.Summary.Hours)
	assert.Len(t, resp.Rows, 24)
	assert.Len(t, resp.Series.SpotCt, 24)
	assert.Equal(t, 12.0, s.last.MarginCt)
	assert.True(t, s.last.LoadShifting)
}

func TestSimulateExplicitHours(t *testing.T) {
	r, _ := newRouter(t, "")
	hours := make([]map[string]any, 24)
	for h := range hours {
		gen := 0.0
		if h >= 12 {
			gen = 3
		}
		hours[h] = map[string]any{"hour": h, "generation_kwh": gen, "fixed_load_kwh": 1}
	}
	rr := post(t, r, map[string]any{
		"simulation": map[string]any{"battery_capacity_kwh": 5},
		"hours":      hours,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Rows)
	assert.Equal(t, 24, resp.Summary.Hours)
	assert.Nil(t, resp.Series.SpotCt)
}

func TestSimulateErrors(t *testing.T) {
	r, _ := newRouter(t, "")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulate", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeError(t, rr).Code)

	rr = post(t, r, map[string]any{"simulation": map[string]any{"pv_capacity_kwp": 50}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "INVALID_CONFIGURATION", decodeError(t, rr).Code)

	rr = post(t, r, map[string]any{"simulation": map[string]any{"unknown": 1}})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = post(t, r, map[string]any{
		"simulation": map[string]any{"tariff": "dynamic_dynamic_fee"},
		"hours":      []map[string]any{{"hour": 1, "fixed_load_kwh": 1}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decodeError(t, rr).Message, "spot")

	rr = post(t, r, map[string]any{"synthetic": map[string]any{"days": 3}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, "TOO_MANY_HOURS", decodeError(t, rr).Code)
}

func TestSimulateDoesNotLeakOverrides(t *testing.T) {
	r, s := newRouter(t, "")
	rr := post(t, r, map[string]any{"simulation": map[string]any{"feed_in_ct": 0}})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0.0, *s.last.FeedInCt)

	rr = post(t, r, map[string]any{})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 8.11, *s.last.FeedInCt)
}

func TestRequireAuthStaticToken(t *testing.T) {
	r, _ := newRouter(t, "secret")
	rr := post(t, r, map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rr).Code)

	rr = post(t, r, map[string]any{}, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = post(t, r, map[string]any{}, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireAuthAcceptsJWT(t *testing.T) {
	r, _ := newAuthRouter(t, config.APIConfig{JWTSecret: "signing-key"})

	tok, err := auth.IssueJWT([]byte("signing-key"), "dashboard", time.Hour)
	require.NoError(t, err)
	rr := post(t, r, map[string]any{}, "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rr.Code)

	forged, err := auth.IssueJWT([]byte("other-key"), "dashboard", time.Hour)
	require.NoError(t, err)
	rr = post(t, r, map[string]any{}, "Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = post(t, r, map[string]any{}, "Authorization", "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireAuthTokenOrJWT(t *testing.T) {
	r, _ := newAuthRouter(t, config.APIConfig{Token: "static", JWTSecret: "signing-key"})

	rr := post(t, r, map[string]any{}, "Authorization", "Bearer static")
	assert.Equal(t, http.StatusOK, rr.Code)

	tok, err := auth.IssueJWT([]byte("signing-key"), "cli", time.Minute)
	require.NoError(t, err)
	rr = post(t, r, map[string]any{}, "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = post(t, r, map[string]any{}, "Authorization", "Basic static")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
