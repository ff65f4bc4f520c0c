package runs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/pvsim/core/events"
	"github.com/kilianp07/pvsim/core/runstore"
)

func newRouter(store runstore.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(store).Register(r.Group("/api/v1"))
	return r
}

func get(r http.Handler, url string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, url, nil))
	return rr
}

func TestList(t *testing.T) {
	store := runstore.NewMemoryStore(10)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = store.Add(events.RunFinished{RunID: "r1", Tariff: "static", StartedAt: base})
	_ = store.Add(events.RunFinished{RunID: "r2", Tariff: "combined", StartedAt: base.Add(time.Hour)})
	r := newRouter(store)

	rr := get(r, "/api/v1/runs")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []events.RunFinished
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 || out[0].RunID != "r2" {
		t.Fatalf("unexpected output %#v", out)
	}

	rr = get(r, "/api/v1/runs?tariff=static")
	out = nil
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].RunID != "r1" {
		t.Fatalf("unexpected filter result %#v", out)
	}
}

func TestListRejectsBadQuery(t *testing.T) {
	r := newRouter(runstore.NewMemoryStore(1))
	if rr := get(r, "/api/v1/runs?since=yesterday"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if rr := get(r, "/api/v1/runs?failed=maybe"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestGet(t *testing.T) {
	store := runstore.NewMemoryStore(1)
	_ = store.Add(events.RunFinished{RunID: "r1", Tariff: "static"})
	r := newRouter(store)

	if rr := get(r, "/api/v1/runs/r1"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr := get(r, "/api/v1/runs/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}
