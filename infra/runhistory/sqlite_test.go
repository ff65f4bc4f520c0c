package runhistory

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/core/accounting"
	"github.com/kilianp07/pvsim/core/events"
	"github.com/kilianp07/pvsim/core/runstore"
)

func newStore(t *testing.T, capacity int) *SQLStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"), capacity)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newStore(t, 10)
	at := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	in := events.RunFinished{
		RunID:        "r1",
		Tariff:       "static",
		Mode:         "continuous",
		StartedAt:    at,
		Duration:     3 * time.Millisecond,
		Summary:      accounting.Summary{Hours: 24, NetBalanceEUR: 2.5},
		FinalSoCKWh:  1.5,
		AnomalyHours: 2,
	}
	require.NoError(t, s.Add(in))

	got, err := s.Get("r1")
	require.NoError(t, err)
	assert.Equal(t, in.Summary, got.Summary)
	assert.True(t, in.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, in.AnomalyHours, got.AnomalyHours)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, runstore.ErrNotFound)
	_, err = s.Get("")
	assert.ErrorIs(t, err, runstore.ErrNotFound)
}

func TestSQLiteStoreListFilters(t *testing.T) {
	s := newStore(t, 10)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Add(events.RunFinished{RunID: "a", Tariff: "static", Mode: "continuous", StartedAt: base}))
	require.NoError(t, s.Add(events.RunFinished{RunID: "b", Tariff: "combined", Mode: "daily_reset", StartedAt: base.Add(time.Hour)}))
	require.NoError(t, s.Add(events.RunFinished{StartedAt: base.Add(2 * time.Hour), Err: "empty simulation horizon"}))

	all, err := s.List(runstore.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Failed())
	assert.Equal(t, "b", all[1].RunID)

	yes := true
	cases := map[string]struct {
		f    runstore.Filter
		want int
	}{
		"tariff": {runstore.Filter{Tariff: "static"}, 1},
		"mode":   {runstore.Filter{Mode: "daily_reset"}, 1},
		"since":  {runstore.Filter{Since: base.Add(30 * time.Minute)}, 2},
		"failed": {runstore.Filter{Failed: &yes}, 1},
		"none":   {runstore.Filter{Tariff: "dynamic_static_fee"}, 0},
	}
	for name, tc := range cases {
		got, err := s.List(tc.f)
		require.NoError(t, err, name)
		assert.Len(t, got, tc.want, name)
	}
}

func TestSQLiteStorePrunesBeyondCapacity(t *testing.T) {
	s := newStore(t, 2)
	now := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Add(events.RunFinished{RunID: id, StartedAt: now.Add(time.Duration(i) * time.Second)}))
	}
	_, err := s.Get("a")
	assert.ErrorIs(t, err, runstore.ErrNotFound)
	all, err := s.List(runstore.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := NewSQLiteStore(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Add(events.RunFinished{RunID: "kept", StartedAt: time.Now()}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path, 0)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	_, err = s.Get("kept")
	assert.NoError(t, err)
}
