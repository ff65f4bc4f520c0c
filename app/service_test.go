package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/connectors"
	coremetrics "github.com/kilianp07/pvsim/core/metrics"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/runstore"
	"github.com/kilianp07/pvsim/core/sim"
	"github.com/kilianp07/pvsim/core/tariff"
	"github.com/kilianp07/pvsim/infra/input"
	"github.com/kilianp07/pvsim/infra/logger"
	"github.com/kilianp07/pvsim/infra/runhistory"
)

type recordSink struct {
	mu       sync.Mutex
	runs     []coremetrics.RunEvent
	hours    int
	failures []coremetrics.FailureEvent
}

func (r *recordSink) RecordRun(ev coremetrics.RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, ev)
	return nil
}

func (r *recordSink) RecordHours(_, _ string, points []coremetrics.HourPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hours += len(points)
	return nil
}

func (r *recordSink) RecordFailure(ev coremetrics.FailureEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, ev)
	return nil
}

type fakePublisher struct {
	published []string
	err       error
	closed    bool
}

func (f *fakePublisher) PublishRun(_ context.Context, res *sim.Result) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, res.RunID)
	return "msg-" + res.RunID, nil
}

func (f *fakePublisher) Disconnect() { f.closed = true }

type fakeSpot struct{ prices []connectors.Price }

func (f fakeSpot) Fetch(context.Context, ...connectors.Option) ([]connectors.Price, error) {
	return f.prices, nil
}

func newService(t *testing.T, cfg *config.Config, d Deps) *Service {
	t.Helper()
	if d.Log == nil {
		d.Log = logger.NopLogger{}
	}
	return NewWithDeps(cfg, d)
}

func TestSimulateRecordsAndPublishes(t *testing.T) {
	cfg := config.Default()
	sink := &recordSink{}
	pub := &fakePublisher{}
	svc := newService(t, cfg, Deps{Sink: sink, Publisher: pub})

	hours := input.Generator{Seed: 4, Days: 1}.Generate()
	res, err := svc.Simulate(context.Background(), hours, cfg.Simulation)
	require.NoError(t, err)

	require.Len(t, sink.runs, 1)
	ev := sink.runs[0]
	assert.Equal(t, res.RunID, ev.RunID)
	assert.Equal(t, string(tariff.KindStatic), ev.Tariff)
	assert.Equal(t, "continuous", ev.Mode)
	assert.Equal(t, 24, ev.Hours)
	assert.Equal(t, 24, sink.hours)
	assert.Equal(t, []string{res.RunID}, pub.published)
}

func TestSimulatePublishErrorDoesNotFailRun(t *testing.T) {
	cfg := config.Default()
	svc := newService(t, cfg, Deps{Publisher: &fakePublisher{err: errors.New("broker down")}})
	_, err := svc.Simulate(context.Background(), input.Generator{Seed: 1, Days: 1}.Generate(), cfg.Simulation)
	assert.NoError(t, err)
}

func TestSimulateRecordsFailure(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Tariff = string(tariff.KindDynamicStaticFee)
	sink := &recordSink{}
	svc := newService(t, cfg, Deps{Sink: sink})

	hours := []model.HourRecord{{Hour: 0, FixedLoadKWh: 1}}
	_, err := svc.Simulate(context.Background(), hours, cfg.Simulation)
	require.ErrorIs(t, err, model.ErrInvalidConfiguration)
	require.Len(t, sink.failures, 1)
	assert.Equal(t, "spot_ct", sink.failures[0].Reason)
	assert.Empty(t, sink.runs)

	_, err = svc.Simulate(context.Background(), nil, config.Default().Simulation)
	require.ErrorIs(t, err, model.ErrEmptyHorizon)
	assert.Equal(t, "empty_horizon", sink.failures[1].Reason)
}

func TestLoadHoursFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.csv")
	data := "hour,generation_kwh,fixed_load_kwh,deferrable_load_kwh\n0,0,1,0.5\n1,0,1,0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg := config.Default()
	cfg.Input.Path = path
	hours, err := newService(t, cfg, Deps{}).LoadHours(context.Background())
	require.NoError(t, err)
	assert.Len(t, hours, 2)
}

func TestLoadHoursFillsSpot(t *testing.T) {
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	cfg := config.Default()
	cfg.Input.Synth = config.GeneratorConfig{Seed: 2, Days: 1, Start: "2024-06-03"}

	var prices []connectors.Price
	for h := 0; h < 24; h++ {
		prices = append(prices, connectors.Price{Start: start.Add(time.Duration(h) * time.Hour), Ct: float64(h)})
	}
	svc := newService(t, cfg, Deps{Spot: fakeSpot{prices: prices}})

	// Synthetic profiles carry spot prices already, so strip them first.
	hours := cfg.Input.Generator().Generate()
	for i := range hours {
		hours[i].HasSpot = false
	}
	filled, err := svc.fillSpot(context.Background(), hours)
	require.NoError(t, err)
	assert.True(t, model.HasSpotSeries(filled))
	assert.Equal(t, 5.0, filled[5].SpotCt)
}

func TestLoadHoursFromPriceFile(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.csv")
	require.NoError(t, os.WriteFile(profile, []byte(
		"timestamp,hour,generation_kwh,fixed_load_kwh,deferrable_load_kwh\n"+
			"2024-03-01T00:00:00Z,0,0,1,0\n"+
			"2024-03-01T01:00:00Z,1,0,1,0.5\n"), 0o600))
	prices := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(prices, []byte(
		"start,eur_mwh\n2024-02-29T23:00:00Z,1\n2024-03-01T00:00:00Z,120\n2024-03-01T01:00:00Z,80\n"), 0o600))

	cfg := config.Default()
	cfg.Input.Path = profile
	cfg.Spot = config.SpotConfig{Enabled: true, Source: "price_file", Path: prices}
	require.NoError(t, cfg.Validate())
	svc, err := New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	hours, err := svc.LoadHours(context.Background())
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.Equal(t, 12.0, hours[0].SpotCt)
	assert.Equal(t, 8.0, hours[1].SpotCt)
	assert.True(t, model.HasSpotSeries(hours))
}

func TestRunWritesExports(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Output.Formats = []string{config.FormatCSV, config.FormatJSON, config.FormatXLSX, config.FormatPDF, config.FormatChart}
	pub := &fakePublisher{}
	svc := newService(t, cfg, Deps{Publisher: pub})

	res, paths, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, paths, 5)
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), p)
		assert.True(t, strings.HasPrefix(filepath.Base(p), res.RunID))
	}
	assert.Equal(t, 168, res.Summary.Hours)

	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}

func TestExportUnknownFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Formats = []string{"docx"}
	svc := newService(t, cfg, Deps{})
	res, err := svc.Simulate(context.Background(), input.Generator{Seed: 1, Days: 1}.Generate(), cfg.Simulation)
	require.NoError(t, err)
	_, err = svc.Export(res)
	assert.ErrorIs(t, err, model.ErrInvalidConfiguration)
}

func TestFinishedRunsReachStoreAndSubscribers(t *testing.T) {
	cfg := config.Default()
	svc := newService(t, cfg, Deps{})
	sub := svc.Subscribe()

	res, err := svc.Simulate(context.Background(), input.Generator{Seed: 9, Days: 1}.Generate(), cfg.Simulation)
	require.NoError(t, err)
	_, err = svc.Simulate(context.Background(), nil, cfg.Simulation)
	require.Error(t, err)

	ev := <-sub
	assert.Equal(t, res.RunID, ev.RunID)
	assert.False(t, ev.Failed())
	ev = <-sub
	assert.True(t, ev.Failed())
	svc.Unsubscribe(sub)

	require.NoError(t, svc.Close())
	got, err := svc.Runs().Get(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.Summary, got.Summary)
	all, err := svc.Runs().List(runstore.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestNewWithSQLiteHistory(t *testing.T) {
	cfg := config.Default()
	cfg.History = config.HistoryConfig{Backend: config.HistorySQLite, Path: filepath.Join(t.TempDir(), "runs.db")}
	cfg.History.SetDefaults()
	svc, err := New(cfg)
	require.NoError(t, err)

	res, err := svc.Simulate(context.Background(), input.Generator{Seed: 4, Days: 1}.Generate(), cfg.Simulation)
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	reopened, err := runhistory.NewSQLiteStore(cfg.History.Path, 0)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	got, err := reopened.Get(res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.Summary.Hours, got.Summary.Hours)
}
