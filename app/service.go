// Package app wires the simulation engine to its inputs, exports and
// observability sinks.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kilianp07/pvsim/app/plugins"
	"github.com/kilianp07/pvsim/config"
	"github.com/kilianp07/pvsim/connectors"
	connfactory "github.com/kilianp07/pvsim/connectors/factory"
	"github.com/kilianp07/pvsim/core/diag"
	"github.com/kilianp07/pvsim/core/events"
	coremetrics "github.com/kilianp07/pvsim/core/metrics"
	"github.com/kilianp07/pvsim/core/model"
	"github.com/kilianp07/pvsim/core/monitoring"
	coremqtt "github.com/kilianp07/pvsim/core/mqtt"
	"github.com/kilianp07/pvsim/core/runstore"
	"github.com/kilianp07/pvsim/core/sim"
	"github.com/kilianp07/pvsim/infra/input"
	"github.com/kilianp07/pvsim/infra/logger"
	_ "github.com/kilianp07/pvsim/infra/metrics"
	"github.com/kilianp07/pvsim/infra/mqtt"
	"github.com/kilianp07/pvsim/infra/runhistory"
	"github.com/kilianp07/pvsim/internal/eventbus"
)

// Deps are the collaborators of a Service. Nil fields fall back to no-op
// implementations.
type Deps struct {
	Sink      coremetrics.MetricsSink
	Publisher coremqtt.Publisher
	Spot      connectors.SpotSource
	Store     runstore.Store
	Log       logger.Logger
}

// Service runs simulations and fans the results out to sinks, the MQTT
// broker and export files. It is safe for concurrent use.
type Service struct {
	cfg    *config.Config
	engine *sim.Engine
	sink   coremetrics.MetricsSink
	pub    coremqtt.Publisher
	spot   connectors.SpotSource
	bus    *eventbus.Bus[events.RunFinished]
	store  runstore.Store
	done   chan struct{}
	log    logger.Logger
}

// New creates a Service from the configuration, connecting to the MQTT
// broker and building metrics sinks and the run history as configured.
func New(cfg *config.Config) (*Service, error) {
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := newStore(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("run history: %w", err)
	}
	var pub coremqtt.Publisher = coremqtt.NopPublisher{}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		pub = client
	}
	var spot connectors.SpotSource
	if cfg.Spot.Enabled {
		spot, err = connfactory.NewSpotSource(cfg.Spot.Source, cfg.Spot.Params())
		if err != nil {
			return nil, fmt.Errorf("spot source: %w", err)
		}
	}
	return NewWithDeps(cfg, Deps{Sink: sink, Publisher: pub, Spot: spot, Store: store}), nil
}

func newStore(cfg config.HistoryConfig) (runstore.Store, error) {
	switch cfg.Backend {
	case config.HistorySQLite:
		return runhistory.NewSQLiteStore(cfg.Path, cfg.Capacity)
	case config.HistoryPostgres:
		return runhistory.NewPostgresStore(cfg.DSN, cfg.Capacity)
	default:
		return runstore.NewMemoryStore(cfg.Capacity), nil
	}
}

// NewWithDeps creates a Service with explicit collaborators.
func NewWithDeps(cfg *config.Config, d Deps) *Service {
	if d.Sink == nil {
		d.Sink = coremetrics.NopSink{}
	}
	if d.Publisher == nil {
		d.Publisher = coremqtt.NopPublisher{}
	}
	if d.Log == nil {
		d.Log = logger.New("service")
	}
	if d.Store == nil {
		d.Store = runstore.NewMemoryStore(runstore.DefaultCapacity)
	}
	s := &Service{
		cfg:    cfg,
		engine: sim.NewEngine(logger.New("engine")),
		sink:   d.Sink,
		pub:    d.Publisher,
		spot:   d.Spot,
		bus:    eventbus.New[events.RunFinished](eventbus.DefaultBuffer),
		store:  d.Store,
		done:   make(chan struct{}),
		log:    d.Log,
	}
	go s.collect(s.bus.Subscribe())
	return s
}

// collect copies finished runs into the store until the bus is closed.
func (s *Service) collect(ch <-chan events.RunFinished) {
	defer close(s.done)
	defer monitoring.Recover()
	for ev := range ch {
		if err := s.store.Add(ev); err != nil {
			s.log.Errorf("store run %s: %v", ev.RunID, err)
			monitoring.CaptureException(err, map[string]string{"stage": "history"})
		}
	}
}

// Runs returns the store of recent runs.
func (s *Service) Runs() runstore.Store { return s.store }

// Subscribe returns a channel receiving every finished run. Callers must
// drain it or release it with Unsubscribe.
func (s *Service) Subscribe() <-chan events.RunFinished { return s.bus.Subscribe() }

// Unsubscribe releases a channel returned by Subscribe.
func (s *Service) Unsubscribe(ch <-chan events.RunFinished) { s.bus.Unsubscribe(ch) }

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config { return s.cfg }

// LoadHours reads the configured input file, or generates a synthetic
// profile when none is set, and fills in missing spot prices from the spot
// source when one is configured.
func (s *Service) LoadHours(ctx context.Context) ([]model.HourRecord, error) {
	var hours []model.HourRecord
	if s.cfg.Input.Path != "" {
		var err error
		hours, err = input.LoadFile(s.cfg.Input.Path, s.cfg.Input.Sheet)
		if err != nil {
			return nil, fmt.Errorf("load input: %w", err)
		}
		s.log.Infof("loaded %d hours from %s", len(hours), s.cfg.Input.Path)
	} else {
		hours = s.cfg.Input.Generator().Generate()
		s.log.Infof("generated %d synthetic hours (seed %d)", len(hours), s.cfg.Input.Synth.Seed)
	}
	return s.fillSpot(ctx, hours)
}

func (s *Service) fillSpot(ctx context.Context, hours []model.HourRecord) ([]model.HourRecord, error) {
	if s.spot == nil || model.HasSpotSeries(hours) {
		return hours, nil
	}
	from, to, ok := span(hours)
	if !ok {
		s.log.Warnf("spot source configured but input has no timestamps")
		return hours, nil
	}
	prices, err := s.spot.Fetch(ctx, connectors.WithRange(from, to))
	if err != nil {
		return nil, fmt.Errorf("fetch spot prices: %w", err)
	}
	aligned, missing := connectors.Align(hours, prices)
	if missing > 0 {
		s.log.Warnf("%d of %d hours have no spot price", missing, len(hours))
	}
	return aligned, nil
}

func span(hours []model.HourRecord) (time.Time, time.Time, bool) {
	var from, to time.Time
	for _, h := range hours {
		if h.Time.IsZero() {
			continue
		}
		if from.IsZero() || h.Time.Before(from) {
			from = h.Time
		}
		if h.Time.After(to) {
			to = h.Time
		}
	}
	if from.IsZero() {
		return from, to, false
	}
	return from, to.Add(time.Hour), true
}

// Simulate runs one simulation and records it. Sink and broker failures are
// logged and do not fail the run.
func (s *Service) Simulate(ctx context.Context, hours []model.HourRecord, sc config.SimulationConfig) (*sim.Result, error) {
	simCfg, err := sc.ToSimConfig()
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	start := time.Now()
	res, err := s.engine.Run(hours, simCfg)
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	s.record(ctx, res, string(simCfg.Mode), time.Since(start))
	return res, nil
}

func (s *Service) recordFailure(err error) {
	s.log.Warnf("simulation rejected: %v", err)
	why := reason(err)
	if why == reasonOther {
		monitoring.CaptureException(err, map[string]string{"stage": "simulate"})
	}
	s.bus.Publish(events.RunFinished{StartedAt: time.Now().UTC(), Err: err.Error()})
	fr, ok := s.sink.(coremetrics.FailureRecorder)
	if !ok {
		return
	}
	if ferr := fr.RecordFailure(coremetrics.FailureEvent{Reason: why, Time: time.Now().UTC()}); ferr != nil {
		s.log.Errorf("record failure: %v", ferr)
	}
}

const reasonOther = "other"

func reason(err error) string {
	var cfgErr *model.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return cfgErr.Field
	case errors.Is(err, model.ErrEmptyHorizon):
		return "empty_horizon"
	default:
		return reasonOther
	}
}

func (s *Service) record(ctx context.Context, res *sim.Result, mode string, d time.Duration) {
	ev := coremetrics.RunEvent{
		RunID:              res.RunID,
		Tariff:             string(res.Tariff),
		Mode:               mode,
		Hours:              res.Summary.Hours,
		AnomalyHours:       res.AnomalyHours(),
		BoundaryCount:      res.Diagnostics.Count(diag.BoundaryCondition),
		ViolationCount:     res.Diagnostics.Count(diag.InvariantViolation),
		TotalCostEUR:       res.Summary.TotalCostEUR,
		TotalRevenueEUR:    res.Summary.TotalRevenueEUR,
		NetBalanceEUR:      res.Summary.NetBalanceEUR,
		FinalSoCKWh:        res.FinalSoCKWh,
		SelfSufficiencyPct: res.Summary.SelfSufficiencyPct,
		Duration:           d,
		Time:               res.StartedAt,
	}
	s.bus.Publish(events.RunFinished{
		RunID:        res.RunID,
		Tariff:       ev.Tariff,
		Mode:         mode,
		StartedAt:    res.StartedAt,
		Duration:     d,
		Summary:      res.Summary,
		FinalSoCKWh:  res.FinalSoCKWh,
		AnomalyHours: ev.AnomalyHours,
	})
	if err := s.sink.RecordRun(ev); err != nil {
		s.log.Errorf("record run %s: %v", res.RunID, err)
		monitoring.CaptureException(err, map[string]string{"stage": "metrics", "run_id": res.RunID})
	}
	if hr, ok := s.sink.(coremetrics.HourRecorder); ok {
		points := make([]coremetrics.HourPoint, len(res.Rows))
		for i, r := range res.Rows {
			points[i] = coremetrics.HourPoint{
				Index:       r.Index,
				Time:        r.Time,
				PriceCt:     r.PriceCt,
				SoCKWh:      r.SoCKWh,
				GridDrawKWh: r.GridDrawKWh,
				FeedInKWh:   r.FeedInKWh,
				CostEUR:     r.CostEUR,
				RevenueEUR:  r.RevenueEUR,
			}
		}
		if err := hr.RecordHours(res.RunID, string(res.Tariff), points); err != nil {
			s.log.Errorf("record hours %s: %v", res.RunID, err)
		}
	}
	if _, err := s.pub.PublishRun(ctx, res); err != nil {
		s.log.Errorf("publish run %s: %v", res.RunID, err)
		monitoring.CaptureException(err, map[string]string{"stage": "mqtt", "run_id": res.RunID})
	}
}

// Export writes res in every configured format to the output directory and
// returns the written paths.
func (s *Service) Export(res *sim.Result) ([]string, error) {
	dir := s.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	var paths []string
	for _, format := range s.cfg.Output.Formats {
		p, ok := plugins.Exporters[format]
		if !ok {
			return paths, model.NewConfigurationError("output.formats", "unknown format %q", format)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s.%s", res.RunID, p.Ext))
		if err := writeFile(path, func(f *os.File) error { return p.Export(f, res) }); err != nil {
			return paths, fmt.Errorf("export %s: %w", format, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Run loads the input, simulates it with the configured scenario and
// writes the exports.
func (s *Service) Run(ctx context.Context) (*sim.Result, []string, error) {
	hours, err := s.LoadHours(ctx)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.Simulate(ctx, hours, s.cfg.Simulation)
	if err != nil {
		return nil, nil, err
	}
	paths, err := s.Export(res)
	if err != nil {
		return res, paths, err
	}
	return res, paths, nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.done
	s.pub.Disconnect()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if c, ok := s.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
