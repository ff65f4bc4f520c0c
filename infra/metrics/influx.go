package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/pvsim/core/metrics"
	"github.com/kilianp07/pvsim/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes run summaries and hourly series to InfluxDB using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordRun writes one simulation_run point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, runPoint(ev))
}

func runPoint(ev coremetrics.RunEvent) *write.Point {
	return write.NewPointWithMeasurement("simulation_run").
		AddTag("run_id", ev.RunID).
		AddTag("tariff", ev.Tariff).
		AddTag("mode", ev.Mode).
		AddField("hours", ev.Hours).
		AddField("anomaly_hours", ev.AnomalyHours).
		AddField("total_cost_eur", round3(ev.TotalCostEUR)).
		AddField("total_revenue_eur", round3(ev.TotalRevenueEUR)).
		AddField("net_balance_eur", round3(ev.NetBalanceEUR)).
		AddField("final_soc_kwh", round3(ev.FinalSoCKWh)).
		AddField("self_sufficiency_pct", round3(ev.SelfSufficiencyPct)).
		SetTime(ev.Time)
}

// RecordHours writes one simulation_hour point per hour. Hours without a
// timestamp are placed one hour apart starting at the current time.
func (s *InfluxSink) RecordHours(runID, tariff string, points []coremetrics.HourPoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	base := time.Now().Truncate(time.Hour)
	pts := make([]*write.Point, 0, len(points))
	for _, hp := range points {
		pts = append(pts, hourPoint(runID, tariff, hp, base))
	}
	if len(pts) == 0 {
		return nil
	}
	return s.writeAPI.WritePoint(ctx, pts...)
}

func hourPoint(runID, tariff string, hp coremetrics.HourPoint, base time.Time) *write.Point {
	ts := hp.Time
	if ts.IsZero() {
		ts = base.Add(time.Duration(hp.Index) * time.Hour)
	}
	return write.NewPointWithMeasurement("simulation_hour").
		AddTag("index", strconv.Itoa(hp.Index)).
		AddTag("run_id", runID).
		AddTag("tariff", tariff).
		AddField("price_ct", round3(hp.PriceCt)).
		AddField("soc_kwh", round3(hp.SoCKWh)).
		AddField("grid_draw_kwh", round3(hp.GridDrawKWh)).
		AddField("feed_in_kwh", round3(hp.FeedInKWh)).
		AddField("cost_eur", round3(hp.CostEUR)).
		AddField("revenue_eur", round3(hp.RevenueEUR)).
		SetTime(ts)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
