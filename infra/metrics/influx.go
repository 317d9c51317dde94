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

	coremetrics "github.com/helioplan/helioplan/core/metrics"
	"github.com/helioplan/helioplan/infra/logger"
)

// InfluxSink writes schedule runs to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
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

// RecordRun writes the run summary as a single measurement point.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_run").
		AddTag("run_id", ev.RunID).
		AddTag("microgrid_id", ev.MicrogridID).
		AddTag("mode", string(ev.Mode)).
		AddTag("component", "scheduler").
		AddField("slot_count", ev.SlotCount).
		AddField("initial_soc", round3(ev.InitialSoC)).
		AddField("final_soc", round3(ev.FinalSoC)).
		AddField("solar_utilization_percent", round3(ev.Summary.SolarUtilizationPercent)).
		AddField("estimated_cost_savings", round3(ev.Summary.EstimatedCostSavings)).
		AddField("generator_runtime_minutes", round3(ev.Summary.GeneratorRuntimeMinutes)).
		AddField("total_energy_kwh", round3(ev.Summary.TotalLoadKWh)).
		AddField("solar_energy_kwh", round3(ev.Summary.SolarEnergyKWh)).
		AddField("grid_energy_kwh", round3(ev.Summary.GridImportKWh)).
		AddField("generator_energy_kwh", round3(ev.Summary.GeneratorKWh)).
		AddField("deferred_events", ev.Summary.DeferredEvents).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSlots writes one point per scheduled slot.
func (s *InfluxSink) RecordSlots(series coremetrics.SlotSeries) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, slot := range series.Slots {
		p := write.NewPointWithMeasurement("schedule_slot").
			AddTag("run_id", series.RunID).
			AddTag("microgrid_id", series.MicrogridID).
			AddTag("component", "scheduler").
			AddTag("device_count", strconv.Itoa(len(slot.Devices))).
			AddField("supply_kw", round3(slot.SupplyKW)).
			AddField("load_kw", round3(slot.LoadKW)).
			AddField("battery_charge_kw", round3(slot.BatteryChargeKW)).
			AddField("battery_discharge_kw", round3(slot.BatteryDischargeKW)).
			AddField("battery_soc", round3(slot.BatterySoC)).
			AddField("grid_import_kw", round3(slot.GridImportKW)).
			AddField("grid_export_kw", round3(slot.GridExportKW)).
			AddField("generator_kw", round3(slot.GeneratorKW)).
			SetTime(slot.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
