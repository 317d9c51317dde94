// Package app wires the scheduling engine to its storage, metrics and
// transport infrastructure.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/helioplan/helioplan/config"
	coremetrics "github.com/helioplan/helioplan/core/metrics"
	"github.com/helioplan/helioplan/core/scheduler"
	"github.com/helioplan/helioplan/core/scheduler/history"
	"github.com/helioplan/helioplan/infra/logger"
	"github.com/helioplan/helioplan/infra/metrics"
	"github.com/helioplan/helioplan/infra/mqtt"
	"github.com/helioplan/helioplan/internal/eventbus"
)

// Service orchestrates schedule generation, persistence and publication.
type Service struct {
	Engine *scheduler.Engine
	Store  history.Store

	cfg          *config.Config
	sink         coremetrics.Sink
	publisher    *mqtt.PlanPublisher
	mqttClient   *mqtt.PahoClient
	bus          *eventbus.Bus[coremetrics.RunEvent]
	log          logger.Logger
	promEnabled  bool
	promAddr     string
	publishSlots bool
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	engine, err := scheduler.New(cfg.Scheduler, logger.New("scheduler"))
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = coremetrics.NewMultiSink(sinks...)
	}

	var store history.Store
	if cfg.History.Enabled {
		switch cfg.History.Backend {
		case "sqlite":
			store, err = history.NewSQLiteStore(cfg.History.Path)
		default:
			store, err = history.NewJSONLStore(cfg.History.Path)
		}
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
	}

	svc := &Service{
		Engine:       engine,
		Store:        store,
		cfg:          cfg,
		sink:         sink,
		bus:          eventbus.New[coremetrics.RunEvent](),
		log:          log,
		promEnabled:  cfg.Metrics.PrometheusEnabled,
		promAddr:     cfg.Metrics.PrometheusAddr,
		publishSlots: cfg.MQTT.PublishSlots,
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT.Connection)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqttClient = client
		ackTimeout := time.Duration(cfg.MQTT.AckTimeoutSeconds) * time.Second
		svc.publisher = mqtt.NewPlanPublisher(client, ackTimeout)
	}

	return svc, nil
}

// Events exposes the run event stream for in-process subscribers.
func (s *Service) Events() *eventbus.Bus[coremetrics.RunEvent] { return s.bus }

// RunOnce loads the configured inputs, generates one schedule and routes the
// result to the history store, metrics sinks and MQTT publisher.
func (s *Service) RunOnce(ctx context.Context) (*history.Record, error) {
	in := s.cfg.Inputs
	forecast, err := LoadForecast(in.ForecastFile)
	if err != nil {
		return nil, err
	}
	devices, err := LoadDevices(in.DevicesFile)
	if err != nil {
		return nil, err
	}

	res, err := s.Engine.Generate(forecast, devices, in.InitialSoC, time.Duration(in.SlotMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("generate schedule: %w", err)
	}

	rec := history.Record{
		RunID:       uuid.NewString(),
		MicrogridID: in.MicrogridID,
		CreatedAt:   time.Now().UTC(),
		SlotMinutes: in.SlotMinutes,
		Result:      *res,
	}
	if s.Store != nil {
		if err := s.Store.Append(ctx, rec); err != nil {
			return nil, fmt.Errorf("append history: %w", err)
		}
	}

	ev := coremetrics.RunEvent{
		RunID:       rec.RunID,
		MicrogridID: in.MicrogridID,
		Mode:        res.Mode,
		SlotCount:   len(res.Slots),
		InitialSoC:  res.InitialSoC,
		FinalSoC:    res.FinalSoC,
		Summary:     res.Metrics,
		Time:        rec.CreatedAt,
	}
	if err := s.sink.RecordRun(ev); err != nil {
		s.log.Errorf("record run: %v", err)
	}
	series := coremetrics.SlotSeries{RunID: rec.RunID, MicrogridID: in.MicrogridID, Slots: res.Slots}
	if err := s.sink.RecordSlots(series); err != nil {
		s.log.Errorf("record slots: %v", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishPlan(in.MicrogridID, *res); err != nil {
			return nil, err
		}
		if s.publishSlots {
			for _, slot := range res.Slots {
				if err := s.publisher.PublishSlotCommands(in.MicrogridID, slot); err != nil {
					return nil, err
				}
			}
		}
	}

	s.bus.Publish(ev)
	s.log.Infof("generated schedule %s for %s: %d slots, final soc %.2f",
		rec.RunID, in.MicrogridID, len(res.Slots), res.FinalSoC)
	return &rec, nil
}

// Run generates one schedule and serves metrics until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if _, err := s.RunOnce(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.mqttClient != nil {
		s.mqttClient.Disconnect()
	}
	if s.Store != nil {
		return s.Store.Close()
	}
	return nil
}
