package metrics

import (
	coremetrics "github.com/helioplan/helioplan/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink exposes schedule run results as Prometheus metrics.
type PromSink struct {
	runs         *prometheus.CounterVec
	deferred     *prometheus.CounterVec
	finalSoC     *prometheus.GaugeVec
	solarUtil    *prometheus.GaugeVec
	costSavings  *prometheus.GaugeVec
	genRuntime   *prometheus.GaugeVec
	slotLoad     *prometheus.HistogramVec
	slotDuration prometheus.Histogram
}

// NewPromSink registers scheduler metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Total number of schedule generation runs",
	}, []string{"microgrid_id", "mode"})
	deferred := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_deferred_events_total",
		Help: "Total number of irrigation deferral events across runs",
	}, []string{"microgrid_id"})
	finalSoC := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_final_soc_ratio",
		Help: "Battery state of charge at the end of the latest run",
	}, []string{"microgrid_id"})
	solarUtil := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_solar_utilization_percent",
		Help: "Share of consumed energy covered by solar in the latest run",
	}, []string{"microgrid_id"})
	costSavings := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_estimated_cost_savings",
		Help: "Estimated cost savings versus an all-grid baseline for the latest run",
	}, []string{"microgrid_id"})
	genRuntime := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_generator_runtime_minutes",
		Help: "Generator runtime scheduled in the latest run",
	}, []string{"microgrid_id"})
	slotLoad := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_slot_load_kw",
		Help:    "Admitted load per slot",
		Buckets: prometheus.LinearBuckets(0, 5, 12),
	}, []string{"microgrid_id"})
	slotDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_slot_count",
		Help:    "Number of slots per generated schedule",
		Buckets: []float64{1, 4, 12, 24, 48, 96, 192},
	})

	collectors := []prometheus.Collector{runs, deferred, finalSoC, solarUtil, costSavings, genRuntime, slotLoad, slotDuration}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			collectors[i] = are.ExistingCollector
		}
	}

	return &PromSink{
		runs:         collectors[0].(*prometheus.CounterVec),
		deferred:     collectors[1].(*prometheus.CounterVec),
		finalSoC:     collectors[2].(*prometheus.GaugeVec),
		solarUtil:    collectors[3].(*prometheus.GaugeVec),
		costSavings:  collectors[4].(*prometheus.GaugeVec),
		genRuntime:   collectors[5].(*prometheus.GaugeVec),
		slotLoad:     collectors[6].(*prometheus.HistogramVec),
		slotDuration: collectors[7].(prometheus.Histogram),
	}, nil
}

// RecordRun updates run counters and latest-run gauges.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.MicrogridID, string(ev.Mode)).Inc()
	s.deferred.WithLabelValues(ev.MicrogridID).Add(float64(ev.Summary.DeferredEvents))
	s.finalSoC.WithLabelValues(ev.MicrogridID).Set(ev.FinalSoC)
	s.solarUtil.WithLabelValues(ev.MicrogridID).Set(ev.Summary.SolarUtilizationPercent)
	s.costSavings.WithLabelValues(ev.MicrogridID).Set(ev.Summary.EstimatedCostSavings)
	s.genRuntime.WithLabelValues(ev.MicrogridID).Set(ev.Summary.GeneratorRuntimeMinutes)
	s.slotDuration.Observe(float64(ev.SlotCount))
	return nil
}

// RecordSlots observes the per-slot load distribution.
func (s *PromSink) RecordSlots(series coremetrics.SlotSeries) error {
	for _, slot := range series.Slots {
		s.slotLoad.WithLabelValues(series.MicrogridID).Observe(slot.LoadKW)
	}
	return nil
}
