package metrics

import (
	"time"

	"github.com/helioplan/helioplan/core/scheduler"
)

// RunEvent summarizes one completed scheduling run for observability sinks.
type RunEvent struct {
	RunID       string
	MicrogridID string
	Mode        scheduler.OptimizationMode
	SlotCount   int
	InitialSoC  float64
	FinalSoC    float64
	Summary     scheduler.Summary
	Time        time.Time
}

// SlotSeries carries the per-slot plan of a run for sinks that record
// time series.
type SlotSeries struct {
	RunID       string
	MicrogridID string
	Slots       []scheduler.Slot
}

// Sink records scheduling outcomes for observability purposes.
type Sink interface {
	RecordRun(ev RunEvent) error
	RecordSlots(series SlotSeries) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error     { return nil }
func (NopSink) RecordSlots(SlotSeries) error { return nil }
