package metrics

// MultiSink fans events out to several sinks, returning the first error.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a MultiSink from the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// RecordRun forwards the event to all sinks.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSlots forwards the series to all sinks.
func (m *MultiSink) RecordSlots(series SlotSeries) error {
	for _, s := range m.sinks {
		if err := s.RecordSlots(series); err != nil {
			return err
		}
	}
	return nil
}
