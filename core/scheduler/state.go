package scheduler

// runState is the mutable state of one run. It is created per invocation
// and never shared, so independent runs may proceed concurrently.
type runState struct {
	soc       float64
	energyKWh float64
	totals    accumulator
}

func newRunState(cfg RunConfig, initialSoC float64) *runState {
	return &runState{
		soc:       initialSoC,
		energyKWh: initialSoC * cfg.BatteryCapacityKWh,
	}
}
