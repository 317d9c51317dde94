package scheduler

// epsilonKW is the power threshold below which residuals are ignored.
const epsilonKW = 0.01

// flows holds the energy movements of one slot.
type flows struct {
	chargeKW    float64
	dischargeKW float64
	gridImport  float64
	gridExport  float64
	generatorKW float64
	discardedKW float64
}

// balance resolves the slot's energy equation. Surplus charges the battery
// up to its rate and headroom, then is exported or discarded. Deficit drains
// the battery first; the residual goes to the arbiter. The balance never
// fails: any unmet deficit lands on the grid.
func (e *Engine) balance(loadKW, supplyKW float64, st *runState, hour int, hours float64) flows {
	var f flows
	net := supplyKW - loadKW
	cfg := e.cfg

	if net > 0 {
		headroomKW := (cfg.BatteryMaxSoC - st.soc) * cfg.BatteryCapacityKWh / hours
		f.chargeKW = min(cfg.BatteryMaxChargeKW, net, max(headroomKW, 0))
		surplus := net - f.chargeKW
		if surplus > epsilonKW {
			if cfg.GridExportEnabled {
				f.gridExport = surplus
			} else {
				f.discardedKW = surplus
				e.log.Debugf("discarding %.2f kW surplus: grid export disabled", surplus)
			}
		}
	} else if net < 0 {
		deficit := -net
		availKW := (st.soc - cfg.BatteryMinSoC) * cfg.BatteryCapacityKWh / hours
		if availKW > 0 {
			f.dischargeKW = min(cfg.BatteryMaxDischargeKW, deficit, availKW)
			deficit -= f.dischargeKW
		}
		if deficit > epsilonKW {
			f.generatorKW, f.gridImport = e.arbitrate(deficit, hour, hours)
		}
	}

	st.update(f, cfg, hours)
	return f
}

// update advances the battery state by one slot. Each leg incurs the
// configured efficiency loss; the stored energy is clamped to the SoC window.
func (st *runState) update(f flows, cfg RunConfig, hours float64) {
	st.energyKWh += (f.chargeKW*cfg.BatteryEfficiency - f.dischargeKW/cfg.BatteryEfficiency) * hours
	lo := cfg.BatteryMinSoC * cfg.BatteryCapacityKWh
	hi := cfg.BatteryMaxSoC * cfg.BatteryCapacityKWh
	if st.energyKWh < lo {
		st.energyKWh = lo
	}
	if st.energyKWh > hi {
		st.energyKWh = hi
	}
	st.soc = st.energyKWh / cfg.BatteryCapacityKWh
}
