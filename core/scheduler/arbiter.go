package scheduler

// arbitrate splits a residual deficit between the generator and the grid by
// marginal cost. The choice is all-or-nothing per slot to avoid generator
// cycling; the configured minimum runtime is tracked as a metric, not
// enforced here. Any deficit beyond the generator cap is forced onto the
// grid so the balance always closes.
func (e *Engine) arbitrate(deficitKW float64, hour int, hours float64) (generatorKW, gridImportKW float64) {
	cfg := e.cfg
	gridCost := cfg.gridRate(hour) * deficitKW * hours
	generatorCost := deficitKW * hours * cfg.GeneratorFuelPerKWh * cfg.GeneratorFuelCostPerLiter

	if generatorCost < gridCost && deficitKW <= cfg.GeneratorMaxPowerKW {
		generatorKW = min(deficitKW, cfg.GeneratorMaxPowerKW)
		gridImportKW = deficitKW - generatorKW
		return generatorKW, gridImportKW
	}
	return 0, deficitKW
}
