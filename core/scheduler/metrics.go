package scheduler

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// gridEmissionKgPerKWh is the assumed grid carbon intensity used for the
// footprint-reduction estimate.
const gridEmissionKgPerKWh = 0.5

// Summary aggregates a full run. All derived values are pure functions of
// the accumulated totals.
type Summary struct {
	SolarUtilizationPercent   float64 `json:"solar_utilization_percent"`
	GridImportReductionPct    float64 `json:"grid_import_reduction_percent"`
	EstimatedCostSavings      float64 `json:"estimated_cost_savings"`
	BatteryCycleEfficiencyPct float64 `json:"battery_cycle_efficiency"`
	CarbonReductionKg         float64 `json:"carbon_footprint_reduction_kg"`
	GeneratorRuntimeMinutes   float64 `json:"generator_runtime_minutes"`

	TotalLoadKWh      float64 `json:"total_energy_kwh"`
	SolarEnergyKWh    float64 `json:"solar_energy_kwh"`
	GridImportKWh     float64 `json:"grid_energy_kwh"`
	GridExportKWh     float64 `json:"grid_export_energy_kwh"`
	GridExportRevenue float64 `json:"grid_export_revenue"`
	GeneratorKWh      float64 `json:"generator_energy_kwh"`

	MeanSupplyKW   float64 `json:"mean_supply_kw"`
	PeakSupplyKW   float64 `json:"peak_supply_kw"`
	MeanLoadKW     float64 `json:"mean_load_kw"`
	PeakLoadKW     float64 `json:"peak_load_kw"`
	LoadStdDevKW   float64 `json:"load_stddev_kw"`
	DataWarnings   int     `json:"data_warnings"`
	DeferredEvents int     `json:"deferred_events"`
}

// accumulator collects per-slot totals while a run is in progress.
type accumulator struct {
	supplyKWh      float64
	loadKWh        float64
	gridImportKWh  float64
	gridExportKWh  float64
	exportRevenue  float64
	generatorKWh   float64
	generatorHours float64

	slotSupply []float64
	slotLoad   []float64

	dataWarnings   int
	deferredEvents int
}

// add folds one committed slot into the totals.
func (a *accumulator) add(s Slot, hours float64, exportRate float64) {
	a.supplyKWh += s.SupplyKW * hours
	a.loadKWh += s.LoadKW * hours
	a.gridImportKWh += s.GridImportKW * hours
	a.gridExportKWh += s.GridExportKW * hours
	a.exportRevenue += s.GridExportKW * hours * exportRate
	a.generatorKWh += s.GeneratorKW * hours
	if s.GeneratorKW > 0 {
		a.generatorHours += hours
	}
	a.slotSupply = append(a.slotSupply, s.SupplyKW)
	a.slotLoad = append(a.slotLoad, s.LoadKW)
}

// summary derives the run metrics from the accumulated totals. The baseline
// for savings and import reduction is an all-grid run billed at the peak
// rate, the original system's simplification.
func (a *accumulator) summary(cfg RunConfig) Summary {
	s := Summary{
		TotalLoadKWh:      a.loadKWh,
		SolarEnergyKWh:    a.supplyKWh,
		GridImportKWh:     a.gridImportKWh,
		GridExportKWh:     a.gridExportKWh,
		GridExportRevenue: a.exportRevenue,
		GeneratorKWh:      a.generatorKWh,

		GeneratorRuntimeMinutes:   a.generatorHours * 60,
		BatteryCycleEfficiencyPct: cfg.BatteryEfficiency * 100,
		CarbonReductionKg:         (a.supplyKWh + a.gridExportKWh) * gridEmissionKgPerKWh,
		DataWarnings:              a.dataWarnings,
		DeferredEvents:            a.deferredEvents,
	}

	if a.loadKWh > 0 {
		s.SolarUtilizationPercent = a.supplyKWh / max(a.loadKWh, 0.01) * 100
	}
	baseline := a.loadKWh
	s.GridImportReductionPct = (baseline - a.gridImportKWh) / max(baseline, 0.01) * 100

	gridCost := a.gridImportKWh * cfg.GridPeakRate
	generatorCost := a.generatorKWh * cfg.GeneratorFuelPerKWh * cfg.GeneratorFuelCostPerLiter
	baselineCost := a.loadKWh * cfg.GridPeakRate
	s.EstimatedCostSavings = baselineCost - (gridCost + generatorCost - a.exportRevenue)

	if len(a.slotSupply) > 0 {
		s.MeanSupplyKW = stat.Mean(a.slotSupply, nil)
		s.PeakSupplyKW = floats.Max(a.slotSupply)
		s.MeanLoadKW = stat.Mean(a.slotLoad, nil)
		s.PeakLoadKW = floats.Max(a.slotLoad)
		if len(a.slotLoad) > 1 {
			s.LoadStdDevKW = stat.StdDev(a.slotLoad, nil)
		}
	}
	return s
}
