package scheduler

import (
	"fmt"
	"math"

	"github.com/helioplan/helioplan/core/model"
)

// OptimizationMode selects the objective a run is evaluated under.
type OptimizationMode string

const (
	ModeCost             OptimizationMode = "cost"
	ModeBatteryLongevity OptimizationMode = "battery_longevity"
	ModeGridIndependence OptimizationMode = "grid_independence"
)

// Valid reports whether the mode is one of the known objectives.
func (m OptimizationMode) Valid() bool {
	switch m {
	case ModeCost, ModeBatteryLongevity, ModeGridIndependence:
		return true
	}
	return false
}

// RunConfig holds the immutable parameters of one scheduling run. All fields
// are explicit; unknown keys are rejected by the configuration loader.
type RunConfig struct {
	BatteryCapacityKWh    float64 `json:"battery_capacity_kwh"`
	BatteryMaxChargeKW    float64 `json:"battery_max_charge_kw"`
	BatteryMaxDischargeKW float64 `json:"battery_max_discharge_kw"`
	// BatteryEfficiency is the round-trip efficiency in (0,1]; applied once
	// per leg so charging and discharging each incur loss.
	BatteryEfficiency float64 `json:"battery_round_trip_efficiency"`
	BatteryMinSoC     float64 `json:"battery_min_soc"`
	BatteryMaxSoC     float64 `json:"battery_max_soc"`

	GridPeakRate      float64          `json:"grid_peak_rate"`
	GridOffPeakRate   float64          `json:"grid_off_peak_rate"`
	GridPeakWindow    model.HourWindow `json:"grid_peak_window"`
	GridExportRate    float64          `json:"grid_export_rate"`
	GridExportEnabled bool             `json:"grid_export_enabled"`

	GeneratorFuelCostPerLiter  float64 `json:"generator_fuel_cost_per_liter"`
	GeneratorFuelPerKWh        float64 `json:"generator_fuel_consumption_per_kwh"`
	GeneratorMaxPowerKW        float64 `json:"generator_max_power_kw"`
	GeneratorMinRuntimeMinutes int     `json:"generator_min_runtime_minutes"`

	Mode OptimizationMode `json:"optimization_mode"`
	// EssentialSafetyMargin reserves a fraction of the essential subtotal
	// before non-essential devices are admitted.
	EssentialSafetyMargin float64 `json:"essential_safety_margin"`
	// ArrayCapacityKW is the rated generation capacity, used to detect
	// high-supply slots.
	ArrayCapacityKW float64 `json:"capacity_kw"`
}

// DefaultRunConfig returns a RunConfig with documented defaults.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		BatteryCapacityKWh:         50,
		BatteryMaxChargeKW:         10,
		BatteryMaxDischargeKW:      10,
		BatteryEfficiency:          0.95,
		BatteryMinSoC:              0.2,
		BatteryMaxSoC:              0.95,
		GridPeakRate:               10,
		GridOffPeakRate:            5,
		GridPeakWindow:             model.HourWindow{Start: 8, End: 20},
		GridExportRate:             4,
		GridExportEnabled:          true,
		GeneratorFuelCostPerLiter:  80,
		GeneratorFuelPerKWh:        0.25,
		GeneratorMaxPowerKW:        20,
		GeneratorMinRuntimeMinutes: 30,
		Mode:                       ModeCost,
		EssentialSafetyMargin:      0.1,
		ArrayCapacityKW:            50,
	}
}

// SetDefaults fills zero-valued fields with the documented defaults.
func (c *RunConfig) SetDefaults() {
	def := DefaultRunConfig()
	if c.BatteryCapacityKWh == 0 {
		c.BatteryCapacityKWh = def.BatteryCapacityKWh
	}
	if c.BatteryMaxChargeKW == 0 {
		c.BatteryMaxChargeKW = def.BatteryMaxChargeKW
	}
	if c.BatteryMaxDischargeKW == 0 {
		c.BatteryMaxDischargeKW = def.BatteryMaxDischargeKW
	}
	if c.BatteryEfficiency == 0 {
		c.BatteryEfficiency = def.BatteryEfficiency
	}
	if c.BatteryMinSoC == 0 && c.BatteryMaxSoC == 0 {
		c.BatteryMinSoC = def.BatteryMinSoC
		c.BatteryMaxSoC = def.BatteryMaxSoC
	}
	if c.GridPeakRate == 0 {
		c.GridPeakRate = def.GridPeakRate
	}
	if c.GridOffPeakRate == 0 {
		c.GridOffPeakRate = def.GridOffPeakRate
	}
	if c.GridPeakWindow == (model.HourWindow{}) {
		c.GridPeakWindow = def.GridPeakWindow
	}
	if c.GridExportRate == 0 {
		c.GridExportRate = def.GridExportRate
	}
	if c.GeneratorFuelCostPerLiter == 0 {
		c.GeneratorFuelCostPerLiter = def.GeneratorFuelCostPerLiter
	}
	if c.GeneratorFuelPerKWh == 0 {
		c.GeneratorFuelPerKWh = def.GeneratorFuelPerKWh
	}
	if c.GeneratorMaxPowerKW == 0 {
		c.GeneratorMaxPowerKW = def.GeneratorMaxPowerKW
	}
	if c.GeneratorMinRuntimeMinutes == 0 {
		c.GeneratorMinRuntimeMinutes = def.GeneratorMinRuntimeMinutes
	}
	if c.Mode == "" {
		c.Mode = def.Mode
	}
	if c.EssentialSafetyMargin == 0 {
		c.EssentialSafetyMargin = def.EssentialSafetyMargin
	}
	if c.ArrayCapacityKW == 0 {
		c.ArrayCapacityKW = def.ArrayCapacityKW
	}
}

// Validate checks the configuration before a run is accepted.
func (c RunConfig) Validate() error {
	if c.BatteryCapacityKWh <= 0 {
		return fmt.Errorf("%w: battery capacity must be positive", ErrInvalidConfig)
	}
	if c.BatteryMaxChargeKW < 0 || c.BatteryMaxDischargeKW < 0 {
		return fmt.Errorf("%w: battery rates must not be negative", ErrInvalidConfig)
	}
	if c.BatteryEfficiency <= 0 || c.BatteryEfficiency > 1 {
		return fmt.Errorf("%w: battery efficiency must be in (0,1]", ErrInvalidConfig)
	}
	if c.BatteryMinSoC < 0 || c.BatteryMaxSoC > 1 {
		return fmt.Errorf("%w: soc bounds must be within [0,1]", ErrInvalidConfig)
	}
	if c.BatteryMinSoC >= c.BatteryMaxSoC {
		return ErrInvalidSoCBounds
	}
	if err := c.GridPeakWindow.Validate(); err != nil {
		return fmt.Errorf("%w: grid peak window: %v", ErrInvalidConfig, err)
	}
	if c.GridPeakRate < 0 || c.GridOffPeakRate < 0 || c.GridExportRate < 0 {
		return fmt.Errorf("%w: grid rates must not be negative", ErrInvalidConfig)
	}
	if c.GeneratorMaxPowerKW < 0 || c.GeneratorFuelPerKWh < 0 || c.GeneratorFuelCostPerLiter < 0 {
		return fmt.Errorf("%w: generator parameters must not be negative", ErrInvalidConfig)
	}
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: unknown optimization mode %q", ErrInvalidConfig, c.Mode)
	}
	if c.EssentialSafetyMargin < 0 || c.EssentialSafetyMargin >= 1 {
		return fmt.Errorf("%w: essential safety margin must be in [0,1)", ErrInvalidConfig)
	}
	if math.IsNaN(c.BatteryEfficiency) || math.IsNaN(c.EssentialSafetyMargin) {
		return fmt.Errorf("%w: NaN parameter", ErrInvalidConfig)
	}
	return nil
}

// gridRate returns the import tariff applicable at the given hour.
func (c RunConfig) gridRate(hour int) float64 {
	if c.GridPeakWindow.Contains(hour) {
		return c.GridPeakRate
	}
	return c.GridOffPeakRate
}
