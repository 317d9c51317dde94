package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/helioplan/helioplan/core/logger"
	"github.com/helioplan/helioplan/core/model"
)

// Slot is one committed interval of the dispatch plan. Immutable once
// produced.
type Slot struct {
	Time               time.Time                `json:"time"`
	SupplyKW           float64                  `json:"supply_kw"`
	LoadKW             float64                  `json:"load_kw"`
	BatteryChargeKW    float64                  `json:"battery_charge_kw"`
	BatteryDischargeKW float64                  `json:"battery_discharge_kw"`
	BatterySoC         float64                  `json:"battery_soc"`
	GridImportKW       float64                  `json:"grid_import_kw"`
	GridExportKW       float64                  `json:"grid_export_kw"`
	GeneratorKW        float64                  `json:"generator_kw"`
	Devices            []model.DeviceAllocation `json:"devices"`
}

// Result is the complete outcome of one scheduling run.
type Result struct {
	Mode       OptimizationMode `json:"optimization_mode"`
	Slots      []Slot           `json:"schedule"`
	Metrics    Summary          `json:"metrics"`
	InitialSoC float64          `json:"initial_battery_soc"`
	FinalSoC   float64          `json:"final_battery_soc"`
	Warnings   []string         `json:"warnings,omitempty"`
}

// Engine runs dispatch simulations under a fixed RunConfig. It is
// constructed once by the composition root and safe for concurrent use:
// every Generate call owns its full state.
type Engine struct {
	cfg RunConfig
	log logger.Logger
}

// New validates the configuration and returns an Engine. A nil logger
// disables logging.
func New(cfg RunConfig, log logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{cfg: cfg, log: log}, nil
}

// Config returns the engine's run configuration.
func (e *Engine) Config() RunConfig { return e.cfg }

// Generate produces a dispatch plan for the forecast series and device
// catalog. Slots are processed strictly in chronological order; slot N+1
// depends on slot N's battery outcome. The call has no side effects beyond
// its return value.
func (e *Engine) Generate(forecast []model.ForecastPoint, devices []model.Device, initialSoC float64, slotDuration time.Duration) (*Result, error) {
	if slotDuration <= 0 {
		return nil, ErrInvalidSlot
	}
	if err := model.ValidateSeries(forecast); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyForecast, err)
	}
	active := 0
	for _, d := range devices {
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if d.Active {
			active++
		}
	}
	if active == 0 {
		return nil, ErrNoActiveDevices
	}

	hours := slotDuration.Hours()
	st := newRunState(e.cfg, initialSoC)
	res := &Result{
		Mode:       e.cfg.Mode,
		Slots:      make([]Slot, 0, len(forecast)),
		InitialSoC: initialSoC,
	}

	for i, point := range forecast {
		supply := point.SupplyKW
		if math.IsNaN(supply) || supply < 0 {
			e.log.Warnf("clamping invalid supply %v at %s to zero", supply, point.Timestamp.Format(time.RFC3339))
			st.totals.dataWarnings++
			supply = 0
		}

		ctx := slotContext{
			hour:     point.Timestamp.Hour(),
			supplyKW: supply,
			soc:      st.soc,
		}
		if i+1 < len(forecast) {
			next := forecast[i+1].SupplyKW
			if math.IsNaN(next) || next < 0 {
				next = 0
			}
			ctx.nextSupplyKW = next
			ctx.hasNext = true
		}

		sel := e.selectDevices(devices, ctx)
		st.totals.deferredEvents += len(sel.deferred)
		if len(sel.devices) == 0 {
			warn := fmt.Sprintf("no devices selected at %s", point.Timestamp.Format(time.RFC3339))
			e.log.Warnf("%s", warn)
			res.Warnings = append(res.Warnings, warn)
		}

		f := e.balance(sel.loadKW, supply, st, ctx.hour, hours)

		slot := Slot{
			Time:               point.Timestamp,
			SupplyKW:           supply,
			LoadKW:             sel.loadKW,
			BatteryChargeKW:    f.chargeKW,
			BatteryDischargeKW: f.dischargeKW,
			BatterySoC:         st.soc,
			GridImportKW:       f.gridImport,
			GridExportKW:       f.gridExport,
			GeneratorKW:        f.generatorKW,
			Devices:            attribute(sel.devices, newSourcePools(sel.loadKW, supply, f)),
		}
		st.totals.add(slot, hours, e.cfg.GridExportRate)
		res.Slots = append(res.Slots, slot)
	}

	res.Metrics = st.totals.summary(e.cfg)
	res.FinalSoC = st.soc
	return res, nil
}
