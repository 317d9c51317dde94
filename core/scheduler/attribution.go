package scheduler

import "github.com/helioplan/helioplan/core/model"

// sourcePools tracks how much power each source can still attribute.
type sourcePools struct {
	solar     float64
	battery   float64
	grid      float64
	generator float64
}

// newSourcePools sizes the pools from the slot's resolved flows. Sources are
// drained in fixed order: solar, battery, grid, generator.
func newSourcePools(loadKW, supplyKW float64, f flows) sourcePools {
	p := sourcePools{}
	p.solar = min(supplyKW, loadKW)
	remaining := max(loadKW-p.solar, 0)
	p.battery = min(f.dischargeKW, remaining)
	remaining = max(remaining-p.battery, 0)
	p.grid = min(f.gridImport, remaining)
	p.generator = min(f.generatorKW, max(remaining-p.grid, 0))
	return p
}

// attribute assigns each selected device an ordered list of (source, kW)
// shares summing to its draw. Residuals that no pool covers are attributed
// to the grid, mirroring the balance rule that unmet load becomes import.
func attribute(devices []model.Device, pools sourcePools) []model.DeviceAllocation {
	allocs := make([]model.DeviceAllocation, 0, len(devices))
	for _, d := range devices {
		alloc := model.DeviceAllocation{DeviceID: d.ID, Name: d.Name, PowerKW: d.PowerKW}
		need := d.PowerKW

		take := func(src model.PowerSource, pool *float64) {
			if need <= 0 || *pool <= 0 {
				return
			}
			share := min(need, *pool)
			alloc.Sources = append(alloc.Sources, model.SourceShare{Source: src, PowerKW: share})
			*pool -= share
			need -= share
		}
		take(model.SourceSolar, &pools.solar)
		take(model.SourceBattery, &pools.battery)
		take(model.SourceGrid, &pools.grid)
		take(model.SourceGenerator, &pools.generator)
		if need > 1e-9 {
			alloc.Sources = append(alloc.Sources, model.SourceShare{Source: model.SourceGrid, PowerKW: need})
		}
		allocs = append(allocs, alloc)
	}
	return allocs
}
