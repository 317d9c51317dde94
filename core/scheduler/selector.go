package scheduler

import (
	"sort"

	"github.com/helioplan/helioplan/core/model"
)

// highSupplyFloorKW is the absolute floor above which a slot counts as
// high-supply even on small arrays.
const highSupplyFloorKW = 20.0

// reducedBufferFactor shrinks the essential safety buffer during
// high-supply slots.
const reducedBufferFactor = 0.5

// deferral thresholds: an irrigation device is deferred only when the next
// slot forecasts at least a 30% drop and the battery is below 40%.
const (
	forecastDropRatio = 0.7
	deferralSoC       = 0.4
)

// highPriorityLevel marks irrigation devices that run even with no budget,
// drawing from grid or battery instead of being deferred.
const highPriorityLevel = 2

// slotContext carries the per-slot inputs of the device selector.
type slotContext struct {
	hour         int
	supplyKW     float64
	soc          float64
	nextSupplyKW float64
	hasNext      bool
}

// selection is the ordered outcome of device selection for one slot.
type selection struct {
	devices     []model.Device
	loadKW      float64
	essentialKW float64
	deferred    []string
}

// selectDevices decides which devices run in the slot. Essentials are always
// included; irrigation devices follow the deferral and high-supply rules;
// flexible and optional devices are admitted while the budget net of the
// essential safety buffer covers their draw. The budget may go negative:
// shortfalls are serviced later by the battery, grid or generator.
func (e *Engine) selectDevices(catalog []model.Device, ctx slotContext) selection {
	var essentials, irrigation, flexibles []model.Device
	for _, d := range catalog {
		if !d.Active {
			continue
		}
		switch d.Class {
		case model.ClassEssential:
			essentials = append(essentials, d)
		case model.ClassIrrigation:
			irrigation = append(irrigation, d)
		case model.ClassFlexible, model.ClassOptional:
			flexibles = append(flexibles, d)
		}
	}
	byPriority(irrigation)
	byPriority(flexibles)

	sel := selection{}
	budget := ctx.supplyKW
	for _, d := range essentials {
		sel.devices = append(sel.devices, d)
		sel.loadKW += d.PowerKW
		sel.essentialKW += d.PowerKW
		budget -= d.PowerKW
	}

	buffer := sel.essentialKW * e.cfg.EssentialSafetyMargin
	highSupply := ctx.supplyKW > max(highSupplyFloorKW, e.cfg.ArrayCapacityKW*0.5)
	powerDrop := ctx.hasNext && ctx.nextSupplyKW < ctx.supplyKW*forecastDropRatio

	for _, d := range irrigation {
		if !d.InWindow(ctx.hour) {
			continue
		}
		if powerDrop && ctx.soc < deferralSoC {
			sel.deferred = append(sel.deferred, d.ID)
			e.log.Debugf("deferring irrigation device %s: forecast drop with low battery", d.ID)
			continue
		}
		switch {
		case highSupply:
			if budget-d.PowerKW >= buffer*reducedBufferFactor {
				sel.devices = append(sel.devices, d)
				sel.loadKW += d.PowerKW
				budget -= d.PowerKW
			}
		case budget >= d.PowerKW+buffer:
			sel.devices = append(sel.devices, d)
			sel.loadKW += d.PowerKW
			budget -= d.PowerKW
		case budget > 0:
			// Some supply left: run the device and let the battery or grid
			// cover the remainder.
			sel.devices = append(sel.devices, d)
			sel.loadKW += d.PowerKW
			budget -= d.PowerKW
		case d.Priority <= highPriorityLevel:
			sel.devices = append(sel.devices, d)
			sel.loadKW += d.PowerKW
			budget -= d.PowerKW
		}
	}

	for _, d := range flexibles {
		if !d.InWindow(ctx.hour) {
			continue
		}
		if budget-d.PowerKW >= buffer {
			sel.devices = append(sel.devices, d)
			sel.loadKW += d.PowerKW
			budget -= d.PowerKW
		}
	}
	return sel
}

// byPriority orders devices by priority level, then ID for determinism.
func byPriority(devices []model.Device) {
	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Priority != devices[j].Priority {
			return devices[i].Priority < devices[j].Priority
		}
		return devices[i].ID < devices[j].ID
	})
}
