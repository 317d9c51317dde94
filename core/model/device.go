package model

import (
	"fmt"
	"time"
)

// DeviceClass classifies a controllable load for scheduling purposes.
type DeviceClass int

const (
	// ClassEssential loads always run while active, regardless of cost.
	ClassEssential DeviceClass = iota
	// ClassFlexible loads run when the supply budget allows it.
	ClassFlexible
	// ClassOptional loads are the first to be left out of a slot.
	ClassOptional
	// ClassIrrigation loads get dedicated handling: prioritised during
	// high-supply slots, deferred on a forecasted drop with a low battery.
	ClassIrrigation
)

// String returns a human-readable representation of the device class.
func (c DeviceClass) String() string {
	switch c {
	case ClassEssential:
		return "essential"
	case ClassFlexible:
		return "flexible"
	case ClassOptional:
		return "optional"
	case ClassIrrigation:
		return "irrigation"
	default:
		return "unknown"
	}
}

// ParseDeviceClass converts a catalog string into a DeviceClass.
func ParseDeviceClass(s string) (DeviceClass, error) {
	switch s {
	case "essential":
		return ClassEssential, nil
	case "flexible":
		return ClassFlexible, nil
	case "optional":
		return ClassOptional, nil
	case "irrigation":
		return ClassIrrigation, nil
	default:
		return 0, fmt.Errorf("unknown device class %q", s)
	}
}

// HourWindow is a half-open [Start,End) range of hours of day.
type HourWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the given hour falls inside the window.
func (w HourWindow) Contains(hour int) bool {
	return w.Start <= hour && hour < w.End
}

// Validate checks the window bounds.
func (w HourWindow) Validate() error {
	if w.Start < 0 || w.Start > 23 || w.End < 1 || w.End > 24 || w.Start >= w.End {
		return fmt.Errorf("invalid hour window [%d,%d)", w.Start, w.End)
	}
	return nil
}

// Device is a read-only snapshot of a controllable load for one run.
type Device struct {
	ID             string
	Name           string
	PowerKW        float64 // steady-state draw while running
	Class          DeviceClass
	MinimumRuntime time.Duration
	// PreferredHours restricts non-essential scheduling to a window of the
	// day. Nil means no restriction.
	PreferredHours *HourWindow
	// Priority orders devices within a class. Lower is more important.
	Priority int
	Active   bool
}

// Validate checks that the device snapshot is usable by the scheduler.
func (d Device) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("device id is required")
	}
	if d.PowerKW < 0 {
		return fmt.Errorf("device %s: negative power draw", d.ID)
	}
	if d.PreferredHours != nil {
		if err := d.PreferredHours.Validate(); err != nil {
			return fmt.Errorf("device %s: %w", d.ID, err)
		}
	}
	return nil
}

// InWindow reports whether the device may run at the given hour. Devices
// without a preferred window may run at any hour.
func (d Device) InWindow(hour int) bool {
	if d.PreferredHours == nil {
		return true
	}
	return d.PreferredHours.Contains(hour)
}
