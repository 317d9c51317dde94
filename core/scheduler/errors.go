package scheduler

import "errors"

// Configuration errors are reported synchronously before any slot is
// processed. No partial result is produced alongside them.
var (
	ErrEmptyForecast    = errors.New("forecast series is empty")
	ErrNoActiveDevices  = errors.New("device catalog has no active devices")
	ErrInvalidSoCBounds = errors.New("battery_min_soc must be lower than battery_max_soc")
	ErrInvalidConfig    = errors.New("invalid run configuration")
	ErrInvalidSlot      = errors.New("slot duration must be positive")
)
