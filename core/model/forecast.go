package model

import (
	"fmt"
	"time"
)

// ForecastPoint is one slot of the generation forecast consumed from the
// forecasting collaborator. The series is read-only and ordered by timestamp.
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp"`
	SupplyKW  float64   `json:"expected_supply_kw"`
}

// ValidateSeries checks that the forecast series is non-empty and strictly
// increasing in time.
func ValidateSeries(points []ForecastPoint) error {
	if len(points) == 0 {
		return fmt.Errorf("forecast series is empty")
	}
	for i := 1; i < len(points); i++ {
		if !points[i].Timestamp.After(points[i-1].Timestamp) {
			return fmt.Errorf("forecast timestamps not strictly increasing at index %d", i)
		}
	}
	return nil
}
