package config

import "fmt"

// InputsConfig locates the forecast and device catalog files for a run.
type InputsConfig struct {
	// MicrogridID tags every run, metric point and MQTT topic.
	MicrogridID string `json:"microgrid_id"`
	// ForecastFile is a YAML or JSON solar forecast series.
	ForecastFile string `json:"forecast_file"`
	// DevicesFile is a YAML or JSON device catalog.
	DevicesFile string `json:"devices_file"`
	// SlotMinutes is the duration of each scheduling slot.
	SlotMinutes int `json:"slot_minutes"`
	// InitialSoC is the battery state of charge at the start of the horizon.
	InitialSoC float64 `json:"initial_soc"`
}

// SetDefaults applies sane defaults.
func (c *InputsConfig) SetDefaults() {
	if c.MicrogridID == "" {
		c.MicrogridID = "default"
	}
	if c.SlotMinutes == 0 {
		c.SlotMinutes = 60
	}
	if c.InitialSoC == 0 {
		c.InitialSoC = 0.5
	}
}

// Validate checks mandatory fields.
func (c InputsConfig) Validate() error {
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("slot_minutes must be positive")
	}
	if c.InitialSoC < 0 || c.InitialSoC > 1 {
		return fmt.Errorf("initial_soc must be within [0, 1]")
	}
	return nil
}
