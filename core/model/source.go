package model

// PowerSource identifies where the power feeding a device comes from.
type PowerSource int

const (
	SourceSolar PowerSource = iota
	SourceBattery
	SourceGrid
	SourceGenerator
)

// String returns a human-readable representation of the power source.
func (s PowerSource) String() string {
	switch s {
	case SourceSolar:
		return "solar"
	case SourceBattery:
		return "battery"
	case SourceGrid:
		return "grid"
	case SourceGenerator:
		return "generator"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so sources serialize as their
// names in JSON documents.
func (s PowerSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SourceShare is one leg of a device's power attribution.
type SourceShare struct {
	Source  PowerSource `json:"source"`
	PowerKW float64     `json:"power_kw"`
}

// DeviceAllocation records one scheduled device in a slot together with the
// ordered list of sources covering its draw. The shares sum to PowerKW.
type DeviceAllocation struct {
	DeviceID string        `json:"device_id"`
	Name     string        `json:"name"`
	PowerKW  float64       `json:"power_kw"`
	Sources  []SourceShare `json:"sources"`
}
