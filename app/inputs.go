package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helioplan/helioplan/core/model"
)

// ForecastPointDef is one forecast sample as it appears in input files.
type ForecastPointDef struct {
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	SupplyKW  float64   `yaml:"supply_kw" json:"supply_kw"`
}

func (p ForecastPointDef) ToModel() model.ForecastPoint {
	return model.ForecastPoint{Timestamp: p.Timestamp, SupplyKW: p.SupplyKW}
}

// WindowDef is an optional preferred operating window.
type WindowDef struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// DeviceDef is one catalog entry as it appears in input files.
type DeviceDef struct {
	ID             string     `yaml:"id" json:"id"`
	Name           string     `yaml:"name" json:"name"`
	PowerKW        float64    `yaml:"power_kw" json:"power_kw"`
	Class          string     `yaml:"class" json:"class"`
	MinimumRuntime int        `yaml:"minimum_runtime_minutes" json:"minimum_runtime_minutes"`
	PreferredHours *WindowDef `yaml:"preferred_hours,omitempty" json:"preferred_hours,omitempty"`
	Priority       int        `yaml:"priority" json:"priority"`
	Active         *bool      `yaml:"active,omitempty" json:"active,omitempty"`
}

func (d DeviceDef) ToModel() (model.Device, error) {
	class, err := model.ParseDeviceClass(d.Class)
	if err != nil {
		return model.Device{}, fmt.Errorf("device %s: %w", d.ID, err)
	}
	dev := model.Device{
		ID:             d.ID,
		Name:           d.Name,
		PowerKW:        d.PowerKW,
		Class:          class,
		MinimumRuntime: time.Duration(d.MinimumRuntime) * time.Minute,
		Priority:       d.Priority,
		Active:         true,
	}
	if d.Active != nil {
		dev.Active = *d.Active
	}
	if d.PreferredHours != nil {
		dev.PreferredHours = &model.HourWindow{Start: d.PreferredHours.Start, End: d.PreferredHours.End}
	}
	if err := dev.Validate(); err != nil {
		return model.Device{}, err
	}
	return dev, nil
}

// LoadForecast reads a forecast series from a YAML or JSON file.
func LoadForecast(path string) ([]model.ForecastPoint, error) {
	var defs []ForecastPointDef
	if err := unmarshalFile(path, &defs); err != nil {
		return nil, fmt.Errorf("forecast %s: %w", path, err)
	}
	points := make([]model.ForecastPoint, 0, len(defs))
	for _, d := range defs {
		points = append(points, d.ToModel())
	}
	if err := model.ValidateSeries(points); err != nil {
		return nil, fmt.Errorf("forecast %s: %w", path, err)
	}
	return points, nil
}

// LoadDevices reads a device catalog from a YAML or JSON file.
func LoadDevices(path string) ([]model.Device, error) {
	var defs []DeviceDef
	if err := unmarshalFile(path, &defs); err != nil {
		return nil, fmt.Errorf("devices %s: %w", path, err)
	}
	devices := make([]model.Device, 0, len(defs))
	for _, d := range defs {
		dev, err := d.ToModel()
		if err != nil {
			return nil, fmt.Errorf("devices %s: %w", path, err)
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

func unmarshalFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	case ".json":
		return json.Unmarshal(data, out)
	default:
		return fmt.Errorf("unsupported input format: %s", filepath.Ext(path))
	}
}
