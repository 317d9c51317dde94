package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `scheduler:
  battery_capacity_kwh: 30
  grid_peak_rate: 12
  optimization_mode: "cost"
inputs:
  microgrid_id: "farm-1"
  forecast_file: "forecast.yaml"
  devices_file: "devices.yaml"
  slot_minutes: 30
  initial_soc: 0.6
metrics:
  prometheus_enabled: true
mqtt:
  enabled: true
  ack_timeout_seconds: 3
  connection:
    broker: "tcp://localhost:1883"
    client_id: "helioplan"
    username: "user"
    password: "pass"
history:
  enabled: true
  backend: "sqlite"
  path: "runs.db"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"battery_capacity_kwh", cfg.Scheduler.BatteryCapacityKWh, 30.0},
		{"grid_peak_rate", cfg.Scheduler.GridPeakRate, 12.0},
		{"microgrid_id", cfg.Inputs.MicrogridID, "farm-1"},
		{"slot_minutes", cfg.Inputs.SlotMinutes, 30},
		{"initial_soc", cfg.Inputs.InitialSoC, 0.6},
		{"prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prometheus_addr default", cfg.Metrics.PrometheusAddr, ":9090"},
		{"mqtt enabled", cfg.MQTT.Enabled, true},
		{"broker", cfg.MQTT.Connection.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.Connection.ClientID, "helioplan"},
		{"ack_timeout_seconds", cfg.MQTT.AckTimeoutSeconds, 3},
		{"history backend", cfg.History.Backend, "sqlite"},
		{"history path", cfg.History.Path, "runs.db"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	// Scheduler defaults fill the fields the file omits.
	if cfg.Scheduler.BatteryMaxChargeKW != 10 {
		t.Errorf("charge rate default not applied: %v", cfg.Scheduler.BatteryMaxChargeKW)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `inputs:
  microgrid_id: "farm-1"
`)
	t.Setenv("HP_INPUTS__MICROGRID_ID", "farm-2")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Inputs.MicrogridID != "farm-2" {
		t.Errorf("env override not applied: %s", cfg.Inputs.MicrogridID)
	}
}

func TestLoadUnknownSection(t *testing.T) {
	path := writeConfig(t, `schedular:
  battery_capacity_kwh: 30
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown section")
	}
}

func TestLoadRejectsBadScheduler(t *testing.T) {
	path := writeConfig(t, `scheduler:
  battery_min_soc: 0.9
  battery_max_soc: 0.2
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for inverted soc bounds")
	}
}

func TestLoadMQTTRequiresBroker(t *testing.T) {
	path := writeConfig(t, `mqtt:
  enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing broker")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("a = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
