package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/helioplan/helioplan/core/metrics"
	"github.com/helioplan/helioplan/core/scheduler"
	"github.com/helioplan/helioplan/infra/mqtt"
)

// Config is the top-level service configuration.
type Config struct {
	Scheduler scheduler.RunConfig `json:"scheduler"`
	Inputs    InputsConfig        `json:"inputs"`
	Metrics   metrics.Config      `json:"metrics"`
	MQTT      MQTTConfig          `json:"mqtt"`
	History   HistoryConfig       `json:"history"`
}

// MQTTConfig wraps the broker connection settings with publication options.
type MQTTConfig struct {
	Enabled           bool        `json:"enabled"`
	AckTimeoutSeconds int         `json:"ack_timeout_seconds"`
	PublishSlots      bool        `json:"publish_slots"`
	Connection        mqtt.Config `json:"connection"`
}

var knownSections = map[string]bool{
	"scheduler": true,
	"inputs":    true,
	"metrics":   true,
	"mqtt":      true,
	"history":   true,
}

// Load reads the configuration file, applies HP_ environment overrides,
// fills defaults and validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	for key := range k.Raw() {
		if !knownSections[key] {
			return nil, fmt.Errorf("unknown config section: %s", key)
		}
	}
	// Optional environment overrides, e.g. HP_MQTT__BROKER.
	if err := k.Load(env.Provider("HP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "hp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Scheduler.SetDefaults()
	cfg.Inputs.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.History.SetDefaults()
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Inputs.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.History.Validate(); err != nil {
		return nil, err
	}
	if cfg.MQTT.Enabled && cfg.MQTT.Connection.Broker == "" {
		return nil, fmt.Errorf("mqtt enabled but no broker configured")
	}
	return &cfg, nil
}
