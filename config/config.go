// Package config loads and validates the service configuration from a
// yaml or json file, with SP_ environment variable overrides
// (SP_PIPELINE__MAX_ATTEMPTS=5 overrides pipeline.max_attempts).
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

	"github.com/flightworks/schedpipe/core/metrics"
	"github.com/flightworks/schedpipe/core/scheduler"
	"github.com/flightworks/schedpipe/infra/publish"
)

type Config struct {
	Logging   LoggingConfig    `json:"logging"`
	Pipeline  PipelineConfig   `json:"pipeline"`
	Scheduler scheduler.Config `json:"scheduler"`
	Metrics   metrics.Config   `json:"metrics"`
	Publish   PublishConfig    `json:"publish"`
	Refdata   RefdataConfig    `json:"refdata"`
}

// PublishConfig wraps the MQTT publisher settings. Publication is off
// unless explicitly enabled.
type PublishConfig struct {
	Enabled bool           `json:"enabled"`
	MQTT    publish.Config `json:"mqtt"`
}

// Validate checks mandatory fields.
func (c PublishConfig) Validate() error {
	if c.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("publish: broker is required when enabled")
	}
	return nil
}

// RefdataConfig points the static reference-data provider at its
// fixture files. Built-in defaults cover anything the fixtures omit.
type RefdataConfig struct {
	Fixtures []string `json:"fixtures"`
}

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
	// Optional environment overrides
	if err := k.Load(env.Provider("SP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Logging.SetDefaults()
	cfg.Pipeline.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pipeline.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Publish.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
