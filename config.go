package ecs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config describes a world: storage sizing, mid-tick visibility, logging, metrics and
// per-processor scheduling keyed by processor name.
type Config struct {
	EntityCapacity    int                        `yaml:"entity_capacity"`
	ComponentCapacity int                        `yaml:"component_capacity"`
	Visibility        string                     `yaml:"visibility"`
	Logging           LoggingConfig              `yaml:"logging"`
	Metrics           MetricsConfig              `yaml:"metrics"`
	Processors        map[string]ProcessorConfig `yaml:"processors"`
}

type MetricsConfig struct {
	Enabled           bool   `yaml:"enabled"`
	StructuredLogging bool   `yaml:"structured_logging"`
	Format            string `yaml:"format"`
}

// ProcessorConfig overrides how a named processor is scheduled.
type ProcessorConfig struct {
	Interval time.Duration `yaml:"interval"`
	Every    uint32        `yaml:"every"`
	Offset   uint32        `yaml:"offset"`
	Disabled bool          `yaml:"disabled"`
}

// DefaultConfig returns the configuration NewWorld uses when none is given.
func DefaultConfig() *Config {
	return &Config{
		EntityCapacity:    64,
		ComponentCapacity: 8,
		Visibility:        VisibilityImmediate.String(),
		Logging:           LoggingConfig{Level: "info", Format: "json"},
	}
}

// LoadConfig decodes a YAML document over DefaultConfig and validates the result.
// Unknown keys are rejected.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ecs: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes the YAML file at path.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ecs: open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate rejects values the runtime cannot honour.
func (c *Config) Validate() error {
	if c.EntityCapacity < 0 {
		return fmt.Errorf("%w: entity_capacity %d", ErrInvalidConfig, c.EntityCapacity)
	}
	if c.ComponentCapacity < 0 {
		return fmt.Errorf("%w: component_capacity %d", ErrInvalidConfig, c.ComponentCapacity)
	}
	if _, err := parseVisibility(c.Visibility); err != nil {
		return err
	}
	if _, err := parseLogFormat(c.Metrics.Format); err != nil {
		return err
	}
	for name, pc := range c.Processors {
		if pc.Interval < 0 {
			return fmt.Errorf("%w: processor %s interval %s", ErrInvalidConfig, name, pc.Interval)
		}
		if pc.Offset > 0 && pc.Every == 0 {
			return fmt.Errorf("%w: processor %s offset without every", ErrInvalidConfig, name)
		}
	}
	return nil
}

func (pc ProcessorConfig) options() []ProcessorOption {
	var opts []ProcessorOption
	if pc.Interval > 0 {
		opts = append(opts, WithInterval(pc.Interval))
	}
	if pc.Every > 0 {
		opts = append(opts, WithTickInterval(TickInterval{Every: pc.Every, Offset: pc.Offset}))
	}
	if pc.Disabled {
		opts = append(opts, func(e *processorEntry) { e.disabled = true })
	}
	return opts
}

func parseVisibility(s string) (Visibility, error) {
	switch s {
	case "", "immediate":
		return VisibilityImmediate, nil
	case "end_of_tick":
		return VisibilityEndOfTick, nil
	default:
		return 0, fmt.Errorf("%w: visibility %q", ErrInvalidConfig, s)
	}
}

func parseLogFormat(s string) (ObservationLogFormat, error) {
	switch s {
	case "", "json":
		return ObservationLogFormatJSON, nil
	case "key_value", "kv":
		return ObservationLogFormatKeyValue, nil
	default:
		return 0, fmt.Errorf("%w: metrics format %q", ErrInvalidConfig, s)
	}
}
