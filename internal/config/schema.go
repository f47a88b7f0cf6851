package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version     int               `yaml:"version"`
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	Enumeration EnumerationConfig `yaml:"enumeration"`
	Limits      LimitsConfig      `yaml:"limits"`
	Dispatch    DispatchConfig    `yaml:"dispatch"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"` // console encoding, stack traces on warn
}

// EnumerationConfig holds the default run parameters of the server and CLI
type EnumerationConfig struct {
	Seed          string `yaml:"seed" validate:"required,numeric"`
	MinBound      int    `yaml:"min_bound" validate:"gte=0"`
	MaxBound      int    `yaml:"max_bound" validate:"gtefield=MinBound"`
	BreakPoint    int    `yaml:"break_point" validate:"gte=0"`
	MaxGraphNodes int    `yaml:"max_graph_nodes" validate:"gt=0"`
}

// LimitsConfig caps what a single API request may ask for
type LimitsConfig struct {
	MaxPredecessors int `yaml:"max_predecessors" validate:"gt=0"`
	MaxLevels       int `yaml:"max_levels" validate:"gt=0"`
	BoundLimit      int `yaml:"bound_limit" validate:"gt=0"`
}

// DispatchConfig selects where partitions run
type DispatchConfig struct {
	Mode              string   `yaml:"mode" validate:"oneof=local remote"`
	Workers           int      `yaml:"workers" validate:"gte=1"`
	MaxBoundOnMachine int      `yaml:"max_bound_on_machine" validate:"gte=0"`
	Endpoints         []string `yaml:"endpoints,omitempty" validate:"required_if=Mode remote,dive,url"`
	RequestTimeout    Duration `yaml:"request_timeout" validate:"gte=0"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
