// Package config provides configuration management for collatzgraph.
//
// The config file holds server, logging, enumeration, request limit and
// dispatch settings. Computed runs live in the database, not here.
//
// Config file locations (priority order):
//  1. $COLLATZGRAPH_CONFIG
//  2. ./collatzgraph.yaml
//  3. $XDG_CONFIG_HOME/collatzgraph/config.yaml
//  4. ~/.config/collatzgraph/config.yaml
//  5. /etc/collatzgraph/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Parse decodes YAML config data, applies defaults and validates the result
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the config against its field constraints
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./collatzgraph.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	e := &c.Enumeration
	if e.Seed == "" {
		e.Seed = "1"
	}
	if e.MaxBound == 0 {
		e.MaxBound = 20
	}
	if e.BreakPoint == 0 {
		e.BreakPoint = 12
	}
	if e.MaxGraphNodes == 0 {
		e.MaxGraphNodes = 5000
	}

	l := &c.Limits
	if l.MaxPredecessors == 0 {
		l.MaxPredecessors = 1000
	}
	if l.MaxLevels == 0 {
		l.MaxLevels = 64
	}
	if l.BoundLimit == 0 {
		l.BoundLimit = 40
	}

	d := &c.Dispatch
	if d.Mode == "" {
		d.Mode = "local"
	}
	if d.Workers == 0 {
		d.Workers = runtime.NumCPU()
	}
	if d.MaxBoundOnMachine == 0 {
		d.MaxBoundOnMachine = 24
	}
	if d.RequestTimeout == 0 {
		d.RequestTimeout = Duration(5 * time.Minute)
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Server: %s, Database: %s, Log: %s\n", c.Server.Addr, c.Database.Path, c.Log.Level)
	summary += fmt.Sprintf("Enumeration: seed %s, bounds %d..%d, break point %d\n",
		c.Enumeration.Seed, c.Enumeration.MinBound, c.Enumeration.MaxBound, c.Enumeration.BreakPoint)
	summary += fmt.Sprintf("Dispatch: %s, %d workers, max bound on machine %d",
		c.Dispatch.Mode, c.Dispatch.Workers, c.Dispatch.MaxBoundOnMachine)
	if c.Dispatch.Mode == "remote" {
		summary += fmt.Sprintf(", endpoints %s", strings.Join(c.Dispatch.Endpoints, " "))
	}
	return summary
}
