// Package profile loads the monitor's surface profiles: named filter specs
// for alert surfaces, transition title overrides, and poll intervals.
package profile

import (
	"fmt"
	"os"
	"time"

	promModel "github.com/prometheus/common/model"
	"gopkg.in/yaml.v3"

	"github.com/printyx/printyx-monitor/internal/monitor/service/aggregate"
)

// Built-in profile names.
const (
	ProfileBell   = "bell"
	ProfileInline = "inline"
)

// Intervals override the poll cadence per source. Zero means "use default".
type Intervals struct {
	Alerts   promModel.Duration `yaml:"alerts"`
	Breaches promModel.Duration `yaml:"breaches"`
	KPI      promModel.Duration `yaml:"kpi"`
}

// Config is the parsed profiles file.
type Config struct {
	Profiles  map[string]aggregate.FilterSpec `yaml:"profiles"`
	Titles    map[string]string               `yaml:"titles"`
	Intervals Intervals                       `yaml:"intervals"`
}

// Default returns the built-in configuration: an unfiltered bell capped at the
// display limit, and a 3-item inline surface.
func Default() *Config {
	return &Config{
		Profiles: map[string]aggregate.FilterSpec{
			ProfileBell:   {Limit: aggregate.BellDisplayCap},
			ProfileInline: {Limit: aggregate.DefaultInlineLimit},
		},
		Titles: map[string]string{},
	}
}

// Load reads a YAML profiles file and overlays it on the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles file %s: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse profiles file %s: %w", path, err)
	}
	for name, spec := range file.Profiles {
		cfg.Profiles[name] = clampSpec(name, spec)
	}
	for k, v := range file.Titles {
		cfg.Titles[k] = v
	}
	cfg.Intervals = file.Intervals
	return cfg, nil
}

// Spec resolves a profile by name, falling back to the bell profile.
func (c *Config) Spec(name string) aggregate.FilterSpec {
	if spec, ok := c.Profiles[name]; ok {
		return spec
	}
	return c.Profiles[ProfileBell]
}

// AlertInterval returns the configured alert poll interval or def.
func (c *Config) AlertInterval(def time.Duration) time.Duration {
	if c.Intervals.Alerts > 0 {
		return time.Duration(c.Intervals.Alerts)
	}
	return def
}

// BreachInterval returns the configured breach poll interval or def.
func (c *Config) BreachInterval(def time.Duration) time.Duration {
	if c.Intervals.Breaches > 0 {
		return time.Duration(c.Intervals.Breaches)
	}
	return def
}

// KPIInterval returns the configured KPI poll interval or def.
func (c *Config) KPIInterval(def time.Duration) time.Duration {
	if c.Intervals.KPI > 0 {
		return time.Duration(c.Intervals.KPI)
	}
	return def
}

// clampSpec bounds profile limits so a file cannot disable display caps.
func clampSpec(name string, spec aggregate.FilterSpec) aggregate.FilterSpec {
	if name == ProfileBell && (spec.Limit <= 0 || spec.Limit > aggregate.BellDisplayCap) {
		spec.Limit = aggregate.BellDisplayCap
	}
	return spec
}
