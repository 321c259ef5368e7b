package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/logimap/internal/dynamo"
)

// Presets are starting states on top of DefaultConfig.
var Presets = map[string]func(*Config){
	"narrow": func(c *Config) {
		c.Parameter.Min, c.Parameter.Max = DefaultGraphStart, DefaultGraphEnd
	},
	"stable": func(c *Config) {
		c.Parameter.Initial = 2.8
		c.StartPoint.Initial = 0.2
	},
	"period-doubling": func(c *Config) {
		c.Parameter.Initial = 3.5
		c.StartPoint.Initial = 0.2
		c.Cobweb.Steps = 40
		c.Bifurcation.AMin, c.Bifurcation.AMax = 2.9, 3.6
		c.Bifurcation.AStep = 0.001
	},
	"chaos": func(c *Config) {
		c.Parameter.Initial = 3.9
		c.StartPoint.Initial = 0.123
		c.Cobweb.Steps = 60
		c.Orbit.Steps = 200
		c.Bifurcation.Limit = 0
	},
	"divergent": func(c *Config) {
		c.Parameter.Initial = 4.0
		c.StartPoint.Initial = 1.2
		c.Parameter.Max = DefaultGraphEnd
	},
}

// GetPreset returns a fresh config with the named preset applied.
func GetPreset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownPreset, name)
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
