package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/config"
)

// controlFlags registers the two live controls.
func controlFlags(fs *pflag.FlagSet) {
	fs.Float64("a", 0, "map parameter a")
	fs.Float64("x0", 0, "starting point x0")
}

func rangeFlags(fs *pflag.FlagSet) {
	fs.String("axis", string(analysis.SweepStart), "swept axis: start or parameter")
	fs.Float64("from", config.DefaultGraphStart, "first swept value")
	fs.Float64("to", config.DefaultGraphEnd, "end of the half-open sweep")
	fs.Float64("step", config.DefaultRangeStep, "sweep step")
	fs.Int("depth", analysis.DefaultDepth, "iterations per sample")
}

func bifurcationFlags(fs *pflag.FlagSet) {
	fs.Float64("a-min", config.DefaultBifurcationMin, "first a of the sweep")
	fs.Float64("a-max", config.DefaultBifurcationMax, "end of the half-open sweep")
	fs.Float64("a-step", config.DefaultBifurcationStep, "sweep step")
	fs.Int("transient", config.DefaultTransient, "iterations discarded per a")
	fs.Int("samples", config.DefaultSamples, "iterations recorded per a")
	fs.Int("limit", config.DefaultLimit, "stop recording after this many points (0 = all)")
	fs.String("mode", string(analysis.Continuation), "continuation or restart")
}

// override copies a flag into cfg only when the user set it, so values from
// --preset and --config survive unless overridden.
type override struct {
	name  string
	apply func(fs *pflag.FlagSet, cfg *config.Config) error
}

func floatOverride(name string, dst func(*config.Config) *float64) override {
	return override{name, func(fs *pflag.FlagSet, cfg *config.Config) error {
		v, err := fs.GetFloat64(name)
		if err != nil {
			return err
		}
		*dst(cfg) = v
		return nil
	}}
}

func intOverride(name string, dst func(*config.Config) *int) override {
	return override{name, func(fs *pflag.FlagSet, cfg *config.Config) error {
		v, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		*dst(cfg) = v
		return nil
	}}
}

var overrides = []override{
	floatOverride("a", func(c *config.Config) *float64 { return &c.Parameter.Initial }),
	floatOverride("x0", func(c *config.Config) *float64 { return &c.StartPoint.Initial }),
	intOverride("cobweb-steps", func(c *config.Config) *int { return &c.Cobweb.Steps }),
	intOverride("orbit-steps", func(c *config.Config) *int { return &c.Orbit.Steps }),

	{"axis", func(fs *pflag.FlagSet, cfg *config.Config) error {
		v, err := fs.GetString("axis")
		cfg.Ranges.Axis = analysis.SweepAxis(v)
		return err
	}},
	floatOverride("from", func(c *config.Config) *float64 { return &c.Ranges.Start }),
	floatOverride("to", func(c *config.Config) *float64 { return &c.Ranges.End }),
	floatOverride("step", func(c *config.Config) *float64 { return &c.Ranges.Step }),
	intOverride("depth", func(c *config.Config) *int { return &c.Ranges.Depth }),

	floatOverride("a-min", func(c *config.Config) *float64 { return &c.Bifurcation.AMin }),
	floatOverride("a-max", func(c *config.Config) *float64 { return &c.Bifurcation.AMax }),
	floatOverride("a-step", func(c *config.Config) *float64 { return &c.Bifurcation.AStep }),
	intOverride("transient", func(c *config.Config) *int { return &c.Bifurcation.Transient }),
	intOverride("samples", func(c *config.Config) *int { return &c.Bifurcation.Samples }),
	intOverride("limit", func(c *config.Config) *int { return &c.Bifurcation.Limit }),
	{"mode", func(fs *pflag.FlagSet, cfg *config.Config) error {
		v, err := fs.GetString("mode")
		cfg.Bifurcation.Mode = analysis.SweepMode(v)
		return err
	}},
}

// loadConfig layers the configuration: defaults, then --preset, then
// --config, then any flag set on the command line.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset, _ := fs.GetString("preset"); preset != "" {
		p, err := config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
		cfg = p
	}

	if path, _ := fs.GetString("config"); path != "" {
		loaded, err := config.LoadInto(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	for _, o := range overrides {
		f := fs.Lookup(o.name)
		if f == nil || !f.Changed {
			continue
		}
		if err := o.apply(fs, cfg); err != nil {
			return nil, fmt.Errorf("--%s: %w", o.name, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
