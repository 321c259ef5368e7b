package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/dynamo"
)

const (
	DefaultGraphStart  = -5.0
	DefaultGraphEnd    = 5.0
	DefaultGraphPoints = 1000

	DefaultParamMin   = -2.0
	DefaultParamMax   = 4.0
	DefaultPrecision  = 0.01
	DefaultCobwebStep = 10
	DefaultOrbitSteps = 50

	DefaultRangeStep = 0.05

	DefaultBifurcationMin  = 2.8
	DefaultBifurcationMax  = 4.0
	DefaultBifurcationStep = 0.005
	DefaultTransient       = 1000
	DefaultSamples         = 100
	DefaultSeed            = 0.5
	DefaultLimit           = 3

	maxDecimals = 15
)

type Config struct {
	Graph       GraphConfig       `yaml:"graph"`
	Parameter   ParameterConfig   `yaml:"parameter"`
	StartPoint  StartPointConfig  `yaml:"start_point"`
	Cobweb      CobwebConfig      `yaml:"cobweb"`
	Orbit       OrbitConfig       `yaml:"orbit"`
	Ranges      RangesConfig      `yaml:"ranges"`
	Bifurcation BifurcationConfig `yaml:"bifurcation"`
}

// GraphConfig is the plotted x window and the curve resolution.
type GraphConfig struct {
	Start  float64 `yaml:"start"`
	End    float64 `yaml:"end"`
	Points int     `yaml:"points"`
}

// ParameterConfig bounds the a control. Values with |a| < Precision snap to 0.
type ParameterConfig struct {
	Initial   float64 `yaml:"initial"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
	Precision float64 `yaml:"precision"`
}

type StartPointConfig struct {
	Initial float64 `yaml:"initial"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

type CobwebConfig struct {
	Steps int `yaml:"steps"`
}

type OrbitConfig struct {
	Steps int `yaml:"steps"`
}

type RangesConfig struct {
	Start float64            `yaml:"start"`
	End   float64            `yaml:"end"`
	Step  float64            `yaml:"step"`
	Depth int                `yaml:"depth"`
	Axis  analysis.SweepAxis `yaml:"axis"`
}

type BifurcationConfig struct {
	AMin      float64            `yaml:"a_min"`
	AMax      float64            `yaml:"a_max"`
	AStep     float64            `yaml:"a_step"`
	Transient int                `yaml:"transient"`
	Samples   int                `yaml:"samples"`
	Seed      float64            `yaml:"seed"`
	Decimals  int                `yaml:"decimals"`
	Limit     int                `yaml:"limit"`
	Mode      analysis.SweepMode `yaml:"mode"`
}

func DefaultConfig() *Config {
	return &Config{
		Graph: GraphConfig{
			Start:  DefaultGraphStart,
			End:    DefaultGraphEnd,
			Points: DefaultGraphPoints,
		},
		Parameter: ParameterConfig{
			Min:       DefaultParamMin,
			Max:       DefaultParamMax,
			Precision: DefaultPrecision,
		},
		StartPoint: StartPointConfig{
			Min: DefaultGraphStart,
			Max: DefaultGraphEnd,
		},
		Cobweb: CobwebConfig{Steps: DefaultCobwebStep},
		Orbit:  OrbitConfig{Steps: DefaultOrbitSteps},
		Ranges: RangesConfig{
			Start: DefaultGraphStart,
			End:   DefaultGraphEnd,
			Step:  DefaultRangeStep,
			Depth: analysis.DefaultDepth,
			Axis:  analysis.SweepStart,
		},
		Bifurcation: BifurcationConfig{
			AMin:      DefaultBifurcationMin,
			AMax:      DefaultBifurcationMax,
			AStep:     DefaultBifurcationStep,
			Transient: DefaultTransient,
			Samples:   DefaultSamples,
			Seed:      DefaultSeed,
			Decimals:  analysis.DefaultDecimals,
			Limit:     DefaultLimit,
			Mode:      analysis.Continuation,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads a YAML file over base, so fields the file leaves out keep
// the values base already holds. base is modified and returned.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first value that cannot drive an analysis. Errors
// wrap dynamo.ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case !finite(c.Graph.Start, c.Graph.End):
		return dynamo.InvalidConfig("graph", "bounds must be finite, got [%v, %v]", c.Graph.Start, c.Graph.End)
	case !(c.Graph.Start < c.Graph.End):
		return dynamo.InvalidConfig("graph", "start %v must be below end %v", c.Graph.Start, c.Graph.End)
	case c.Graph.Points < 2:
		return dynamo.InvalidConfig("graph.points", "need at least 2 points, got %d", c.Graph.Points)
	case !(c.Parameter.Min < c.Parameter.Max):
		return dynamo.InvalidConfig("parameter", "min %v must be below max %v", c.Parameter.Min, c.Parameter.Max)
	case !finite(c.Parameter.Min, c.Parameter.Max):
		return dynamo.InvalidConfig("parameter", "bounds must be finite, got [%v, %v]", c.Parameter.Min, c.Parameter.Max)
	case !dynamo.IsFinite(c.Parameter.Precision):
		return dynamo.InvalidConfig("parameter.precision", "must be finite, got %v", c.Parameter.Precision)
	case c.Parameter.Precision < 0:
		return dynamo.InvalidConfig("parameter.precision", "must not be negative, got %v", c.Parameter.Precision)
	case !dynamo.IsFinite(c.Parameter.Initial):
		return dynamo.InvalidConfig("parameter.initial", "must be finite")
	case !finite(c.StartPoint.Min, c.StartPoint.Max):
		return dynamo.InvalidConfig("start_point", "bounds must be finite, got [%v, %v]", c.StartPoint.Min, c.StartPoint.Max)
	case !(c.StartPoint.Min < c.StartPoint.Max):
		return dynamo.InvalidConfig("start_point", "min %v must be below max %v", c.StartPoint.Min, c.StartPoint.Max)
	case !dynamo.IsFinite(c.StartPoint.Initial):
		return dynamo.InvalidConfig("start_point.initial", "must be finite")
	case c.Cobweb.Steps < 0:
		return dynamo.InvalidConfig("cobweb.steps", "must not be negative, got %d", c.Cobweb.Steps)
	case c.Orbit.Steps < 0:
		return dynamo.InvalidConfig("orbit.steps", "must not be negative, got %d", c.Orbit.Steps)
	}

	if err := c.Ranges.validate(); err != nil {
		return err
	}
	return c.Bifurcation.validate()
}

func (r RangesConfig) validate() error {
	switch {
	case !finite(r.Start, r.End, r.Step):
		return dynamo.InvalidConfig("ranges", "start, end and step must be finite")
	case !(r.Step > 0):
		return dynamo.InvalidConfig("ranges.step", "must be positive, got %v", r.Step)
	case !(r.Start < r.End):
		return dynamo.InvalidConfig("ranges", "start %v must be below end %v", r.Start, r.End)
	case r.Depth < 0:
		return dynamo.InvalidConfig("ranges.depth", "must not be negative, got %d", r.Depth)
	case r.Axis != "" && !r.Axis.Valid():
		return dynamo.InvalidConfig("ranges.axis", "unknown axis %q", r.Axis)
	}
	return nil
}

func (b BifurcationConfig) validate() error {
	switch {
	case !finite(b.AMin, b.AMax, b.AStep):
		return dynamo.InvalidConfig("bifurcation", "a_min, a_max and a_step must be finite")
	case !dynamo.IsFinite(b.Seed):
		return dynamo.InvalidConfig("bifurcation.seed", "must be finite, got %v", b.Seed)
	case !(b.AStep > 0):
		return dynamo.InvalidConfig("bifurcation.a_step", "must be positive, got %v", b.AStep)
	case !(b.AMin < b.AMax):
		return dynamo.InvalidConfig("bifurcation", "a_min %v must be below a_max %v", b.AMin, b.AMax)
	case b.Transient < 0:
		return dynamo.InvalidConfig("bifurcation.transient", "must not be negative, got %d", b.Transient)
	case b.Samples < 0:
		return dynamo.InvalidConfig("bifurcation.samples", "must not be negative, got %d", b.Samples)
	case b.Decimals < 0 || b.Decimals > maxDecimals:
		return dynamo.InvalidConfig("bifurcation.decimals", "must be within [0, %d], got %d", maxDecimals, b.Decimals)
	case b.Limit < 0:
		return dynamo.InvalidConfig("bifurcation.limit", "must not be negative, got %d", b.Limit)
	case b.Mode != "" && !b.Mode.Valid():
		return dynamo.InvalidConfig("bifurcation.mode", "unknown mode %q", b.Mode)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if !dynamo.IsFinite(v) {
			return false
		}
	}
	return true
}

// RangeScan builds the defined-range scan for a held value.
func (c *Config) RangeScan(held float64) analysis.RangeScan {
	return analysis.RangeScan{
		Start: c.Ranges.Start,
		End:   c.Ranges.End,
		Step:  c.Ranges.Step,
		Held:  held,
		Depth: c.Ranges.Depth,
		Axis:  c.Ranges.Axis,
	}
}

func (c *Config) BifurcationScan() analysis.BifurcationScan {
	b := c.Bifurcation
	return analysis.BifurcationScan{
		AMin:      b.AMin,
		AMax:      b.AMax,
		AStep:     b.AStep,
		Transient: b.Transient,
		Samples:   b.Samples,
		Seed:      b.Seed,
		Decimals:  b.Decimals,
		Limit:     b.Limit,
		Mode:      b.Mode,
	}
}

// Clone returns a deep copy. Config holds no reference types, so a value
// copy suffices.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
