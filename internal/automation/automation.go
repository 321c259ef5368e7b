package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/viewstate"
)

var ErrEmptyStep = errors.New("automation: step sets nothing")

// Scenario defines a scripted sequence of control changes.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Preset      string         `yaml:"preset"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. Param is applied before Start
// so a step can move both controls; Probe and SaveAs act on the result.
type ScenarioStep struct {
	Param  *float64 `yaml:"param"`
	Start  *float64 `yaml:"start"`
	Probe  *float64 `yaml:"probe"`
	SaveAs string   `yaml:"save_as"`
}

func (s ScenarioStep) empty() bool {
	return s.Param == nil && s.Start == nil && s.Probe == nil && s.SaveAs == ""
}

// StepResult summarizes the snapshot reached after one step.
type StepResult struct {
	Step       int
	Param      float64
	Start      float64
	Lyapunov   float64
	Escape     int
	Probe      *dynamo.Point
	SnapshotID string
}

// Saver persists a snapshot under a label.
type Saver interface {
	Save(label string, v *viewstate.Views, bif *analysis.Bifurcations) (string, error)
}

// ParseScenario decodes a YAML scenario and checks that every step does
// something.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	for i, step := range scenario.Steps {
		if step.empty() {
			return nil, fmt.Errorf("step %d: %w", i+1, ErrEmptyStep)
		}
	}
	return &scenario, nil
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

// RunScenario applies every step to ctrl in order. saver may be nil, in which
// case a step with SaveAs fails. Results gathered so far are returned with
// the first error.
func RunScenario(ctx context.Context, scenario *Scenario, ctrl *viewstate.Controller, saver Saver, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		v := ctrl.Views()
		if step.Param != nil {
			v = ctrl.SetParameter(*step.Param)
		}
		if step.Start != nil {
			v = ctrl.SetStartingPoint(*step.Start)
		}

		res := StepResult{
			Step:     i + 1,
			Param:    v.Param,
			Start:    v.Start,
			Lyapunov: v.Lyapunov,
			Escape:   analysis.EscapeIndex(v.Orbit),
		}
		if step.Probe != nil {
			p := ctrl.Probe(*step.Probe)
			res.Probe = &p
		}

		if step.SaveAs != "" {
			if saver == nil {
				return results, fmt.Errorf("step %d: no snapshot store", i+1)
			}
			bif := ctrl.Bifurcations()
			id, err := saver.Save(step.SaveAs, v, &bif)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			res.SnapshotID = id
		}

		logger.Info("scenario step",
			"scenario", scenario.Name,
			"step", res.Step,
			"of", len(scenario.Steps),
			"a", res.Param,
			"x0", res.Start,
			"escape", res.Escape,
		)
		results = append(results, res)
	}

	return results, nil
}

// ParameterSweep iterates the map from a fixed start across a range of a.
type ParameterSweep struct {
	AMin     float64
	AMax     float64
	NumSteps int
	Start    float64
	Steps    int
}

// SweepResult holds the outcome of one orbit in a sweep.
type SweepResult struct {
	Param    float64
	Final    float64
	Escape   int
	Lyapunov float64
}

// RunSweep executes a parameter sweep. NumSteps values are spread evenly over
// [AMin, AMax], endpoints included.
func RunSweep(ctx context.Context, m dynamo.Map, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("automation: %w: need at least 2 steps, got %d", dynamo.ErrEmptySweep, sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.AMax - sweep.AMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		a := sweep.AMin + float64(i)*paramStep
		orbit := analysis.GenerateOrbit(m, sweep.Start, a, sweep.Steps)
		results = append(results, SweepResult{
			Param:    a,
			Final:    orbit[len(orbit)-1],
			Escape:   analysis.EscapeIndex(orbit),
			Lyapunov: analysis.LyapunovExponent(m, orbit, a),
		})
	}

	return results, nil
}

// MonteCarloConfig perturbs a starting value to probe how sensitive
// divergence is to x0.
type MonteCarloConfig struct {
	Param        float64
	BaseStart    float64
	Perturbation float64
	NumTrials    int
	Steps        int
	Seed         int64
}

// MonteCarloResult is one perturbed orbit.
type MonteCarloResult struct {
	TrialID int
	Start   float64
	Final   float64
	Bounded bool
}

// RunMonteCarlo executes NumTrials orbits from x0 drawn uniformly within
// Perturbation of BaseStart. A zero Seed picks one from the clock.
func RunMonteCarlo(ctx context.Context, m dynamo.Map, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("automation: %w: need at least 1 trial, got %d", dynamo.ErrEmptySweep, cfg.NumTrials)
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		x0 := cfg.BaseStart + (rng.Float64()-0.5)*2*cfg.Perturbation
		orbit := analysis.GenerateOrbit(m, x0, cfg.Param, cfg.Steps)
		results = append(results, MonteCarloResult{
			TrialID: trial,
			Start:   x0,
			Final:   orbit[len(orbit)-1],
			Bounded: analysis.EscapeIndex(orbit) < 0,
		})
	}

	return results, nil
}

// MonteCarloStats counts bounded and escaping trials.
func MonteCarloStats(results []MonteCarloResult) (bounded int, escaped int) {
	for _, r := range results {
		if r.Bounded {
			bounded++
		} else {
			escaped++
		}
	}
	return
}
