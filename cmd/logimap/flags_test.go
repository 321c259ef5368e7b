package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/config"
	"github.com/san-kum/logimap/internal/dynamo"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.String("preset", "", "")
	controlFlags(fs)
	rangeFlags(fs)
	bifurcationFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newFlagSet(t))
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != *config.DefaultConfig() {
		t.Error("unchanged flags should leave the defaults alone")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := loadConfig(newFlagSet(t, "--a", "3.5", "--x0", "0.1", "--axis", "parameter", "--mode", "restart", "--limit", "0"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Parameter.Initial != 3.5 || cfg.StartPoint.Initial != 0.1 {
		t.Errorf("controls = (%v, %v)", cfg.Parameter.Initial, cfg.StartPoint.Initial)
	}
	if cfg.Ranges.Axis != analysis.SweepParameter {
		t.Errorf("axis = %q", cfg.Ranges.Axis)
	}
	if cfg.Bifurcation.Mode != analysis.Restart || cfg.Bifurcation.Limit != 0 {
		t.Errorf("bifurcation = %+v", cfg.Bifurcation)
	}
}

func TestLoadConfigLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("parameter:\n  initial: 2.5\nstart_point:\n  initial: 0.4\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(newFlagSet(t, "--preset", "chaos", "--config", path, "--x0", "0.7"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Parameter.Initial != 2.5 {
		t.Errorf("config file should override the preset, a = %v", cfg.Parameter.Initial)
	}
	if cfg.StartPoint.Initial != 0.7 {
		t.Errorf("flag should override the config file, x0 = %v", cfg.StartPoint.Initial)
	}
	if cfg.Cobweb.Steps != 60 || cfg.Orbit.Steps != 200 || cfg.Bifurcation.Limit != 0 {
		t.Errorf("preset values missing from the config file should survive, got cobweb=%d orbit=%d limit=%d",
			cfg.Cobweb.Steps, cfg.Orbit.Steps, cfg.Bifurcation.Limit)
	}

	cfg, err = loadConfig(newFlagSet(t, "--preset", "chaos"))
	if err != nil {
		t.Fatal(err)
	}
	want, _ := config.GetPreset("chaos")
	if *cfg != *want {
		t.Error("preset not applied")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := loadConfig(newFlagSet(t, "--preset", "nope")); !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
	if _, err := loadConfig(newFlagSet(t, "--step", "0")); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := loadConfig(newFlagSet(t, "--mode", "sideways")); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, err := loadConfig(newFlagSet(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
