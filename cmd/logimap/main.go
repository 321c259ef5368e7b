package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/automation"
	"github.com/san-kum/logimap/internal/config"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/export"
	"github.com/san-kum/logimap/internal/storage"
	"github.com/san-kum/logimap/internal/viewstate"
	"github.com/san-kum/logimap/internal/viz"
	"github.com/san-kum/logimap/internal/web"
)

var (
	dataDir string
	verbose bool
)

// main registers the logimap commands and runs the explorer when no
// subcommand is given. It exits with status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:          "logimap",
		Short:        "cobweb and bifurcation explorer for the logistic map",
		SilenceUsage: true,
		RunE:         runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".logimap", "snapshot directory")
	rootCmd.PersistentFlags().String("config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().String("preset", "", "start from a preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	controlFlags(rootCmd.Flags())
	rootCmd.Flags().String("theme", "classic", fmt.Sprintf("color theme %v", viz.ThemeNames()))

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive cobweb explorer",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	controlFlags(liveCmd.Flags())
	liveCmd.Flags().String("theme", "classic", fmt.Sprintf("color theme %v", viz.ThemeNames()))

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "print the cobweb segments for a and x0",
		Args:  cobra.NoArgs,
		RunE:  runTrace,
	}
	controlFlags(traceCmd.Flags())
	traceCmd.Flags().Int("cobweb-steps", config.DefaultCobwebStep, "cobweb iterations")
	traceCmd.Flags().String("svg", "", "also write the diagram to this SVG file")
	traceCmd.Flags().Bool("plot", false, "draw the diagram in the terminal")

	orbitCmd := &cobra.Command{
		Use:   "orbit",
		Short: "print the orbit of x0 under a",
		Args:  cobra.NoArgs,
		RunE:  runOrbit,
	}
	controlFlags(orbitCmd.Flags())
	orbitCmd.Flags().Int("orbit-steps", config.DefaultOrbitSteps, "iterations")

	rangesCmd := &cobra.Command{
		Use:   "ranges",
		Short: "find where repeated iteration stays finite",
		Args:  cobra.NoArgs,
		RunE:  runRanges,
	}
	controlFlags(rangesCmd.Flags())
	rangeFlags(rangesCmd.Flags())

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "scan a for period doublings",
		Args:  cobra.NoArgs,
		RunE:  runBifurcation,
	}
	bifurcationFlags(bifurcationCmd.Flags())
	bifurcationCmd.Flags().String("svg", "", "also write the diagram to this SVG file")
	bifurcationCmd.Flags().Bool("lyapunov", false, "plot the Lyapunov exponent across the sweep")

	saveCmd := &cobra.Command{
		Use:   "save [label]",
		Short: "save a snapshot of the views for a and x0",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSave,
	}
	controlFlags(saveCmd.Flags())

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list snapshots",
		Args:  cobra.NoArgs,
		RunE:  listSnapshots,
	}

	exportCmd := &cobra.Command{
		Use:   "export [snapshot_id]",
		Short: "print a snapshot's metadata, or export the current views as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExport,
	}
	controlFlags(exportCmd.Flags())
	exportCmd.Flags().StringP("out", "o", "", "write to this file instead of stdout")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "iterate x0 across evenly spaced values of a",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64("a-min", 2.5, "first a")
	sweepCmd.Flags().Float64("a-max", 4.0, "last a")
	sweepCmd.Flags().Int("n", 16, "number of a values")
	sweepCmd.Flags().Float64("x0", 0.2, "starting point")
	sweepCmd.Flags().Int("orbit-steps", 500, "iterations per a")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "count escaping orbits around a perturbed x0",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().Float64("a", 4, "map parameter a")
	monteCarloCmd.Flags().Float64("x0", 0.5, "base starting point")
	monteCarloCmd.Flags().Float64("perturbation", 0.6, "maximum offset from x0")
	monteCarloCmd.Flags().Int("trials", 1000, "number of orbits")
	monteCarloCmd.Flags().Int("orbit-steps", analysis.DefaultDepth, "iterations per orbit")
	monteCarloCmd.Flags().Int64("seed", 0, "random seed (0 = from the clock)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the views over HTTP and a websocket",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	controlFlags(serveCmd.Flags())
	serveCmd.Flags().String("addr", "localhost:8080", "listen address")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	rootCmd.AddCommand(liveCmd, traceCmd, orbitCmd, rangesCmd, bifurcationCmd, saveCmd, listCmd,
		exportCmd, scenarioCmd, sweepCmd, monteCarloCmd, serveCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newController builds a controller from the command's flags. Commands that
// never show the bifurcation diagram skip the scan.
func newController(cmd *cobra.Command, scan bool) (*viewstate.Controller, error) {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return nil, err
	}
	var opts []viewstate.Option
	if !scan {
		opts = append(opts, viewstate.WithBifurcations(analysis.Bifurcations{}))
	}
	return viewstate.New(cfg, opts...)
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runLive(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(cmd, true)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	theme, _ := cmd.Flags().GetString("theme")
	return viz.Run(ctrl, viz.WithSaver(st), viz.WithTheme(theme))
}

func runTrace(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(cmd, false)
	if err != nil {
		return err
	}
	v := ctrl.Views()
	cfg := ctrl.Config()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tX1\tY1\tX2\tY2")
	for i, s := range v.Cobweb {
		fmt.Fprintf(w, "%d\t%g\t%g\t%g\t%g\n", i, s.From.X, s.From.Y, s.To.X, s.To.Y)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	vp := viz.Square(cfg.Graph.Start, cfg.Graph.End)
	if plot, _ := cmd.Flags().GetBool("plot"); plot {
		fmt.Println()
		fmt.Print(viz.CobwebASCII(v, vp, 60, 24))
	}

	if path, _ := cmd.Flags().GetString("svg"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.CobwebSVG(f, v, vp, export.Options{}); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

func runOrbit(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(cmd, false)
	if err != nil {
		return err
	}
	v := ctrl.Views()

	for i, x := range v.Orbit {
		fmt.Printf("%4d  %g\n", i, x)
	}
	fmt.Println()

	if chart := viz.OrbitChart(v.Orbit, 80, 10, fmt.Sprintf("orbit of x0=%g, a=%g", v.Start, v.Param)); chart != "" {
		fmt.Println(chart)
		fmt.Println()
	}

	if idx := analysis.EscapeIndex(v.Orbit); idx >= 0 {
		fmt.Printf("escapes at step %d\n", idx)
	}
	fmt.Printf("lyapunov: %.6f\n", v.Lyapunov)
	return nil
}

func runRanges(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(cmd, false)
	if err != nil {
		return err
	}
	cfg := ctrl.Config()
	r := ctrl.Views().Ranges

	axis := cfg.Ranges.Axis
	if axis == "" {
		axis = analysis.SweepStart
	}
	held, current, name := ctrl.Param(), ctrl.Start(), "x0"
	if axis == analysis.SweepParameter {
		held, current, name = ctrl.Start(), ctrl.Param(), "a"
	}
	fmt.Printf("sweeping %s over [%g, %g) step %g, holding %g\n",
		axis, cfg.Ranges.Start, cfg.Ranges.End, cfg.Ranges.Step, held)

	if len(r.Boundaries) > 0 {
		fmt.Println("boundaries:")
		for _, b := range r.Boundaries {
			state := "undefined"
			if b.Finite {
				state = "defined"
			}
			fmt.Printf("  %g -> %s\n", b.Value, state)
		}
	}

	defined, undefined := viz.DescribeRanges(r)
	fmt.Printf("defined:   %s\n", defined)
	fmt.Printf("undefined: %s\n", undefined)

	state := "undefined"
	if r.DefinedAt(current) {
		state = "defined"
	}
	fmt.Printf("current %s=%g is %s\n", name, current, state)
	return nil
}

func runBifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	scan := cfg.BifurcationScan()
	b := analysis.ScanBifurcations(dynamo.Logistic{}, scan)

	fmt.Printf("scanned a in [%g, %g) step %g (%s)\n", scan.AMin, scan.AMax, scan.AStep, scan.Mode)
	fmt.Printf("bifurcations: %s\n", viz.FormatBifurcations(b.Points))
	for i, r := range analysis.FeigenbaumRatios(b.Points) {
		fmt.Printf("  δ%d = %.4f\n", i+1, r)
	}
	fmt.Println()

	if plot := viz.BifurcationASCII(b, 80, 24); plot != "" {
		fmt.Print(plot)
		fmt.Println()
	}

	if show, _ := cmd.Flags().GetBool("lyapunov"); show {
		_, exps := analysis.LyapunovSweep(dynamo.Logistic{}, scan.Seed, scan.AMin, scan.AMax, scan.AStep, scan.Transient, scan.Samples)
		if len(exps) > 0 {
			fmt.Println(asciigraph.Plot(exps,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption("lyapunov exponent vs a"),
			))
		}
	}

	if path, _ := cmd.Flags().GetString("svg"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := export.BifurcationSVG(f, b, export.Options{Width: 800, Height: 500}); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
	}
	return nil
}

func runSave(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(cmd, true)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	label := ""
	if len(args) > 0 {
		label = args[0]
	}
	bif := ctrl.Bifurcations()
	id, err := st.Save(label, ctrl.Views(), &bif)
	if err != nil {
		return err
	}
	fmt.Printf("snapshot id: %s\n", id)
	return nil
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	snaps, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	if len(snaps) == 0 {
		fmt.Println("no snapshots found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tA\tX0\tESCAPE\tLYAPUNOV")
	for _, s := range snaps {
		escape := "-"
		if s.Escape >= 0 {
			escape = fmt.Sprint(s.Escape)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%s\t%.4f\n",
			s.ID,
			s.Label,
			s.Timestamp.Format("2006-01-02 15:04:05"),
			s.Param,
			s.Start,
			escape,
			s.Lyapunov,
		)
	}
	return w.Flush()
}

func runExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")

	if len(args) == 1 {
		meta, err := storage.New(dataDir).Load(args[0])
		if err != nil {
			return err
		}
		w := os.Stdout
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}

	ctrl, err := newController(cmd, true)
	if err != nil {
		return err
	}
	bif := ctrl.Bifurcations()
	if out != "" {
		if err := storage.ExportJSONFile(out, ctrl.Views(), &bif); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	}
	return storage.ExportJSON(os.Stdout, ctrl.Views(), &bif)
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	fs := cmd.Flags()
	if sc.Preset != "" && !fs.Changed("preset") {
		if err := fs.Set("preset", sc.Preset); err != nil {
			return err
		}
	}
	ctrl, err := newController(cmd, true)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := automation.RunScenario(ctx, sc, ctrl, st, newLogger())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tA\tX0\tESCAPE\tLYAPUNOV\tPROBE\tSNAPSHOT")
	for _, r := range results {
		escape, probe := "-", "-"
		if r.Escape >= 0 {
			escape = fmt.Sprint(r.Escape)
		}
		if r.Probe != nil {
			probe = fmt.Sprintf("f(%g)=%g", r.Probe.X, r.Probe.Y)
		}
		fmt.Fprintf(w, "%d\t%g\t%g\t%s\t%.4f\t%s\t%s\n", r.Step, r.Param, r.Start, escape, r.Lyapunov, probe, r.SnapshotID)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	fs := cmd.Flags()
	sweep := &automation.ParameterSweep{}
	sweep.AMin, _ = fs.GetFloat64("a-min")
	sweep.AMax, _ = fs.GetFloat64("a-max")
	sweep.NumSteps, _ = fs.GetInt("n")
	sweep.Start, _ = fs.GetFloat64("x0")
	sweep.Steps, _ = fs.GetInt("orbit-steps")

	results, err := automation.RunSweep(cmd.Context(), dynamo.Logistic{}, sweep)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "A\tFINAL\tESCAPE\tLYAPUNOV")
	for _, r := range results {
		escape := "-"
		if r.Escape >= 0 {
			escape = fmt.Sprint(r.Escape)
		}
		fmt.Fprintf(w, "%.4f\t%g\t%s\t%.4f\n", r.Param, r.Final, escape, r.Lyapunov)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	fs := cmd.Flags()
	mc := &automation.MonteCarloConfig{}
	mc.Param, _ = fs.GetFloat64("a")
	mc.BaseStart, _ = fs.GetFloat64("x0")
	mc.Perturbation, _ = fs.GetFloat64("perturbation")
	mc.NumTrials, _ = fs.GetInt("trials")
	mc.Steps, _ = fs.GetInt("orbit-steps")
	mc.Seed, _ = fs.GetInt64("seed")

	results, err := automation.RunMonteCarlo(cmd.Context(), dynamo.Logistic{}, mc)
	if err != nil {
		return err
	}
	bounded, escaped := automation.MonteCarloStats(results)
	fmt.Printf("a=%g, x0=%g±%g, %d steps\n", mc.Param, mc.BaseStart, mc.Perturbation, mc.Steps)
	fmt.Printf("bounded: %d\nescaped: %d\n", bounded, escaped)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctrl, err := newController(cmd, true)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return web.NewServer(ctrl, newLogger()).Serve(ctx, addr)
}
