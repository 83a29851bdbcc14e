package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/dynachem/internal/analysis"
	"github.com/san-kum/dynachem/internal/config"
	"github.com/san-kum/dynachem/internal/experiment"
	"github.com/san-kum/dynachem/internal/integrators"
	"github.com/san-kum/dynachem/internal/metrics"
	"github.com/san-kum/dynachem/internal/optim"
	"github.com/san-kum/dynachem/internal/particle"
	"github.com/san-kum/dynachem/internal/sim"
	"github.com/san-kum/dynachem/internal/store"
	"github.com/san-kum/dynachem/internal/viz"
)

// driftTolerance is the relative energy drift reports treat as acceptable.
const driftTolerance = 1e-2

// loadConfig resolves preset, then config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("parallel") {
		cfg.Parallel = parallel
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// progress logs every tenth of the run.
type progress struct {
	every int
	start time.Time
}

func (p *progress) OnFrame(frame int, t float64, particles []*particle.Particle) {
	if p.every > 0 && frame%p.every == 0 {
		logger.Printf("frame %d  t=%.3e s  elapsed %v", frame, t, time.Since(p.start).Round(time.Millisecond))
	}
}

func newExperiment(cmd *cobra.Command, names []string) (*config.Config, *experiment.Experiment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	exp, err := experiment.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := exp.Setup(experiment.NewRegistry(), names); err != nil {
		return nil, nil, err
	}

	exp.GetSimulator().AddObserver(&progress{every: max(cfg.Frames/10, 1), start: time.Now()})
	logger.Printf("%d particles, dt=%g s, %d substeps, %d frames", len(cfg.Particles), cfg.Dt, cfg.Substeps, cfg.Frames)
	return cfg, exp, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, exp, err := newExperiment(cmd, metricNames)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	result, err := exp.Run(ctx)
	elapsed := time.Since(start)
	if err != nil && result == nil {
		return err
	}

	rows := []viz.Row{
		{Label: "frames", Value: fmt.Sprintf("%d / %d", result.FramesTaken, cfg.Frames)},
		{Label: "simulated time", Value: fmt.Sprintf("%.3e s", exp.GetSimulator().Time())},
		{Label: "substeps", Value: strconv.Itoa(cfg.Substeps)},
		{Label: "wall time", Value: elapsed.Round(time.Millisecond).String()},
		{Label: "energy drift", Value: viz.DriftStatus(result.EnergyDrift, driftTolerance)},
	}
	for _, name := range sortedKeys(result.Metrics) {
		rows = append(rows, viz.Row{Label: name, Value: fmt.Sprintf("%.6g", result.Metrics[name])})
	}
	fmt.Println(viz.Summary("dynachem run", rows))

	for _, p := range exp.GetSimulator().Particles() {
		fmt.Println(viz.Subtle.Render(p.String()))
	}

	if tension := springTension(exp); tension != nil && tension.ActiveFrames() > 0 {
		fmt.Printf("\npeak spring tension: %s\n", viz.TensionBadge(tension.Peak()))
	}

	if showPlot && len(result.Samples) > 1 {
		fmt.Println()
		fmt.Println(viz.EnergyPlot(result.Samples, 60, 8))
	}

	if err != nil {
		return fmt.Errorf("stopped after %d frames: %w", result.FramesTaken, err)
	}
	return nil
}

func springTension(exp *experiment.Experiment) *metrics.SpringTension {
	for _, m := range exp.GetSimulator().Metrics() {
		if st, ok := m.(*metrics.SpringTension); ok {
			return st
		}
	}
	return nil
}

func traceSimulation(cmd *cobra.Command, args []string) error {
	cfg, exp, err := newExperiment(cmd, nil)
	if err != nil {
		return err
	}
	if cfg.RecordEvery == 0 {
		exp.GetSimulator().RecordEvery(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "csv":
		err = store.WriteCSV(w, result.Samples)
	case "json":
		err = store.WriteJSON(w, store.NewTrace(preset, cfg.SimConfig(), result))
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}

	if outPath != "" {
		logger.Printf("wrote %d samples to %s", len(result.Samples), outPath)
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	samples, err := analysisSamples(cmd)
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("need at least 2 samples, got %d", len(samples))
	}

	a, b := particle.ID(particleA), particle.ID(particleB)
	coords, err := analysis.RelativeCoordinate(samples, a, b, axis)
	if err != nil {
		return err
	}
	separations, err := analysis.SeparationSeries(samples, a, b)
	if err != nil {
		return err
	}

	dtSample := (samples[len(samples)-1].Time - samples[0].Time) / float64(len(samples)-1)
	freq, err := analysis.DominantFrequency(coords, dtSample)
	if err != nil {
		return err
	}

	rows := []viz.Row{
		{Label: "samples", Value: strconv.Itoa(len(samples))},
		{Label: "sample interval", Value: fmt.Sprintf("%.3e s", dtSample)},
		{Label: "dominant frequency", Value: fmt.Sprintf("%.4e Hz", freq)},
	}
	if freq > 0 {
		rows = append(rows, viz.Row{Label: "period", Value: fmt.Sprintf("%.4e s", 1/freq)})
	}
	fmt.Println(viz.Summary(fmt.Sprintf("particle %d about %d", a, b), rows))
	fmt.Println()
	fmt.Println(viz.SeriesPlot(separations, "separation (m)", 60, 8))

	ps := analysis.PowerSpectrum(coords)
	if len(ps) > 4 {
		fmt.Println()
		fmt.Println(viz.SeriesPlot(ps[:len(ps)/2], "power spectrum", 60, 8))
	}
	return nil
}

func analysisSamples(cmd *cobra.Command) ([]sim.Sample, error) {
	if traceFile != "" {
		f, err := os.Open(traceFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return store.ReadCSV(f)
	}

	cfg, exp, err := newExperiment(cmd, []string{})
	if err != nil {
		return nil, err
	}
	if cfg.RecordEvery == 0 {
		exp.GetSimulator().RecordEvery(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := exp.Run(ctx)
	if err != nil {
		return nil, err
	}
	return result.Samples, nil
}

func sweepSubsteps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Printf("sweeping substeps %v over %d frames", sweepCounts, cfg.Frames)
	start := time.Now()
	points, err := experiment.Sweep(ctx, cfg, sweepCounts, jobs)
	if err != nil {
		return err
	}
	logger.Printf("sweep finished in %v", time.Since(start).Round(time.Millisecond))

	rows := make([][]string, len(points))
	drifts := make([]float64, len(points))
	for i, p := range points {
		rows[i] = []string{
			strconv.Itoa(p.Substeps),
			fmt.Sprintf("%.3e", cfg.Dt/float64(p.Substeps)),
			viz.DriftStatus(p.EnergyDrift, driftTolerance),
		}
		drifts[i] = math.Log10(math.Max(p.EnergyDrift, 1e-300))
	}

	fmt.Println(viz.Table([]string{"substeps", "substep dt (s)", "energy drift"}, rows))
	fmt.Println(viz.Subtle.Render("log10 drift ") + viz.Sparkline(drifts, len(drifts)))
	return nil
}

func compareSchemes(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = integrators.Names()
	}

	orbit := experiment.Orbit{Radius: orbitRadius, Dt: compareDt, Steps: steps}
	results, err := experiment.CompareSchemes(orbit, names)
	if err != nil {
		return err
	}

	fmt.Printf("electron orbit r=%.3e m, dt=%.3e s, %d steps\n\n", orbitRadius, compareDt, steps)
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{r.Scheme, viz.DriftStatus(r.EnergyDrift, driftTolerance), fmt.Sprintf("%.3e", r.RadiusDrift)}
	}
	fmt.Println(viz.Table([]string{"scheme", "energy drift", "radius drift"}, rows))
	return nil
}

func tuneParams(cmd *cobra.Command, args []string) error {
	if len(gridParams) == 0 {
		return fmt.Errorf("at least one --grid is required (parameters: %v)", optim.ParamNames())
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(gridParams))
	ranges := make([][]float64, 0, len(gridParams))
	for _, spec := range gridParams {
		name, values, ok := strings.Cut(spec, "=")
		if !ok {
			return fmt.Errorf("bad grid %q, want name=v1,v2", spec)
		}
		var vals []float64
		for _, field := range strings.Split(values, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return fmt.Errorf("grid %s: %w", name, err)
			}
			vals = append(vals, v)
		}
		names = append(names, name)
		ranges = append(ranges, vals)
	}

	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Printf("searching %v for the smallest %s", names, tuneMetric)
	best, value, err := g.Search(ctx, cfg, tuneMetric)
	if err != nil {
		return err
	}

	rows := make([]viz.Row, 0, len(best)+1)
	for _, name := range names {
		rows = append(rows, viz.Row{Label: name, Value: fmt.Sprintf("%g", best[name])})
	}
	rows = append(rows, viz.Row{Label: tuneMetric, Value: fmt.Sprintf("%.6g", value)})
	fmt.Println(viz.Summary("best parameters", rows))
	return nil
}

var presetDescriptions = map[string]string{
	"hydrogen":      "electron on a 1 Å circular orbit, free nucleus",
	"fixed_nucleus": "electron on a 1 Å circular orbit, pinned nucleus",
	"proton_pair":   "two protons released 2 Å apart",
	"drag":          "hydrogen with the nucleus dragged along z",
}

func listPresets(cmd *cobra.Command, args []string) error {
	fmt.Println(viz.Title.Render("presets"))
	for _, name := range config.ListPresets() {
		fmt.Printf("  %-14s %s\n", name, viz.Subtle.Render(presetDescriptions[name]))
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg := config.GetPreset(initPreset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", initPreset, config.ListPresets())
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s preset to %s\n", initPreset, path)
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
