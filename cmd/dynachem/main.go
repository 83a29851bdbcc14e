package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/dynachem/internal/viz"
)

var (
	verbose     bool
	theme       string
	configFile  string
	preset      string
	dt          float64
	substeps    int
	frames      int
	parallel    bool
	recordEvery int
	metricNames []string
	showPlot    bool
	format      string
	outPath     string
	traceFile   string
	particleA   uint64
	particleB   uint64
	axis        int
	sweepCounts []int
	jobs        int
	orbitRadius float64
	compareDt   float64
	steps       int
	force       bool
	initPreset  string
	gridParams  []string
	tuneMetric  string
)

var logger = log.New(io.Discard, "dynachem: ", log.Ltime|log.Lmicroseconds)

// main exits with status 1 when a command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd registers the dynachem commands. Registering resets every bound flag
// variable to its default.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "dynachem",
		Short:        "charged particle dynamics lab",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetOutput(os.Stderr)
			}
			viz.SetTheme(theme)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeCyberpunk.Name, "report color theme")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and print a report",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringSliceVar(&metricNames, "metric", nil, "metrics to collect (default: all applicable)")
	runCmd.Flags().BoolVar(&showPlot, "plot", true, "plot the energy error")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "run a simulation and export the recorded trace",
		Args:  cobra.NoArgs,
		RunE:  traceSimulation,
	}
	addRunFlags(traceCmd)
	traceCmd.Flags().StringVar(&format, "format", "csv", "output format: csv or json")
	traceCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "estimate the orbital frequency of a particle pair",
		Args:  cobra.NoArgs,
		RunE:  analyzeRun,
	}
	addRunFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&traceFile, "trace", "", "analyze a CSV trace instead of running")
	analyzeCmd.Flags().Uint64Var(&particleA, "a", 2, "orbiting particle id")
	analyzeCmd.Flags().Uint64Var(&particleB, "b", 1, "reference particle id")
	analyzeCmd.Flags().IntVar(&axis, "axis", 0, "coordinate axis (0=x, 1=y, 2=z)")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "compare energy drift across substep counts",
		Args:  cobra.NoArgs,
		RunE:  sweepSubsteps,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().IntSliceVar(&sweepCounts, "counts", []int{1, 2, 5, 10, 20, 50}, "substep counts to try")
	sweepCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "concurrent runs (0 = unlimited)")

	compareCmd := &cobra.Command{
		Use:   "compare [scheme...]",
		Short: "compare integration schemes on an electron orbiting a fixed proton",
		RunE:  compareSchemes,
	}
	compareCmd.Flags().Float64Var(&orbitRadius, "radius", 1e-10, "orbit radius in metres")
	compareCmd.Flags().Float64Var(&compareDt, "dt", 1e-19, "timestep in seconds")
	compareCmd.Flags().IntVar(&steps, "steps", 4000, "number of steps")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search run parameters for the smallest metric value",
		Args:  cobra.NoArgs,
		RunE:  tuneParams,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&gridParams, "grid", nil, "parameter grid, e.g. stiffness=1e-8,1e-6 (repeatable)")
	tuneCmd.Flags().StringVar(&tuneMetric, "target", "energy_drift", "metric to minimize")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a preset as an editable config file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVar(&initPreset, "preset", "hydrogen", "preset to write")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	rootCmd.AddCommand(runCmd, traceCmd, analyzeCmd, sweepCmd, compareCmd, tuneCmd, presetsCmd, initCmd)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", 0, "frame timestep in seconds")
	cmd.Flags().IntVar(&substeps, "substeps", 0, "substeps per frame")
	cmd.Flags().IntVar(&frames, "frames", 0, "number of frames")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "parallel pairwise force pass")
	cmd.Flags().IntVar(&recordEvery, "record-every", 0, "record a sample every n frames")
}
