package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rollersim/internal/config"
	"github.com/san-kum/rollersim/internal/dynamo"
	"github.com/san-kum/rollersim/internal/engine"
	"github.com/san-kum/rollersim/internal/metrics"
	"github.com/san-kum/rollersim/internal/storage"
	"github.com/san-kum/rollersim/internal/viz"
)

var (
	dataDir     string
	dt          float64
	duration    float64
	startX      float64
	startY      float64
	gravity     float64
	damping     float64
	mass        float64
	restitution float64
	stickiness  float64
	integrator  string
	curve       string
	configFile  string
	preset      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rollersim",
		Short: "hybrid track / free-flight dynamics simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rollersim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&startX, "x", 3.0, "start x")
	cmd.Flags().Float64Var(&startY, "y", 10.0, "start y")
	cmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "gravity magnitude")
	cmd.Flags().Float64Var(&damping, "damping", 0.0, "viscous damping")
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "body mass")
	cmd.Flags().Float64Var(&restitution, "restitution", config.DefaultRestitution, "collision elasticity 0..1")
	cmd.Flags().Float64Var(&stickiness, "stickiness", config.DefaultStickiness, "re-latch threshold (0,1]")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4, rk45)")
	cmd.Flags().StringVar(&curve, "curve", "valley", "curve kind (valley, hump, sine, flat, loop)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves preset, config file and CLI flags, in that order of
// increasing precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		pc := config.GetPreset(preset)
		if pc == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = pc
	}

	if configFile != "" {
		fc, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fc
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("x") {
		cfg.Start.X = startX
	}
	if cmd.Flags().Changed("y") {
		cfg.Start.Y = startY
	}
	if cmd.Flags().Changed("gravity") {
		cfg.Gravity = gravity
	}
	if cmd.Flags().Changed("damping") {
		cfg.Damping = damping
	}
	if cmd.Flags().Changed("mass") {
		cfg.Mass = mass
	}
	if cmd.Flags().Changed("restitution") {
		cfg.Restitution = restitution
	}
	if cmd.Flags().Changed("stickiness") {
		cfg.Stickiness = stickiness
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("curve") {
		cfg.Curve.Kind = curve
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	eng, err := cfg.BuildEngine()
	if err != nil {
		return err
	}
	eng.AddMetric(metrics.NewEnergy())
	eng.AddMetric(metrics.NewEnergyDrift())
	eng.AddMetric(metrics.NewAirTime())

	fmt.Printf("running %s simulation...\n", cfg.Curve.Kind)
	start := time.Now()

	result, err := eng.Run(context.Background(), dynamo.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: true,
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Curve:       cfg.Curve.Kind,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Integrator:  cfg.Integrator,
		Restitution: cfg.Restitution,
		Stickiness:  cfg.Stickiness,
		Departures:  eng.Departures(),
		Bounces:     eng.Bounces(),
		Relatches:   eng.Relatches(),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("departures: %d  bounces: %d  re-latches: %d\n",
		eng.Departures(), eng.Bounces(), eng.Relatches())
	for _, fault := range result.Faults {
		fmt.Printf("fault: %v\n", fault)
	}
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	rebuild := func() (*engine.Engine, error) { return cfg.BuildEngine() }
	return viz.Run(rebuild, cfg.Dt, cfg.Curve.Kind)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCURVE\tTIME\tDURATION\tDT\tINTEG\tBOUNCES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%d\n",
			run.ID,
			run.Curve,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Bounces,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.LoadMetadata(runID)
	if err != nil {
		return err
	}

	states, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("curve: %s\n", meta.Curve)
	fmt.Printf("samples: %d\n\n", len(states))

	for _, idx := range []int{engine.IdxY, engine.IdxV, engine.IdxTotal} {
		data := make([]float64, len(states))
		for i := range states {
			if idx < len(states[i]) {
				data[i] = states[i][idx]
			}
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(engine.VarNames[idx]),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.LoadMetadata(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
