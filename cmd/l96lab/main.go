package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/l96lab/internal/analysis"
	"github.com/san-kum/l96lab/internal/automation"
	"github.com/san-kum/l96lab/internal/config"
	"github.com/san-kum/l96lab/internal/dynamo"
	"github.com/san-kum/l96lab/internal/experiment"
	"github.com/san-kum/l96lab/internal/export"
	"github.com/san-kum/l96lab/internal/fit"
	"github.com/san-kum/l96lab/internal/model"
	"github.com/san-kum/l96lab/internal/optim"
	"github.com/san-kum/l96lab/internal/sim"
	"github.com/san-kum/l96lab/internal/storage"
	"github.com/san-kum/l96lab/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	dt          float64
	duration    float64
	sampleEvery float64
	spinup      float64
	threshold   float64
	seed        int64
	randomInit  bool
	recordFast  bool
	integrator  string
	closureName string

	paramK  int
	paramJ  int
	forcing float64
	coupleH float64
	scaleB  float64
	scaleC  float64

	constantVal float64
	coeffsFlag  string
	phi         float64
	sigma       float64
	degree      int

	sweepMin  float64
	sweepMax  float64
	sweepN    int
	transient float64
	record    float64

	perturbation float64
	plotVars     int
	hovRows      int
	svgWidth     int
	svgHeight    int
	svgHovmoller bool
	tuneMin      float64
	tuneMax      float64
	tuneN        int
	fromFit      string
	members      int
	spread       float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "l96lab",
		Short: "lorenz-96 multiscale simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".l96lab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation and store the trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&recordFast, "record-fast", false, "store the fast sub-grid states")

	gcmCmd := &cobra.Command{
		Use:   "gcm",
		Short: "run the reduced model, optionally with a fitted closure",
		Args:  cobra.NoArgs,
		RunE:  runGCM,
	}
	addRunFlags(gcmCmd)
	gcmCmd.Flags().StringVar(&fromFit, "from-fit", "", "run id holding a fitted closure")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "run an ensemble of perturbed members",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&members, "members", 8, "ensemble size")
	ensembleCmd.Flags().Float64Var(&spread, "spread", 0.01, "initial perturbation spread")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot slow variables of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotVars, "vars", 4, "number of slow variables to plot")

	hovCmd := &cobra.Command{
		Use:   "hovmoller [run_id]",
		Short: "space-time diagram of the slow ring",
		Args:  cobra.ExactArgs(1),
		RunE:  hovmollerRun,
	}
	hovCmd.Flags().IntVar(&hovRows, "rows", 40, "number of diagram rows")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "power spectrum of a slow variable",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	fitCmd := &cobra.Command{
		Use:   "fit [run_id]",
		Short: "fit a polynomial closure to a two-scale run",
		Args:  cobra.ExactArgs(1),
		RunE:  fitClosure,
	}
	fitCmd.Flags().IntVar(&degree, "degree", 4, "polynomial degree")

	compareCmd := &cobra.Command{
		Use:   "compare [truth_id] [gcm_id]",
		Short: "compare a reduced run against a reference run",
		Args:  cobra.ExactArgs(2),
		RunE:  compareRuns,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "sweep the forcing and record attractor statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepForcing,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.5, "minimum forcing")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 18.0, "maximum forcing")
	sweepCmd.Flags().IntVar(&sweepN, "steps", 30, "number of forcing values")
	sweepCmd.Flags().Float64Var(&transient, "transient", 5.0, "transient to discard")
	sweepCmd.Flags().Float64Var(&record, "record", 10.0, "recording window")

	lyapunovCmd := &cobra.Command{
		Use:   "lyapunov [model]",
		Short: "estimate the largest lyapunov exponent",
		Args:  cobra.ExactArgs(1),
		RunE:  lyapunovRun,
	}
	addModelFlags(lyapunovCmd)
	lyapunovCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	lyapunovCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	lyapunovCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial separation")
	lyapunovCmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")

	tuneCmd := &cobra.Command{
		Use:   "tune [truth_id]",
		Short: "grid-search a constant closure against a reference run",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneClosure,
	}
	tuneCmd.Flags().Float64Var(&tuneMin, "min", -4.0, "minimum constant")
	tuneCmd.Flags().Float64Var(&tuneMax, "max", 0.0, "maximum constant")
	tuneCmd.Flags().IntVar(&tuneN, "steps", 17, "number of grid values")
	tuneCmd.Flags().StringVar(&integrator, "integrator", "euler", "integrator for trial runs")
	tuneCmd.Flags().Float64Var(&dt, "dt", 0.01, "trial timestep")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write run samples as CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write run metadata and samples as JSON on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run as an SVG document on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&plotVars, "vars", 4, "number of slow variables")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 960, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 480, "image height")
	exportSVGCmd.Flags().BoolVar(&svgHovmoller, "hovmoller", false, "render a space-time heatmap instead of lines")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models, integrators and closures",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := experiment.NewRegistry()
			fmt.Printf("models:      %s\n", strings.Join(r.ListModels(), ", "))
			fmt.Printf("integrators: %s\n", strings.Join(r.ListIntegrators(), ", "))
			fmt.Printf("closures:    %s\n", strings.Join(r.ListClosures(), ", "))
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "watch the slow ring evolve in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted scenario of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark integration throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}
	addModelFlags(benchCmd)

	rootCmd.AddCommand(runCmd, gcmCmd, ensembleCmd, listCmd, plotCmd, hovCmd, analyzeCmd, fitCmd,
		compareCmd, sweepCmd, lyapunovCmd, tuneCmd, exportCSVCmd, exportJSONCmd,
		exportSVGCmd, presetsCmd, modelsCmd, liveCmd, batchCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&paramK, "k", 8, "number of slow variables")
	cmd.Flags().IntVar(&paramJ, "j", 32, "fast variables per slow variable")
	cmd.Flags().Float64Var(&forcing, "forcing", 18.0, "forcing F")
	cmd.Flags().Float64Var(&coupleH, "h", 1.0, "coupling strength")
	cmd.Flags().Float64Var(&scaleB, "b", 10.0, "amplitude ratio")
	cmd.Flags().Float64Var(&scaleC, "c", 10.0, "timescale ratio")
}

func addRunFlags(cmd *cobra.Command) {
	addModelFlags(cmd)
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&sampleEvery, "sample", config.DefaultSampleEvery, "sampling interval")
	cmd.Flags().Float64Var(&spinup, "spinup", 0, "transient to discard before sampling")
	cmd.Flags().Float64Var(&threshold, "threshold", dynamo.DivergenceThreshold, "divergence threshold")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().BoolVar(&randomInit, "random-init", false, "perturbed random initial condition")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().StringVar(&closureName, "closure", "zero", "closure for the gcm model")
	cmd.Flags().Float64Var(&constantVal, "constant", 0, "constant closure value")
	cmd.Flags().StringVar(&coeffsFlag, "coeffs", "", "polynomial coefficients, highest degree first")
	cmd.Flags().Float64Var(&phi, "phi", 0.984, "red noise memory")
	cmd.Flags().Float64Var(&sigma, "sigma", 1.0, "red noise amplitude")
}

// buildConfig resolves a run configuration from preset, config file and
// flags in increasing precedence.
func buildConfig(cmd *cobra.Command, modelName string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = modelName

	if preset != "" {
		p := config.GetPreset(modelName, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(modelName))
		}
		copied := *p
		cfg = &copied
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		loaded.Model = modelName
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("sample") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("spinup") {
		cfg.Spinup = spinup
	}
	if flags.Changed("threshold") {
		cfg.Threshold = threshold
	}
	if flags.Changed("seed") || cfg.Seed == 0 {
		cfg.Seed = seed
	}
	if flags.Changed("random-init") {
		cfg.RandomInit = randomInit
	}
	if flags.Changed("record-fast") {
		cfg.RecordFast = recordFast
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("closure") {
		cfg.Closure = closureName
	}
	if flags.Changed("k") {
		cfg.Params.K = paramK
	}
	if flags.Changed("j") {
		cfg.Params.J = paramJ
	}
	if flags.Changed("forcing") {
		cfg.Params.F = forcing
	}
	if flags.Changed("h") {
		cfg.Params.H = coupleH
	}
	if flags.Changed("b") {
		cfg.Params.B = scaleB
	}
	if flags.Changed("c") {
		cfg.Params.C = scaleC
	}
	if flags.Changed("constant") {
		cfg.ClosureParams.Constant = constantVal
	}
	if flags.Changed("coeffs") {
		coeffs, err := parseCoeffs(coeffsFlag)
		if err != nil {
			return nil, err
		}
		cfg.ClosureParams.Coeffs = coeffs
	}
	if flags.Changed("phi") {
		cfg.ClosureParams.Phi = phi
	}
	if flags.Changed("sigma") {
		cfg.ClosureParams.Sigma = sigma
	}

	if cfg.Closure == "" {
		cfg.Closure = "zero"
	}
	return cfg, nil
}

func parseCoeffs(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	coeffs := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad coefficient %q: %w", p, err)
		}
		coeffs = append(coeffs, v)
	}
	return coeffs, nil
}

// buildExperiment wires registry, closure, model and integrator for a
// resolved configuration.
func buildExperiment(cfg *config.Config) (*experiment.Experiment, dynamo.System, error) {
	registry := experiment.NewRegistry()
	exp := experiment.New(cfg)

	cl, err := registry.GetClosure(cfg.Closure, cfg.ClosureParams, exp.Rng())
	if err != nil {
		return nil, nil, err
	}
	sys, err := registry.GetModel(cfg.Model, cfg.Params, cl)
	if err != nil {
		return nil, nil, err
	}
	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, nil, err
	}
	if err := exp.Setup(sys, integ, registry.DefaultMetrics(sys, cfg.Threshold)); err != nil {
		return nil, nil, err
	}
	return exp, sys, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	return executeAndStore(cfg)
}

func runGCM(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, "gcm")
	if err != nil {
		return err
	}

	if fromFit != "" {
		st := storage.New(dataDir)
		fc, err := st.LoadClosure(fromFit)
		if err != nil {
			return fmt.Errorf("no fitted closure in %s: %w", fromFit, err)
		}
		cfg.Closure = "poly"
		cfg.ClosureParams.Coeffs = fc.Coeffs
		fmt.Printf("using degree-%d closure fitted from %s (rmse %.4f)\n", fc.Degree, fc.FitFrom, fc.RMSE)
	}
	return executeAndStore(cfg)
}

func executeAndStore(cfg *config.Config) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, _, err := buildExperiment(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s (k=%d j=%d f=%g)...\n", cfg.Model, cfg.Params.K, cfg.Params.J, cfg.Params.F)
	start := time.Now()

	tr, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Model:       cfg.Model,
		Seed:        cfg.Seed,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		SampleEvery: cfg.SampleEvery,
		Integrator:  cfg.Integrator,
		Closure:     cfg.Closure,
		Params:      cfg.Params,
	}, tr)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d (valid %d)\n", tr.Len(), tr.Valid)
	if tr.Diverged {
		fmt.Printf("diverged at t=%.3f\n", tr.LastTime)
	}
	if len(tr.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range tr.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}
	return nil
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tCLOSURE\tDIVERGED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.4f\t%s\t%s\t%v\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Closure,
			run.Diverged,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Valid == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s, samples: %d\n\n", meta.Model, tr.Valid)

	n := plotVars
	if n > meta.Params.K {
		n = meta.Params.K
	}
	series := make([][]float64, 0, n)
	labels := make([]string, 0, n)
	for k := 0; k < n; k++ {
		series = append(series, tr.Series(k))
		labels = append(labels, fmt.Sprintf("x%d", k))
	}

	fmt.Println(viz.PlotSeries(series, labels, 80, 12))
	return nil
}

func hovmollerRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Valid == 0 {
		return fmt.Errorf("no data to plot")
	}

	field := make([][]float64, tr.Valid)
	for i := 0; i < tr.Valid; i++ {
		field[i] = tr.X[i]
	}
	fmt.Print(viz.Hovmoller(tr.Times[:tr.Valid], field, hovRows))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	data := tr.Series(0)
	if len(data) < 4 {
		return fmt.Errorf("not enough samples")
	}

	fmt.Printf("spectral analysis: %s\n", meta.ID)
	fmt.Printf("model: %s, samples: %d\n\n", meta.Model, len(data))

	ps := analysis.PowerSpectrum(data)
	graph := asciigraph.Plot(ps[:len(ps)/4],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (x0)"),
	)
	fmt.Println(graph)
	fmt.Println()

	span := tr.LastTime
	if span <= 0 {
		span = meta.Duration
	}
	freq := analysis.DominantFrequency(data, span)
	fmt.Printf("dominant frequency: %.3f cycles per time unit\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f time units\n", 1.0/freq)
	}
	return nil
}

func fitClosure(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if meta.Model != "twoscale" {
		return fmt.Errorf("closure fitting needs a twoscale run, got %s", meta.Model)
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if tr.Y == nil {
		return fmt.Errorf("run %s has no fast states; rerun with --record-fast", runID)
	}

	truth := model.NewTwoScale(meta.Params)

	var xs, ys []float64
	for i := 0; i < tr.Valid && i < len(tr.Y); i++ {
		full := make(dynamo.State, 0, len(tr.X[i])+len(tr.Y[i]))
		full = append(full, tr.X[i]...)
		full = append(full, tr.Y[i]...)
		coupling := truth.CouplingTerms(full)
		for k, c := range coupling {
			xs = append(xs, tr.X[i][k])
			ys = append(ys, c)
		}
	}

	coeffs, err := fit.Polynomial(xs, ys, degree)
	if err != nil {
		return err
	}
	rmse := fit.RMSE(coeffs, xs, ys)

	if err := st.SaveClosure(runID, storage.FittedClosure{
		Degree:  degree,
		Coeffs:  coeffs,
		RMSE:    rmse,
		Samples: len(xs),
		FitFrom: runID,
	}); err != nil {
		return err
	}

	fmt.Printf("fit %d pairs from %s\n", len(xs), runID)
	fmt.Printf("degree: %d\n", degree)
	fmt.Printf("coeffs (highest first): %s\n", formatCoeffs(coeffs))
	fmt.Printf("rmse: %.6f\n", rmse)
	fmt.Printf("\nuse with: l96lab run gcm --closure poly --coeffs %s\n", joinCoeffs(coeffs))
	return nil
}

func formatCoeffs(coeffs []float64) string {
	parts := make([]string, len(coeffs))
	for i, c := range coeffs {
		parts[i] = fmt.Sprintf("%.5f", c)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func joinCoeffs(coeffs []float64) string {
	parts := make([]string, len(coeffs))
	for i, c := range coeffs {
		parts[i] = strconv.FormatFloat(c, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func compareRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	truth, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	gcm, err := st.LoadTrajectory(args[1])
	if err != nil {
		return err
	}

	stats, err := analysis.Compare(truth, gcm)
	if err != nil {
		return err
	}

	fmt.Printf("comparing %s against %s over %d samples\n\n", args[1], args[0], stats.N)
	fmt.Printf("rmse:        %.6f\n", stats.RMSE)
	fmt.Printf("bias:        %.6f\n", stats.Bias)
	fmt.Printf("correlation: %.6f\n", stats.Corr)

	growth := analysis.ErrorGrowth(truth, gcm)
	if len(growth) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(growth,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("error growth"),
		))
	}
	return nil
}

func sweepForcing(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	_, sys, err := buildExperiment(cfg)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	src, ok := sys.(interface{ DefaultState() dynamo.State })
	if !ok {
		return fmt.Errorf("model provides no initial condition")
	}

	fmt.Printf("sweeping forcing %.2f..%.2f in %d steps\n\n", sweepMin, sweepMax, sweepN)
	points := analysis.ForcingSweep(sys, integ, "f", sweepMin, sweepMax, sweepN, 0, src.DefaultState(), cfg.Dt, transient, record)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FORCING\tMEAN\tSTD\tMIN\tMAX")
	stds := make([]float64, 0, len(points))
	for _, p := range points {
		fmt.Fprintf(w, "%.3f\t%.4f\t%.4f\t%.4f\t%.4f\n", p.Param, p.Mean, p.Std, p.Min, p.Max)
		stds = append(stds, p.Std)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(stds) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(stds,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("std(x0) vs forcing"),
		))
	}
	return nil
}

func lyapunovRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	_, sys, err := buildExperiment(cfg)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	src, ok := sys.(interface{ DefaultState() dynamo.State })
	if !ok {
		return fmt.Errorf("model provides no initial condition")
	}

	lambda := analysis.LyapunovExponent(sys, integ, src.DefaultState(), cfg.Dt, cfg.Duration, perturbation)

	fmt.Printf("largest lyapunov exponent: %.4f\n", lambda)
	switch {
	case lambda > 0.01:
		fmt.Println("regime: chaotic")
	case lambda < -0.01:
		fmt.Println("regime: stable")
	default:
		fmt.Println("regime: marginal")
	}
	return nil
}

func tuneClosure(cmd *cobra.Command, args []string) error {
	truthID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(truthID)
	if err != nil {
		return err
	}
	truth, err := st.LoadTrajectory(truthID)
	if err != nil {
		return err
	}
	if truth.Valid == 0 {
		return fmt.Errorf("reference run has no valid samples")
	}

	fmt.Printf("tuning constant closure against %s (%d samples)\n", truthID, truth.Valid)

	search := optim.NewGridSearch([]string{"constant"}, [][]float64{optim.Linspace(tuneMin, tuneMax, tuneN)})
	best, score, err := search.Search(context.Background(), func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg := config.DefaultConfig()
		cfg.Model = "gcm"
		cfg.Integrator = integrator
		cfg.Closure = "constant"
		cfg.ClosureParams.Constant = params["constant"]
		cfg.Dt = dt
		cfg.SampleEvery = meta.SampleEvery
		cfg.Duration = meta.Duration
		cfg.Params = meta.Params
		cfg.Seed = meta.Seed

		exp, _, err := buildExperiment(cfg)
		if err != nil {
			return 0, err
		}
		tr, err := exp.Run(ctx)
		if err != nil {
			return 0, err
		}
		stats, err := analysis.Compare(truth, tr)
		if err != nil {
			return 0, err
		}
		return stats.RMSE, nil
	})
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no trial run completed")
	}

	fmt.Printf("best constant: %.4f (rmse %.6f)\n", best["constant"], score)
	fmt.Printf("\nuse with: l96lab run gcm --closure constant --constant %.4f\n", best["constant"])
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Valid == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range tr.X[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := 0; i < tr.Valid; i++ {
		row := []string{strconv.FormatFloat(tr.Times[i], 'f', 6, 64)}
		for _, val := range tr.X[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	out := struct {
		Meta  *storage.RunMetadata `json:"meta"`
		Times []float64            `json:"times"`
		X     []dynamo.State       `json:"x"`
	}{meta, tr.Times[:tr.Valid], tr.X[:tr.Valid]}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if tr.Valid == 0 {
		return fmt.Errorf("no data to render")
	}

	if svgHovmoller {
		field := make([][]float64, tr.Valid)
		for i := 0; i < tr.Valid; i++ {
			field[i] = tr.X[i]
		}
		fmt.Println(export.HovmollerSVG(field, svgWidth, svgHeight))
		return nil
	}

	n := plotVars
	if n > meta.Params.K {
		n = meta.Params.K
	}
	series := make([]export.Series, 0, n)
	for k := 0; k < n; k++ {
		series = append(series, export.Series{
			Label:  fmt.Sprintf("x%d", k),
			Values: tr.Series(k),
		})
	}
	fmt.Println(export.SeriesSVG(tr.Times[:tr.Valid], series, svgWidth, svgHeight))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	exp, sys, err := buildExperiment(cfg)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}

	x0, err := exp.InitialState()
	if err != nil {
		return err
	}

	m := viz.NewLive(sys, integ, x0, cfg.Dt, cfg.Threshold)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	// Validate the configuration once; member factories repeat the
	// same construction with per-member rngs.
	exp, _, err := buildExperiment(cfg)
	if err != nil {
		return err
	}
	x0, err := exp.InitialState()
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	var memberIdx int64
	factory := func() *sim.Runner {
		idx := atomic.AddInt64(&memberIdx, 1)
		rng := rand.New(rand.NewSource(cfg.Seed + idx))
		cl, _ := registry.GetClosure(cfg.Closure, cfg.ClosureParams, rng)
		sys, _ := registry.GetModel(cfg.Model, cfg.Params, cl)
		integ, _ := registry.GetIntegrator(cfg.Integrator)
		return sim.New(sys, integ)
	}

	fmt.Printf("running %d members of %s (spread %g)...\n", members, cfg.Model, spread)
	start := time.Now()

	ens := sim.NewEnsemble(factory, members, cfg.Seed, spread)
	trs, err := ens.Run(context.Background(), x0, cfg.RunConfig())
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MEMBER\tVALID\tDIVERGED\tFINAL_X0")
	finals := make([]float64, 0, len(trs))
	for i, tr := range trs {
		finalX0 := math.NaN()
		if tr.Valid > 0 {
			finalX0 = tr.X[tr.Valid-1][0]
			finals = append(finals, finalX0)
		}
		fmt.Fprintf(w, "%d\t%d\t%v\t%.4f\n", i, tr.Valid, tr.Diverged, finalX0)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(finals) > 1 {
		mean := stat.Mean(finals, nil)
		fmt.Printf("\nfinal x0 mean %.4f, std %.4f\n", mean, stat.StdDev(finals, nil))
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s (%d steps)\n", scenario.Name, len(scenario.Steps))
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}
	fmt.Println()

	results, err := automation.RunScenario(context.Background(), scenario, experiment.NewRegistry(), st)
	for _, r := range results {
		status := "ok"
		if r.Diverged {
			status = "diverged"
		}
		fmt.Printf("  %-12s %s  samples=%d  %s\n", r.Name, r.RunID, r.Samples, status)
	}
	return err
}

func benchModel(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	durations := []float64{1.0, 5.0, 10.0}
	dts := []float64{0.001, 0.005, 0.01}

	fmt.Printf("benchmarking %s (k=%d j=%d)\n\n", cfg.Model, cfg.Params.K, cfg.Params.J)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			trial := *cfg
			trial.Dt = step
			trial.Duration = dur
			trial.SampleEvery = step
			trial.Spinup = 0
			trial.Seed = 42

			exp, _, err := buildExperiment(&trial)
			if err != nil {
				return err
			}

			start := time.Now()
			tr, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(tr.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%.1f\t%.4f\t%d\t%v\t%.0f\n", dur, step, tr.StepsTaken, elapsed, stepsPerSec)
		}
	}
	return w.Flush()
}
