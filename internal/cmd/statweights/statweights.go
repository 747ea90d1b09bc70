// Package statweights estimates how much damage one point of each
// attribute is worth, by central difference over shared-seed batches, or
// sweeps one attribute and writes the damage curve as CSV.
package statweights

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stormblood-bard-sim/internal/config"
	"stormblood-bard-sim/internal/engine"
	"stormblood-bard-sim/internal/logging"
	"stormblood-bard-sim/internal/report"
	"stormblood-bard-sim/internal/scenario"
	"stormblood-bard-sim/internal/stats"
)

// Options are the command line settings.
type Options struct {
	Profile     string
	Iterations  int
	Seed        int64
	Delta       int
	Concurrency int
	Verbose     bool

	// Sweep mode.
	Stat      string
	Stop      int
	Step      int
	OutputDir string
}

// ParseOptions parses flags into Options.
func ParseOptions(fs *flag.FlagSet, args []string) (Options, error) {
	var opts Options
	fs.StringVar(&opts.Profile, "config", "configs/profile.yaml", "path to the profile")
	fs.IntVar(&opts.Iterations, "iterations", 0, "iterations per batch (0 = profile value)")
	fs.Int64Var(&opts.Seed, "seed", 0, "shared base seed (0 = profile value, random when both are 0)")
	fs.IntVar(&opts.Delta, "delta", 50, "points added and removed per attribute")
	fs.IntVar(&opts.Concurrency, "concurrency", 0, "concurrent batches (0 = num CPU)")
	fs.BoolVar(&opts.Verbose, "verbose", false, "show plus/minus DPS columns")
	fs.StringVar(&opts.Stat, "stat", "", "attribute to sweep (e.g. critical_hit); runs sweep mode instead of weights")
	fs.IntVar(&opts.Stop, "stop", 500, "sweep: last bonus point value")
	fs.IntVar(&opts.Step, "step", 25, "sweep: bonus points between samples")
	fs.StringVar(&opts.OutputDir, "output-dir", "output/stat_curves", "sweep: directory for the CSV curve")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// weighted are the attributes a bard's damage depends on.
var weighted = []stats.Attribute{
	stats.Dexterity,
	stats.CriticalHit,
	stats.DirectHit,
	stats.Determination,
	stats.SkillSpeed,
}

type weightResult struct {
	attr     stats.Attribute
	weight   float64
	dpsPlus  float64
	dpsMinus float64
}

type runner struct {
	builder *scenario.Builder
	batch   engine.Batch
	log     *zap.Logger
	source  string
}

// dps runs one batch with extra statistics and returns the player's mean
// damage per second.
func (r *runner) dps(ctx context.Context, extra map[stats.Attribute]int) (float64, error) {
	collector := report.NewCollector()
	b := r.builder.WithBonus(extra)
	if _, err := engine.RunBatch(ctx, r.batch, b.Factory(), r.log, collector); err != nil {
		return 0, err
	}
	sum := report.Summarize(collector.Runs())
	return sum.DPS[r.source].Mean, nil
}

// Run executes the stat weights command.
func Run(ctx context.Context, opts Options, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if opts.Delta <= 0 {
		return fmt.Errorf("delta must be positive, got %d", opts.Delta)
	}
	cfg, err := config.Load(opts.Profile)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if opts.Iterations > 0 {
		cfg.Simulation.Iterations = opts.Iterations
	}
	if opts.Seed != 0 {
		cfg.Simulation.Seed = opts.Seed
	}
	if cfg.Simulation.Seed == 0 {
		cfg.Simulation.Seed = time.Now().UnixNano()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	builder, err := scenario.New(cfg, log)
	if err != nil {
		return err
	}
	batch := cfg.Batch()
	// Batches run side by side, so each one stays on a single worker.
	batch.Workers = 1
	r := &runner{
		builder: builder,
		batch:   batch,
		log:     log.WithOptions(zap.IncreaseLevel(zap.WarnLevel)),
		source:  cfg.Character.Name,
	}

	if opts.Stat != "" {
		return r.sweep(ctx, opts, concurrency, out)
	}
	return r.weights(ctx, opts, concurrency, out)
}

func (r *runner) weights(ctx context.Context, opts Options, concurrency int, out io.Writer) error {
	var baseline float64
	results := make([]weightResult, len(weighted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	g.Go(func() error {
		var err error
		baseline, err = r.dps(gctx, nil)
		return err
	})
	for i, attr := range weighted {
		i, attr := i, attr
		results[i].attr = attr
		g.Go(func() error {
			dps, err := r.dps(gctx, map[stats.Attribute]int{attr: opts.Delta})
			results[i].dpsPlus = dps
			return err
		})
		g.Go(func() error {
			dps, err := r.dps(gctx, map[stats.Attribute]int{attr: -opts.Delta})
			results[i].dpsMinus = dps
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i := range results {
		results[i].weight = (results[i].dpsPlus - results[i].dpsMinus) / float64(2*opts.Delta)
	}

	fmt.Fprintf(out, "Stat Weights (central diff, shared seed %d)\n", r.batch.Seed)
	fmt.Fprintf(out, "Iterations: %d, Duration: %.0fs\n\n", r.batch.Iterations, r.batch.CombatLength.Seconds())
	fmt.Fprintf(out, "Baseline DPS: %.2f\n\n", baseline)

	w := tabWriter(out)
	if opts.Verbose {
		fmt.Fprintf(w, "Stat\tDelta\tDPS/Point\tPlus DPS\tMinus DPS\n")
	} else {
		fmt.Fprintf(w, "Stat\tDelta\tDPS/Point\n")
	}
	for _, res := range results {
		if opts.Verbose {
			fmt.Fprintf(w, "%s\t±%d\t%.4f\t%.2f\t%.2f\n", res.attr, opts.Delta, res.weight, res.dpsPlus, res.dpsMinus)
		} else {
			fmt.Fprintf(w, "%s\t±%d\t%.4f\n", res.attr, opts.Delta, res.weight)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	primary := results[0].weight
	if primary == 0 {
		return nil
	}
	nw := tabWriter(out)
	fmt.Fprintf(nw, "\nNormalized (%s = 1.0)\n", results[0].attr)
	fmt.Fprintf(nw, "Stat\tWeight\n")
	for _, res := range results {
		fmt.Fprintf(nw, "%s\t%.3f\n", res.attr, res.weight/primary)
	}
	return nw.Flush()
}

type sweepPoint struct {
	bonus int
	dps   float64
}

func (r *runner) sweep(ctx context.Context, opts Options, concurrency int, out io.Writer) error {
	attr, err := stats.ParseAttribute(opts.Stat)
	if err != nil {
		return err
	}
	if opts.Step <= 0 {
		return fmt.Errorf("step must be > 0 (got %d)", opts.Step)
	}
	if opts.Stop <= 0 {
		return fmt.Errorf("stop must be > 0 (got %d)", opts.Stop)
	}

	var points []sweepPoint
	for v := 0; v <= opts.Stop; v += opts.Step {
		points = append(points, sweepPoint{bonus: v})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range points {
		i := i
		g.Go(func() error {
			dps, err := r.dps(gctx, map[stats.Attribute]int{attr: points[i].bonus})
			points[i].dps = dps
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	outPath := filepath.Join(opts.OutputDir, attr.String()+".csv")
	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", outPath, err)
	}
	if err := writeCurve(file, attr, points); err != nil {
		return errors.Join(err, file.Close())
	}
	if err := file.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Sweep complete (%s): %d points, seed=%d, output=%s\n", attr, len(points), r.batch.Seed, outPath)
	return nil
}

func writeCurve(w io.Writer, attr stats.Attribute, points []sweepPoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{attr.String() + "_bonus", "dps", "dps_per_point"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, p := range points {
		record := []string{fmt.Sprintf("%d", p.bonus), fmt.Sprintf("%.4f", p.dps), ""}
		if i > 0 {
			prev := points[i-1]
			record[2] = fmt.Sprintf("%.6f", (p.dps-prev.dps)/float64(p.bonus-prev.bonus))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// tabWriter creates a tab-aligned writer for consistent table output.
func tabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
