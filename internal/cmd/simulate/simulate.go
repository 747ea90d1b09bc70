// Package simulate implements the simulator command: load a profile, run a
// batch and report.
package simulate

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"stormblood-bard-sim/internal/config"
	"stormblood-bard-sim/internal/engine"
	"stormblood-bard-sim/internal/logging"
	"stormblood-bard-sim/internal/report"
	"stormblood-bard-sim/internal/scenario"
	"stormblood-bard-sim/internal/store"
	"stormblood-bard-sim/internal/telemetry"
)

const serviceName = "stormblood-bard-sim"

// Options are the command line settings. Zero values keep what the profile
// says.
type Options struct {
	Profile    string
	Iterations int
	Seed       int64
	Label      string
	NoEnv      bool
}

// ParseOptions parses flags into Options.
func ParseOptions(fs *flag.FlagSet, args []string) (Options, error) {
	var opts Options
	fs.StringVar(&opts.Profile, "config", "configs/profile.yaml", "path to the profile (yaml or toml)")
	fs.IntVar(&opts.Iterations, "iterations", 0, "iterations (0 = profile value)")
	fs.Int64Var(&opts.Seed, "seed", 0, "base seed (0 = profile value, random when both are 0)")
	fs.StringVar(&opts.Label, "label", "", "label stored with the results (defaults to the profile name)")
	fs.BoolVar(&opts.NoEnv, "no-env", false, "ignore SIM_* environment overrides")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Run executes the simulator command.
func Run(ctx context.Context, opts Options, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	cfg, err := config.Load(opts.Profile)
	if err != nil {
		return err
	}
	if !opts.NoEnv {
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
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

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.Output.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	builder, err := scenario.New(cfg, log)
	if err != nil {
		return err
	}

	batch := cfg.Batch()
	log.Info("simulating",
		zap.String("profile", opts.Profile),
		zap.Int("iterations", batch.Iterations),
		zap.Int64("seed", batch.Seed),
		zap.Duration("combat", batch.CombatLength))

	collector := report.NewCollector()
	start := time.Now()
	if _, err := engine.RunBatch(ctx, batch, builder.Factory(), log, collector); err != nil {
		return err
	}
	log.Info("batch finished", zap.Duration("elapsed", time.Since(start)))

	runs := collector.Runs()
	sum := report.Summarize(runs)
	report.Print(out, sum, cfg.Language())

	if err := writeCSV(cfg.Output.DamageCSV, runs, report.WriteDamageCSV); err != nil {
		return fmt.Errorf("damage csv: %w", err)
	}
	if err := writeCSV(cfg.Output.AuraCSV, runs, report.WriteAuraCSV); err != nil {
		return fmt.Errorf("aura csv: %w", err)
	}

	if cfg.Output.ResultsDSN != "" {
		label := opts.Label
		if label == "" {
			label = cfg.Character.Name
		}
		id, err := save(ctx, cfg.Output.ResultsDSN, label, batch.Seed, sum)
		if err != nil {
			return err
		}
		log.Info("results saved", zap.Int64("batch", id), zap.String("label", label))
	}
	return nil
}

func writeCSV(path string, runs []*report.Recorder, write func(io.Writer, []*report.Recorder) error) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, runs); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func save(ctx context.Context, dsn, label string, seed int64, sum *report.Summary) (id int64, err error) {
	st, err := store.Open(ctx, dsn)
	if err != nil {
		return 0, fmt.Errorf("open results store: %w", err)
	}
	defer func() {
		err = errors.Join(err, st.Close())
	}()
	id, err = st.Save(ctx, label, seed, sum)
	if err != nil {
		return 0, fmt.Errorf("save results: %w", err)
	}
	return id, nil
}
