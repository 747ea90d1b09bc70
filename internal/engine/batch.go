package engine

import (
	"context"
	"fmt"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stormblood-bard-sim/internal/character"
	"stormblood-bard-sim/internal/report"
)

const tracerName = "stormblood-bard-sim/engine"

// Scenario is the cast of one run. Everything in it is mutated by the run,
// so a factory must build a fresh one per iteration.
type Scenario struct {
	Combatants []*Combatant
	// Bystanders are actors that take part without deciding, e.g. targets.
	Bystanders []*character.Actor
}

// Factory builds the scenario of one iteration.
type Factory func(iteration int) (*Scenario, error)

// Batch describes many independent runs of the same scenario.
type Batch struct {
	Config
	Iterations int
	Workers    int
}

// BatchStats sums the run statistics of a batch.
type BatchStats struct {
	Runs    int
	Events  int
	Actions int
	Illegal int
	Desyncs int
}

// RunBatch plays b.Iterations runs on up to b.Workers goroutines. Run i is
// seeded with Seed+i, so results do not depend on worker scheduling. Every
// finished run is added to collector.
func RunBatch(ctx context.Context, b Batch, build Factory, log *zap.Logger, collector *report.Collector) (BatchStats, error) {
	if b.Iterations <= 0 {
		return BatchStats{}, fmt.Errorf("iterations must be positive, got %d", b.Iterations)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if collector == nil {
		collector = report.NewCollector()
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "simulate.batch")
	defer span.End()
	span.SetAttributes(
		attribute.Int("sim.iterations", b.Iterations),
		attribute.Int("sim.workers", workers),
		attribute.Int64("sim.seed", b.Seed),
		attribute.Float64("sim.combat_seconds", b.CombatLength.Seconds()),
	)

	results := make([]RunStats, b.Iterations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < b.Iterations; i++ {
		i := i
		g.Go(func() error {
			stats, err := runOne(gctx, b.Config, i, build, log, collector)
			if err != nil {
				return fmt.Errorf("iteration %d: %w", i, err)
			}
			results[i] = stats
			return nil
		})
	}
	err := g.Wait()

	var total BatchStats
	for _, r := range results {
		total.Events += r.Events
		total.Actions += r.Actions
		total.Illegal += r.Illegal
		total.Desyncs += r.Desyncs
	}
	total.Runs = collector.Len()
	span.SetAttributes(attribute.Int("sim.desyncs", total.Desyncs))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return total, err
	}
	log.Info("batch complete",
		zap.Int("iterations", b.Iterations),
		zap.Int("events", total.Events),
		zap.Int("desyncs", total.Desyncs))
	return total, nil
}

func runOne(ctx context.Context, base Config, iteration int, build Factory, log *zap.Logger, collector *report.Collector) (RunStats, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "simulate.iteration",
		trace.WithAttributes(attribute.Int("sim.iteration", iteration)))
	defer span.End()

	scenario, err := build(iteration)
	if err != nil {
		span.RecordError(err)
		return RunStats{}, err
	}

	cfg := base
	cfg.Seed = base.Seed + int64(iteration)
	cfg.Iteration = iteration
	rec := report.NewRecorder(iteration, cfg.CombatLength)
	sim := New(cfg, log, rec)
	for _, c := range scenario.Combatants {
		sim.AddCombatant(c)
	}
	for _, a := range scenario.Bystanders {
		sim.AddActor(a)
	}

	stats, err := sim.Run(ctx)
	for _, c := range scenario.Combatants {
		if closer, ok := c.Decider.(interface{ Close() }); ok {
			closer.Close()
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return stats, err
	}
	rec.Desyncs = stats.Desyncs
	collector.Add(rec)
	span.SetAttributes(
		attribute.Int("sim.damage", rec.TotalDamage()),
		attribute.Int("sim.events", stats.Events),
		attribute.Int("sim.desyncs", stats.Desyncs),
	)
	return stats, nil
}
