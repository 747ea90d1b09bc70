package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stormblood-bard-sim/internal/report"
)

// Batch identifies a stored summary.
type Batch struct {
	ID            int64
	CreatedAt     time.Time
	Label         string
	Iterations    int
	CombatSeconds float64
	Seed          int64
	Desyncs       int
}

// SourceDPS is one source's stored damage-per-second distribution.
type SourceDPS struct {
	Source string
	report.Distribution
}

// Save writes a summary under label and returns the new batch id.
func (s *Store) Save(ctx context.Context, label string, seed int64, sum *report.Summary) (int64, error) {
	if sum == nil {
		return 0, fmt.Errorf("save batch: nil summary")
	}
	created := time.Now().UTC()
	id := created.UnixNano()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(
		`INSERT INTO batches (id, created_at, label, iterations, combat_seconds, seed, desyncs)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		id, created.UnixMilli(), label, sum.Iterations, sum.CombatLength.Seconds(), seed, sum.Desyncs,
	); err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}

	for _, source := range sum.Sources {
		d := sum.DPS[source]
		if _, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO batch_dps (batch_id, source, mean, stddev, min, max) VALUES (?, ?, ?, ?, ?, ?)`),
			id, source, d.Mean, d.StdDev, d.Min, d.Max,
		); err != nil {
			return 0, fmt.Errorf("insert dps %s: %w", source, err)
		}
	}

	for _, row := range sum.Actions {
		if _, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO batch_actions (batch_id, source, action, dot, auto_attack, hits, total, per_run, crit_rate, direct_rate)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			id, row.Source, row.Action, flag(row.Dot), flag(row.AutoAttack), row.Count, row.Total, row.PerRun, row.CritRate, row.DHRate,
		); err != nil {
			return 0, fmt.Errorf("insert action %s: %w", row.Action, err)
		}
	}

	for _, row := range sum.Auras {
		if _, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO batch_auras (batch_id, target, aura, uptime_pct, applies, refreshes, consumes)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`),
			id, row.Target, row.Aura, row.UptimePct, row.Applies, row.Refreshes, row.Consumes,
		); err != nil {
			return 0, fmt.Errorf("insert aura %s: %w", row.Aura, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// Batches lists stored batches, newest first.
func (s *Store) Batches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, label, iterations, combat_seconds, seed, desyncs
		 FROM batches ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var (
			b       Batch
			created int64
		)
		if err := rows.Scan(&b.ID, &created, &b.Label, &b.Iterations, &b.CombatSeconds, &b.Seed, &b.Desyncs); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, b)
	}
	return out, rows.Err()
}

// DPS returns the per-source distributions of batch id.
func (s *Store) DPS(ctx context.Context, id int64) ([]SourceDPS, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT source, mean, stddev, min, max FROM batch_dps WHERE batch_id = ? ORDER BY source`), id)
	if err != nil {
		return nil, fmt.Errorf("query dps: %w", err)
	}
	defer rows.Close()

	var out []SourceDPS
	for rows.Next() {
		var d SourceDPS
		if err := rows.Scan(&d.Source, &d.Mean, &d.StdDev, &d.Min, &d.Max); err != nil {
			return nil, fmt.Errorf("scan dps: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Actions returns the stored action rows of batch id, highest total first.
func (s *Store) Actions(ctx context.Context, id int64) ([]report.ActionRow, error) {
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT source, action, dot, auto_attack, hits, total, per_run, crit_rate, direct_rate
		 FROM batch_actions WHERE batch_id = ? ORDER BY total DESC, action`), id)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []report.ActionRow
	for rows.Next() {
		var (
			r         report.ActionRow
			dot, auto int
		)
		if err := rows.Scan(&r.Source, &r.Action, &dot, &auto, &r.Count, &r.Total, &r.PerRun, &r.CritRate, &r.DHRate); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		r.Dot, r.AutoAttack = dot != 0, auto != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) exists(ctx context.Context, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM batches WHERE id = ?`), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("load batch %d: %w", id, err)
	}
	return nil
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
