package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/engraver/internal/engraver"
)

// DefaultHistoryLimit bounds History when limit is not positive.
const DefaultHistoryLimit = 20

// History returns the most recent outcomes across all runs, newest first.
func (j *Journal) History(ctx context.Context, limit int) ([]Outcome, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, task_id, status, digest, pages, lines, events, error, recorded_at
		FROM outcomes
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return scanOutcomes(rows)
}

// Outcomes returns the outcomes of one run in task order.
func (j *Journal) Outcomes(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, task_id, status, digest, pages, lines, events, error, recorded_at
		FROM outcomes
		WHERE run_id = ?
		ORDER BY task_id ASC, seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()
	return scanOutcomes(rows)
}

// ReadRun returns a run by id. Returns sql.ErrNoRows (wrapped) if it does
// not exist.
func (j *Journal) ReadRun(ctx context.Context, id string) (Run, error) {
	var (
		run     Run
		started int64
	)
	err := j.db.QueryRowContext(ctx, `
		SELECT id, source, started_at FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.Source, &started)
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	run.StartedAt = time.UnixMilli(started).UTC()
	return run, nil
}

func scanOutcomes(rows *sql.Rows) ([]Outcome, error) {
	out := []Outcome{}
	for rows.Next() {
		var (
			o        Outcome
			taskID   int64
			status   string
			recorded int64
		)
		if err := rows.Scan(
			&o.RunID, &taskID, &status, &o.Digest,
			&o.Pages, &o.Lines, &o.Events, &o.Error, &recorded,
		); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.TaskID = engraver.TaskID(taskID)
		o.Status = Status(status)
		o.RecordedAt = time.UnixMilli(recorded).UTC()
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return out, nil
}
