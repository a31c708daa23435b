package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/engraver/internal/engraver"
	"github.com/roach88/engraver/internal/layout"
)

// Status is the outcome of an executed task.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Run is one engraving session.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	StartedAt time.Time `json:"started_at"`
}

// Outcome is the recorded result of one task.
type Outcome struct {
	RunID      string          `json:"run_id"`
	TaskID     engraver.TaskID `json:"task_id"`
	Status     Status          `json:"status"`
	Digest     string          `json:"digest,omitempty"`
	Pages      int             `json:"pages"`
	Lines      int             `json:"lines"`
	Events     int             `json:"events"`
	Error      string          `json:"error,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// BeginRun inserts a new run for source and returns it.
func (j *Journal) BeginRun(ctx context.Context, source string) (Run, error) {
	run := Run{
		ID:        NewRunID(),
		Source:    source,
		StartedAt: j.now().UTC(),
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, started_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Source, run.StartedAt.UnixMilli())
	if err != nil {
		return Run{}, fmt.Errorf("begin run: %w", err)
	}
	return run, nil
}

// Record inserts an outcome. A second outcome for the same run and task is
// silently ignored. RecordedAt defaults to the journal clock.
func (j *Journal) Record(ctx context.Context, o Outcome) error {
	if o.Status != StatusOK && o.Status != StatusFailed {
		return fmt.Errorf("record outcome: invalid status %q", o.Status)
	}
	if o.RecordedAt.IsZero() {
		o.RecordedAt = j.now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO outcomes
		(run_id, task_id, status, digest, pages, lines, events, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, task_id) DO NOTHING
	`,
		o.RunID,
		int64(o.TaskID),
		string(o.Status),
		o.Digest,
		o.Pages,
		o.Lines,
		o.Events,
		o.Error,
		o.RecordedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// Succeeded builds the outcome of a successful task from its document.
func Succeeded(runID string, id engraver.TaskID, doc *layout.Document) (Outcome, error) {
	sum, err := doc.Summarize()
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		RunID:  runID,
		TaskID: id,
		Status: StatusOK,
		Digest: sum.Digest,
		Pages:  sum.Pages,
		Lines:  sum.Lines,
		Events: sum.Events,
	}, nil
}

// Failed builds the outcome of a failed task.
func Failed(runID string, id engraver.TaskID, err error) Outcome {
	o := Outcome{RunID: runID, TaskID: id, Status: StatusFailed}
	if err != nil {
		o.Error = err.Error()
	}
	return o
}
