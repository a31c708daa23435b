package journal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/engraver/internal/engraver"
	"github.com/roach88/engraver/internal/layout"
)

// recordTimeout bounds a single journal write from a sink callback.
const recordTimeout = 5 * time.Second

// Recorder is an engraver.Sink that journals every outcome before
// forwarding it to the next sink.
type Recorder struct {
	journal *Journal
	runID   string
	next    engraver.Sink
}

// NewRecorder wraps next. A nil next only records.
func NewRecorder(j *Journal, run Run, next engraver.Sink) *Recorder {
	if next == nil {
		next = engraver.SinkFuncs{}
	}
	return &Recorder{journal: j, runID: run.ID, next: next}
}

// OnLayout records the document summary and forwards the document. A
// journal error does not stop forwarding; it is returned alongside any
// error of the next sink.
func (r *Recorder) OnLayout(id engraver.TaskID, doc *layout.Document) error {
	var recErr error
	o, err := Succeeded(r.runID, id, doc)
	if err != nil {
		recErr = err
	} else {
		recErr = r.record(o)
	}
	return errors.Join(recErr, r.next.OnLayout(id, doc))
}

// OnFailure records the failure and forwards it.
func (r *Recorder) OnFailure(id engraver.TaskID, err error) {
	if recErr := r.record(Failed(r.runID, id, err)); recErr != nil {
		slog.Warn("journal write failed", "task_id", id, "run_id", r.runID, "error", recErr)
	}
	r.next.OnFailure(id, err)
}

func (r *Recorder) record(o Outcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	return r.journal.Record(ctx, o)
}
