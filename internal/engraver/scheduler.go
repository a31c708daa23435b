package engraver

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/roach88/engraver/internal/layout"
	"github.com/roach88/engraver/internal/score"
)

// TaskID identifies a submission. Ids increase in submission order; 0 means
// no task.
type TaskID int64

// Task is one accepted submission. It is immutable once created.
type Task struct {
	ID          TaskID
	SubmittedAt time.Time

	snapshot *score.Score
	// snapErr is set when the snapshot could not be isolated. The task then
	// fails without running layout.
	snapErr error
}

// Stats is a consistent view of scheduler counters.
type Stats struct {
	Submitted int64 `json:"submitted"`

	// Completed counts executed tasks, successful or not.
	Completed int64 `json:"completed"`

	// Failed is the subset of Completed that produced no document.
	Failed int64 `json:"failed"`

	Skipped int64 `json:"skipped"`

	// QueueSize is 1 when a task is pending, else 0.
	QueueSize int `json:"queue_size"`

	// CurrentTaskID is the executing task, or 0.
	CurrentTaskID TaskID `json:"current_task_id,omitempty"`
}

// LayoutFunc computes a document from a snapshot.
type LayoutFunc func(*score.Score) (*layout.Document, error)

// Sink consumes task outcomes. Exactly one method is called per executed
// task; superseded tasks produce no call.
type Sink interface {
	// OnLayout receives the document of a successful task. A returned
	// error is logged as a delivery failure.
	OnLayout(id TaskID, doc *layout.Document) error

	// OnFailure receives the error of a failed task.
	OnFailure(id TaskID, err error)
}

// SinkFuncs adapts functions to the Sink interface. Nil fields are no-ops.
type SinkFuncs struct {
	Layout  func(id TaskID, doc *layout.Document) error
	Failure func(id TaskID, err error)
}

// OnLayout calls f.Layout.
func (f SinkFuncs) OnLayout(id TaskID, doc *layout.Document) error {
	if f.Layout == nil {
		return nil
	}
	return f.Layout(id, doc)
}

// OnFailure calls f.Failure.
func (f SinkFuncs) OnFailure(id TaskID, err error) {
	if f.Failure != nil {
		f.Failure(id, err)
	}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLayout replaces the layout function, e.g. for instrumentation.
func WithLayout(fn LayoutFunc) Option {
	return func(s *Scheduler) {
		s.layout = fn
	}
}

// WithDispatcher sets how sink callbacks are delivered. Default: Inline.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Scheduler) {
		s.dispatcher = d
	}
}

// WithClock sets the wall clock used for submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// Scheduler runs layout for the latest submitted score on one worker.
type Scheduler struct {
	layout     LayoutFunc
	sink       Sink
	dispatcher Dispatcher
	now        func() time.Time
	ids        idClock

	mu      sync.Mutex
	idle    *sync.Cond // Broadcast when running becomes false
	pending *Task
	current *Task
	running bool
	closed  bool
	stats   Stats

	wake     chan struct{} // Buffered, size 1; closed on shutdown
	worker   conc.WaitGroup
	workerID atomic.Uint64 // Goroutine id of the worker once it runs
	shutdown sync.Once
}

// New creates a scheduler and starts its worker.
func New(sink Sink, opts ...Option) *Scheduler {
	if sink == nil {
		sink = SinkFuncs{}
	}
	s := &Scheduler{
		layout:     layout.Engrave,
		sink:       sink,
		dispatcher: Inline{},
		now:        time.Now,
		wake:       make(chan struct{}, 1),
	}
	s.idle = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}

	s.worker.Go(s.loop)
	slog.Info("engraver started")
	return s
}

// Submit snapshots src and makes it the pending task, superseding any
// task that was pending. It never waits for the worker.
//
// The snapshot is taken on the calling goroutine. A snapshot failure does
// not fail Submit; the task is accepted and reported through
// Sink.OnFailure.
func (s *Scheduler) Submit(src score.Source) (TaskID, error) {
	if src == nil {
		return 0, ErrNilSource
	}
	snap, err := src.Snapshot()
	if err == nil && snap == nil {
		err = &score.IsolationError{Message: "source returned no snapshot"}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrClosed
	}
	task := &Task{
		ID:          s.ids.Next(),
		SubmittedAt: s.now(),
		snapshot:    snap,
		snapErr:     err,
	}
	superseded := s.pending
	s.pending = task
	s.stats.Submitted++
	if superseded != nil {
		s.stats.Skipped++
	}
	// Signal under the lock: Shutdown closes wake under the same lock.
	select {
	case s.wake <- struct{}{}:
	default:
	}
	s.mu.Unlock()

	slog.Debug("task submitted", "task_id", task.ID, "queue_size", 1)
	if superseded != nil {
		slog.Debug("task skipped",
			"superseded_id", superseded.ID,
			"superseding_id", task.ID,
		)
	}
	return task.ID, nil
}

// Stats returns a consistent snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

func (s *Scheduler) statsLocked() Stats {
	st := s.stats
	if s.pending != nil {
		st.QueueSize = 1
	}
	if s.current != nil {
		st.CurrentTaskID = s.current.ID
	}
	return st
}

// Shutdown stops accepting tasks, discards the pending task, waits for the
// executing task and then for the worker to exit. It is idempotent.
//
// When called from a sink callback running on the worker goroutine (the
// Inline dispatcher), Shutdown returns once the executing task has finished
// without joining the worker, which is the caller. From any other goroutine
// it also waits for in-flight Inline deliveries and for the worker to exit.
func (s *Scheduler) Shutdown() {
	s.shutdown.Do(func() {
		s.mu.Lock()
		s.closed = true
		dropped := s.pending
		s.pending = nil
		if dropped != nil {
			s.stats.Skipped++
		}
		close(s.wake)
		s.mu.Unlock()

		if dropped != nil {
			slog.Debug("task skipped", "superseded_id", dropped.ID, "reason", "shutdown")
		}
		slog.Info("engraver stopping")
	})

	s.mu.Lock()
	for s.running {
		s.idle.Wait()
	}
	s.mu.Unlock()

	if id := goroutineID(); id != 0 && id == s.workerID.Load() {
		return
	}
	if r := s.worker.WaitAndRecover(); r != nil {
		slog.Error("engraver worker panicked", "panic", r.Value, "stack", string(r.Stack))
	}
}

// loop is the worker goroutine.
func (s *Scheduler) loop() {
	s.workerID.Store(goroutineID())
	for {
		task, ok := s.next()
		if !ok {
			slog.Info("engraver stopped")
			return
		}
		s.execute(task)
	}
}

// next blocks until a task is pending or the scheduler is closed, then
// moves the pending task to current.
func (s *Scheduler) next() (*Task, bool) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil, false
		}
		if t := s.pending; t != nil {
			s.pending = nil
			s.current = t
			s.running = true
			s.mu.Unlock()
			return t, true
		}
		s.mu.Unlock()

		<-s.wake
	}
}

func (s *Scheduler) execute(t *Task) {
	started := s.now()
	slog.Debug("task started", "task_id", t.ID, "wait", started.Sub(t.SubmittedAt))

	doc, err := s.run(t)
	elapsed := s.now().Sub(started)

	s.mu.Lock()
	s.current = nil
	s.running = false
	s.stats.Completed++
	if err != nil {
		s.stats.Failed++
	}
	st := s.statsLocked()
	s.idle.Broadcast()
	s.mu.Unlock()

	slog.Info("task completed",
		"task_id", t.ID,
		"success", err == nil,
		"duration", elapsed,
		"submitted", st.Submitted,
		"completed", st.Completed,
		"skipped", st.Skipped,
		"failed", st.Failed,
	)

	if err != nil {
		s.logFailure(t, err)
		s.deliver(t.ID, func() error {
			s.sink.OnFailure(t.ID, err)
			return nil
		})
		return
	}
	s.deliver(t.ID, func() error {
		return s.sink.OnLayout(t.ID, doc)
	})
}

// run computes the layout of a task. Panics in the layout function are
// converted to errors so one bad task never stops the worker.
func (s *Scheduler) run(t *Task) (*layout.Document, error) {
	if t.snapErr != nil {
		return nil, &TaskError{TaskID: t.ID, Stage: "snapshot", Err: t.snapErr}
	}

	var (
		doc *layout.Document
		err error
		pc  panics.Catcher
	)
	pc.Try(func() {
		doc, err = s.layout(t.snapshot)
	})
	if r := pc.Recovered(); r != nil {
		err = r.AsError()
	}
	if err == nil && doc == nil {
		err = fmt.Errorf("layout returned no document")
	}
	if err != nil {
		return nil, &TaskError{TaskID: t.ID, Stage: "layout", Err: err}
	}
	return doc, nil
}

func (s *Scheduler) logFailure(t *Task, err error) {
	attrs := []any{"task_id", t.ID, "error", err}
	if snap := t.snapshot; snap != nil {
		attrs = append(attrs,
			"staves", len(snap.Staves),
			"events", snap.EventCount(),
			"length", snap.Length(),
		)
	}
	slog.Error("task failed", attrs...)
}

// deliver hands fn to the dispatcher. Sink errors and panics become
// DeliveryErrors, which are logged and otherwise ignored.
func (s *Scheduler) deliver(id TaskID, fn func() error) {
	call := func() {
		var (
			err error
			pc  panics.Catcher
		)
		pc.Try(func() { err = fn() })
		if r := pc.Recovered(); r != nil {
			s.logDelivery(&DeliveryError{TaskID: id, Panic: r.Value, Err: r.AsError()})
			return
		}
		if err != nil {
			s.logDelivery(&DeliveryError{TaskID: id, Err: err})
		}
	}

	if err := s.dispatcher.Dispatch(call); err != nil {
		s.logDelivery(&DeliveryError{TaskID: id, Err: err})
	}
}

func (s *Scheduler) logDelivery(err *DeliveryError) {
	slog.Warn("delivery failed", "task_id", err.TaskID, "error", err)
}
