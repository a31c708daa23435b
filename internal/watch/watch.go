// Package watch re-engraves a score file whenever it changes on disk.
//
// A Watcher observes the directory containing the file, so editors that
// save by writing a temporary file and renaming it over the original are
// seen as a Create of the watched name. Events are debounced; the
// scheduler's supersede rule collapses whatever bursts remain.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roach88/engraver/internal/engraver"
	"github.com/roach88/engraver/internal/score"
	"github.com/roach88/engraver/internal/scorefile"
)

// DefaultDebounce is the quiet period after the last file event before the
// score is reloaded.
const DefaultDebounce = 50 * time.Millisecond

// Submitter accepts layout requests. *engraver.Scheduler implements it.
type Submitter interface {
	Submit(src score.Source) (engraver.TaskID, error)
}

// LoadFunc reads a score from path.
type LoadFunc func(path string) (*score.Score, error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period. Zero reloads on every event.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithLoader replaces scorefile.Load.
func WithLoader(fn LoadFunc) Option {
	return func(w *Watcher) {
		w.load = fn
	}
}

// WithErrorHandler is called with every reload or submit error. The last
// successfully loaded score stays live.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher reloads one score file and submits it for layout.
type Watcher struct {
	path     string
	sub      Submitter
	live     *score.Live
	load     LoadFunc
	debounce time.Duration
	onError  func(error)

	reloads  atomic.Int64
	failures atomic.Int64
}

// New creates a watcher for path. Nothing happens until Run.
func New(path string, sub Submitter, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		sub:      sub,
		live:     score.NewLive(nil),
		load:     scorefile.Load,
		debounce: DefaultDebounce,
		onError:  func(error) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Live returns the most recently loaded score.
func (w *Watcher) Live() *score.Live {
	return w.live
}

// Reloads returns how many reloads succeeded.
func (w *Watcher) Reloads() int64 {
	return w.reloads.Load()
}

// Failures returns how many reloads failed.
func (w *Watcher) Failures() int64 {
	return w.failures.Load()
}

// Run loads the file once, then reloads it after every change until ctx is
// cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", w.path, err)
	}
	slog.Info("watching score", "path", w.path, "debounce", w.debounce)

	w.reload()

	timer := time.NewTimer(0)
	<-timer.C
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped", "path", w.path, "reloads", w.Reloads(), "failures", w.Failures())
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			slog.Debug("score changed", "path", w.path, "op", event.Op.String())
			if w.debounce <= 0 {
				w.reload()
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "path", w.path, "error", err)
			w.onError(err)
		}
	}
}

// reload reads the file and submits the result.
func (w *Watcher) reload() {
	s, err := w.load(w.path)
	if err != nil {
		w.failures.Add(1)
		slog.Warn("score reload failed", "path", w.path, "error", err)
		w.onError(err)
		return
	}
	w.live.Replace(s)
	w.reloads.Add(1)

	id, err := w.sub.Submit(w.live)
	if err != nil {
		slog.Warn("submit failed", "path", w.path, "error", err)
		w.onError(err)
		return
	}
	slog.Debug("score reloaded", "path", w.path, "task_id", id)
}
