package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/roach88/engraver/internal/engraver"
	"github.com/roach88/engraver/internal/layout"
	"github.com/roach88/engraver/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Out      string
	Database string
	Debounce time.Duration
}

// WatchEvent is one JSON line printed per result.
type WatchEvent struct {
	TaskID  engraver.TaskID `json:"task_id,omitempty"`
	Status  string          `json:"status"`
	Summary *layout.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <score>",
		Short: "Re-engrave a score whenever it changes",
		Long: `Watch a score file and lay it out after every change.

One line is printed per result. Saves arriving faster than layout finishes
are collapsed: only the newest version is laid out. Stop with Ctrl-C.

Example:
  engraver watch minuet.yaml --out minuet.layout.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "rewrite the document JSON to this file after every result")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record outcomes in this journal")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 0, "quiet period before reloading (default: watch.debounce_ms)")

	return cmd
}

func runWatch(opts *WatchOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if _, err := os.Stat(path); err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), map[string]string{"file": path})
		return WrapExitError(ExitCommandError, "watch score", err)
	}

	// Tests cancel through the command context.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	j, run, err := opts.openJournal(ctx, opts.Database, path)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	if j != nil {
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
	}

	// Results are printed on this goroutine; the worker only queues them.
	loop := engraver.NewLoop()
	report := &watchReporter{opts: opts, formatter: formatter}
	sched := engraver.New(withJournal(j, run, report), engraver.WithDispatcher(loop))

	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = opts.settings().Watch.Debounce()
	}
	w := watch.New(path, sched,
		watch.WithDebounce(debounce),
		watch.WithLoader(opts.loadScore),
		watch.WithErrorHandler(func(err error) {
			_ = loop.Dispatch(func() { report.reloadFailed(err) })
		}),
	)

	var wg conc.WaitGroup
	var watchErr error
	wg.Go(func() {
		watchErr = w.Run(ctx)
		cancel()
	})

	if run.ID != "" && formatter.Format != "json" {
		fmt.Fprintf(formatter.Writer, "Watching %s (run %s). Press Ctrl-C to stop.\n", path, run.ID)
	} else if formatter.Format != "json" {
		fmt.Fprintf(formatter.Writer, "Watching %s. Press Ctrl-C to stop.\n", path)
	}

	loopErr := loop.Run(ctx)
	wg.Wait()
	sched.Shutdown()
	loop.Close()
	loop.Drain()

	if watchErr != nil {
		_ = formatter.Error(ErrCodeGeneric, watchErr.Error(), nil)
		return WrapExitError(ExitCommandError, "watch failed", watchErr)
	}
	if loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		return WrapExitError(ExitFailure, "watch failed", loopErr)
	}

	st := sched.Stats()
	slog.Info("watch finished",
		"submitted", st.Submitted,
		"completed", st.Completed,
		"failed", st.Failed,
		"skipped", st.Skipped,
	)
	return nil
}

// watchReporter prints results. It runs on the command goroutine through
// the loop dispatcher.
type watchReporter struct {
	opts      *WatchOptions
	formatter *OutputFormatter
}

func (r *watchReporter) OnLayout(id engraver.TaskID, doc *layout.Document) error {
	sum, err := doc.Summarize()
	if err != nil {
		return err
	}
	if r.opts.Out != "" {
		if err := writeDocument(r.opts.Out, doc); err != nil {
			return err
		}
	}
	if r.formatter.Format == "json" {
		return r.formatter.Success(WatchEvent{TaskID: id, Status: "ok", Summary: &sum})
	}
	fmt.Fprintf(r.formatter.Writer, "[task %d] %s\n", id, describe(sum))
	return nil
}

func (r *watchReporter) OnFailure(id engraver.TaskID, err error) {
	if r.formatter.Format == "json" {
		_ = r.formatter.Success(WatchEvent{TaskID: id, Status: "failed", Error: err.Error()})
		return
	}
	fmt.Fprintf(r.formatter.Writer, "[task %d] failed: %v\n", id, err)
}

func (r *watchReporter) reloadFailed(err error) {
	if r.formatter.Format == "json" {
		_ = r.formatter.Success(WatchEvent{Status: "reload_failed", Error: err.Error()})
		return
	}
	fmt.Fprintf(r.formatter.Writer, "reload failed: %v\n", err)
}
