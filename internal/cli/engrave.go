package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/engraver/internal/engraver"
	"github.com/roach88/engraver/internal/layout"
)

// EngraveOptions holds flags for the engrave command.
type EngraveOptions struct {
	*RootOptions
	Out      string
	Database string
}

// EngraveResult is the JSON payload of a successful engrave.
type EngraveResult struct {
	Score    string           `json:"score"`
	TaskID   engraver.TaskID  `json:"task_id"`
	Summary  layout.Summary   `json:"summary"`
	Out      string           `json:"out,omitempty"`
	Document *layout.Document `json:"document,omitempty"`
}

// NewEngraveCommand creates the engrave command.
func NewEngraveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EngraveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "engrave <score>",
		Short: "Lay out a score once",
		Long: `Load a score file, lay it out and print a summary.

With --out the indented document JSON is written to a file. With
--format json and no --out the document is included in the response.

Example:
  engraver engrave minuet.yaml
  engraver engrave minuet.yaml --out minuet.layout.json --db journal.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngrave(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write the document JSON to this file")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the outcome in this journal (default: journal.path when journal.enabled)")

	return cmd
}

type outcome struct {
	id  engraver.TaskID
	doc *layout.Document
	err error
}

func runEngrave(opts *EngraveOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := opts.loadScore(path)
	if err != nil {
		return scoreError(formatter, err)
	}
	formatter.VerboseLog("Loaded %s: %d staves, %d events, length %g", path, len(s.Staves), s.EventCount(), s.Length())

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

	results := make(chan outcome, 1)
	sink := withJournal(j, run, engraver.SinkFuncs{
		Layout: func(id engraver.TaskID, doc *layout.Document) error {
			results <- outcome{id: id, doc: doc}
			return nil
		},
		Failure: func(id engraver.TaskID, err error) {
			results <- outcome{id: id, err: err}
		},
	})

	sched := engraver.New(sink)
	defer sched.Shutdown()

	if _, err := sched.Submit(s); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "submit score", err)
	}

	var res outcome
	select {
	case res = <-results:
	case <-ctx.Done():
		_ = formatter.Error(ErrCodeCancelled, "interrupted", nil)
		return WrapExitError(ExitCommandError, "interrupted", ctx.Err())
	}
	if res.err != nil {
		return layoutError(formatter, res.err)
	}

	sum, err := res.doc.Summarize()
	if err != nil {
		return layoutError(formatter, err)
	}
	if opts.Out != "" {
		if err := writeDocument(opts.Out, res.doc); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "write document", err)
		}
		formatter.VerboseLog("Wrote %s", opts.Out)
	}

	if formatter.Format == "json" {
		result := EngraveResult{Score: path, TaskID: res.id, Summary: sum, Out: opts.Out}
		if opts.Out == "" {
			result.Document = res.doc
		}
		return formatter.encode(CLIResponse{Status: "ok", Data: result, RunID: run.ID})
	}

	fmt.Fprintf(formatter.Writer, "✓ Engraved %s: %s\n", path, describe(sum))
	if opts.Out != "" {
		fmt.Fprintf(formatter.Writer, "  document: %s\n", opts.Out)
	}
	if run.ID != "" {
		fmt.Fprintf(formatter.Writer, "  run: %s\n", run.ID)
	}
	return nil
}

// describe renders a summary for humans.
func describe(sum layout.Summary) string {
	return fmt.Sprintf("%d page(s), %d line(s), %d event(s), digest %s",
		sum.Pages, sum.Lines, sum.Events, shortDigest(sum.Digest))
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
