package cli

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/engraver/internal/journal"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	RunID    string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded layout outcomes",
		Long: `List outcomes recorded in the journal, newest first.

Example:
  engraver history --db journal.db --limit 5
  engraver history --run 01927c3e-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal path (default: journal.path)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", journal.DefaultHistoryLimit, "maximum number of outcomes")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "only list outcomes of this run, in task order")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	path := opts.Database
	if path == "" {
		path = opts.settings().Journal.Path
	}
	j, err := journal.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), map[string]string{"db": path})
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	var outcomes []journal.Outcome
	if opts.RunID != "" {
		outcomes, err = j.Outcomes(ctx, opts.RunID)
	} else {
		outcomes, err = j.History(ctx, opts.Limit)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "read journal", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(outcomes)
	}

	if len(outcomes) == 0 {
		fmt.Fprintln(formatter.Writer, "No outcomes recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\tRUN\tTASK\tSTATUS\tPAGES\tLINES\tEVENTS\tDETAIL")
	for _, o := range outcomes {
		detail := shortDigest(o.Digest)
		if o.Status == journal.StatusFailed {
			detail = o.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%d\t%d\t%s\n",
			o.RecordedAt.Format("2006-01-02 15:04:05"),
			shortRun(o.RunID),
			o.TaskID,
			o.Status,
			o.Pages, o.Lines, o.Events,
			detail,
		)
	}
	return tw.Flush()
}

// shortRun keeps the time-ordered prefix of a UUIDv7 run id.
func shortRun(id string) string {
	if len(id) > 13 {
		return id[:13]
	}
	return id
}
