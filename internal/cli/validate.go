package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/engraver/internal/layout"
)

// ValidationResult is the JSON payload of a successful validation.
type ValidationResult struct {
	Valid  bool    `json:"valid"`
	Staves int     `json:"staves"`
	Events int     `json:"events"`
	Length float64 `json:"length"`
	Lines  int     `json:"lines"`
	Pages  int     `json:"pages"`
}

// NewValidateCommand checks a score file without writing anything.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <score>",
		Short: "Check a score without writing anything",
		Long: `Validate a score file against the schema, then run a layout dry run.

Schema violations are all reported at once with their field paths. Layout
errors, such as notes past the end of the grid, are reported by pass.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	s, err := opts.loadScore(path)
	if err != nil {
		return scoreError(formatter, err)
	}
	formatter.VerboseLog("Schema valid: %d staves, %d events", len(s.Staves), s.EventCount())

	doc, err := layout.Engrave(s)
	if err != nil {
		return layoutError(formatter, err)
	}

	result := ValidationResult{
		Valid:  true,
		Staves: len(s.Staves),
		Events: s.EventCount(),
		Length: s.Length(),
		Lines:  len(doc.Lines()),
		Pages:  len(doc.Pages),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Score valid: %d staves, %d events, %d line(s) on %d page(s)\n",
		result.Staves, result.Events, result.Lines, result.Pages)
	return nil
}
