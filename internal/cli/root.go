package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/engraver/internal/config"
	"github.com/roach88/engraver/internal/logging"
)

// RootOptions carries the persistent flags and the loaded configuration.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded before any subcommand runs. Commands built without
	// the root command fall back to config.Default().
	Config *config.Config
}

// ValidFormats lists the --format values.
var ValidFormats = []string{"text", "json"}

// settings returns the loaded configuration or the defaults.
func (o *RootOptions) settings() *config.Config {
	if o.Config == nil {
		o.Config = config.Default()
	}
	return o.Config
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// NewRootCommand creates the root command for the engraver CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "engraver",
		Short: "Engraver - piano score layout",
		Long: `Lay out piano scores in klavarskribo notation.

Scores are read from YAML or JSON files, validated, and split into lines
and pages. Every layout run can be recorded in a SQLite journal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default: engraver.yaml in the config dir or working dir)")

	// Add subcommands
	cmd.AddCommand(NewEngraveCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// setup loads the configuration and installs the logger. The --format flag
// wins over output.format; --verbose wins over log.level.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.Config = cfg

	if !cmd.Flags().Changed("format") {
		o.Format = cfg.Output.Format
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	level := cfg.Log.Level
	if o.Verbose {
		level = "debug"
	}
	if _, err := logging.Setup(cmd.ErrOrStderr(), level, cfg.Log.Format); err != nil {
		return WrapExitError(ExitCommandError, "configure logging", err)
	}
	return nil
}

// isValidFormat reports whether format is in ValidFormats.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
