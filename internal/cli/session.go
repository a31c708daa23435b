package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/engraver/internal/engraver"
	"github.com/roach88/engraver/internal/journal"
	"github.com/roach88/engraver/internal/layout"
	"github.com/roach88/engraver/internal/score"
	"github.com/roach88/engraver/internal/scorefile"
)

// loadScore reads a score file and applies the layout overrides of the
// configuration.
func (o *RootOptions) loadScore(path string) (*score.Score, error) {
	s, err := scorefile.Load(path)
	if err != nil {
		return nil, err
	}
	if q := o.settings().Layout.QuarterTickOverride; q > 0 {
		s.Properties.QuarterTick = q
	}
	return s, nil
}

// openJournal opens the journal when recording is enabled by config or by
// a non-empty db flag. It returns a nil journal when recording is off.
func (o *RootOptions) openJournal(ctx context.Context, db, source string) (*journal.Journal, journal.Run, error) {
	cfg := o.settings().Journal
	path := db
	if path == "" && cfg.Enabled {
		path = cfg.Path
	}
	if path == "" {
		return nil, journal.Run{}, nil
	}

	j, err := journal.Open(path)
	if err != nil {
		return nil, journal.Run{}, err
	}
	run, err := j.BeginRun(ctx, source)
	if err != nil {
		j.Close()
		return nil, journal.Run{}, err
	}
	slog.Info("journal run started", "run_id", run.ID, "path", path)
	return j, run, nil
}

// withJournal wraps sink with a recorder when j is not nil.
func withJournal(j *journal.Journal, run journal.Run, sink engraver.Sink) engraver.Sink {
	if j == nil {
		return sink
	}
	return journal.NewRecorder(j, run, sink)
}

// writeDocument writes the indented document encoding to path.
func writeDocument(path string, doc *layout.Document) error {
	data, err := doc.EncodeIndent()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// scoreError converts a score load error to an exit error and reports it.
// Unreadable files are command errors; invalid content is a failure.
func scoreError(f *OutputFormatter, err error) error {
	var le *scorefile.LoadError
	if !errors.As(err, &le) {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load score", err)
	}
	if le.Code == scorefile.ErrCodeRead {
		_ = f.Error(ErrCodeNotFound, le.Message, map[string]string{"file": le.File})
		return WrapExitError(ExitCommandError, "load score", err)
	}

	var details []string
	var schema scorefile.SchemaErrors
	if errors.As(err, &schema) {
		for _, e := range schema {
			details = append(details, e.Path+": "+e.Message)
		}
	}
	if details != nil {
		_ = f.Error(le.Code, err.Error(), details)
	} else {
		_ = f.Error(le.Code, err.Error(), nil)
	}
	return WrapExitError(ExitFailure, "invalid score", err)
}

// layoutError reports a failed layout.
func layoutError(f *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var le *layout.Error
	if errors.As(err, &le) {
		code = string(le.Code)
	}
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitFailure, "layout failed", err)
}
