package journal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Connection settings, applied by the driver to every connection it opens.
var dsnParams = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

// migrations[i] upgrades a journal from user_version i to i+1.
var migrations = []func(*sql.Tx) error{
	addRunIndex,
}

// currentSchemaVersion is the user_version of a fully migrated journal.
var currentSchemaVersion = len(migrations)

// Journal is a SQLite-backed outcome log.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock sets the clock used for started_at and recorded_at.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// Open opens or creates the journal at path. Existing rows are kept; older
// journals are migrated in place.
func Open(path string, opts ...Option) (*Journal, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?"+dsnParams.Encode())
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// One connection: SQLite serializes writers anyway, and user_version
	// reads must see the migration that just ran.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal %s: %w", path, err)
	}
	if err := initialize(db); err != nil {
		db.Close()
		return nil, err
	}

	j := &Journal{db: db, now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Close closes the database. A zero Journal closes cleanly.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// DB exposes the connection for ad hoc queries.
func (j *Journal) DB() *sql.DB { return j.db }

// NewRunID returns a time-ordered run identifier.
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func initialize(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for v := version; v < len(migrations); v++ {
		if err := migrate(db, v); err != nil {
			return err
		}
	}
	return nil
}

// migrate runs migrations[from] and bumps user_version in one transaction.
func migrate(db *sql.DB, from int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate to v%d: %w", from+1, err)
	}
	defer tx.Rollback()

	if err := migrations[from](tx); err != nil {
		return fmt.Errorf("migrate to v%d: %w", from+1, err)
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", from+1)); err != nil {
		return fmt.Errorf("migrate to v%d: set version: %w", from+1, err)
	}
	return tx.Commit()
}

// addRunIndex backs Outcomes(runID). schema.sql creates it on fresh
// journals; journals from before the index existed get it here.
func addRunIndex(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id, task_id)`)
	return err
}

// pragma reads a single PRAGMA value as text.
func (j *Journal) pragma(name string) (string, error) {
	var value string
	if err := j.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("query %s: %w", name, err)
	}
	return value, nil
}
