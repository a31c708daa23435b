// Package journal records layout outcomes in a SQLite database.
//
// Each engraving session is a run, identified by a UUIDv7. Every executed
// task of the run produces one outcome row: the document summary on
// success, the error text on failure. Writes are idempotent; recording the
// same (run, task) pair twice keeps the first row.
//
// # Database Configuration
//
//   - WAL mode: readers (history) do not block the recording writer
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// History queries order by insertion sequence, never by timestamps, so
// results are stable even when the wall clock is coarse or repeats.
package journal
