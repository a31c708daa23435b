// Package engraver schedules layout work for an interactive score editor.
//
// A Scheduler owns one worker goroutine, at most one current task and at
// most one pending task. Every Submit snapshots the score on the caller's
// goroutine and replaces whatever task was pending, so bursts of edits
// collapse into at most one extra layout run. The last submission before
// the worker becomes free is always executed.
//
// Thread-safety model:
//   - Submit(), Stats(), Shutdown(): safe from any goroutine
//   - Sink callbacks: invoked through the configured Dispatcher, one at a time
//     for the Inline dispatcher and on the consumer goroutine for a Loop
package engraver
