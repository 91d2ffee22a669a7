// Package jobwatch keeps a job table in step with the orchestrator.
//
// A Poller fetches the job list on a ticker and publishes results; a Board
// owns the jobs.Table and is the only goroutine that mutates it. Each
// Start/Stop cycle of the poller carries a generation number so a fetch that
// completes after Stop is discarded instead of applied. Failed fetches are
// reported to the listener and leave the table as it was.
package jobwatch
