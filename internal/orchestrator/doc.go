// Package orchestrator is the HTTP client for the comic2pdf orchestrator.
//
// The plain methods (Jobs, Job, Metrics, PostConfig) never return errors: any
// transport failure, non-2xx status, or malformed body degrades to an empty
// result so interactive callers keep working while the orchestrator is down.
// The Fetch*/PushConfig twins return the error for callers that must tell a
// failed fetch apart from an empty one, such as the job poller.
package orchestrator
