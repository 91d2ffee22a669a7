// Package jobs holds the job model and the identity-preserving table that
// mirrors the orchestrator's job list.
//
// Table.Reconcile performs a full outer join on job key: matching rows are
// updated in place, new keys are appended, and vanished keys are removed. The
// returned Change list (added, updated, removed) is what observers subscribe
// to instead of per-field bindings.
package jobs
