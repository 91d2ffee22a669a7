// Package preflight provides readiness checks for the orchestrator and the
// filesystem paths comicdesk depends on.
//
// The CLI "comicdesk doctor" command runs RunAll and renders each Result;
// individual checks (CheckDirectoryAccess, CheckOrchestrator) are usable on
// their own. Directories the client creates lazily (reports, intake) pass
// when absent.
package preflight
