// Package duplicates implements the file protocol for duplicate conflicts.
//
// The orchestrator drops one JSON report per conflicting job under
// reports/duplicates; Reader turns them into Candidates, skipping any file it
// cannot read or parse. Writer answers with hold/duplicates/<jobKey>/decision.json,
// adding a random nonce only for FORCE_REPROCESS so the orchestrator cannot
// short-circuit the rerun. WatchReports signals when the report set changes.
package duplicates
