// Package main hosts the comicdesk CLI.
//
// comicdesk is the operator console for a comic2pdf orchestrator. It lists
// and follows jobs over the orchestrator's HTTP API, resolves duplicate
// reports by writing decision files under the shared data root, deposits new
// archives into the intake directory, and edits the settings pushed to the
// orchestrator. Every command resolves the orchestrator URL once at startup
// from --orchestrator-url, ORCHESTRATOR_URL, the settings file, or the saved
// app config.
package main
