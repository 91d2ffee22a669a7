// Package appconfig loads and saves the operator's orchestrator settings
// (URL, worker concurrency, job timeout, default OCR language).
//
// The file lives at a fixed per-user path and is always replaced through a
// temp file and rename, so readers never see a partial write. Loading never
// fails: a missing or corrupt file yields defaults, and values outside the
// input ranges are kept as stored. Range checks live in AppConfig.Validate for
// callers that accept operator input.
package appconfig
