// Package config loads, normalizes, and validates comicdesk client settings.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// COMICDESK_DATA_DIR. Orchestrator URL resolution happens here exactly once,
// at startup, so the core packages only ever receive an explicit value.
//
// The orchestrator-facing AppConfig record is not part of this package; see
// internal/appconfig.
package config
