// Package logging builds the slog loggers used by comicdesk.
//
// Console output is either a compact single-line format (optionally coloured
// when stderr is a terminal) or JSON; the log file under paths.log_dir is
// always JSON lines and is rotated once it grows past a few megabytes. The
// package also defines the standard field keys (component, event_type,
// error_hint, impact, job_key, path, url) and the WarnWithContext and
// ErrorWithContext helpers that enforce them.
package logging
