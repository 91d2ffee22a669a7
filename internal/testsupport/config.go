package testsupport

import (
	"path/filepath"
	"testing"

	"comicdesk/internal/config"
)

// ConfigOption adjusts a test config before it is returned.
type ConfigOption func(*config.Config)

// NewConfig returns the default config rooted in a fresh temp directory:
// data/, logs/ and appconfig/config.json live under one base, with one-second
// request timeout and poll interval.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths = config.Paths{
		DataDir:   filepath.Join(base, "data"),
		LogDir:    filepath.Join(base, "logs"),
		AppConfig: filepath.Join(base, "appconfig", "config.json"),
	}
	cfg.Orchestrator.RequestTimeout = 1
	cfg.Orchestrator.PollInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

func WithOrchestratorURL(url string) ConfigOption {
	return func(c *config.Config) { c.Orchestrator.URL = url }
}

func WithLogging(format, level string) ConfigOption {
	return func(c *config.Config) {
		c.Logging.Format = format
		c.Logging.Level = level
	}
}

// BaseDir is the temp directory NewConfig rooted cfg in.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
