package preflight

import (
	"context"

	"comicdesk/internal/config"
	"comicdesk/internal/datadir"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Inputs bundles what RunAll inspects beyond the settings file.
type Inputs struct {
	OrchestratorURL string
	Client          JobsFetcher
	AppConfigPath   string
}

// RunAll executes every readiness check for the given config.
func RunAll(ctx context.Context, cfg *config.Config, in Inputs) []Result {
	if cfg == nil {
		return nil
	}

	layout := datadir.New(cfg.Paths.DataDir)
	results := []Result{
		CheckDirectoryAccess("Data root", cfg.Paths.DataDir),
		CheckOptionalDirectory("Reports directory", layout.ReportsDir()),
		CheckOptionalDirectory("Intake directory", layout.IntakeDir()),
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if in.AppConfigPath != "" {
		results = append(results, CheckAppConfig(in.AppConfigPath))
	}

	results = append(results, CheckOrchestrator(ctx, in.OrchestratorURL, in.Client))
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
