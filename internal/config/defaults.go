package config

const (
	defaultConfigPath            = "~/.config/comicdesk/config.toml"
	defaultDataDir               = "~/comic2pdf/data"
	defaultLogDir                = "~/.local/share/comicdesk/logs"
	defaultRequestTimeoutSeconds = 5
	defaultPollIntervalSeconds   = 3
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

const (
	// DefaultOrchestratorURL is used when no flag, environment, or saved value names one.
	DefaultOrchestratorURL = "http://localhost:8080"
	// EnvOrchestratorURL overrides the orchestrator base URL at startup.
	EnvOrchestratorURL = "ORCHESTRATOR_URL"
	// EnvDataDir overrides paths.data_dir.
	EnvDataDir = "COMICDESK_DATA_DIR"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Orchestrator: Orchestrator{
			RequestTimeout: defaultRequestTimeoutSeconds,
			PollInterval:   defaultPollIntervalSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
