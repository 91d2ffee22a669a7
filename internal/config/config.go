package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains data-root and local directory configuration.
type Paths struct {
	DataDir   string `toml:"data_dir"`
	LogDir    string `toml:"log_dir"`
	AppConfig string `toml:"app_config"`
}

// Orchestrator contains connection settings for the remote orchestrator.
type Orchestrator struct {
	URL            string `toml:"url"`
	RequestTimeout int    `toml:"request_timeout"`
	PollInterval   int    `toml:"poll_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates the client-side settings for comicdesk.
//
// Configuration sections by subsystem:
//   - Paths: operator data root, log directory, AppConfig location
//   - Orchestrator: base URL fallback, request timeout, job poll interval
//   - Logging: log format and level
//
// The orchestrator-facing AppConfig record (concurrency, timeouts, OCR
// language) lives in its own JSON file managed by internal/appconfig.
type Config struct {
	Paths        Paths        `toml:"paths"`
	Orchestrator Orchestrator `toml:"orchestrator"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load finds the settings file, overlays it on the defaults, then normalizes
// and validates the result. It returns the config, the path that was (or
// would have been) read, and whether that file exists. A missing file is not
// an error; the defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	location, found, err := locateConfig(path)
	if err != nil {
		return nil, "", false, err
	}
	if found {
		if err := decodeFile(location, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, location, found, nil
}

func decodeFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// locateConfig resolves an explicit path as-is. Without one it tries the user
// config location first and ./comicdesk.toml second, reporting the user
// location when neither exists.
func locateConfig(explicit string) (string, bool, error) {
	if explicit != "" {
		resolved, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		found, err := isRegularFile(resolved)
		if err != nil {
			return "", false, err
		}
		return resolved, found, nil
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	localPath, err := filepath.Abs("comicdesk.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, localPath} {
		if found, _ := isRegularFile(candidate); found {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isRegularFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	}
	return !info.IsDir(), nil
}

// EnsureDirectories creates the directories the client writes into. The data
// root itself is created on a best-effort basis so read-only commands keep
// working while a network share is unavailable.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
		}
	}
	if strings.TrimSpace(c.Paths.DataDir) != "" {
		_ = os.MkdirAll(c.Paths.DataDir, 0o755)
	}
	return nil
}

// ResolveOrchestratorURL picks the orchestrator base URL once at startup.
// Precedence: explicit value (command-line flag), ORCHESTRATOR_URL, the
// settings file, the saved AppConfig URL, then the built-in default.
func (c *Config) ResolveOrchestratorURL(explicit, saved string) string {
	candidates := []string{explicit, os.Getenv(EnvOrchestratorURL), "", saved}
	if c != nil {
		candidates[2] = c.Orchestrator.URL
	}
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return DefaultOrchestratorURL
}

// expandPath resolves a leading "~" against the home directory and returns a
// cleaned absolute path. Empty input stays empty.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimLeft(value[1:], `/\`))
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath applies the same "~" and absolute-path rules used for the
// settings file to a caller-supplied path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes the commented sample settings file to path, creating
// its parent directory.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
