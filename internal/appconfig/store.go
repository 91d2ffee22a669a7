package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"comicdesk/internal/fileutil"
	"comicdesk/internal/logging"
)

// Store persists an AppConfig as pretty JSON at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a store for path. An empty path resolves to DefaultPath.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		resolved, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	return &Store{
		path:   path,
		logger: logging.NewComponentLogger(logger, "appconfig"),
	}, nil
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the saved config. A missing or unreadable file yields Default.
// Fields absent from the file keep their defaults.
func (s *Store) Load() AppConfig {
	cfg := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(s.logger, "failed to read app config", "appconfig_read_failed",
				logging.String(logging.FieldPath, s.path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check file permissions"),
				logging.String(logging.FieldImpact, "defaults in use"))
		}
		return cfg
	}

	cfg, err = Decode(data)
	if err != nil {
		logging.WarnWithContext(s.logger, "failed to parse app config", "appconfig_parse_failed",
			logging.String(logging.FieldPath, s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or delete the file; the next save rewrites it"),
			logging.String(logging.FieldImpact, "defaults in use"))
		return Default()
	}

	s.logger.Debug("loaded app config", logging.String(logging.FieldPath, s.path))
	return cfg
}

// Save writes cfg through a temp file and rename. Concurrent savers in other
// processes are serialized by a lock file next to the config.
func (s *Store) Save(cfg AppConfig) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal app config: %w", err)
	}
	data = append(data, '\n')

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock app config: %w", err)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save app config: %w", err)
	}

	s.logger.Info("saved app config",
		logging.String(logging.FieldPath, s.path),
		logging.String(logging.FieldURL, cfg.OrchestratorURL))
	return nil
}
