package intake

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"comicdesk/internal/fileutil"
	"comicdesk/internal/logging"
)

// PartSuffix marks an in-progress copy the orchestrator must ignore.
const PartSuffix = ".part"

// ComicExtensions are the archive formats the orchestrator ingests.
var ComicExtensions = []string{".cbz", ".cbr"}

// Depositor hands files to the orchestrator's intake directory.
type Depositor struct {
	logger     *slog.Logger
	extensions map[string]struct{}
}

// Option configures a Depositor.
type Option func(*Depositor)

// WithAllowedExtensions restricts deposits to the given extensions
// (case-insensitive, leading dot optional). No extensions means any file.
func WithAllowedExtensions(exts ...string) Option {
	return func(d *Depositor) {
		if len(exts) == 0 {
			d.extensions = nil
			return
		}
		d.extensions = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			d.extensions[ext] = struct{}{}
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Depositor) {
		d.logger = logger
	}
}

func NewDepositor(opts ...Option) *Depositor {
	d := &Depositor{}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = logging.NewComponentLogger(d.logger, "intake")
	return d
}

// Deposit copies src with no restrictions.
func Deposit(src, intakeDir string) (string, error) {
	return NewDepositor().Deposit(src, intakeDir)
}

// Deposit copies src into intakeDir as <name>.part, verifies it, and renames
// it to <name>, replacing any earlier file of that name. A watcher on
// intakeDir sees either nothing or the complete file. Returns the final path.
func (d *Depositor) Deposit(src, intakeDir string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("source %s is a directory", src)
	}

	name := filepath.Base(src)
	if !d.allowed(name) {
		return "", fmt.Errorf("unsupported file type %q (allowed: %s)", filepath.Ext(name), d.allowedList())
	}

	if err := os.MkdirAll(intakeDir, 0o755); err != nil {
		return "", fmt.Errorf("create intake directory: %w", err)
	}

	final := filepath.Join(intakeDir, name)
	part := final + PartSuffix

	if err := fileutil.CopyFileVerified(src, part); err != nil {
		_ = os.Remove(part)
		logging.ErrorWithContext(d.logger, "intake copy failed", "intake_copy_failed",
			logging.String(logging.FieldPath, src),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the data root"),
			logging.Error(err))
		return "", fmt.Errorf("copy to intake: %w", err)
	}
	if err := os.Rename(part, final); err != nil {
		_ = os.Remove(part)
		logging.ErrorWithContext(d.logger, "intake publish failed", "intake_publish_failed",
			logging.String(logging.FieldPath, final),
			logging.Error(err))
		return "", fmt.Errorf("publish %s: %w", name, err)
	}

	d.logger.Info("file deposited",
		logging.String(logging.FieldPath, final),
		logging.Int64("bytes", info.Size()))
	return final, nil
}

func (d *Depositor) allowed(name string) bool {
	if len(d.extensions) == 0 {
		return true
	}
	_, ok := d.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (d *Depositor) allowedList() string {
	exts := make([]string, 0, len(d.extensions))
	for ext := range d.extensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return strings.Join(exts, ", ")
}
