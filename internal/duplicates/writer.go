package duplicates

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"comicdesk/internal/datadir"
	"comicdesk/internal/fileutil"
	"comicdesk/internal/logging"
)

type decisionPayload struct {
	Action string `json:"action"`
	Nonce  string `json:"nonce,omitempty"`
}

// Writer records operator decisions under hold/duplicates.
type Writer struct {
	logger   *slog.Logger
	newNonce func() string
}

func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{
		logger:   logging.NewComponentLogger(logger, "duplicates"),
		newNonce: uuid.NewString,
	}
}

// WriteDecision writes with a default Writer.
func WriteDecision(root, jobKey string, decision Decision) (string, error) {
	return NewWriter(nil).Write(root, jobKey, decision)
}

// Write stores decision at <root>/hold/duplicates/<jobKey>/decision.json,
// replacing any earlier decision, and returns the path.
func (w *Writer) Write(root, jobKey string, decision Decision) (string, error) {
	if err := ValidateJobKey(jobKey); err != nil {
		return "", err
	}
	if !decision.Valid() {
		return "", fmt.Errorf("unknown decision %q", string(decision))
	}

	path := datadir.New(root).DecisionPath(jobKey)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create hold directory: %w", err)
	}

	payload := decisionPayload{Action: string(decision)}
	if decision.NeedsNonce() {
		payload.Nonce = w.newNonce()
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal decision: %w", err)
	}
	data = append(data, '\n')

	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write decision: %w", err)
	}

	w.logger.Info("decision written",
		logging.String(logging.FieldJobKey, jobKey),
		logging.String("action", string(decision)),
		logging.String(logging.FieldPath, path))
	return path, nil
}

// ValidateJobKey reports whether jobKey can name a directory under
// hold/duplicates: non-blank and a single path element.
func ValidateJobKey(jobKey string) error {
	if strings.TrimSpace(jobKey) == "" {
		return errors.New("job key is required")
	}
	if jobKey == "." || jobKey == ".." || strings.ContainsAny(jobKey, `/\`) || strings.ContainsRune(jobKey, 0) {
		return fmt.Errorf("invalid job key %q", jobKey)
	}
	return nil
}
