package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultOrchestratorURL   = "http://localhost:8080"
	DefaultPrepConcurrency   = 2
	DefaultOCRConcurrency    = 1
	DefaultJobTimeoutSeconds = 600
	DefaultOCRLang           = "fra+eng"
)

// Accepted ranges for values produced by the input layer.
const (
	MinPrepConcurrency   = 1
	MaxPrepConcurrency   = 16
	MinOCRConcurrency    = 1
	MaxOCRConcurrency    = 8
	MinJobTimeoutSeconds = 60
	MaxJobTimeoutSeconds = 7200
)

const fileName = "config.json"

// AppConfig is the operator-facing record pushed to the orchestrator.
type AppConfig struct {
	OrchestratorURL   string `json:"orchestratorUrl"`
	PrepConcurrency   int    `json:"prepConcurrency"`
	OCRConcurrency    int    `json:"ocrConcurrency"`
	JobTimeoutSeconds int    `json:"jobTimeoutSeconds"`
	DefaultOCRLang    string `json:"defaultOcrLang"`
}

// Decode overlays the JSON document data on Default. Unknown keys are
// ignored; a value of the wrong type is an error.
func Decode(data []byte) (AppConfig, error) {
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Default returns an AppConfig populated with the documented defaults.
func Default() AppConfig {
	return AppConfig{
		OrchestratorURL:   DefaultOrchestratorURL,
		PrepConcurrency:   DefaultPrepConcurrency,
		OCRConcurrency:    DefaultOCRConcurrency,
		JobTimeoutSeconds: DefaultJobTimeoutSeconds,
		DefaultOCRLang:    DefaultOCRLang,
	}
}

// Validate enforces the operator input ranges. The store never calls it:
// values already on disk are loaded as-is.
func (c AppConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.OrchestratorURL) == "" {
		errs = append(errs, errors.New("orchestratorUrl must be set"))
	}
	errs = append(errs,
		checkRange("prepConcurrency", c.PrepConcurrency, MinPrepConcurrency, MaxPrepConcurrency),
		checkRange("ocrConcurrency", c.OCRConcurrency, MinOCRConcurrency, MaxOCRConcurrency),
		checkRange("jobTimeoutSeconds", c.JobTimeoutSeconds, MinJobTimeoutSeconds, MaxJobTimeoutSeconds),
	)
	if strings.TrimSpace(c.DefaultOCRLang) == "" {
		errs = append(errs, errors.New("defaultOcrLang must be set"))
	}
	return errors.Join(errs...)
}

func checkRange(name string, value, lo, hi int) error {
	if value < lo || value > hi {
		return fmt.Errorf("%s must be between %d and %d (got %d)", name, lo, hi, value)
	}
	return nil
}

// DefaultPath returns <user config dir>/comic2pdf/config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config directory: %w", err)
	}
	return filepath.Join(dir, "comic2pdf", fileName), nil
}
