package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateOrchestrator(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateOrchestrator() error {
	if err := ensurePositiveMap(map[string]int{
		"orchestrator.request_timeout": c.Orchestrator.RequestTimeout,
		"orchestrator.poll_interval":   c.Orchestrator.PollInterval,
	}); err != nil {
		return err
	}
	if c.Orchestrator.URL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Orchestrator.URL)
	if err != nil {
		return fmt.Errorf("orchestrator.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("orchestrator.url must use http or https, got %q", c.Orchestrator.URL)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
