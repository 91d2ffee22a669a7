package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"comicdesk/internal/appconfig"
	"comicdesk/internal/config"
	"comicdesk/internal/datadir"
	"comicdesk/internal/logging"
	"comicdesk/internal/orchestrator"
)

type commandContext struct {
	configFlag  *string
	dataDirFlag *string
	urlFlag     *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	storeOnce sync.Once
	store     *appconfig.Store
	storeErr  error

	clientOnce sync.Once
	client     *orchestrator.Client
}

func newCommandContext(configFlag, dataDirFlag, urlFlag *string) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		dataDirFlag: dataDirFlag,
		urlFlag:     urlFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if dataDir := flagValue(c.dataDirFlag); dataDir != "" {
			expanded, err := config.ExpandPath(dataDir)
			if err != nil {
				c.configErr = fmt.Errorf("resolve --data-dir: %w", err)
				return
			}
			cfg.Paths.DataDir = expanded
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

// loggerValue never fails: a logger that cannot open its file falls back to
// stderr only.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
		}
		if logger == nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) appStore() (*appconfig.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		c.store, c.storeErr = appconfig.NewStore(cfg.Paths.AppConfig, c.loggerValue())
	})
	return c.store, c.storeErr
}

// orchestratorURL resolves the base URL once per invocation: flag,
// ORCHESTRATOR_URL, settings file, saved app config, built-in default.
func (c *commandContext) orchestratorURL() (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	saved := ""
	if store, err := c.appStore(); err == nil {
		saved = store.Load().OrchestratorURL
	}
	return cfg.ResolveOrchestratorURL(flagValue(c.urlFlag), saved), nil
}

func (c *commandContext) orchestratorClient() (*orchestrator.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	url, err := c.orchestratorURL()
	if err != nil {
		return nil, err
	}
	c.clientOnce.Do(func() {
		c.client = orchestrator.New(url,
			orchestrator.WithTimeout(time.Duration(cfg.Orchestrator.RequestTimeout)*time.Second),
			orchestrator.WithLogger(c.loggerValue()),
		)
	})
	return c.client, nil
}

func (c *commandContext) layout() (datadir.Layout, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return datadir.Layout{}, err
	}
	return datadir.New(cfg.Paths.DataDir), nil
}

func (c *commandContext) pollInterval() time.Duration {
	cfg, err := c.ensureConfig()
	if err != nil || cfg.Orchestrator.PollInterval <= 0 {
		return 0
	}
	return time.Duration(cfg.Orchestrator.PollInterval) * time.Second
}

func flagValue(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
