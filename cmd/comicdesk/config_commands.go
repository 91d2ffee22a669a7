package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"comicdesk/internal/appconfig"
	"comicdesk/internal/config"
	"comicdesk/internal/ocrlang"
	"comicdesk/internal/orchestrator"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigPathCommand(ctx))
	configCmd.AddCommand(newConfigSetCommand(ctx))
	configCmd.AddCommand(newConfigApplyCommand(ctx))
	configCmd.AddCommand(newConfigRemoteCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the saved orchestrator settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.appStore()
			if err != nil {
				return err
			}
			cfg := store.Load()
			if asJSON {
				return writeJSON(cmd, cfg)
			}
			url, err := ctx.orchestratorURL()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(settingColumns, appConfigRows(cfg, url)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newConfigPathCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the settings and app config file locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.appStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Settings:   %s\n", ctx.configPath)
			fmt.Fprintf(out, "App config: %s\n", store.Path())
			return nil
		},
	}
}

var settingColumns = []column{col("Setting"), col("Value")}

// appConfigFlags binds the editable AppConfig fields to a command.
type appConfigFlags struct {
	url     string
	prep    int
	ocr     int
	timeout int
	lang    string
}

func (f *appConfigFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "Orchestrator base URL")
	cmd.Flags().IntVar(&f.prep, "prep", 0, fmt.Sprintf("Prep concurrency (%d-%d)", appconfig.MinPrepConcurrency, appconfig.MaxPrepConcurrency))
	cmd.Flags().IntVar(&f.ocr, "ocr", 0, fmt.Sprintf("OCR concurrency (%d-%d)", appconfig.MinOCRConcurrency, appconfig.MaxOCRConcurrency))
	cmd.Flags().IntVar(&f.timeout, "timeout", 0, fmt.Sprintf("Job timeout in seconds (%d-%d)", appconfig.MinJobTimeoutSeconds, appconfig.MaxJobTimeoutSeconds))
	cmd.Flags().StringVar(&f.lang, "lang", "", "Default OCR language, e.g. fra+eng (ISO codes and names accepted)")
}

// merge overlays the flags the operator set onto base. Only those fields are
// range-checked, so out-of-range values already on disk are preserved.
func (f *appConfigFlags) merge(cmd *cobra.Command, base appconfig.AppConfig) (appconfig.AppConfig, error) {
	check := appconfig.Default()
	changed := false
	if cmd.Flags().Changed("url") {
		base.OrchestratorURL = strings.TrimSpace(f.url)
		check.OrchestratorURL = base.OrchestratorURL
		changed = true
	}
	if cmd.Flags().Changed("prep") {
		base.PrepConcurrency = f.prep
		check.PrepConcurrency = f.prep
		changed = true
	}
	if cmd.Flags().Changed("ocr") {
		base.OCRConcurrency = f.ocr
		check.OCRConcurrency = f.ocr
		changed = true
	}
	if cmd.Flags().Changed("timeout") {
		base.JobTimeoutSeconds = f.timeout
		check.JobTimeoutSeconds = f.timeout
		changed = true
	}
	if cmd.Flags().Changed("lang") {
		lang, err := ocrlang.Normalize(f.lang)
		if err != nil {
			return base, fmt.Errorf("invalid settings: %w", err)
		}
		base.DefaultOCRLang = lang
		check.DefaultOCRLang = lang
		changed = true
	}
	if !changed {
		return base, nil
	}
	if err := check.Validate(); err != nil {
		return base, fmt.Errorf("invalid settings: %w", err)
	}
	return base, nil
}

func newConfigSetCommand(ctx *commandContext) *cobra.Command {
	var flags appConfigFlags
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update saved orchestrator settings without pushing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.appStore()
			if err != nil {
				return err
			}
			cfg, err := flags.merge(cmd, store.Load())
			if err != nil {
				return err
			}
			if err := store.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", store.Path())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newConfigApplyCommand(ctx *commandContext) *cobra.Command {
	var flags appConfigFlags
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Save settings and push them to the orchestrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.appStore()
			if err != nil {
				return err
			}
			cfg, err := flags.merge(cmd, store.Load())
			if err != nil {
				return err
			}
			if err := store.Save(cfg); err != nil {
				return err
			}
			client, err := ctx.orchestratorClient()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("url") && cfg.OrchestratorURL != "" {
				client.SetBaseURL(cfg.OrchestratorURL)
			}
			out := cmd.OutOrStdout()
			if client.PostConfig(cmd.Context(), cfg) {
				fmt.Fprintf(out, "Settings saved and applied to %s\n", client.BaseURL())
				return nil
			}
			fmt.Fprintf(out, "Settings saved locally; orchestrator at %s is unavailable\n", client.BaseURL())
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newConfigRemoteCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Show the configuration the orchestrator is running with",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.orchestratorClient()
			if err != nil {
				return err
			}
			remote, err := client.FetchConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch remote config: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, remote.ConfigPatch)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(settingColumns, runtimeConfigRows(remote)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the settings and saved app config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			store, err := ctx.appStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if _, err := os.Stat(ctx.configPath); err != nil {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			if err := store.Load().Validate(); err != nil {
				fmt.Fprintf(out, "App config %s has values outside the editable ranges:\n%v\n", store.Path(), err)
				return nil
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var (
		dest  string
		force bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented comicdesk.toml",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(dest)
			if err != nil {
				return err
			}
			if !force {
				switch _, statErr := os.Stat(target); {
				case statErr == nil:
					return fmt.Errorf("%s exists; pass --overwrite to replace it", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("inspect %s: %w", target, statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\nSet paths.data_dir to the orchestrator's data root before running other commands.\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dest, "path", "p", "", "Where to write the file (default: user config location)")
	cmd.Flags().BoolVar(&force, "overwrite", false, "Replace an existing file")
	return cmd
}

// initTarget resolves the destination for config init.
func initTarget(flagValue string) (string, error) {
	if trimmed := strings.TrimSpace(flagValue); trimmed != "" {
		return config.ExpandPath(trimmed)
	}
	return config.DefaultConfigPath()
}
