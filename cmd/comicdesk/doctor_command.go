package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"comicdesk/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the data root, local files, and orchestrator reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.orchestratorClient()
			if err != nil {
				return err
			}
			in := preflight.Inputs{
				OrchestratorURL: client.BaseURL(),
				Client:          client,
			}
			if store, err := ctx.appStore(); err == nil {
				in.AppConfigPath = store.Path()
			}

			results := preflight.RunAll(cmd.Context(), cfg, in)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Readiness", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if !preflight.AllPassed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
