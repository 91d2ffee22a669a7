package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"comicdesk/internal/intake"
)

func newDepositCommand(ctx *commandContext) *cobra.Command {
	var anyType bool
	cmd := &cobra.Command{
		Use:   "deposit <file>...",
		Short: "Copy comic archives into the orchestrator intake directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.layout()
			if err != nil {
				return err
			}
			opts := []intake.Option{intake.WithLogger(ctx.loggerValue())}
			if !anyType {
				opts = append(opts, intake.WithAllowedExtensions(intake.ComicExtensions...))
			}
			depositor := intake.NewDepositor(opts...)

			var failures []error
			for _, src := range args {
				final, err := depositor.Deposit(src, layout.IntakeDir())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", src, err)
					failures = append(failures, fmt.Errorf("%s: %w", src, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deposited %s\n", final)
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d of %d deposits failed: %w", len(failures), len(args), errors.Join(failures...))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&anyType, "any", false, "Accept files of any type, not only .cbz/.cbr")
	return cmd
}
