package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"comicdesk/internal/datadir"
	"comicdesk/internal/duplicates"
	"comicdesk/internal/logging"
)

func newDuplicatesCommand(ctx *commandContext) *cobra.Command {
	dupCmd := &cobra.Command{
		Use:     "duplicates",
		Aliases: []string{"dup"},
		Short:   "Review and resolve duplicate reports",
	}
	dupCmd.AddCommand(newDuplicatesListCommand(ctx))
	dupCmd.AddCommand(newDuplicatesDecideCommand(ctx))
	dupCmd.AddCommand(newDuplicatesWatchCommand(ctx))
	return dupCmd
}

type duplicateView struct {
	duplicates.Candidate
	Decision string `json:"decision,omitempty"`
}

func newDuplicatesListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List duplicates awaiting a decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.layout()
			if err != nil {
				return err
			}
			views, err := loadDuplicateViews(layout, duplicates.NewReader(ctx.loggerValue()))
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, views)
			}
			printDuplicates(cmd.OutOrStdout(), views)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newDuplicatesDecideCommand(ctx *commandContext) *cobra.Command {
	actions := make([]string, 0, len(duplicates.Decisions()))
	for _, d := range duplicates.Decisions() {
		actions = append(actions, string(d))
	}
	return &cobra.Command{
		Use:       "decide <jobKey> <action>",
		Short:     "Record a decision for a duplicate job",
		Long:      "Record a decision for a duplicate job.\n\nActions: " + strings.Join(actions, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: actions,
		RunE: func(cmd *cobra.Command, args []string) error {
			decision, err := duplicates.ParseDecision(args[1])
			if err != nil {
				return err
			}
			layout, err := ctx.layout()
			if err != nil {
				return err
			}
			path, err := duplicates.NewWriter(ctx.loggerValue()).Write(layout.Root, args[0], decision)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %s (%s)\n", formatStateLabel(string(decision)), args[0], path)
			return nil
		},
	}
}

func newDuplicatesWatchCommand(ctx *commandContext) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reprint the duplicate list whenever reports change",
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := ctx.layout()
			if err != nil {
				return err
			}
			runCtx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, duration)
				defer cancel()
			}
			err = watchDuplicates(runCtx, layout, cmd.OutOrStdout(), ctx.loggerValue())
			if errors.Is(err, context.DeadlineExceeded) && duration > 0 {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	return cmd
}

func watchDuplicates(ctx context.Context, layout datadir.Layout, out io.Writer, logger *slog.Logger) error {
	reader := duplicates.NewReader(logger)

	views, err := loadDuplicateViews(layout, reader)
	if err != nil {
		return err
	}
	printDuplicates(out, views)

	signals, err := duplicates.WatchReports(ctx, layout.Root, duplicates.DefaultDebounce, logger)
	if err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case _, ok := <-signals:
				if !ok {
					return gctx.Err()
				}
				views, err := loadDuplicateViews(layout, reader)
				if err != nil {
					logging.WarnWithContext(logger, "duplicate relist failed", "duplicates_relist_failed",
						logging.Error(err),
						logging.String(logging.FieldPath, layout.ReportsDir()),
						logging.String(logging.FieldImpact, "duplicate list not refreshed"),
					)
					continue
				}
				fmt.Fprintf(out, "\n-- %s --\n", time.Now().Format("15:04:05"))
				printDuplicates(out, views)
			}
		}
	})
	err = group.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func loadDuplicateViews(layout datadir.Layout, reader *duplicates.Reader) ([]duplicateView, error) {
	candidates, err := reader.List(layout.Root)
	if err != nil {
		return nil, err
	}
	views := make([]duplicateView, 0, len(candidates))
	for _, c := range candidates {
		view := duplicateView{Candidate: c}
		if duplicates.ValidateJobKey(c.JobKey) == nil {
			view.Decision = readDecision(layout.DecisionPath(c.JobKey))
		}
		views = append(views, view)
	}
	return views, nil
}

// readDecision returns the action already written for a job, or "" when no
// readable decision exists.
func readDecision(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var payload struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Action
}

func printDuplicates(out io.Writer, views []duplicateView) {
	if len(views) == 0 {
		fmt.Fprintln(out, "No duplicates awaiting a decision")
		return
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, []string{
			v.JobKey,
			orDash(v.IncomingFileName),
			orDash(formatStateLabel(v.ExistingState)),
			orDash(formatStateLabel(v.Decision)),
		})
	}
	fmt.Fprint(out, renderTable([]column{col("Job"), col("Incoming"), col("Existing"), col("Decision")}, rows))
}
