package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"comicdesk/internal/jobs"
	"comicdesk/internal/jobwatch"
	"comicdesk/internal/orchestrator"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect orchestrator jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsWatchCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs known to the orchestrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.orchestratorClient()
			if err != nil {
				return err
			}
			list, err := client.FetchJobs(cmd.Context())
			if err != nil {
				if !orchestrator.IsUnavailable(err) {
					return fmt.Errorf("list jobs: %w", err)
				}
				// Unreachable reads as an empty table, with a note.
				fmt.Fprintf(cmd.ErrOrStderr(), "orchestrator unreachable at %s\n", client.BaseURL())
				list = nil
			}
			table := jobs.NewTable()
			table.Reconcile(list)
			rows := table.Rows()
			if asJSON {
				out := make([]jobs.Job, 0, len(rows))
				for _, row := range rows {
					out = append(out, *row)
				}
				return writeJSON(cmd, out)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]column{col("Job"), col("Input"), col("State"), col("Stage"), numCol("Attempt"), col("Updated")},
				buildJobRows(rows),
			))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <jobKey>",
		Short: "Show a single job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.orchestratorClient()
			if err != nil {
				return err
			}
			job, err := client.FetchJob(cmd.Context(), args[0])
			if err != nil {
				if orchestrator.IsNotFound(err) {
					return fmt.Errorf("job %q not found", args[0])
				}
				return fmt.Errorf("show job: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, job)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job:      %s\n", job.Key)
			fmt.Fprintf(out, "Input:    %s\n", orDash(job.InputName))
			fmt.Fprintf(out, "State:    %s\n", orDash(formatStateLabel(job.State)))
			fmt.Fprintf(out, "Stage:    %s\n", orDash(formatStateLabel(job.Stage)))
			fmt.Fprintf(out, "Attempt:  %s\n", orDash(job.Attempt))
			fmt.Fprintf(out, "Updated:  %s\n", orDash(formatDisplayTime(job.UpdatedAt)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newJobsWatchCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow job changes until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.orchestratorClient()
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = ctx.pollInterval()
			}
			runCtx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, duration)
				defer cancel()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", client.BaseURL())
			err = watchJobs(runCtx, client, interval, newJobPrinter(cmd.OutOrStdout()), ctx.loggerValue())
			if errors.Is(err, context.DeadlineExceeded) && duration > 0 {
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Poll interval (defaults to orchestrator.poll_interval)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	return cmd
}

// watchJobs runs a board and its poller until ctx ends.
func watchJobs(ctx context.Context, fetcher jobwatch.Fetcher, interval time.Duration, listener jobwatch.Listener, logger *slog.Logger) error {
	poller := jobwatch.NewPoller(fetcher, interval, logger)
	board := jobwatch.NewBoard(fetcher, poller, listener, logger)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return board.Run(gctx)
	})
	group.Go(func() error {
		if err := poller.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		poller.Stop()
		return nil
	})
	err := group.Wait()
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// jobPrinter writes one line per job change and collapses repeated fetch
// failures into a single line until the next success.
type jobPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	failing  bool
	colorize bool
}

func newJobPrinter(out io.Writer) *jobPrinter {
	return &jobPrinter{out: out, colorize: shouldColorize(out)}
}

func (p *jobPrinter) JobsChanged(changes []jobs.Change) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		p.failing = false
		fmt.Fprintln(p.out, renderStatusLine("Orchestrator", statusOK, "reachable again", p.colorize))
	}
	for _, change := range changes {
		fmt.Fprintln(p.out, formatChange(change, p.colorize))
	}
}

func (p *jobPrinter) FetchFailed(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failing {
		return
	}
	p.failing = true
	fmt.Fprintln(p.out, renderStatusLine("Orchestrator", statusError, err.Error(), p.colorize))
}

func formatChange(change jobs.Change, colorize bool) string {
	job := change.Job
	if job == nil {
		return ""
	}
	kind := jobStateKind(job.State)
	if change.Kind == jobs.Removed {
		kind = statusInfo
	}
	detail := fmt.Sprintf("%s %s", change.Kind, orDash(formatStateLabel(job.State)))
	if job.Stage != "" {
		detail += " / " + formatStateLabel(job.Stage)
	}
	if job.InputName != "" {
		detail += " (" + job.InputName + ")"
	}
	return renderStatusLine(job.Key, kind, detail, colorize)
}

func buildJobRows(rows []*jobs.Job) [][]string {
	out := make([][]string, 0, len(rows))
	for _, job := range rows {
		out = append(out, []string{
			job.Key,
			orDash(job.InputName),
			orDash(formatStateLabel(job.State)),
			orDash(formatStateLabel(job.Stage)),
			orDash(job.Attempt),
			orDash(formatDisplayTime(job.UpdatedAt)),
		})
	}
	return out
}
