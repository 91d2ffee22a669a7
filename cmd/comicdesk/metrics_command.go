package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"comicdesk/internal/duplicates"
	"comicdesk/internal/jobs"
	"comicdesk/internal/orchestrator"
)

func newMetricsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show orchestrator metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.orchestratorClient()
			if err != nil {
				return err
			}
			metrics, err := client.FetchMetrics(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch metrics: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, metrics)
			}
			rows := buildMetricRows(metrics)
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No metrics reported")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]column{col("Metric"), numCol("Value")}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Summarize orchestrator and data root state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.orchestratorClient()
			if err != nil {
				return err
			}
			layout, err := ctx.layout()
			if err != nil {
				return err
			}

			var (
				list       []jobs.Job
				jobsErr    error
				metrics    orchestrator.Metrics
				metricsErr error
			)
			group, gctx := errgroup.WithContext(cmd.Context())
			group.Go(func() error {
				list, jobsErr = client.FetchJobs(gctx)
				return nil
			})
			group.Go(func() error {
				metrics, metricsErr = client.FetchMetrics(gctx)
				return nil
			})
			_ = group.Wait()

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Orchestrator", colorize) {
				fmt.Fprintln(out, line)
			}
			if jobsErr != nil {
				fmt.Fprintln(out, renderStatusLine("Endpoint", statusError, client.BaseURL()+" unreachable", colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Endpoint", statusOK, client.BaseURL(), colorize))
				fmt.Fprintln(out, renderStatusLine("Jobs", statusInfo, strconv.Itoa(countJobs(list)), colorize))
				for _, line := range stateSummaryLines(list, colorize) {
					fmt.Fprintln(out, line)
				}
			}
			if metricsErr == nil {
				fmt.Fprintln(out, renderStatusLine("Metrics", statusInfo, fmt.Sprintf("%d values", len(buildMetricRows(metrics))), colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Data root", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Path", statusInfo, layout.Root, colorize))
			pending, err := duplicates.NewReader(ctx.loggerValue()).List(layout.Root)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Duplicates", statusError, err.Error(), colorize))
			} else {
				kind := statusOK
				if len(pending) > 0 {
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Duplicates", kind, fmt.Sprintf("%d awaiting decision", len(pending)), colorize))
			}
			outputs, err := layout.Outputs()
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Outputs", statusError, err.Error(), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Outputs", statusInfo, strconv.Itoa(len(outputs)), colorize))
			}
			return nil
		},
	}
}

// countJobs counts distinct keys, matching what the job table would show.
func countJobs(list []jobs.Job) int {
	table := jobs.NewTable()
	table.Reconcile(list)
	return table.Len()
}

func stateSummaryLines(list []jobs.Job, colorize bool) []string {
	counts := make(map[string]int)
	for _, job := range list {
		counts[job.State]++
	}
	states := make([]string, 0, len(counts))
	for state := range counts {
		states = append(states, state)
	}
	sort.Strings(states)
	lines := make([]string, 0, len(states))
	for _, state := range states {
		label := formatStateLabel(state)
		if label == "" {
			label = "Unknown"
		}
		lines = append(lines, renderStatusLine("  "+label, jobStateKind(state), strconv.Itoa(counts[state]), colorize))
	}
	return lines
}

// buildMetricRows flattens nested metric objects into dotted keys.
func buildMetricRows(metrics orchestrator.Metrics) [][]string {
	flat := make(map[string]string)
	flattenMetric("", map[string]any(metrics), flat)
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, flat[key]})
	}
	return rows
}

func flattenMetric(prefix string, value any, out map[string]string) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			name := key
			if prefix != "" {
				name = prefix + "." + key
			}
			flattenMetric(name, child, out)
		}
	case nil:
		if prefix != "" {
			out[prefix] = "-"
		}
	case string:
		out[prefix] = v
	case float64:
		out[prefix] = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		out[prefix] = strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			out[prefix] = fmt.Sprint(v)
			return
		}
		out[prefix] = string(encoded)
	}
}
