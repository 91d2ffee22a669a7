package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"comicdesk/internal/jobs"
	"comicdesk/internal/orchestrator"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Orchestrator", statusError, "unreachable", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Orchestrator:", "[ERROR] unreachable")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Orchestrator", statusOK, "reachable", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestJobStateKind(t *testing.T) {
	cases := map[string]statusKind{
		"DONE":              statusOK,
		"ERROR_OCR":         statusError,
		"error":             statusError,
		"DUPLICATE_PENDING": statusWarn,
		"RUNNING":           statusInfo,
		"":                  statusInfo,
	}
	for state, want := range cases {
		if got := jobStateKind(state); got != want {
			t.Errorf("jobStateKind(%q) = %v, want %v", state, got, want)
		}
	}
}

func TestFormatStateLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"OCR_RUNNING", "Ocr Running"},
		{"USE_EXISTING_RESULT", "Use Existing Result"},
		{"done", "Done"},
		{"  ", ""},
		{"force-reprocess", "Force Reprocess"},
	}
	for _, tt := range tests {
		if got := formatStateLabel(tt.in); got != tt.want {
			t.Errorf("formatStateLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDisplayTime(t *testing.T) {
	if got := formatDisplayTime("2024-05-01T10:20:30+02:00"); got != "2024-05-01 08:20" {
		t.Fatalf("unexpected RFC3339 rendering: %q", got)
	}
	if got := formatDisplayTime("2024-05-01T10:20:30.123456Z"); got != "2024-05-01 10:20" {
		t.Fatalf("unexpected fractional rendering: %q", got)
	}
	if got := formatDisplayTime("yesterday"); got != "yesterday" {
		t.Fatalf("expected unparseable value passthrough, got %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1536:            "1.5 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for size, want := range tests {
		if got := formatBytes(size); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", size, got, want)
		}
	}
}

func TestBuildMetricRowsFlattensAndSorts(t *testing.T) {
	rows := buildMetricRows(orchestrator.Metrics{
		"workers": map[string]any{"ocr": float64(2), "prep": float64(1)},
		"healthy": true,
		"note":    nil,
		"tags":    []any{"a", "b"},
	})
	want := [][]string{
		{"healthy", "true"},
		{"note", "-"},
		{"tags", `["a","b"]`},
		{"workers.ocr", "2"},
		{"workers.prep", "1"},
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %v", len(want), rows)
	}
	for i := range want {
		if rows[i][0] != want[i][0] || rows[i][1] != want[i][1] {
			t.Fatalf("row %d = %v, want %v", i, rows[i], want[i])
		}
	}
}

func TestJobPrinterCollapsesRepeatedFailures(t *testing.T) {
	var buf bytes.Buffer
	p := newJobPrinter(&buf)

	p.FetchFailed(errors.New("connection refused"))
	p.FetchFailed(errors.New("connection refused"))
	p.JobsChanged([]jobs.Change{{Kind: jobs.Added, Job: &jobs.Job{Key: "k1", State: "QUEUED"}}})
	p.FetchFailed(errors.New("timeout"))

	out := buf.String()
	if n := strings.Count(out, "connection refused"); n != 1 {
		t.Fatalf("expected one failure line, got %d:\n%s", n, out)
	}
	requireContains(t, out, "reachable again")
	requireContains(t, out, "added Queued")
	requireContains(t, out, "timeout")
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]column{col("A"), numCol("B")}, [][]string{{"only"}, {"x", "y", "dropped"}})
	requireContains(t, out, "only")
	requireNotContains(t, out, "dropped")
	if renderTable(nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}
