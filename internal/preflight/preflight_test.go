package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"comicdesk/internal/config"
	"comicdesk/internal/jobs"
	"comicdesk/internal/orchestrator"
)

type stubFetcher struct {
	jobs []jobs.Job
	err  error
}

func (s stubFetcher) FetchJobs(context.Context) ([]jobs.Job, error) {
	return s.jobs, s.err
}

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOptionalDirectory(t *testing.T) {
	if r := CheckOptionalDirectory("missing", filepath.Join(t.TempDir(), "later")); !r.Passed {
		t.Fatalf("expected missing optional dir to pass, got %s", r.Detail)
	}
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckOptionalDirectory("file", f); r.Passed {
		t.Fatal("expected a file in place of the directory to fail")
	}
}

func TestCheckAppConfig(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.json")
	if r := CheckAppConfig(missing); !r.Passed {
		t.Fatalf("expected missing config to pass, got %s", r.Detail)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{ invalid json !!!"), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckAppConfig(bad); r.Passed {
		t.Fatal("expected invalid config to fail")
	}

	wrongType := filepath.Join(dir, "wrong-type.json")
	if err := os.WriteFile(wrongType, []byte(`{"prepConcurrency":"4"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckAppConfig(wrongType); r.Passed {
		t.Fatal("expected config with a string concurrency to fail")
	}

	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`{"prepConcurrency":2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if r := CheckAppConfig(good); !r.Passed {
		t.Fatalf("expected valid config to pass, got %s", r.Detail)
	}
}

func TestCheckOrchestrator(t *testing.T) {
	tests := []struct {
		name       string
		client     JobsFetcher
		wantPass   bool
		wantDetail string
	}{
		{name: "reachable", client: stubFetcher{jobs: []jobs.Job{{Key: "a"}, {Key: "b"}}}, wantPass: true, wantDetail: "2 jobs"},
		{name: "unreachable", client: stubFetcher{err: fmt.Errorf("%w: dial", orchestrator.ErrUnavailable)}, wantDetail: "unreachable"},
		{name: "status", client: stubFetcher{err: &orchestrator.StatusError{Method: "GET", Path: "/jobs", Code: 503}}, wantDetail: "status 503"},
		{name: "timeout", client: stubFetcher{err: context.DeadlineExceeded}, wantDetail: "timed out"},
		{name: "other", client: stubFetcher{err: errors.New("decode /jobs: bad")}, wantDetail: "decode"},
		{name: "nil client", client: nil, wantDetail: "not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CheckOrchestrator(context.Background(), "http://orch:8080", tt.client)
			if r.Passed != tt.wantPass {
				t.Fatalf("Passed = %v, want %v (%s)", r.Passed, tt.wantPass, r.Detail)
			}
			if !strings.Contains(r.Detail, tt.wantDetail) {
				t.Fatalf("detail %q missing %q", r.Detail, tt.wantDetail)
			}
		})
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, Inputs{}); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func TestRunAll_AgainstLiveServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()

	results := RunAll(context.Background(), &cfg, Inputs{
		OrchestratorURL: srv.URL,
		Client:          orchestrator.New(srv.URL),
		AppConfigPath:   filepath.Join(t.TempDir(), "config.json"),
	})

	names := map[string]bool{}
	for _, r := range results {
		names[r.Name] = true
		if !r.Passed {
			t.Fatalf("%s failed: %s", r.Name, r.Detail)
		}
	}
	for _, want := range []string{"Data root", "Reports directory", "Intake directory", "Log directory", "App config", "Orchestrator"} {
		if !names[want] {
			t.Fatalf("missing check %q", want)
		}
	}
	if !AllPassed(results) {
		t.Fatal("expected AllPassed")
	}
}

func TestAllPassed(t *testing.T) {
	if AllPassed([]Result{{Passed: true}, {Passed: false}}) {
		t.Fatal("expected false with a failing result")
	}
	if !AllPassed(nil) {
		t.Fatal("expected true for no results")
	}
}
