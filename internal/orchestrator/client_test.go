package orchestrator_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"comicdesk/internal/appconfig"
	"comicdesk/internal/orchestrator"
)

func TestSetBaseURLStripsTrailingSlashes(t *testing.T) {
	client := orchestrator.New("http://localhost:8080")
	client.SetBaseURL("http://host:8080///")
	if got := client.BaseURL(); got != "http://host:8080" {
		t.Fatalf("BaseURL = %q, want http://host:8080", got)
	}

	client = orchestrator.New("  http://other:1/ ")
	if got := client.BaseURL(); got != "http://other:1" {
		t.Fatalf("BaseURL = %q, want http://other:1", got)
	}
}

func TestJobsDecodesTolerantly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jobs" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"jobKey":"abc","state":"RUNNING","stage":"ocr","attempt":2,"updatedAt":"2024-05-01T10:00:00Z","inputName":"one.cbz"},
			{"jobKey":"def","state":"QUEUED","attempt":"3"},
			{"jobKey":"ghi","state":null,"attempt":null,"extra":{"nested":true}}
		]`)
	}))
	defer srv.Close()

	client := orchestrator.New(srv.URL)
	list := client.Jobs(context.Background())
	if len(list) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(list))
	}
	first := list[0]
	if first.Key != "abc" || first.State != "RUNNING" || first.Stage != "ocr" || first.Attempt != "2" || first.InputName != "one.cbz" {
		t.Fatalf("unexpected first job: %+v", first)
	}
	if list[1].Attempt != "3" || list[1].Stage != "" || list[1].UpdatedAt != "" {
		t.Fatalf("unexpected second job: %+v", list[1])
	}
	if list[2].Attempt != "0" || list[2].State != "" {
		t.Fatalf("expected defaults for nulls, got %+v", list[2])
	}
}

func TestFetchJobsSkipsNonObjectEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `["x", {"jobKey":"abc","state":"DONE"}, 7, null, [1], {"jobKey":"def"}]`)
	}))
	defer srv.Close()

	list, err := orchestrator.New(srv.URL).FetchJobs(context.Background())
	if err != nil {
		t.Fatalf("FetchJobs: %v", err)
	}
	if len(list) != 2 || list[0].Key != "abc" || list[0].State != "DONE" || list[1].Key != "def" {
		t.Fatalf("expected the two object entries, got %+v", list)
	}
}

func TestJobsEmptyOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{name: "not found", handler: func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}},
		{name: "malformed body", handler: func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"not":"an array"`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := orchestrator.New(srv.URL)
			list := client.Jobs(context.Background())
			if list == nil || len(list) != 0 {
				t.Fatalf("expected empty non-nil list, got %#v", list)
			}
			if _, err := client.FetchJobs(context.Background()); err == nil {
				t.Fatal("expected FetchJobs to report the failure")
			}
		})
	}
}

func TestUnreachableOrchestrator(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	client := orchestrator.New("http://" + addr)
	ctx := context.Background()

	if list := client.Jobs(ctx); len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
	if _, ok := client.Job(ctx, "abc"); ok {
		t.Fatal("expected Job to report missing")
	}
	if metrics := client.Metrics(ctx); metrics == nil || len(metrics) != 0 {
		t.Fatalf("expected empty metrics, got %#v", metrics)
	}
	if client.PostConfig(ctx, appconfig.Default()) {
		t.Fatal("expected PostConfig to fail")
	}

	_, err = client.FetchJobs(ctx)
	if !orchestrator.IsUnavailable(err) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if !errors.Is(err, orchestrator.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable in chain, got %v", err)
	}
}

func TestJobEscapesKeyAndHandlesNotFound(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		if r.URL.Path == "/jobs/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"jobKey":"a b","state":"DONE","attempt":1}`)
	}))
	defer srv.Close()

	client := orchestrator.New(srv.URL)
	job, ok := client.Job(context.Background(), "a b")
	if !ok || job.Key != "a b" || job.State != "DONE" || job.Attempt != "1" {
		t.Fatalf("unexpected job: %+v ok=%v", job, ok)
	}
	if gotPath != "/jobs/a%20b" {
		t.Fatalf("expected escaped path, got %q", gotPath)
	}

	if _, ok := client.Job(context.Background(), "missing"); ok {
		t.Fatal("expected 404 to report missing")
	}
	_, err := client.FetchJob(context.Background(), "missing")
	if !orchestrator.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if orchestrator.IsUnavailable(err) {
		t.Fatal("404 must not count as unavailable")
	}
}

func TestMetricsPassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"queued":3,"workers":{"ocr":1}}`)
	}))
	defer srv.Close()

	metrics := orchestrator.New(srv.URL).Metrics(context.Background())
	if metrics["queued"] != float64(3) {
		t.Fatalf("expected queued=3, got %#v", metrics["queued"])
	}
	if _, ok := metrics["workers"].(map[string]any); !ok {
		t.Fatalf("expected nested object, got %#v", metrics["workers"])
	}
}

func TestPostConfigSendsWireSchema(t *testing.T) {
	var (
		mu      sync.Mutex
		payload map[string]any
		method  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		method = r.Method
		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "bad content type", http.StatusUnsupportedMediaType)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = io.WriteString(w, `{"applied":{}}`)
	}))
	defer srv.Close()

	cfg := appconfig.AppConfig{
		OrchestratorURL:   srv.URL,
		PrepConcurrency:   4,
		OCRConcurrency:    2,
		JobTimeoutSeconds: 1200,
		DefaultOCRLang:    "eng",
	}
	if !orchestrator.New(srv.URL).PostConfig(context.Background(), cfg) {
		t.Fatal("expected PostConfig to succeed")
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPost {
		t.Fatalf("expected POST, got %s", method)
	}
	want := map[string]any{
		"prep_concurrency": float64(4),
		"ocr_concurrency":  float64(2),
		"job_timeout_s":    float64(1200),
		"default_ocr_lang": "eng",
	}
	if len(payload) != len(want) {
		t.Fatalf("unexpected payload keys: %#v", payload)
	}
	for key, value := range want {
		if payload[key] != value {
			t.Fatalf("payload[%s] = %#v, want %#v", key, payload[key], value)
		}
	}
}

func TestPostConfigRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	if orchestrator.New(srv.URL).PostConfig(context.Background(), appconfig.Default()) {
		t.Fatal("expected PostConfig to fail on 400")
	}
}

func TestFetchConfigAcceptsEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "flat", body: `{"prep_concurrency":3,"ocr_concurrency":1,"job_timeout_s":900,"default_ocr_lang":"deu"}`},
		{name: "applied", body: `{"applied":{"prep_concurrency":3,"ocr_concurrency":1,"job_timeout_s":900,"default_ocr_lang":"deu"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			cfg, err := orchestrator.New(srv.URL).FetchConfig(context.Background())
			if err != nil {
				t.Fatalf("FetchConfig: %v", err)
			}
			if cfg.PrepConcurrency != 3 || cfg.JobTimeoutS != 900 || cfg.DefaultOCRLang != "deu" {
				t.Fatalf("unexpected config: %+v", cfg)
			}
		})
	}
}

func TestTimeoutBoundsSlowServer(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := orchestrator.New(srv.URL, orchestrator.WithTimeout(100*time.Millisecond))
	start := time.Now()
	if list := client.Jobs(context.Background()); len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("request not bounded by timeout: %s", elapsed)
	}
}

func TestBaseURLConcurrentAccess(t *testing.T) {
	client := orchestrator.New("http://a:1")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			client.SetBaseURL("http://b:2/")
		}()
		go func() {
			defer wg.Done()
			_ = client.BaseURL()
		}()
	}
	wg.Wait()
	if got := client.BaseURL(); got != "http://b:2" {
		t.Fatalf("BaseURL = %q", got)
	}
}
