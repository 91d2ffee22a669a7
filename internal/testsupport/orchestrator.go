package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"comicdesk/internal/jobs"
	"comicdesk/internal/orchestrator"
)

// FakeOrchestrator serves the orchestrator HTTP API from memory.
type FakeOrchestrator struct {
	Server *httptest.Server

	mu      sync.Mutex
	jobs    []jobs.Job
	metrics map[string]any
	config  orchestrator.ConfigPatch
	posts   []orchestrator.ConfigPatch
	failing bool
}

// NewFakeOrchestrator starts a server and registers cleanup.
func NewFakeOrchestrator(t testing.TB) *FakeOrchestrator {
	t.Helper()

	f := &FakeOrchestrator{metrics: map[string]any{}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /jobs", f.handleJobs)
	mux.HandleFunc("GET /jobs/{key}", f.handleJob)
	mux.HandleFunc("GET /metrics", f.handleMetrics)
	mux.HandleFunc("GET /config", f.handleGetConfig)
	mux.HandleFunc("POST /config", f.handlePostConfig)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server base URL.
func (f *FakeOrchestrator) URL() string {
	return f.Server.URL
}

// SetJobs replaces the served job list.
func (f *FakeOrchestrator) SetJobs(list ...jobs.Job) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append([]jobs.Job(nil), list...)
}

// SetMetrics replaces the served metrics document.
func (f *FakeOrchestrator) SetMetrics(m map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metrics = m
}

// SetFailing makes every endpoint answer 503.
func (f *FakeOrchestrator) SetFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

// ConfigPosts returns every accepted POST /config payload.
func (f *FakeOrchestrator) ConfigPosts() []orchestrator.ConfigPatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]orchestrator.ConfigPatch(nil), f.posts...)
}

func (f *FakeOrchestrator) unavailable(w http.ResponseWriter) bool {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}
	return failing
}

func (f *FakeOrchestrator) handleJobs(w http.ResponseWriter, _ *http.Request) {
	if f.unavailable(w) {
		return
	}
	f.mu.Lock()
	payload := make([]map[string]any, 0, len(f.jobs))
	for _, j := range f.jobs {
		payload = append(payload, wireJob(j))
	}
	f.mu.Unlock()
	writeJSON(w, payload)
}

func (f *FakeOrchestrator) handleJob(w http.ResponseWriter, r *http.Request) {
	if f.unavailable(w) {
		return
	}
	key := r.PathValue("key")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.Key == key {
			writeJSON(w, wireJob(j))
			return
		}
	}
	http.NotFound(w, r)
}

func (f *FakeOrchestrator) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	if f.unavailable(w) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, f.metrics)
}

func (f *FakeOrchestrator) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	if f.unavailable(w) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, f.config)
}

func (f *FakeOrchestrator) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	if f.unavailable(w) {
		return
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "expected json", http.StatusUnsupportedMediaType)
		return
	}
	var patch orchestrator.ConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.config = patch
	f.posts = append(f.posts, patch)
	f.mu.Unlock()
	writeJSON(w, map[string]any{"applied": patch})
}

// wireJob renders attempt as a number, the way the orchestrator does.
func wireJob(j jobs.Job) map[string]any {
	attempt, _ := strconv.Atoi(j.Attempt)
	return map[string]any{
		"jobKey":    j.Key,
		"state":     j.State,
		"stage":     j.Stage,
		"attempt":   attempt,
		"updatedAt": j.UpdatedAt,
		"inputName": j.InputName,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
