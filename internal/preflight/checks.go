package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	"comicdesk/internal/appconfig"
	"comicdesk/internal/jobs"
	"comicdesk/internal/orchestrator"
)

// JobsFetcher is the orchestrator call used to prove reachability.
type JobsFetcher interface {
	FetchJobs(ctx context.Context) ([]jobs.Job, error)
}

// CheckOrchestrator verifies that GET /jobs answers with a job list.
func CheckOrchestrator(ctx context.Context, baseURL string, client JobsFetcher) Result {
	const name = "Orchestrator"

	if client == nil {
		return Result{Name: name, Detail: "client not configured"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, orchestrator.DefaultTimeout)
	defer cancel()

	list, err := client.FetchJobs(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%s)", baseURL, summarizeOrchestratorError(err))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (reachable, %d jobs)", baseURL, len(list))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkReadWrite(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOptionalDirectory passes when the directory is missing, since the
// client creates it on first use, and otherwise applies CheckDirectoryAccess.
func CheckOptionalDirectory(name, path string) Result {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (created on first use)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

// CheckAppConfig reports whether the saved orchestrator settings decode the
// way appconfig.Store.Load reads them. A missing file passes because defaults
// apply.
func CheckAppConfig(path string) Result {
	const name = "App config"

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (not saved yet, defaults apply)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if _, err := appconfig.Decode(data); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v; defaults apply)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

func summarizeOrchestratorError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out"
	}
	var statusErr *orchestrator.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("responded with status %d", statusErr.Code)
	}
	if orchestrator.IsUnavailable(err) {
		return "unreachable"
	}
	return err.Error()
}

