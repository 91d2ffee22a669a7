package jobwatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"comicdesk/internal/jobs"
	"comicdesk/internal/logging"
)

// DefaultInterval is the job list refresh period.
const DefaultInterval = 3 * time.Second

// Fetcher loads the orchestrator job list. A non-nil error means the fetch
// failed, as opposed to an orchestrator with no jobs.
type Fetcher interface {
	FetchJobs(ctx context.Context) ([]jobs.Job, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]jobs.Job, error)

func (f FetcherFunc) FetchJobs(ctx context.Context) ([]jobs.Job, error) {
	return f(ctx)
}

// Result is one completed fetch.
type Result struct {
	Generation uint64
	Jobs       []jobs.Job
	Err        error
	FetchedAt  time.Time
}

// Poller fetches the job list on a fixed interval and publishes each result
// on Results. It never touches the job table itself.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *slog.Logger
	results  chan Result

	generation atomic.Uint64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPoller builds a poller. A non-positive interval uses DefaultInterval.
func NewPoller(fetcher Fetcher, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "job-poller"),
		results:  make(chan Result, 1),
	}
}

// Results delivers completed fetches. Consumers should drop results for which
// Current reports false.
func (p *Poller) Results() <-chan Result {
	if p == nil {
		return nil
	}
	return p.results
}

// Current reports whether r was produced by the running poll loop. Results
// that complete after Stop, or that belong to an earlier Start, are stale.
func (p *Poller) Current(r Result) bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()
	return running && r.Generation == p.generation.Load()
}

// Start launches the poll loop. The first fetch happens immediately.
func (p *Poller) Start(ctx context.Context) error {
	if p == nil || p.fetcher == nil {
		return errors.New("job poller unavailable")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return errors.New("job poller already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	gen := p.generation.Add(1)

	p.wg.Add(1)
	go p.loop(runCtx, gen)
	return nil
}

// Stop cancels the poll loop and waits for it to exit. It is safe to call
// more than once, on a poller that was never started, or on nil.
func (p *Poller) Stop() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.generation.Add(1)
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *Poller) loop(ctx context.Context, gen uint64) {
	defer p.wg.Done()

	p.poll(ctx, gen)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, gen)
		}
	}
}

func (p *Poller) poll(ctx context.Context, gen uint64) {
	list, err := p.fetcher.FetchJobs(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Debug("job fetch failed", logging.Error(err))
	}

	result := Result{Generation: gen, Jobs: list, Err: err, FetchedAt: time.Now()}
	select {
	case p.results <- result:
	case <-ctx.Done():
	}
}
