package jobwatch

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"comicdesk/internal/jobs"
	"comicdesk/internal/logging"
)

// ErrBoardStopped is returned by requests made after Run has returned.
var ErrBoardStopped = errors.New("job board stopped")

// Listener receives table events on the board's owner goroutine. Job pointers
// in changes are table rows and must not be retained past the call.
type Listener interface {
	JobsChanged(changes []jobs.Change)
	FetchFailed(err error)
}

type request struct {
	fn   func(*jobs.Table)
	done chan struct{}
}

// Board owns the job table. Only the goroutine running Run reads or writes
// it; everything else goes through the request channel.
type Board struct {
	table    *jobs.Table
	fetcher  Fetcher
	poller   *Poller
	listener Listener
	logger   *slog.Logger

	requests chan request
	stopped  chan struct{}
	started  atomic.Bool

	lastSuccess time.Time
}

// NewBoard wires a board. poller and listener may be nil.
func NewBoard(fetcher Fetcher, poller *Poller, listener Listener, logger *slog.Logger) *Board {
	return &Board{
		table:    jobs.NewTable(),
		fetcher:  fetcher,
		poller:   poller,
		listener: listener,
		logger:   logging.NewComponentLogger(logger, "job-board"),
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
}

// Run applies poller results and queued requests until ctx is done. It may
// only be called once.
func (b *Board) Run(ctx context.Context) error {
	if !b.started.CompareAndSwap(false, true) {
		return errors.New("job board already running")
	}
	defer close(b.stopped)

	results := b.poller.Results()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok := <-results:
			if !ok {
				results = nil
				continue
			}
			if !b.poller.Current(res) {
				b.logger.Debug("discarding stale job result", logging.Uint64("generation", res.Generation))
				continue
			}
			b.apply(res)
		case req := <-b.requests:
			req.fn(b.table)
			close(req.done)
		}
	}
}

// Refresh fetches the job list on the caller's goroutine and hands the result
// to the owner. The fetch error, if any, is returned and the table is left
// untouched.
func (b *Board) Refresh(ctx context.Context) error {
	if b.fetcher == nil {
		return errors.New("job board has no fetcher")
	}
	list, err := b.fetcher.FetchJobs(ctx)
	res := Result{Jobs: list, Err: err, FetchedAt: time.Now()}
	if execErr := b.exec(ctx, func(*jobs.Table) { b.apply(res) }); execErr != nil {
		return execErr
	}
	return err
}

// Snapshot returns value copies of the current rows.
func (b *Board) Snapshot(ctx context.Context) ([]jobs.Job, error) {
	var out []jobs.Job
	err := b.exec(ctx, func(t *jobs.Table) {
		rows := t.Rows()
		out = make([]jobs.Job, 0, len(rows))
		for _, row := range rows {
			out = append(out, *row)
		}
	})
	return out, err
}

// LastSuccess returns when the table was last reconciled.
func (b *Board) LastSuccess(ctx context.Context) (time.Time, error) {
	var at time.Time
	err := b.exec(ctx, func(*jobs.Table) { at = b.lastSuccess })
	return at, err
}

func (b *Board) exec(ctx context.Context, fn func(*jobs.Table)) error {
	req := request{fn: fn, done: make(chan struct{})}
	select {
	case b.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stopped:
		return ErrBoardStopped
	}
	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stopped:
		return ErrBoardStopped
	}
}

// apply runs on the owner goroutine. A failed fetch keeps the stale rows.
func (b *Board) apply(res Result) {
	if res.Err != nil {
		if b.listener != nil {
			b.listener.FetchFailed(res.Err)
		}
		return
	}
	changes := b.table.Reconcile(res.Jobs)
	b.lastSuccess = res.FetchedAt
	if len(changes) > 0 {
		b.logger.Debug("job table reconciled",
			logging.Int("changes", len(changes)),
			logging.Int("rows", b.table.Len()))
	}
	if b.listener != nil && len(changes) > 0 {
		b.listener.JobsChanged(changes)
	}
}
