package harness

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Source hands out attempts to check. Pop blocks until an attempt is
// available or ctx ends; a nil attempt with a nil error means nothing
// arrived and the caller should ask again.
type Source interface {
	Pop(ctx context.Context) (*Attempt, error)
}

// Sink receives finished run records.
type Sink interface {
	PublishResult(ctx context.Context, record *RunRecord) error
}

// Pool checks attempts from a Source with a fixed number of workers. Each
// check builds its own simulator, so workers share nothing but the Runner.
type Pool struct {
	Runner      *Runner
	Source      Source
	Sink        Sink
	Concurrency int
	Logger      *slog.Logger
	// RetryDelay is the pause after a failed Pop.
	RetryDelay time.Duration
}

// Run blocks until ctx is cancelled and all workers have returned.
func (p *Pool) Run(ctx context.Context) error {
	if p.Runner == nil || p.Source == nil {
		return errors.New("pool needs a runner and a source")
	}
	workers := p.Concurrency
	if workers <= 0 {
		workers = 4
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("pool_id", uuid.NewString())
	logger.Info("pool starting", "workers", workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerNum int) {
			defer wg.Done()
			p.work(ctx, logger.With("worker", workerNum))
		}(i)
	}
	wg.Wait()
	logger.Info("pool stopped")
	return nil
}

func (p *Pool) work(ctx context.Context, logger *slog.Logger) {
	delay := p.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	for ctx.Err() == nil {
		attempt, err := p.Source.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("pop attempt", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		if attempt == nil {
			continue
		}
		record, err := p.Runner.Evaluate(ctx, *attempt)
		if err != nil {
			logger.Error("evaluate attempt", "attempt_id", attempt.ID, "error", err)
			continue
		}
		if p.Sink == nil {
			continue
		}
		if err := p.Sink.PublishResult(ctx, record); err != nil {
			logger.Error("publish result", "run_id", record.ID, "error", err)
		}
	}
}
