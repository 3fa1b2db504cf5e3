package jobs

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Task performs one outbound delivery. Tasks handle their own failures; the
// pool never retries and a failing task does not affect its siblings.
type Task func(ctx context.Context)

// Pool fans tasks out over a bounded number of workers. A reminder run with a
// large recipient set queues one task per recipient instead of awaiting each
// send in sequence.
type Pool struct {
	workers int
	logger  *zap.Logger
}

// NewPool builds a pool with the given concurrency bound.
func NewPool(workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{workers: workers, logger: logger}
}

// Run executes all tasks and blocks until the batch drains. Tasks not yet
// started when ctx is cancelled are dropped; in-flight tasks are awaited.
func (p *Pool) Run(ctx context.Context, tasks []Task) {
	if len(tasks) == 0 {
		return
	}

	sem := make(chan struct{}, p.workers)
	var wg sync.WaitGroup

	for _, task := range tasks {
		select {
		case <-ctx.Done():
			p.logger.Warn("dispatch batch cancelled", zap.Int("remaining", len(tasks)))
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(t Task) {
			defer func() {
				<-sem
				wg.Done()
			}()
			t(ctx)
		}(task)
	}

	wg.Wait()
}
