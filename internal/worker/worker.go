package worker

import (
	"context"
	"log/slog"
	"sync"
)

type ProcessFunc[J any] func(ctx context.Context, job J) error

// Pool runs a fixed number of goroutines that drain a buffered job queue.
type Pool[J any] struct {
	numWorkers int
	jobs       chan J
	processor  ProcessFunc[J]
	wg         sync.WaitGroup
}

func NewPool[J any](numWorkers int, bufferSize int, processor ProcessFunc[J]) *Pool[J] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool[J]{
		numWorkers: numWorkers,
		jobs:       make(chan J, bufferSize),
		processor:  processor,
	}
}

func (p *Pool[J]) Start(ctx context.Context) {
	for i := 1; i <= p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool[J]) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			if err := p.processor(ctx, job); err != nil {
				slog.Debug("job failed", "worker", id, "error", err)
			}
		}
	}
}

func (p *Pool[J]) Submit(job J) {
	p.jobs <- job
}

// Stop closes the queue and waits for the workers to drain it.
func (p *Pool[J]) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Run processes every job on a short-lived pool and returns once all of them
// have been handled (or ctx is done).
func Run[J any](ctx context.Context, numWorkers int, jobs []J, processor ProcessFunc[J]) {
	p := NewPool(numWorkers, len(jobs), processor)
	p.Start(ctx)
	for _, j := range jobs {
		p.Submit(j)
	}
	p.Stop()
}
