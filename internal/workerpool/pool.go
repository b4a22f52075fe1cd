// Package workerpool wraps the bounded worker pool the teacher's scene
// package uses for its compute-prep phase
// (github.com/Carmen-Shannon/automation/tools/worker.DynamicWorkerPool)
// for this module's own intra-step fan-out: the simplifier's per-primitive
// collapse passes and the texture step's per-texture re-encodes are
// submitted here (spec §5).
package workerpool

import (
	"context"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Task is one unit of fan-out work. A non-nil return fails the batch but
// does not stop the other tasks; RunAll reports the first error seen.
type Task func() error

// Pool bounds concurrency for a batch of independent, disjoint-write-set
// tasks using the same dynamically-sized worker pool the teacher's scene
// compute phase submits to.
type Pool struct {
	inner worker.DynamicWorkerPool
}

// New returns a Pool backed by workers goroutines, a submission queue of
// queueSize, and timeout per task.
func New(workers, queueSize int, timeout time.Duration) *Pool {
	p := worker.NewDynamicWorkerPool(workers, queueSize, timeout)
	return &Pool{inner: p}
}

// RunAll submits every task to the pool and blocks until every task has
// returned. Once ctx is cancelled, tasks that have not started yet return
// ctx.Err() without running; the pool has no way to interrupt work
// already handed to a worker goroutine.
func (p *Pool) RunAll(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	wg.Add(len(tasks))
	for i, t := range tasks {
		t := t
		p.inner.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				if ctxErr := ctx.Err(); ctxErr != nil {
					recordErr(&mu, &firstErr, ctxErr)
					return nil, ctxErr
				}
				if err := t(); err != nil {
					recordErr(&mu, &firstErr, err)
					return nil, err
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return firstErr
}

func recordErr(mu *sync.Mutex, dst *error, err error) {
	mu.Lock()
	defer mu.Unlock()
	if *dst == nil {
		*dst = err
	}
}
