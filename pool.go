package optimizer

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/gammazero/deque"
)

type JobKind string

const (
	JobComputeLoad    = JobKind("compute-load")
	JobRecommend      = JobKind("recommend")
	JobAutoDistribute = JobKind("auto-distribute")
	JobPredictLoad    = JobKind("predict-load")
)

type JobStatus uint8

const (
	JobQueued JobStatus = iota + 1
	JobRunning
	JobCompleted
	JobFailed
)

func (s JobStatus) String() string {
	switch s {
	case JobQueued:
		return "queued"
	case JobRunning:
		return "running"
	case JobCompleted:
		return "completed"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Future resolves to the job result exactly once. Every submitted job ends
// Completed or Failed, never silently dropped.
type Future struct {
	done chan struct{}

	mu     sync.Mutex
	status JobStatus
	value  any
	err    error
}

func newFuture() *Future {
	return &Future{
		done:   make(chan struct{}),
		status: JobQueued,
	}
}

func (f *Future) Done() <-chan struct{} {
	return f.done
}

func (f *Future) Status() JobStatus {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.status
}

// Wait blocks until the job resolves or the context ends.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil,
			ctx.Err()

	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()

		return f.value,
			f.err
	}
}

func (f *Future) markRunning() {
	f.mu.Lock()
	f.status = JobRunning
	f.mu.Unlock()
}

func (f *Future) resolve(value any, errRun error) {
	f.mu.Lock()

	f.value = value
	f.err = errRun
	f.status = ternary(errRun == nil, JobCompleted, JobFailed)

	f.mu.Unlock()

	close(f.done)
}

type job struct {
	kind   JobKind
	run    func() (any, error)
	future *Future
}

// WorkerPool executes optimization jobs on at most Concurrency goroutines,
// queueing overflow in FIFO order. The mutex-guarded counter and queue are
// the only synchronized state; jobs themselves share nothing.
type WorkerPool struct {
	mu          sync.Mutex
	queue       deque.Deque[*job]
	running     int
	concurrency int
	isShutdown  bool

	wg sync.WaitGroup
}

type ParamsNewWorkerPool struct {
	// Concurrency caps simultaneously running jobs. Zero or negative
	// means the host parallelism.
	Concurrency int
}

func NewWorkerPool(params *ParamsNewWorkerPool) *WorkerPool {
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	return &WorkerPool{
		concurrency: concurrency,
	}
}

// Submit never blocks: the job starts immediately when a slot is free,
// otherwise it queues. Submitting after Shutdown fails with ErrPoolShutdown.
func (pool *WorkerPool) Submit(kind JobKind, run func() (any, error)) (*Future, error) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.isShutdown {
		return nil,
			ErrPoolShutdown
	}

	j := job{
		kind:   kind,
		run:    run,
		future: newFuture(),
	}

	if pool.running < pool.concurrency {
		pool.startLocked(&j)
	} else {
		pool.queue.PushBack(&j)
	}

	return j.future, nil
}

func (pool *WorkerPool) startLocked(j *job) {
	pool.running++
	j.future.markRunning()

	pool.wg.Add(1)

	go pool.execute(j)
}

func (pool *WorkerPool) execute(j *job) {
	defer pool.wg.Done()

	value, errRun := runGuarded(j)

	j.future.resolve(value, errRun)

	pool.mu.Lock()

	pool.running--

	// Reclaim the slot for the next queued job, failure or not.
	if !pool.isShutdown && pool.queue.Len() > 0 {
		pool.startLocked(pool.queue.PopFront())
	}

	pool.mu.Unlock()
}

// runGuarded surfaces an executor panic as a Failed result instead of
// corrupting the pool.
func runGuarded(j *job) (value any, errRun error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			value = nil
			errRun = fmt.Errorf(
				"%s job panicked: %v",

				j.kind,
				recovered,
			)
		}
	}()

	return j.run()
}

// Shutdown discards queued jobs, delivering ErrPoolShutdown to their
// futures, and waits for running jobs to finish. Idempotent.
func (pool *WorkerPool) Shutdown() {
	pool.mu.Lock()

	if pool.isShutdown {
		pool.mu.Unlock()

		return
	}

	pool.isShutdown = true

	for pool.queue.Len() > 0 {
		discarded := pool.queue.PopFront()
		discarded.future.resolve(nil, ErrPoolShutdown)
	}

	pool.mu.Unlock()

	pool.wg.Wait()
}
