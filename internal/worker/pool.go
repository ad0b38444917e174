package worker

import (
	"context"
	"fmt"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// PanicError is the error of a job that panicked
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}

type panicked struct {
	err *PanicError
}

func (p panicked) GetError() error { return p.err }

type slot struct {
	index int
	job   Job
}

// Pool runs submitted jobs on a fixed number of goroutines. Results are
// returned in submission order; a job that never ran leaves a nil slot.
type Pool struct {
	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	queue   chan slot
	wg      sync.WaitGroup

	// sendMu orders Submit against closing the queue
	sendMu sync.RWMutex
	closed bool

	mu      sync.Mutex
	results []Result
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	return NewPoolContext(context.Background(), workers)
}

// NewPoolContext creates a worker pool whose jobs observe ctx
func NewPoolContext(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
		queue:   make(chan slot, workers*2),
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
}

func (p *Pool) work() {
	defer p.wg.Done()
	for s := range p.queue {
		// keep draining after cancellation so blocked senders are released
		if p.ctx.Err() != nil {
			continue
		}
		r := p.run(s.job)

		p.mu.Lock()
		p.results[s.index] = r
		p.mu.Unlock()
	}
}

func (p *Pool) run(job Job) (r Result) {
	defer func() {
		if v := recover(); v != nil {
			r = panicked{err: &PanicError{Value: v}}
		}
	}()
	return job.Execute(p.ctx)
}

// Submit queues job. It reports false when the pool is closed or its
// context is done.
func (p *Pool) Submit(job Job) bool {
	p.sendMu.RLock()
	defer p.sendMu.RUnlock()
	if p.closed || p.ctx.Err() != nil {
		return false
	}

	p.mu.Lock()
	index := len(p.results)
	p.results = append(p.results, nil)
	p.mu.Unlock()

	select {
	case p.queue <- slot{index: index, job: job}:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Wait closes the pool to new jobs, waits for queued jobs to finish and
// returns one entry per submitted job.
func (p *Pool) Wait() []Result {
	p.close()
	p.wg.Wait()
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Result, len(p.results))
	copy(out, p.results)
	return out
}

// Shutdown cancels running jobs and drops queued ones
func (p *Pool) Shutdown() {
	p.cancel()
	p.close()
	p.wg.Wait()
}

func (p *Pool) close() {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
}
