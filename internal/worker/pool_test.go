package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type stepResult struct {
	n   int
	err error
}

func (r *stepResult) GetError() error { return r.err }

// stepJob returns its own number after an optional delay
type stepJob struct {
	n        int
	delay    time.Duration
	fail     bool
	inFlight *int32
	peak     *int32
}

func (j *stepJob) Execute(ctx context.Context) Result {
	if j.inFlight != nil {
		cur := atomic.AddInt32(j.inFlight, 1)
		defer atomic.AddInt32(j.inFlight, -1)
		for {
			old := atomic.LoadInt32(j.peak)
			if cur <= old || atomic.CompareAndSwapInt32(j.peak, old, cur) {
				break
			}
		}
	}
	if err := Sleep(ctx, j.delay); err != nil {
		return &stepResult{n: j.n, err: err}
	}
	if j.fail {
		return &stepResult{n: j.n, err: errors.New("step failed")}
	}
	return &stepResult{n: j.n}
}

type panicJob struct{}

func (panicJob) Execute(context.Context) Result { panic("boom") }

func TestNewPool_Workers(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{5, 5},
		{0, 1},
		{-1, 1},
	}
	for _, tt := range tests {
		p := NewPool(tt.in)
		if p.workers != tt.want {
			t.Errorf("NewPool(%d): expected %d workers, got %d", tt.in, tt.want, p.workers)
		}
	}
}

func TestPool_ResultsInSubmissionOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := NewPool(4)
	p.Start()
	const count = 20
	for i := 0; i < count; i++ {
		// later jobs finish first
		p.Submit(&stepJob{n: i, delay: time.Duration(count-i) * time.Millisecond})
	}

	results := p.Wait()
	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	for i, r := range results {
		if got := r.(*stepResult).n; got != i {
			t.Errorf("slot %d holds result of job %d", i, got)
		}
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	var inFlight, peak int32
	p := NewPool(3)
	p.Start()
	for i := 0; i < 12; i++ {
		p.Submit(&stepJob{n: i, delay: 5 * time.Millisecond, inFlight: &inFlight, peak: &peak})
	}
	p.Wait()

	if got := atomic.LoadInt32(&peak); got > 3 {
		t.Errorf("expected at most 3 concurrent jobs, saw %d", got)
	}
}

func TestPool_ErrorsAndPanics(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := NewPool(2)
	p.Start()
	p.Submit(&stepJob{n: 0})
	p.Submit(&stepJob{n: 1, fail: true})
	p.Submit(panicJob{})

	results := p.Wait()
	if results[0].GetError() != nil {
		t.Errorf("job 0: unexpected error %v", results[0].GetError())
	}
	if results[1].GetError() == nil {
		t.Error("job 1: expected error")
	}
	var pe *PanicError
	if !errors.As(results[2].GetError(), &pe) || pe.Value != "boom" {
		t.Errorf("job 2: expected PanicError, got %v", results[2].GetError())
	}
}

func TestPool_SubmitAfterWait(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := NewPool(1)
	p.Start()
	p.Wait()
	if p.Submit(&stepJob{}) {
		t.Error("Submit after Wait should be rejected")
	}
}

func TestPool_ContextCancelLeavesUnrunSlots(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoolContext(ctx, 1)
	p.Start()

	p.Submit(&stepJob{n: 0, delay: time.Second})
	p.Submit(&stepJob{n: 1})
	cancel()

	results := p.Wait()
	if len(results) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(results))
	}
	if results[0] == nil || !errors.Is(results[0].GetError(), context.Canceled) {
		t.Errorf("running job should observe cancellation, got %v", results[0])
	}
	if results[1] != nil {
		t.Errorf("queued job should not run after cancel, got %v", results[1])
	}
}

func TestPool_Shutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := NewPool(2)
	p.Start()
	for i := 0; i < 4; i++ {
		p.Submit(&stepJob{n: i, delay: time.Second})
	}

	done := make(chan struct{})
	go func() {
		p.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return promptly")
	}
	if p.Submit(&stepJob{}) {
		t.Error("Submit after Shutdown should be rejected")
	}
}

func TestPool_ManyJobsDoNotDeadlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := NewPool(2)
	p.Start()
	for i := 0; i < 500; i++ {
		p.Submit(&stepJob{n: i})
	}
	if got := len(p.Wait()); got != 500 {
		t.Errorf("expected 500 results, got %d", got)
	}
}
