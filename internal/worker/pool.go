package worker

import (
	"context"
	"sync"
)

// Job is one unit of work run by a Pool
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a Job produces
type Result interface {
	GetError() error
}

type task struct {
	slot int
	job  Job
}

// Pool runs jobs on a fixed number of workers. Each job gets a result slot
// at submission, so Wait returns results in submission order no matter
// which worker finishes first.
type Pool struct {
	size   int
	queue  chan task
	ctx    context.Context
	cancel context.CancelFunc
	active sync.WaitGroup

	// gate keeps Submit from sending on a queue Wait has closed
	gate   sync.RWMutex
	closed bool

	mu       sync.Mutex
	slots    []Result
	done     []bool
	onResult func(Result)
}

// NewPool creates a pool of workers bounded by ctx. Fewer than one worker
// means one.
func NewPool(ctx context.Context, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		size:   workers,
		queue:  make(chan task, workers),
		ctx:    ctx,
		cancel: cancel,
	}
}

// OnResult sets a callback run once per finished job. Calls are
// serialized. Set it before Start.
func (p *Pool) OnResult(fn func(Result)) {
	p.onResult = fn
}

// Start launches the workers
func (p *Pool) Start() {
	p.active.Add(p.size)
	for i := 0; i < p.size; i++ {
		go p.work()
	}
}

func (p *Pool) work() {
	defer p.active.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case t, ok := <-p.queue:
			if !ok {
				return
			}
			p.store(t.slot, t.job.Execute(p.ctx))
		}
	}
}

func (p *Pool) store(slot int, r Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.slots[slot] = r
	p.done[slot] = true
	if p.onResult != nil {
		p.onResult(r)
	}
}

// Submit queues a job, blocking while every worker is busy. It is a no-op
// once the pool's context is canceled or Wait has been called.
func (p *Pool) Submit(job Job) {
	p.gate.RLock()
	defer p.gate.RUnlock()
	if p.closed {
		return
	}

	p.mu.Lock()
	slot := len(p.slots)
	p.slots = append(p.slots, nil)
	p.done = append(p.done, false)
	p.mu.Unlock()

	select {
	case <-p.ctx.Done():
	case p.queue <- task{slot: slot, job: job}:
	}
}

// Wait lets queued jobs drain and returns their results in submission
// order. Jobs that never ran because the pool was canceled are left out.
func (p *Pool) Wait() []Result {
	p.gate.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.gate.Unlock()

	p.active.Wait()
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Result, 0, len(p.slots))
	for i, r := range p.slots {
		if p.done[i] {
			out = append(out, r)
		}
	}
	return out
}
