package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// stubResult carries the submitting index
type stubResult struct {
	id  int
	err error
}

func (r *stubResult) GetError() error { return r.err }

// stubJob sleeps for delay, honoring cancellation, then reports id
type stubJob struct {
	id    int
	delay time.Duration
	fail  bool
	hook  func()
}

func (j *stubJob) Execute(ctx context.Context) Result {
	if j.hook != nil {
		j.hook()
	}
	if j.delay > 0 {
		timer := time.NewTimer(j.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return &stubResult{id: j.id, err: ctx.Err()}
		}
	}
	if j.fail {
		return &stubResult{id: j.id, err: errors.New("job failed")}
	}
	return &stubResult{id: j.id}
}

func runPool(t *testing.T, workers int, jobs []Job) []Result {
	t.Helper()
	pool := NewPool(context.Background(), workers)
	pool.Start()
	for _, j := range jobs {
		pool.Submit(j)
	}
	return pool.Wait()
}

func TestNewPool_Workers(t *testing.T) {
	for _, tt := range []struct{ in, want int }{{4, 4}, {1, 1}, {0, 1}, {-3, 1}} {
		if got := NewPool(context.Background(), tt.in).size; got != tt.want {
			t.Errorf("NewPool(%d).size = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPool_OrderAndErrors(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		jobs    int
		failing map[int]bool
	}{
		{"single worker", 1, 5, nil},
		{"more jobs than workers", 3, 40, map[int]bool{2: true, 17: true}},
		{"more workers than jobs", 8, 3, map[int]bool{0: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := make([]Job, tt.jobs)
			for i := range jobs {
				// later jobs finish first
				jobs[i] = &stubJob{id: i, delay: time.Duration(tt.jobs-i) * time.Millisecond, fail: tt.failing[i]}
			}

			results := runPool(t, tt.workers, jobs)
			if len(results) != tt.jobs {
				t.Fatalf("expected %d results, got %d", tt.jobs, len(results))
			}
			for i, r := range results {
				res := r.(*stubResult)
				if res.id != i {
					t.Errorf("slot %d holds job %d", i, res.id)
				}
				if (res.err != nil) != tt.failing[i] {
					t.Errorf("job %d: unexpected error state %v", i, res.err)
				}
			}
		})
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 4
	var running, peak atomic.Int32

	jobs := make([]Job, 30)
	for i := range jobs {
		jobs[i] = &stubJob{id: i, delay: 5 * time.Millisecond, hook: func() {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
		}}
	}

	runPool(t, workers, jobs)
	if got := peak.Load(); got > workers {
		t.Errorf("peak concurrency %d exceeds %d workers", got, workers)
	}
}

func TestPool_OnResultSerialized(t *testing.T) {
	pool := NewPool(context.Background(), 4)

	var mu sync.Mutex
	inCallback := false
	seen := 0
	pool.OnResult(func(Result) {
		mu.Lock()
		if inCallback {
			t.Error("callbacks overlapped")
		}
		inCallback = true
		seen++
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		inCallback = false
		mu.Unlock()
	})
	pool.Start()
	for i := 0; i < 12; i++ {
		pool.Submit(&stubJob{id: i})
	}
	pool.Wait()

	if seen != 12 {
		t.Errorf("expected 12 callbacks, got %d", seen)
	}
}

func TestPool_NoDeadlockBeyondQueue(t *testing.T) {
	done := make(chan int)
	go func() {
		jobs := make([]Job, 200)
		for i := range jobs {
			jobs[i] = &stubJob{id: i}
		}
		done <- len(runPool(t, 2, jobs))
	}()

	select {
	case n := <-done:
		if n != 200 {
			t.Errorf("expected 200 results, got %d", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pool deadlocked")
	}
}

func TestPool_SubmitAfterStopIsNoop(t *testing.T) {
	tests := []struct {
		name string
		stop func(*Pool, context.CancelFunc)
	}{
		{"after cancel", func(_ *Pool, cancel context.CancelFunc) { cancel() }},
		{"after wait", func(p *Pool, _ context.CancelFunc) { p.Wait() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			pool := NewPool(ctx, 2)
			pool.Start()
			tt.stop(pool, cancel)

			returned := make(chan struct{})
			go func() {
				for i := 0; i < 10; i++ {
					pool.Submit(&stubJob{id: i})
				}
				close(returned)
			}()
			select {
			case <-returned:
			case <-time.After(time.Second):
				t.Fatal("Submit blocked on a stopped pool")
			}
		})
	}
}

func TestPool_CancelStopsRunningJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	started := make(chan struct{})
	pool.Start()

	pool.Submit(&stubJob{delay: 10 * time.Second, hook: func() { close(started) }})
	<-started
	cancel()

	waited := make(chan []Result)
	go func() { waited <- pool.Wait() }()
	select {
	case results := <-waited:
		if len(results) != 1 || !errors.Is(results[0].GetError(), context.Canceled) {
			t.Errorf("expected one canceled result, got %v", results)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	pool.Submit(&stubJob{delay: time.Second})
	cancel()

	for _, r := range pool.Wait() {
		if !errors.Is(r.GetError(), context.Canceled) {
			t.Errorf("expected canceled job, got %v", r.GetError())
		}
	}
}
