// Package runner executes grading runs on a single background worker.
package runner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MeKo-Tech/gabarito/internal/pipeline"
)

var (
	// ErrBusy is returned by Start while a run is in flight.
	ErrBusy = errors.New("runner: a run is already in progress")
	// ErrClosed is returned by Start after Close.
	ErrClosed = errors.New("runner: closed")
)

// State is the lifecycle position of the runner.
type State int

const (
	Idle State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Snapshot is a consistent view of the runner. Result is set once State is
// Completed and describes the most recent run.
type Snapshot struct {
	State      State               `json:"state"`
	RunID      string              `json:"run_id,omitempty"`
	StartedAt  time.Time           `json:"started_at,omitzero"`
	FinishedAt time.Time           `json:"finished_at,omitzero"`
	Result     *pipeline.RunResult `json:"result,omitempty"`
}

// RunFunc performs one run.
type RunFunc func(ctx context.Context) pipeline.RunResult

// Runner hands runs to its worker through a single-slot channel. Every run
// receives the runner's context, which Close and Shutdown cancel.
type Runner struct {
	run    RunFunc
	tasks  chan string
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	snap   Snapshot
	done   chan struct{}
	closed bool

	worker sync.WaitGroup
}

// New starts the worker goroutine.
func New(run RunFunc) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{run: run, tasks: make(chan string, 1), ctx: ctx, cancel: cancel}
	r.worker.Add(1)
	go r.loop()
	return r
}

// Start schedules a run and returns its id.
func (r *Runner) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrClosed
	}
	if r.snap.State == Running {
		return "", ErrBusy
	}
	id := uuid.NewString()
	r.snap = Snapshot{State: Running, RunID: id, StartedAt: time.Now().UTC()}
	r.done = make(chan struct{})
	r.tasks <- id
	return id, nil
}

// State returns the current snapshot.
func (r *Runner) State() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Wait blocks until the current run completes or ctx is done. Without a
// run in flight it returns immediately.
func (r *Runner) Wait(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return r.State(), nil
	}
	select {
	case <-done:
		return r.State(), nil
	case <-ctx.Done():
		return r.State(), ctx.Err()
	}
}

// Close rejects further runs, cancels the run in flight and waits for the
// worker to return.
func (r *Runner) Close() {
	r.reject()
	r.cancel()
	r.worker.Wait()
}

// Shutdown rejects further runs and lets the run in flight finish until ctx
// is done. It then cancels the run and waits for the worker to return,
// reporting ctx's error.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.reject()
	idle := make(chan struct{})
	go func() {
		r.worker.Wait()
		close(idle)
	}()
	select {
	case <-idle:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		<-idle
		return ctx.Err()
	}
}

func (r *Runner) reject() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.tasks)
	}
	r.mu.Unlock()
}

func (r *Runner) loop() {
	defer r.worker.Done()
	for id := range r.tasks {
		res := r.run(r.ctx)

		r.mu.Lock()
		if r.snap.RunID == id {
			r.snap.State = Completed
			r.snap.FinishedAt = time.Now().UTC()
			r.snap.Result = &res
		}
		close(r.done)
		r.mu.Unlock()
	}
}
