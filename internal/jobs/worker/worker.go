package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/yungbote/deckforge-backend/internal/data/tasks"
	"github.com/yungbote/deckforge-backend/internal/jobs/runtime"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

// Runner executes submitted tasks on their own goroutines. At most
// concurrency handlers run at once; the rest wait on the semaphore. Pending
// work is not persisted.
type Runner struct {
	log      *logger.Logger
	store    tasks.Store
	registry *runtime.Registry
	sem      *semaphore.Weighted

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewRunner(baseLog *logger.Logger, store tasks.Store, registry *runtime.Registry, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	log := baseLog.With("component", "TaskRunner")
	log.Info("Starting task runner", "concurrency", concurrency, "job_types", registry.Types())
	return &Runner{
		log:      log,
		store:    store,
		registry: registry,
		sem:      semaphore.NewWeighted(int64(concurrency)),
	}
}

// Submit starts task in the background. The task must already exist in the
// store. ctx only contributes its values (trace ids); the run is not tied to
// the submitting request.
func (r *Runner) Submit(ctx context.Context, jobType string, task *tasks.Task, payload any) error {
	h, ok := r.registry.Get(jobType)
	if !ok {
		return &missingHandlerError{JobType: jobType}
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.wg.Add(1)
	r.mu.Unlock()

	jc := runtime.NewContext(context.WithoutCancel(ctx), r.store, task, payload, r.log)
	go func() {
		defer r.wg.Done()
		if err := r.sem.Acquire(jc.Ctx, 1); err != nil {
			jc.Fail("dispatch", err)
			return
		}
		defer r.sem.Release(1)
		r.run(h, jc)
	}()
	return nil
}

func (r *Runner) run(h runtime.Handler, jc *runtime.Context) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Error("Task handler panic",
				"task_id", jc.Task.ID,
				"job_type", h.Type(),
				"panic", v,
			)
			jc.Fail("panic", &panicError{Val: v})
		}
	}()

	if err := h.Run(jc); err != nil {
		// Handlers normally call jc.Fail themselves; this is a safety net.
		jc.Fail("run", err)
	}
	if !jc.Done() {
		jc.Fail("run", fmt.Errorf("%s handler returned without a terminal state", h.Type()))
	}
}

// Shutdown stops accepting work and waits for running tasks until ctx ends.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		r.log.Info("Task runner stopped")
		return nil
	case <-ctx.Done():
		r.log.Warn("Task runner shutdown timed out")
		return ctx.Err()
	}
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string { return "no handler registered for job type " + e.JobType }

var ErrClosed = errors.New("task runner is shut down")

type panicError struct{ Val any }

func (e *panicError) Error() string { return "panic: unexpected error" }
