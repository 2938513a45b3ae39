package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/deckforge-backend/internal/data/tasks"
	"github.com/yungbote/deckforge-backend/internal/jobs/runtime"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

type funcHandler struct {
	name string
	run  func(*runtime.Context) error
}

func (h funcHandler) Type() string { return h.name }
func (h funcHandler) Run(jc *runtime.Context) error { return h.run(jc) }

func newRunner(t *testing.T, concurrency int, handlers ...runtime.Handler) (*Runner, tasks.Store) {
	t.Helper()
	store := tasks.NewMemoryStore(0)
	reg, err := runtime.NewRegistry(handlers...)
	require.NoError(t, err)
	return NewRunner(logger.Nop(), store, reg, concurrency), store
}

func submit(t *testing.T, r *Runner, store tasks.Store, jobType string) *tasks.Task {
	t.Helper()
	task := tasks.NewTask()
	require.NoError(t, store.Create(context.Background(), task))
	require.NoError(t, r.Submit(context.Background(), jobType, task, nil))
	return task
}

func waitStatus(t *testing.T, store tasks.Store, id string) *tasks.Task {
	t.Helper()
	var got *tasks.Task
	require.Eventually(t, func() bool {
		var err error
		got, err = store.Get(context.Background(), id)
		return err == nil && got.Status.Terminal()
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestRunnerBoundsConcurrency(t *testing.T) {
	var running, peak int32
	release := make(chan struct{})
	h := funcHandler{name: "slow", run: func(jc *runtime.Context) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&running, -1)
		jc.Succeed("done", &tasks.Result{}, nil)
		return nil
	}}
	r, store := newRunner(t, 2, h)

	ids := make([]string, 5)
	for i := range ids {
		ids[i] = submit(t, r, store, "slow").ID
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&running) == 2 }, time.Second, 5*time.Millisecond)
	close(release)

	for _, id := range ids {
		assert.Equal(t, tasks.StatusCompleted, waitStatus(t, store, id).Status)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
	require.NoError(t, r.Shutdown(context.Background()))
}

func TestRunnerRecoversPanics(t *testing.T) {
	h := funcHandler{name: "panics", run: func(*runtime.Context) error { panic("kaboom") }}
	r, store := newRunner(t, 1, h)

	got := waitStatus(t, store, submit(t, r, store, "panics").ID)
	assert.Equal(t, tasks.StatusFailed, got.Status)
	assert.Equal(t, "panic: unexpected error", got.Message)
}

func TestRunnerFailsOnReturnedError(t *testing.T) {
	h := funcHandler{name: "errs", run: func(*runtime.Context) error { return errors.New("nope") }}
	r, store := newRunner(t, 1, h)

	got := waitStatus(t, store, submit(t, r, store, "errs").ID)
	assert.Equal(t, tasks.StatusFailed, got.Status)
	assert.Equal(t, "nope", got.Message)
}

func TestRunnerFailsHandlerWithoutTerminalState(t *testing.T) {
	h := funcHandler{name: "forgetful", run: func(*runtime.Context) error { return nil }}
	r, store := newRunner(t, 1, h)

	got := waitStatus(t, store, submit(t, r, store, "forgetful").ID)
	assert.Equal(t, tasks.StatusFailed, got.Status)
}

func TestRunnerRejectsUnknownTypeAndClosed(t *testing.T) {
	r, store := newRunner(t, 1)
	task := tasks.NewTask()
	require.NoError(t, store.Create(context.Background(), task))
	assert.Error(t, r.Submit(context.Background(), "missing", task, nil))

	require.NoError(t, r.Shutdown(context.Background()))
	_ = r.registry.Register(funcHandler{name: "late", run: func(*runtime.Context) error { return nil }})
	assert.ErrorIs(t, r.Submit(context.Background(), "late", task, nil), ErrClosed)
}
