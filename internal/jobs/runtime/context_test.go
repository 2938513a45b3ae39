package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/deckforge-backend/internal/data/tasks"
)

func newTestContext(t *testing.T) (*Context, tasks.Store) {
	t.Helper()
	store := tasks.NewMemoryStore(0)
	task := tasks.NewTask()
	require.NoError(t, store.Create(context.Background(), task))
	return NewContext(context.Background(), store, task, "payload", nil), store
}

func TestContextProgressThenSucceed(t *testing.T) {
	jc, store := newTestContext(t)
	assert.Equal(t, "payload", jc.Payload())

	jc.Progress(10, "Generating outline")
	got, err := store.Get(context.Background(), jc.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusProcessing, got.Status)
	assert.Equal(t, 10, got.Progress)

	jc.Succeed("Presentation ready", &tasks.Result{Title: "T", SlideCount: 2}, []tasks.Warning{{Slide: 1, Message: "m"}})
	assert.True(t, jc.Done())

	got, err = store.Get(context.Background(), jc.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
	assert.Equal(t, "Presentation ready", got.Message)
	assert.Len(t, got.Warnings, 1)
}

func TestContextTerminalStateIsFinal(t *testing.T) {
	jc, store := newTestContext(t)

	jc.Progress(50, "Rendering presentation")
	jc.Fail("render", errors.New("boom"))
	jc.Progress(90, "Saving presentation")
	jc.Succeed("Presentation ready", &tasks.Result{}, nil)

	got, err := store.Get(context.Background(), jc.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusFailed, got.Status)
	assert.Equal(t, 50, got.Progress)
	assert.Equal(t, "boom", got.Message)
}

func TestContextStatusWriteSurvivesCanceledContext(t *testing.T) {
	store := tasks.NewMemoryStore(0)
	task := tasks.NewTask()
	require.NoError(t, store.Create(context.Background(), task))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	jc := NewContext(ctx, store, task, nil, nil)
	jc.Fail("outline", errors.New("canceled upstream"))

	got, err := store.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StatusFailed, got.Status)
}

type namedHandler string

func (h namedHandler) Type() string { return string(h) }
func (h namedHandler) Run(ctx *Context) error { return nil }

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(namedHandler("deck_render"))
	require.NoError(t, err)
	assert.ErrorIs(t, r.Register(namedHandler("deck_render")), ErrDuplicateHandler)
	assert.Error(t, r.Register(namedHandler("")))
	assert.Error(t, r.Register(nil))
	require.NoError(t, r.Register(namedHandler("cleanup")))

	h, ok := r.Get("deck_render")
	require.True(t, ok)
	assert.Equal(t, "deck_render", h.Type())
	_, ok = r.Get("other")
	assert.False(t, ok)
	assert.Equal(t, []string{"cleanup", "deck_render"}, r.Types())
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(namedHandler("deck_render"), namedHandler("deck_render"))
	assert.ErrorIs(t, err, ErrDuplicateHandler)
}
