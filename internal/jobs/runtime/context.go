package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/deckforge-backend/internal/data/tasks"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

/*
Context is the execution handle for one background task.
It wraps:
	- the task record and the store it lives in,
	- the payload handed over at submission (never persisted),
	- the only sanctioned ways to report progress or terminate.
Once Fail or Succeed has run, later calls are ignored, so a task never
leaves a terminal state.
*/
type Context struct {
	Ctx   context.Context
	Task  *tasks.Task
	Store tasks.Store
	Log   *logger.Logger

	payload any

	mu       sync.Mutex
	terminal bool
}

func NewContext(ctx context.Context, store tasks.Store, task *tasks.Task, payload any, log *logger.Logger) *Context {
	if log == nil {
		log = logger.Nop()
	}
	return &Context{
		Ctx:     ctx,
		Task:    task,
		Store:   store,
		Log:     log.With("task_id", task.ID),
		payload: payload,
	}
}

// Payload returns the in-memory job input.
func (c *Context) Payload() any { return c.payload }

// Done reports whether the task reached a terminal state.
func (c *Context) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal
}

// Progress records a non-terminal update.
func (c *Context) Progress(pct int, msg string) {
	c.write(false, func(t *tasks.Task) {
		t.Status = tasks.StatusProcessing
		t.Progress = pct
		t.Message = msg
	})
}

// Fail marks the task failed, keeping the last progress value.
func (c *Context) Fail(stage string, err error) {
	msg := "task failed"
	if err != nil {
		msg = err.Error()
	}
	if c.write(true, func(t *tasks.Task) {
		t.Status = tasks.StatusFailed
		t.Message = msg
	}) {
		c.Log.Warn("Task failed", "stage", stage, "error", msg)
	}
}

// Succeed marks the task completed with its result and any render warnings.
func (c *Context) Succeed(msg string, result *tasks.Result, warnings []tasks.Warning) {
	if c.write(true, func(t *tasks.Task) {
		t.Status = tasks.StatusCompleted
		t.Progress = 100
		t.Message = msg
		t.Result = result
		t.Warnings = warnings
	}) {
		c.Log.Info("Task completed", "warnings", len(warnings))
	}
}

// SetOutputPath records where the rendered deck lives.
func (c *Context) SetOutputPath(path string) {
	c.write(false, func(t *tasks.Task) { t.OutputPath = path })
}

func (c *Context) write(terminal bool, apply func(t *tasks.Task)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.terminal || c.Task == nil {
		return false
	}
	apply(c.Task)
	c.Task.UpdatedAt = time.Now().UTC()
	if terminal {
		c.terminal = true
	}
	if c.Store == nil {
		return true
	}

	// Status writes outlive the caller's context so a failure is still recorded.
	ctx := context.WithoutCancel(c.ctx())
	if err := c.Store.Save(ctx, c.Task); err != nil {
		c.Log.Error("Task status write failed", "status", c.Task.Status, "error", err)
	}
	return true
}

func (c *Context) ctx() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
