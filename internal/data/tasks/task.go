package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusStarted    Status = "started"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusFailed }

type Warning struct {
	Slide   int    `json:"slide"`
	Message string `json:"message"`
}

// Result is recorded on completion. It carries no outline content beyond
// the title and slide count.
type Result struct {
	Title       string `json:"title"`
	SlideCount  int    `json:"slide_count"`
	FileName    string `json:"file_name"`
	ArtifactKey string `json:"artifact_key,omitempty"`
}

type Task struct {
	ID       string    `json:"task_id"`
	Status   Status    `json:"status"`
	Progress int       `json:"progress"`
	Message  string    `json:"message"`
	Warnings []Warning `json:"warnings,omitempty"`
	Result   *Result   `json:"result,omitempty"`

	// OutputPath is the scratch location of the rendered deck.
	OutputPath string `json:"output_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask returns a started task with a fresh id.
func NewTask() *Task {
	now := time.Now().UTC()
	return &Task{
		ID:        uuid.NewString(),
		Status:    StatusStarted,
		Message:   "Task started",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t *Task) clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Warnings != nil {
		c.Warnings = append([]Warning(nil), t.Warnings...)
	}
	if t.Result != nil {
		r := *t.Result
		c.Result = &r
	}
	return &c
}

var (
	ErrNotFound = errors.New("task not found")
	ErrExists   = errors.New("task already exists")
)

// Store is the keyed task status table. Writes for one id are atomic; a
// caller only ever writes the task it created.
type Store interface {
	// Create fails with ErrExists when the id is taken.
	Create(ctx context.Context, t *Task) error
	// Get fails with ErrNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*Task, error)
	// Save replaces an existing task and fails with ErrNotFound otherwise.
	Save(ctx context.Context, t *Task) error
	Close() error
}
