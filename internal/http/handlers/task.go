package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/deckforge-backend/internal/data/tasks"
	"github.com/yungbote/deckforge-backend/internal/http/response"
	"github.com/yungbote/deckforge-backend/internal/platform/apierr"
	pipelines "github.com/yungbote/deckforge-backend/internal/jobs/pipeline"
	"github.com/yungbote/deckforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
	"github.com/yungbote/deckforge-backend/internal/render"
	"github.com/yungbote/deckforge-backend/internal/services"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// TaskSubmitter starts a job for an already stored task.
type TaskSubmitter interface {
	Submit(ctx context.Context, jobType string, task *tasks.Task, payload any) error
}

type DeckPreviewer interface {
	Preview(path string) ([]render.SlidePreview, error)
}

// ArtifactOpener reads decks that were copied to durable storage.
type ArtifactOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type TaskHandlerOptions struct {
	ScratchDir     string
	MaxUploadBytes int64
	// Artifacts is optional.
	Artifacts ArtifactOpener
}

type TaskHandler struct {
	log       *logger.Logger
	store     tasks.Store
	generator services.OutlineGenerator
	runner    TaskSubmitter
	previewer DeckPreviewer
	opts      TaskHandlerOptions
}

func NewTaskHandler(
	log *logger.Logger,
	store tasks.Store,
	generator services.OutlineGenerator,
	runner TaskSubmitter,
	previewer DeckPreviewer,
	opts TaskHandlerOptions,
) *TaskHandler {
	return &TaskHandler{
		log:       log.With("handler", "TaskHandler"),
		store:     store,
		generator: generator,
		runner:    runner,
		previewer: previewer,
		opts:      opts,
	}
}

type taskView struct {
	TaskID    string          `json:"task_id"`
	Status    tasks.Status    `json:"status"`
	Progress  int             `json:"progress"`
	Message   string          `json:"message"`
	Warnings  []tasks.Warning `json:"warnings,omitempty"`
	Result    *tasks.Result   `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func viewOf(t *tasks.Task) taskView {
	return taskView{
		TaskID:    t.ID,
		Status:    t.Status,
		Progress:  t.Progress,
		Message:   t.Message,
		Warnings:  t.Warnings,
		Result:    t.Result,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (h *TaskHandler) uploadsDir() string { return filepath.Join(h.opts.ScratchDir, "uploads") }
func (h *TaskHandler) outputsDir() string { return filepath.Join(h.opts.ScratchDir, "outputs") }

// POST /api/generate
func (h *TaskHandler) Generate(c *gin.Context) {
	if h.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)
	}
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		response.RespondAPIError(c, apierr.New(apierr.InvalidInput, fmt.Errorf("invalid multipart form: %w", err)))
		return
	}
	form := c.Request.MultipartForm
	defer func() { _ = form.RemoveAll() }()

	req := services.OutlineRequest{
		Text:       formValue(form, "text"),
		Guidance:   formValue(form, "guidance"),
		Tone:       formValue(form, "tone"),
		Provider:   formValue(form, "provider"),
		Credential: formValue(form, "credential"),
	}
	if err := h.generator.Validate(req); err != nil {
		response.RespondAPIError(c, services.ToAPIError(err))
		return
	}

	var template *multipart.FileHeader
	if files := form.File["template_file"]; len(files) > 0 {
		template = files[0]
		if !strings.EqualFold(filepath.Ext(template.Filename), ".pptx") {
			response.RespondAPIError(c, services.ToAPIError(services.InvalidTemplateError("template file must be a .pptx file")))
			return
		}
	}

	task := tasks.NewTask()
	in := pipelines.DeckRenderInput{
		Request:    req,
		OutputPath: filepath.Join(h.outputsDir(), task.ID+".pptx"),
	}
	if err := os.MkdirAll(h.outputsDir(), 0o755); err != nil {
		h.fail(c, "prepare scratch directory", err)
		return
	}
	if template != nil {
		in.TemplatePath = filepath.Join(h.uploadsDir(), task.ID+"_template.pptx")
		if err := os.MkdirAll(h.uploadsDir(), 0o755); err != nil {
			h.fail(c, "prepare scratch directory", err)
			return
		}
		if err := c.SaveUploadedFile(template, in.TemplatePath); err != nil {
			h.fail(c, "save template", err)
			return
		}
	}

	ctx := c.Request.Context()
	if err := h.store.Create(ctx, task); err != nil {
		removeQuietly(in.TemplatePath)
		h.fail(c, "create task", err)
		return
	}
	if err := h.runner.Submit(ctx, pipelines.DeckRenderJobType, task, in); err != nil {
		removeQuietly(in.TemplatePath)
		task.Status = tasks.StatusFailed
		task.Message = err.Error()
		_ = h.store.Save(context.WithoutCancel(ctx), task)
		response.RespondAPIError(c, apierr.New(apierr.RunnerUnavailable, err))
		return
	}

	h.log.Info("Deck task submitted",
		append([]interface{}{"task_id", task.ID, "provider", req.Provider, "template", template != nil}, ctxutil.LogFields(ctx)...)...)
	c.JSON(http.StatusAccepted, gin.H{"task_id": task.ID})
}

// GET /api/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	t, ok := h.lookup(c)
	if !ok {
		return
	}
	response.RespondOK(c, viewOf(t))
}

// GET /api/tasks/:id/download
func (h *TaskHandler) Download(c *gin.Context) {
	t, ok := h.lookupCompleted(c)
	if !ok {
		return
	}
	name := fileNameOf(t)
	if fileExists(t.OutputPath) {
		c.Header("Content-Type", pptxContentType)
		c.FileAttachment(t.OutputPath, name)
		return
	}
	rc, err := h.openArtifact(c.Request.Context(), t)
	if err != nil {
		response.RespondAPIError(c, apierr.New(apierr.FileNotFound, err))
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, pptxContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}

// GET /api/tasks/:id/preview
func (h *TaskHandler) Preview(c *gin.Context) {
	t, ok := h.lookupCompleted(c)
	if !ok {
		return
	}
	path := t.OutputPath
	if !fileExists(path) {
		tmp, err := h.fetchArtifact(c.Request.Context(), t)
		if err != nil {
			response.RespondAPIError(c, apierr.New(apierr.FileNotFound, err))
			return
		}
		defer os.Remove(tmp)
		path = tmp
	}
	slides, err := h.previewer.Preview(path)
	if err != nil {
		h.log.Warn("Deck preview failed", "task_id", t.ID, "error", err)
		response.RespondAPIError(c, apierr.Hidden(apierr.RenderFailed, "could not read presentation", err))
		return
	}
	response.RespondOK(c, gin.H{"task_id": t.ID, "slides": slides})
}

func (h *TaskHandler) lookup(c *gin.Context) (*tasks.Task, bool) {
	id := strings.TrimSpace(c.Param("id"))
	t, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, tasks.ErrNotFound) {
		response.RespondAPIError(c, apierr.New(apierr.TaskNotFound, err))
		return nil, false
	}
	if err != nil {
		h.fail(c, "load task", err)
		return nil, false
	}
	return t, true
}

func (h *TaskHandler) lookupCompleted(c *gin.Context) (*tasks.Task, bool) {
	t, ok := h.lookup(c)
	if !ok {
		return nil, false
	}
	if t.Status != tasks.StatusCompleted {
		response.RespondAPIError(c, apierr.New(apierr.TaskNotCompleted, fmt.Errorf("task is %s", t.Status)))
		return nil, false
	}
	return t, true
}

func (h *TaskHandler) openArtifact(ctx context.Context, t *tasks.Task) (io.ReadCloser, error) {
	if h.opts.Artifacts == nil || t.Result == nil || t.Result.ArtifactKey == "" {
		return nil, errors.New("presentation file is no longer available")
	}
	return h.opts.Artifacts.Open(ctx, t.Result.ArtifactKey)
}

// fetchArtifact copies the stored deck to a temp file for the preview reader.
func (h *TaskHandler) fetchArtifact(ctx context.Context, t *tasks.Task) (string, error) {
	rc, err := h.openArtifact(ctx, t)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	f, err := os.CreateTemp("", "deck-preview-*.pptx")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, rc); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (h *TaskHandler) fail(c *gin.Context, op string, err error) {
	h.log.Error("Task request failed", append([]interface{}{"op", op, "error", err}, ctxutil.LogFields(c.Request.Context())...)...)
	response.RespondAPIError(c, apierr.Hidden(apierr.Internal, "internal server error", err))
}

func formValue(form *multipart.Form, key string) string {
	if form == nil {
		return ""
	}
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func fileNameOf(t *tasks.Task) string {
	if t.Result != nil && t.Result.FileName != "" {
		return t.Result.FileName
	}
	return pipelines.DeckFileName("")
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func removeQuietly(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}
