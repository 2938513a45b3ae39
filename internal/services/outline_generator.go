package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/deckforge-backend/internal/domain/outline"
	"github.com/yungbote/deckforge-backend/internal/llm"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

const MinTextRunes = 20

type OutlineRequest struct {
	Text       string
	Guidance   string
	Tone       string
	Provider   string
	Credential string
}

type OutlineGenerator interface {
	Generate(ctx context.Context, req OutlineRequest) (*outline.SlideOutline, error)
	Validate(req OutlineRequest) error
	Providers() []llm.Info
}

type OutlineGeneratorOptions struct {
	LenientJSON  bool
	MaxRetries   int
	RetryBackoff time.Duration
}

type outlineGenerator struct {
	log     *logger.Logger
	catalog *llm.Catalog
	opts    OutlineGeneratorOptions
	sleep   func(context.Context, time.Duration) error
}

func NewOutlineGenerator(baseLog *logger.Logger, catalog *llm.Catalog, opts OutlineGeneratorOptions) OutlineGenerator {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &outlineGenerator{
		log:     baseLog.With("service", "OutlineGenerator"),
		catalog: catalog,
		opts:    opts,
		sleep:   sleepCtx,
	}
}

func (g *outlineGenerator) Providers() []llm.Info {
	return g.catalog.List()
}

// Validate checks the request before any backend is built or called.
func (g *outlineGenerator) Validate(req OutlineRequest) error {
	if err := ValidateText(req.Text); err != nil {
		return err
	}
	if _, ok := g.catalog.Get(req.Provider); !ok {
		return UnsupportedProviderError(req.Provider)
	}
	if strings.TrimSpace(req.Credential) == "" {
		return invalidInput("credential is required")
	}
	return nil
}

// ValidateText enforces the minimum input length in characters after trimming.
func ValidateText(text string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(text)); n < MinTextRunes {
		return invalidInput("text must be at least %d characters long (got %d)", MinTextRunes, n)
	}
	return nil
}

func (g *outlineGenerator) Generate(ctx context.Context, req OutlineRequest) (*outline.SlideOutline, error) {
	if err := g.Validate(req); err != nil {
		return nil, err
	}
	backend, _ := g.catalog.Get(req.Provider)
	info := backend.Info()

	ctx, span := otel.Tracer("deckforge/services").Start(ctx, "outline.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", string(info.Key)),
		attribute.String("llm.model", info.Model),
		attribute.Int("input.chars", utf8.RuneCountInString(req.Text)),
	)

	log := g.log.With("provider", info.Key, "model", info.Model)

	cm, err := backend.NewChatModel(ctx, req.Credential)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build chat model")
		return nil, g.wrapBackendErr(backend, err)
	}

	messages := []*schema.Message{
		schema.SystemMessage(SystemPrompt),
		schema.UserMessage(BuildPrompt(req.Text, req.Guidance, req.Tone)),
	}

	start := time.Now()
	raw, err := g.call(ctx, log, cm, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend call")
		log.Warn("LLM call failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, g.wrapBackendErr(backend, err)
	}
	log.Info("LLM response received", "chars", utf8.RuneCountInString(raw), "duration_ms", time.Since(start).Milliseconds())

	out, err := outline.Parse(raw, outline.ParseOptions{Lenient: g.opts.LenientJSON})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse outline")
		log.Warn("LLM response rejected", "error", err)
		return nil, &GenerationError{Provider: string(info.Key), Msg: err.Error(), Err: err}
	}
	span.SetAttributes(attribute.Int("outline.slides", len(out.Slides)))
	return out, nil
}

func (g *outlineGenerator) call(ctx context.Context, log *logger.Logger, cm model.BaseChatModel, messages []*schema.Message) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= g.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := g.opts.RetryBackoff * time.Duration(attempt)
			log.Info("Retrying LLM call", "attempt", attempt+1, "backoff_ms", wait.Milliseconds(), "error", lastErr)
			if err := g.sleep(ctx, wait); err != nil {
				return "", lastErr
			}
		}
		msg, err := cm.Generate(ctx, messages,
			model.WithTemperature(llm.DefaultTemperature),
			model.WithMaxTokens(llm.DefaultMaxTokens),
		)
		if err == nil {
			if msg == nil {
				return "", nil
			}
			return msg.Content, nil
		}
		lastErr = err
		if !llm.IsTransient(err) {
			break
		}
	}
	return "", lastErr
}

func (g *outlineGenerator) wrapBackendErr(backend llm.Backend, err error) error {
	info := backend.Info()
	ge := &GenerationError{
		Provider: string(info.Key),
		Msg:      info.Name + " processing failed: " + err.Error(),
		Err:      err,
	}
	if llm.IsCredentialError(err) {
		ge.Hint = backend.CredentialHint()
	}
	return ge
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsGenerationError reports whether err came from a backend or its output.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
