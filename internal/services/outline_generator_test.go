package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/deckforge-backend/internal/domain/outline"
	"github.com/yungbote/deckforge-backend/internal/llm"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
	"github.com/yungbote/deckforge-backend/internal/render"
)

type fakeChatModel struct {
	replies []string
	errs    []error
	calls   atomic.Int32
	seen    [][]*schema.Message
}

func (m *fakeChatModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	i := int(m.calls.Add(1)) - 1
	m.seen = append(m.seen, in)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	reply := ""
	if i < len(m.replies) {
		reply = m.replies[i]
	} else if len(m.replies) > 0 {
		reply = m.replies[len(m.replies)-1]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func (m *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

type fakeBackend struct {
	key   llm.Provider
	cm    *fakeChatModel
	built atomic.Int32
}

func (b *fakeBackend) Info() llm.Info {
	return llm.Info{Key: b.key, Name: "Fake", Model: "fake-1"}
}

func (b *fakeBackend) CredentialHint() string { return "get a key at https://example.test" }

func (b *fakeBackend) NewChatModel(context.Context, string) (model.BaseChatModel, error) {
	b.built.Add(1)
	return b.cm, nil
}

const sampleText = "Quarterly revenue grew ten percent across every region."

func newTestGenerator(b *fakeBackend, opts OutlineGeneratorOptions) *outlineGenerator {
	g := NewOutlineGenerator(logger.Nop(), llm.NewCatalogWith(b), opts).(*outlineGenerator)
	g.sleep = func(context.Context, time.Duration) error { return nil }
	return g
}

func TestGenerateShortTextRejectedBeforeBackend(t *testing.T) {
	b := &fakeBackend{key: llm.OpenAI, cm: &fakeChatModel{}}
	g := newTestGenerator(b, OutlineGeneratorOptions{})

	_, err := g.Generate(context.Background(), OutlineRequest{
		Text:       strings.Repeat("x", 19),
		Provider:   "openai",
		Credential: "k",
	})

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, CodeInvalidInput, ve.Code)
	assert.Equal(t, int32(0), b.built.Load())
	assert.Equal(t, int32(0), b.cm.calls.Load())
}

func TestGenerateCountsCharactersNotBytes(t *testing.T) {
	assert.NoError(t, ValidateText(strings.Repeat("é", 20)))
	assert.Error(t, ValidateText("   "+strings.Repeat("é", 19)+"   "))
}

func TestGenerateUnsupportedProvider(t *testing.T) {
	b := &fakeBackend{key: llm.OpenAI, cm: &fakeChatModel{}}
	g := newTestGenerator(b, OutlineGeneratorOptions{})

	_, err := g.Generate(context.Background(), OutlineRequest{Text: sampleText, Provider: "mistral", Credential: "k"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, CodeUnsupportedProvider, ve.Code)
}

func TestGenerateMinimalOutline(t *testing.T) {
	cm := &fakeChatModel{replies: []string{`{"slides":[{"type":"title","title":"Hi"}]}`}}
	g := newTestGenerator(&fakeBackend{key: llm.Anthropic, cm: cm}, OutlineGeneratorOptions{})

	got, err := g.Generate(context.Background(), OutlineRequest{Text: sampleText, Provider: "anthropic", Credential: "k"})
	require.NoError(t, err)
	assert.Equal(t, &outline.SlideOutline{
		Title:  "Generated Presentation",
		Slides: []outline.Slide{{Type: outline.SlideTitle, Title: "Hi", SpeakerNotes: "Notes for slide 1"}},
	}, got)

	require.Len(t, cm.seen, 1)
	require.Len(t, cm.seen[0], 2)
	assert.Equal(t, schema.System, cm.seen[0][0].Role)
	assert.Contains(t, cm.seen[0][1].Content, "Tone: professional")
	assert.Contains(t, cm.seen[0][1].Content, "Guidance: Standard presentation")
}

func TestGenerateCredentialErrorCarriesHint(t *testing.T) {
	cm := &fakeChatModel{errs: []error{&llm.APIError{Provider: "Fake", Status: 401, Body: "invalid x-api-key"}}}
	g := newTestGenerator(&fakeBackend{key: llm.Gemini, cm: cm}, OutlineGeneratorOptions{MaxRetries: 3})

	_, err := g.Generate(context.Background(), OutlineRequest{Text: sampleText, Provider: "gemini", Credential: "bad"})
	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, "get a key at https://example.test", ge.Hint)
	assert.Contains(t, ge.Error(), "invalid x-api-key")
	assert.Equal(t, int32(1), cm.calls.Load(), "credential errors are not retried")
}

func TestGenerateRetriesTransientErrors(t *testing.T) {
	cm := &fakeChatModel{
		errs:    []error{&llm.APIError{Status: 503}, &llm.APIError{Status: 429}},
		replies: []string{"", "", `{"slides":[{"title":"A"}]}`},
	}
	g := newTestGenerator(&fakeBackend{key: llm.OpenAI, cm: cm}, OutlineGeneratorOptions{MaxRetries: 2})

	got, err := g.Generate(context.Background(), OutlineRequest{Text: sampleText, Provider: "openai", Credential: "k"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), cm.calls.Load())
	assert.Equal(t, []string{outline.DefaultContentPoint}, got.Slides[0].Content)
}

func TestGenerateNoRetryByDefault(t *testing.T) {
	cm := &fakeChatModel{errs: []error{&llm.APIError{Status: 503}}}
	g := newTestGenerator(&fakeBackend{key: llm.OpenAI, cm: cm}, OutlineGeneratorOptions{})

	_, err := g.Generate(context.Background(), OutlineRequest{Text: sampleText, Provider: "openai", Credential: "k"})
	assert.True(t, IsGenerationError(err))
	assert.Equal(t, int32(1), cm.calls.Load())
}

func TestGenerateParseFailuresAreGenerationErrors(t *testing.T) {
	cases := map[string]outline.ErrorKind{
		"   ":                  outline.KindEmpty,
		"not json":             outline.KindInvalidJSON,
		`[{"type":"content"}]`: outline.KindInvalidStructure,
	}
	for reply, kind := range cases {
		cm := &fakeChatModel{replies: []string{reply}}
		g := newTestGenerator(&fakeBackend{key: llm.OpenAI, cm: cm}, OutlineGeneratorOptions{})

		_, err := g.Generate(context.Background(), OutlineRequest{Text: sampleText, Provider: "openai", Credential: "k"})
		var ge *GenerationError
		require.True(t, errors.As(err, &ge), reply)
		assert.Equal(t, kind, ge.ParseKind(), reply)
	}
}

func TestToAPIError(t *testing.T) {
	assert.Equal(t, 400, ToAPIError(invalidInput("x")).Status())
	assert.Equal(t, 502, ToAPIError(&GenerationError{Msg: "x"}).Status())

	internal := ToAPIError(errors.New("boom"))
	assert.Equal(t, 500, internal.Status())
	assert.Equal(t, "internal server error", internal.Message)

	rendered := ToAPIError(&render.Error{Op: "save", Err: errors.New("disk full")})
	assert.Equal(t, CodeRenderFailed, rendered.Code)
	assert.Equal(t, "presentation creation failed", rendered.Message)
}
