package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
)

// Sampling settings shared by every backend.
const (
	DefaultTemperature float32 = 0.1
	DefaultMaxTokens   int     = 3000
)

type Provider string

const (
	OpenAI    Provider = "openai"
	Anthropic Provider = "anthropic"
	Gemini    Provider = "gemini"
)

// Providers lists the supported backends in display order.
var Providers = []Provider{OpenAI, Anthropic, Gemini}

func ParseProvider(raw string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Providers {
		if p == known {
			return p, true
		}
	}
	return "", false
}

type Info struct {
	Key   Provider `json:"key"`
	Name  string   `json:"name"`
	Model string   `json:"model"`
}

// Backend builds per-request chat models for one provider. The credential is
// used for the lifetime of the returned model only.
type Backend interface {
	Info() Info
	NewChatModel(ctx context.Context, credential string) (model.BaseChatModel, error)
	// CredentialHint is appended to errors that look like a rejected credential.
	CredentialHint() string
}

type Settings struct {
	OpenAIModel      string
	OpenAIBaseURL    string
	AnthropicModel   string
	AnthropicBaseURL string
	GeminiModel      string
	GeminiBaseURL    string
	Timeout          time.Duration

	// HTTPClient is shared by all backends. Optional.
	HTTPClient *http.Client
}

type Catalog struct {
	backends map[Provider]Backend
}

func NewCatalog(s Settings) *Catalog {
	client := s.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: s.Timeout}
	}
	return NewCatalogWith(
		newOpenAIBackend(s.OpenAIModel, s.OpenAIBaseURL, client),
		newAnthropicBackend(s.AnthropicModel, s.AnthropicBaseURL, client),
		newGeminiBackend(s.GeminiModel, s.GeminiBaseURL, client),
	)
}

// NewCatalogWith registers arbitrary backends; later entries replace earlier
// ones with the same key.
func NewCatalogWith(backends ...Backend) *Catalog {
	c := &Catalog{backends: make(map[Provider]Backend, len(backends))}
	for _, b := range backends {
		if b == nil {
			continue
		}
		c.backends[b.Info().Key] = b
	}
	return c
}

func (c *Catalog) Get(raw string) (Backend, bool) {
	if c == nil {
		return nil, false
	}
	b, ok := c.backends[Provider(strings.ToLower(strings.TrimSpace(raw)))]
	return b, ok
}

func (c *Catalog) List() []Info {
	if c == nil {
		return nil
	}
	out := make([]Info, 0, len(c.backends))
	for _, p := range Providers {
		if b, ok := c.backends[p]; ok {
			out = append(out, b.Info())
		}
	}
	return out
}
