package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"
)

type anthropicBackend struct {
	model   string
	baseURL string
	client  *http.Client
}

func newAnthropicBackend(modelName, baseURL string, client *http.Client) *anthropicBackend {
	if modelName == "" {
		modelName = "claude-3-haiku-20240307"
	}
	return &anthropicBackend{model: modelName, baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (b *anthropicBackend) Info() Info {
	return Info{Key: Anthropic, Name: "Anthropic", Model: b.model}
}

func (b *anthropicBackend) CredentialHint() string {
	return "Check your Anthropic API key at https://console.anthropic.com/"
}

func (b *anthropicBackend) NewChatModel(ctx context.Context, credential string) (model.BaseChatModel, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, errors.New("anthropic API key is empty")
	}
	temp := DefaultTemperature
	cfg := &claude.Config{
		APIKey:      credential,
		Model:       b.model,
		MaxTokens:   DefaultMaxTokens,
		Temperature: &temp,
		HTTPClient:  b.client,
	}
	if b.baseURL != "" {
		base := b.baseURL
		cfg.BaseURL = &base
	}
	cm, err := claude.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return classify(Anthropic, cm), nil
}
