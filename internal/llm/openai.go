package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

type openAIBackend struct {
	model   string
	baseURL string
	client  *http.Client
}

func newOpenAIBackend(modelName, baseURL string, client *http.Client) *openAIBackend {
	if modelName == "" {
		modelName = "gpt-4o-mini"
	}
	return &openAIBackend{model: modelName, baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (b *openAIBackend) Info() Info {
	return Info{Key: OpenAI, Name: "OpenAI", Model: b.model}
}

func (b *openAIBackend) CredentialHint() string {
	return "Check your OpenAI API key at https://platform.openai.com/api-keys"
}

func (b *openAIBackend) NewChatModel(ctx context.Context, credential string) (model.BaseChatModel, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, errors.New("openai API key is empty")
	}
	temp := DefaultTemperature
	maxTokens := DefaultMaxTokens
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      credential,
		BaseURL:     b.baseURL,
		Model:       b.model,
		HTTPClient:  b.client,
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, err
	}
	return classify(OpenAI, cm), nil
}
