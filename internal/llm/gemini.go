package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

type geminiBackend struct {
	model   string
	baseURL string
	client  *http.Client
}

func newGeminiBackend(modelName, baseURL string, client *http.Client) *geminiBackend {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &geminiBackend{model: modelName, baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (b *geminiBackend) Info() Info {
	return Info{Key: Gemini, Name: "Google Gemini", Model: b.model}
}

func (b *geminiBackend) CredentialHint() string {
	return "Invalid Gemini API key. Get one from https://ai.google.dev/"
}

// NewChatModel builds a genai client per credential. genai sends the key in
// the x-goog-api-key header, never in the request URL.
func (b *geminiBackend) NewChatModel(ctx context.Context, credential string) (model.BaseChatModel, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, errors.New("gemini API key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      credential,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  b.client,
		HTTPOptions: genai.HTTPOptions{BaseURL: b.baseURL},
	})
	if err != nil {
		return nil, err
	}
	temp := DefaultTemperature
	maxTokens := DefaultMaxTokens
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       b.model,
		MaxTokens:   &maxTokens,
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}
	return classify(Gemini, cm), nil
}
