package adapters

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shouni/story-vision-kit/pkg/generator"
)

const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendGemini = "gemini"
)

// ClientOptions は推論クライアントの生成に必要な設定です。
type ClientOptions struct {
	Backend string
	BaseURL string
	APIKey  string
	// Timeout は1リクエストあたりの固定タイムアウトです。リトライは行いません。
	Timeout time.Duration
}

// Pinger はバックエンドの疎通確認ができるクライアントが実装します。
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewInferenceClient は Backend に応じた推論クライアントを返します。
func NewInferenceClient(ctx context.Context, opts ClientOptions) (generator.InferenceClient, error) {
	httpClient := &http.Client{Timeout: opts.Timeout}

	switch opts.Backend {
	case BackendOllama, "":
		return NewOllamaClient(opts.BaseURL, httpClient)
	case BackendOpenAI:
		return NewOpenAIClient(opts.BaseURL, opts.APIKey, httpClient), nil
	case BackendGemini, "google":
		return NewGeminiClient(ctx, opts.APIKey, httpClient)
	default:
		return nil, fmt.Errorf("unknown backend: %s", opts.Backend)
	}
}
