package generator

import (
	"context"

	"github.com/shouni/story-vision-kit/pkg/domain"
)

// InferenceClient は推論エンドポイントとの通信を担当します。
// 実装は adapters パッケージにあります（Ollama / OpenAI互換 / Gemini）。
type InferenceClient interface {
	// Name はバックエンド名を返します。ログ出力用です。
	Name() string
	// Chat はペイロードを1回だけ送信し、モデルが返したテキストを返します。
	Chat(ctx context.Context, model string, payload domain.Payload, opts domain.GenerateOptions) (string, error)
}

// ImageLoader は ImageInput から画像のバイト列を取り出します。
type ImageLoader interface {
	Load(ctx context.Context, img domain.ImageInput) ([]byte, error)
}
