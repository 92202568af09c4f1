package app

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/story-vision-kit/pkg/adapters"
	"github.com/shouni/story-vision-kit/pkg/config"
	"github.com/shouni/story-vision-kit/pkg/generator"
)

// App は設定から組み立てた依存一式です。
// クライアントは一度だけ生成され、物語生成と旅行プランの両方で共有されます。
type App struct {
	Config *config.Config
	Client generator.InferenceClient
	Story  *generator.StoryGenerator
	Travel *generator.TravelPlanner

	gcs *adapters.GCSReader
}

// New は設定に従って依存を組み立てます。ネットワーク接続はここでは行いません。
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	client, err := adapters.NewInferenceClient(ctx, adapters.ClientOptions{
		Backend: cfg.Backend,
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("推論クライアントの初期化に失敗しました: %w", err)
	}
	return NewWithClient(cfg, client)
}

// NewWithClient は既存の推論クライアントを使って依存を組み立てます。
func NewWithClient(cfg *config.Config, client generator.InferenceClient) (*App, error) {
	gcs := adapters.NewGCSReader()
	loader := adapters.NewImageLoader(gcs, httpkit.New(cfg.RequestTimeout), newImageCache(cfg.ImageCacheTTL), cfg.ImageCacheTTL)

	assembler, err := generator.NewAssembler(loader, cfg.MaxImageBytes)
	if err != nil {
		return nil, err
	}
	story, err := generator.NewStoryGenerator(assembler, client, cfg.StoryModel, cfg.MaxImages)
	if err != nil {
		return nil, err
	}
	travel, err := generator.NewTravelPlanner(client, cfg.TravelModel, cfg.TravelTemperature)
	if err != nil {
		return nil, err
	}

	return &App{
		Config: cfg,
		Client: client,
		Story:  story,
		Travel: travel,
		gcs:    gcs,
	}, nil
}

// newImageCache は TTL が 0 以下ならキャッシュを使いません（go-cache では期限 0 が無期限になる）。
func newImageCache(ttl time.Duration) adapters.ImageCacher {
	if ttl <= 0 {
		return nil
	}
	return cache.New(ttl, 2*ttl)
}

// Close は遅延生成された外部クライアントを閉じます。
func (a *App) Close() error {
	return a.gcs.Close()
}

// Ping はクライアントが疎通確認に対応していれば実行します。
func (a *App) Ping(ctx context.Context) error {
	if p, ok := a.Client.(adapters.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
