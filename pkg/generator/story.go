package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/story-vision-kit/pkg/domain"
	"github.com/shouni/story-vision-kit/pkg/utils"
)

// StoryGenerator は、画像とコンテキストから物語を生成する窓口です。
// 組み立て(Assembler)と推論呼び出し(InferenceClient)を直列に実行します。
type StoryGenerator struct {
	assembler *Assembler
	client    InferenceClient
	model     string
	maxImages int
}

// NewStoryGenerator は StoryGenerator を初期化します。
// maxImages が 0 以下の場合は枚数制限なしで動作します。
func NewStoryGenerator(assembler *Assembler, client InferenceClient, model string, maxImages int) (*StoryGenerator, error) {
	if assembler == nil {
		return nil, fmt.Errorf("assembler is required")
	}
	if client == nil {
		return nil, fmt.Errorf("client (InferenceClient) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &StoryGenerator{
		assembler: assembler,
		client:    client,
		model:     model,
		maxImages: maxImages,
	}, nil
}

// Generate はリクエストを検証し、ペイロードを組み立てて推論エンドポイントを1回だけ呼び出します。
// 有効な画像が1枚も残らなかった場合は、各画像の警告を含めた ErrNoImages を返し、推論は行いません。
func (g *StoryGenerator) Generate(ctx context.Context, req domain.StoryRequest) (*domain.StoryResponse, error) {
	if len(req.Images) == 0 {
		return nil, ErrNoImages
	}
	if g.maxImages > 0 && len(req.Images) > g.maxImages {
		return nil, fmt.Errorf("%w: %d given, limit is %d", ErrTooManyImages, len(req.Images), g.maxImages)
	}
	style, err := domain.ParseStyle(string(req.Style))
	if err != nil {
		return nil, err
	}

	payload, warnings := g.assembler.Assemble(ctx, req.Images, req.Context, style)
	imageCount := len(payload.Images())
	if imageCount == 0 {
		if len(warnings) == 0 {
			return nil, fmt.Errorf("%w: all %d image entries are empty", ErrNoImages, len(req.Images))
		}
		return nil, fmt.Errorf("%w: none of the %d images could be loaded (%s)",
			ErrNoImages, len(req.Images), strings.Join(warnings, "; "))
	}

	slog.InfoContext(ctx, "物語の生成をリクエストします",
		"backend", g.client.Name(), "model", g.model, "style", style, "images", imageCount)

	text, err := g.client.Chat(ctx, g.model, payload, domain.GenerateOptions{Seed: req.Seed})
	if err != nil {
		slog.ErrorContext(ctx, "推論呼び出しに失敗しました", "backend", g.client.Name(), "error", err)
		return nil, wrapGeneration(g.client.Name(), err)
	}

	return &domain.StoryResponse{
		Text:       text,
		Model:      g.model,
		ImageCount: imageCount,
		UsedSeed:   utils.DereferenceSeed(req.Seed),
		Warnings:   warnings,
	}, nil
}

// Tell は Generate の結果を常に1つの文字列として返します。
// 失敗した場合は StoryErrorPrefix で始まるメッセージになります。
func (g *StoryGenerator) Tell(ctx context.Context, req domain.StoryRequest) string {
	resp, err := g.Generate(ctx, req)
	if err != nil {
		return ErrorMessage(err)
	}
	return resp.Text
}
