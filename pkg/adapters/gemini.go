package adapters

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/shouni/story-vision-kit/pkg/domain"
	"github.com/shouni/story-vision-kit/pkg/utils"
)

// contentGenerator は genai.Models のうち利用するメソッドだけを切り出したものです。
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient は Gemini API を使う推論クライアントです。
type GeminiClient struct {
	models contentGenerator
}

// NewGeminiClient は Gemini API 用のクライアントを生成します。
// apiKey が空の場合、SDK が GOOGLE_API_KEY / GEMINI_API_KEY を参照します。
func NewGeminiClient(ctx context.Context, apiKey string, httpClient *http.Client) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiClient{models: client.Models}, nil
}

func (g *GeminiClient) Name() string { return BackendGemini }

// Chat はテキストパーツと画像の InlineData パーツを1つのユーザーコンテンツにまとめて送信します。
func (g *GeminiClient) Chat(ctx context.Context, model string, payload domain.Payload, opts domain.GenerateOptions) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(payload.Text())}
	for _, img := range payload.Images() {
		data, err := img.Decode()
		if err != nil {
			return "", err
		}
		parts = append(parts, genai.NewPartFromBytes(data, img.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		Temperature: utils.FloatToPtr32(opts.Temperature),
		Seed:        utils.SeedToPtrInt32(opts.Seed),
	}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}

	resp, err := g.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return parseText(resp)
}

// parseText は最初の候補 (Candidate) からテキストを取り出します。
func parseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("Geminiからの有効な応答がありませんでした")
	}
	candidate := resp.Candidates[0]

	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" && !part.Thought {
				text.WriteString(part.Text)
			}
		}
	}
	if text.Len() > 0 {
		return text.String(), nil
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return "", fmt.Errorf("生成が異常終了しました (FinishReason: %s)", candidate.FinishReason)
	}
	return "", fmt.Errorf("テキストが見つかりませんでした")
}
