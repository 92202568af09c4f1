package adapters

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/shouni/story-vision-kit/pkg/domain"
	"github.com/shouni/story-vision-kit/pkg/utils"
)

// OpenAIClient は OpenAI 互換の Chat Completions API を使う推論クライアントです。
// llama.cpp server や LM Studio など、ローカルの互換サーバーにも向けられます。
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient はクライアントを生成します。baseURL が空なら OpenAI 本家を使います。
func NewOpenAIClient(baseURL, apiKey string, httpClient *http.Client) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAIClient) Name() string { return BackendOpenAI }

// Chat は画像を data URL として image_url パーツに載せて送信します。
func (o *OpenAIClient) Chat(ctx context.Context, model string, payload domain.Payload, opts domain.GenerateOptions) (string, error) {
	var messages []openai.ChatCompletionMessage
	if opts.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: opts.SystemPrompt,
		})
	}
	messages = append(messages, userMessage(payload))

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		Seed:     utils.SeedToPtrInt(opts.Seed),
	}
	if opts.Temperature != nil {
		req.Temperature = float32(*opts.Temperature)
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI-compatible server")
	}
	return resp.Choices[0].Message.Content, nil
}

func userMessage(payload domain.Payload) openai.ChatCompletionMessage {
	images := payload.Images()
	if len(images) == 0 {
		return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: payload.Text()}
	}

	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: payload.Text(),
	}}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    img.DataURL(),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts}
}
