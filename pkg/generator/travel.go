package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/story-vision-kit/pkg/domain"
)

// TravelPlanner はテキストのみのプロンプトで旅行の行程を生成します。
type TravelPlanner struct {
	client      InferenceClient
	model       string
	temperature float64
	now         func() time.Time
}

func NewTravelPlanner(client InferenceClient, model string, temperature float64) (*TravelPlanner, error) {
	if client == nil {
		return nil, fmt.Errorf("client (InferenceClient) is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &TravelPlanner{
		client:      client,
		model:       model,
		temperature: temperature,
		now:         time.Now,
	}, nil
}

// Plan は入力を検証して行程を1回だけ生成します。
func (p *TravelPlanner) Plan(ctx context.Context, req domain.TravelPlanRequest) (*domain.TravelPlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.Style, _ = domain.ParseTravelStyle(string(req.Style))

	payload := domain.NewPayload(BuildTravelPrompt(req, p.now().Month()))
	temperature := p.temperature
	opts := domain.GenerateOptions{
		SystemPrompt: TravelSystemPrompt,
		Temperature:  &temperature,
	}

	slog.InfoContext(ctx, "旅行プランの生成をリクエストします",
		"backend", p.client.Name(), "model", p.model, "destination", req.Destination, "days", req.Days)

	text, err := p.client.Chat(ctx, p.model, payload, opts)
	if err != nil {
		return nil, wrapGeneration(p.client.Name(), err)
	}
	return &domain.TravelPlanResponse{Text: text, Model: p.model}, nil
}
