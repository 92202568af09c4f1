package server

import (
	"context"
	"os"

	"github.com/shouni/story-vision-kit/pkg/domain"
)

// PNGの最小構成バイナリ（シグネチャ含む）
var validPng = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90w\x53\xde")

// mockStory は StoryService を実装し、受け取ったリクエストを記録します。
type mockStory struct {
	resp  *domain.StoryResponse
	err   error
	panic bool

	req domain.StoryRequest
	// existed は呼び出し時点で各アップロードファイルが存在したかどうかです。
	existed []bool
}

func (m *mockStory) Generate(ctx context.Context, req domain.StoryRequest) (*domain.StoryResponse, error) {
	m.req = req
	for _, img := range req.Images {
		_, err := os.Stat(img.Source)
		m.existed = append(m.existed, err == nil)
	}
	if m.panic {
		panic("model client exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.resp != nil {
		return m.resp, nil
	}
	return &domain.StoryResponse{Text: "Once upon a time", Model: "llava", ImageCount: len(req.Images)}, nil
}

type mockTravel struct {
	err   error
	panic bool
	req   domain.TravelPlanRequest
}

func (m *mockTravel) Plan(ctx context.Context, req domain.TravelPlanRequest) (*domain.TravelPlanResponse, error) {
	m.req = req
	if m.panic {
		panic("model client exploded")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	return &domain.TravelPlanResponse{Text: "Day 1: Kochi", Model: "mistral"}, nil
}

type mockHealth struct {
	err error
}

func (m *mockHealth) Ping(ctx context.Context) error { return m.err }
