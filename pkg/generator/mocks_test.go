package generator

import (
	"context"
	"os"

	"github.com/shouni/story-vision-kit/pkg/domain"
)

// --- Mocks ---

// testMaxImageBytes は設定の既定値と同じ 10MiB の上限です。
const testMaxImageBytes = 10 << 20

// PNGの最小構成バイナリ（シグネチャ含む）
var validPng = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90w\x53\xde")

type mockLoader struct {
	loadFunc func(ctx context.Context, img domain.ImageInput) ([]byte, error)
	calls    []string
}

func (m *mockLoader) Load(ctx context.Context, img domain.ImageInput) ([]byte, error) {
	m.calls = append(m.calls, img.Label())
	if m.loadFunc != nil {
		return m.loadFunc(ctx, img)
	}
	return validPng, nil
}

// fileLoader は実ファイルを読む最小限の ImageLoader です。
type fileLoader struct{}

func (fileLoader) Load(_ context.Context, img domain.ImageInput) ([]byte, error) {
	if len(img.Data) > 0 {
		return img.Data, nil
	}
	return os.ReadFile(img.Source)
}

type mockClient struct {
	chatFunc    func(ctx context.Context, model string, payload domain.Payload, opts domain.GenerateOptions) (string, error)
	calls       int
	lastModel   string
	lastPayload domain.Payload
	lastOpts    domain.GenerateOptions
}

func (m *mockClient) Name() string { return "mock" }

func (m *mockClient) Chat(ctx context.Context, model string, payload domain.Payload, opts domain.GenerateOptions) (string, error) {
	m.calls++
	m.lastModel = model
	m.lastPayload = payload
	m.lastOpts = opts
	if m.chatFunc != nil {
		return m.chatFunc(ctx, model, payload, opts)
	}
	return "Once upon a time", nil
}
