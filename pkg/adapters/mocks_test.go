package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"time"

	"google.golang.org/genai"
)

// --- Mocks ---

// PNGの最小構成バイナリ（シグネチャ含む）
var validPng = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00\x90w\x53\xde")

// mockHTTPClient は HTTPClient を実装します。
type mockHTTPClient struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
	calls     int
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.calls++
	return m.fetchFunc(ctx, url)
}

// mockCache は ImageCacher インターフェースを実装するのだ。
type mockCache struct {
	data map[string]interface{}
}

func (m *mockCache) Get(key string) (interface{}, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockCache) Set(key string, value interface{}, d time.Duration) {
	if m.data == nil {
		m.data = make(map[string]interface{})
	}
	m.data[key] = value
}

// mockGenerator は contentGenerator を実装し、最後の呼び出し内容を記録します。
type mockGenerator struct {
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.model = model
	m.contents = contents
	m.config = config
	return m.resp, m.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      genai.NewContentFromText(text, genai.RoleModel),
			FinishReason: genai.FinishReasonStop,
		}},
	}
}

// mockReader は remoteio.InputReader を実装します。
type mockReader struct {
	objects map[string][]byte
	opened  []string
	closed  int
}

func (m *mockReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	m.opened = append(m.opened, uri)
	data, ok := m.objects[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, uri)
	}
	return &trackedReadCloser{Reader: bytes.NewReader(data), onClose: func() { m.closed++ }}, nil
}

func (m *mockReader) List(ctx context.Context, uri string, fn func(string) error) error {
	for k := range m.objects {
		if err := fn(k); err != nil {
			return err
		}
	}
	return nil
}

type trackedReadCloser struct {
	io.Reader
	onClose func()
}

func (t *trackedReadCloser) Close() error {
	t.onClose()
	return nil
}
