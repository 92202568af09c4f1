package adapters

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	ollama "github.com/ollama/ollama/api"

	"github.com/shouni/story-vision-kit/pkg/domain"
)

// DefaultOllamaURL はローカルの Ollama サーバーのアドレスです。
const DefaultOllamaURL = "http://localhost:11434"

const defaultOllamaPort = "11434"

// OllamaClient は Ollama の Chat API を使う推論クライアントです。
// 生成時には接続を行わず、最初のリクエストで通信が始まります。
type OllamaClient struct {
	client *ollama.Client
	host   string
}

// NewOllamaClient は baseURL の Ollama サーバー向けのクライアントを生成します。
// OLLAMA_HOST と同じく "127.0.0.1:11434" や "localhost" のようなスキーム省略形も受け付けます。
func NewOllamaClient(baseURL string, httpClient *http.Client) (*OllamaClient, error) {
	u, err := parseOllamaHost(baseURL)
	if err != nil {
		return nil, err
	}
	baseURL = u.String()
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OllamaClient{
		client: ollama.NewClient(u, httpClient),
		host:   baseURL,
	}, nil
}

func (o *OllamaClient) Name() string { return BackendOllama }

// Chat はテキストを content、画像を images に載せた1件のユーザーメッセージを送信します。
// ストリームで届いた断片は連結して返します。
func (o *OllamaClient) Chat(ctx context.Context, model string, payload domain.Payload, opts domain.GenerateOptions) (string, error) {
	var messages []ollama.Message
	if opts.SystemPrompt != "" {
		messages = append(messages, ollama.Message{Role: "system", Content: opts.SystemPrompt})
	}

	var images []ollama.ImageData
	for _, img := range payload.Images() {
		data, err := img.Decode()
		if err != nil {
			return "", err
		}
		images = append(images, ollama.ImageData(data))
	}
	messages = append(messages, ollama.Message{
		Role:    "user",
		Content: payload.Text(),
		Images:  images,
	})

	req := &ollama.ChatRequest{
		Model:    model,
		Messages: messages,
		Options:  ollamaOptions(opts),
	}

	var text strings.Builder
	if err := o.client.Chat(ctx, req, func(cr ollama.ChatResponse) error {
		text.WriteString(cr.Message.Content)
		return nil
	}); err != nil {
		return "", err
	}
	return text.String(), nil
}

// Ping はサーバーが応答するかを確認します。
func (o *OllamaClient) Ping(ctx context.Context) error {
	if err := o.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama (%s) is not reachable: %w", o.host, err)
	}
	return nil
}

// parseOllamaHost はスキームがなければ http を補い、ポートもなければ 11434 を補います。
func parseOllamaHost(raw string) (*url.URL, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		raw = DefaultOllamaURL
	}

	schemeless := !strings.Contains(raw, "://")
	if schemeless {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid ollama base URL %q: unsupported scheme %q", raw, u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("invalid ollama base URL %q: host is missing", raw)
	}
	if schemeless && u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), defaultOllamaPort)
	}
	return u, nil
}

func ollamaOptions(opts domain.GenerateOptions) map[string]any {
	options := make(map[string]any)
	if opts.Temperature != nil {
		options["temperature"] = *opts.Temperature
	}
	if opts.Seed != nil {
		options["seed"] = *opts.Seed
	}
	if len(options) == 0 {
		return nil
	}
	return options
}
