package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/story-vision-kit/pkg/domain"
)

const gcsScheme = "gs://"

// HTTPClient は URL からデータを取得するためのインターフェースです。
// go-http-kit の httpkit.Client がこれを満たします。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ImageCacher は取得済み画像のキャッシュ操作を抽象化するインターフェースです。
type ImageCacher interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, d time.Duration)
}

// ImageLoader は ImageInput からバイト列を取り出す generator.ImageLoader の実装です。
// ローカルファイル、http(s) URL、gs:// URI、メモリ上のデータを扱います。
type ImageLoader struct {
	reader     remoteio.InputReader
	httpClient HTTPClient
	imageCache ImageCacher
	cacheTTL   time.Duration
}

// NewImageLoader は依存関係を注入して ImageLoader を生成します。
// reader が nil の場合は gs:// を、httpClient が nil の場合は http(s) URL を扱いません。
// imageCache は nil を許容します。
func NewImageLoader(reader remoteio.InputReader, httpClient HTTPClient, imageCache ImageCacher, cacheTTL time.Duration) *ImageLoader {
	return &ImageLoader{
		reader:     reader,
		httpClient: httpClient,
		imageCache: imageCache,
		cacheTTL:   cacheTTL,
	}
}

// Load は画像のバイト列を返します。
// 存在しないファイルパスの場合、返すエラーは fs.ErrNotExist を含みます。
func (l *ImageLoader) Load(ctx context.Context, img domain.ImageInput) ([]byte, error) {
	if len(img.Data) > 0 {
		return img.Data, nil
	}

	src := strings.TrimSpace(img.Source)
	if src == "" {
		return nil, fmt.Errorf("image source is empty")
	}
	if isRemote(src) {
		return l.loadRemote(ctx, src)
	}
	return os.ReadFile(src)
}

func (l *ImageLoader) loadRemote(ctx context.Context, rawURL string) ([]byte, error) {
	// キャッシュの確認
	if l.imageCache != nil {
		if cached, found := l.imageCache.Get(rawURL); found {
			if data, ok := cached.([]byte); ok {
				return data, nil
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "url", rawURL, "type", fmt.Sprintf("%T", cached))
		}
	}

	data, err := l.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if l.imageCache != nil {
		l.imageCache.Set(rawURL, data, l.cacheTTL)
	}
	return data, nil
}

func (l *ImageLoader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, gcsScheme) {
		if l.reader == nil {
			return nil, fmt.Errorf("gs:// images are not enabled: %s", rawURL)
		}
		rc, err := l.reader.Open(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("画像の読み込みに失敗しました: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	if l.httpClient == nil {
		return nil, fmt.Errorf("remote images are not enabled: %s", rawURL)
	}

	// SSRF対策のバリデーション
	if safe, err := isSafeURL(rawURL); !safe || err != nil {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}

	data, err := l.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("画像のダウンロードに失敗しました: %w", err)
	}
	return data, nil
}

func isRemote(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(src, gcsScheme)
}

// isSafeURL は SSRF 対策として URL を検証します。
// 名前解決されたすべての IP アドレスに対してプライベート IP チェックを行います。
func isSafeURL(rawURL string) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	host := parsedURL.Hostname()
	var ips []net.IP

	// 1. IPアドレスが直接指定されているか確認
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		// 2. ホスト名の場合、すべての IP を取得する
		resolvedIPs, err := net.LookupIP(host)
		if err != nil {
			return false, fmt.Errorf("名前解決失敗: %w", err)
		}
		ips = resolvedIPs
	}

	if len(ips) == 0 {
		return false, fmt.Errorf("IPが見つかりません")
	}

	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}

	return true, nil
}
