package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/api/iterator"
)

var _ remoteio.InputReader = (*GCSReader)(nil)

// GCSReader は gs://bucket/object 形式の画像を読む remoteio.InputReader の実装です。
// Cloud Storage のクライアントは最初の読み込み時に生成されるため、
// gs:// を使わない限り認証情報は不要です。
type GCSReader struct {
	mu     sync.Mutex
	client *storage.Client
	newFn  func(ctx context.Context) (*storage.Client, error)
}

// NewGCSReader は接続を行わずに GCSReader を返します。
func NewGCSReader() *GCSReader {
	return &GCSReader{newFn: func(ctx context.Context) (*storage.Client, error) {
		return storage.NewClient(ctx)
	}}
}

func (r *GCSReader) storageClient(ctx context.Context) (*storage.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	c, err := r.newFn(ctx)
	if err != nil {
		return nil, fmt.Errorf("GCSクライアントの初期化に失敗しました: %w", err)
	}
	r.client = c
	return c, nil
}

// Open はオブジェクトのリーダーを返します。存在しないオブジェクトは fs.ErrNotExist を含むエラーです。
func (r *GCSReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, object, err := parseGCSURI(uri)
	if err != nil {
		return nil, err
	}
	if object == "" {
		return nil, fmt.Errorf("object name is missing: %s", uri)
	}
	c, err := r.storageClient(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := c.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, uri)
	}
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// List は uri をプレフィックスとするオブジェクトを gs:// 形式で fn に渡します。
func (r *GCSReader) List(ctx context.Context, uri string, fn func(string) error) error {
	bucket, prefix, err := parseGCSURI(uri)
	if err != nil {
		return err
	}
	c, err := r.storageClient(ctx)
	if err != nil {
		return err
	}
	it := c.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(gcsScheme + bucket + "/" + attrs.Name); err != nil {
			return err
		}
	}
}

// Close は生成済みのクライアントを閉じます。
func (r *GCSReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

// parseGCSURI は gs://bucket/path/to/object を bucket と object に分けます。
func parseGCSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, gcsScheme)
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URI: %s", uri)
	}
	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("bucket name is missing: %s", uri)
	}
	return bucket, object, nil
}
