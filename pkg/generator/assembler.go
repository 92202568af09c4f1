package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/shouni/story-vision-kit/pkg/domain"
	"github.com/shouni/story-vision-kit/pkg/imgutil"
)

// Assembler は画像とコンテキストから推論リクエストのペイロードを組み立てます。
type Assembler struct {
	loader        ImageLoader
	maxImageBytes int
}

// NewAssembler は依存関係を注入して Assembler を初期化します。
// maxImageBytes が 0 以下の場合はサイズ制限なしで動作します。
func NewAssembler(loader ImageLoader, maxImageBytes int) (*Assembler, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader (ImageLoader) is required")
	}
	return &Assembler{
		loader:        loader,
		maxImageBytes: maxImageBytes,
	}, nil
}

// Assemble は先頭にテキストセグメント、続けて読み込めた画像を入力順に並べたペイロードを返します。
// 読み込めなかった画像は警告を残してスキップし、エラーにはしません。
func (a *Assembler) Assemble(ctx context.Context, images []domain.ImageInput, storyContext string, style domain.Style) (domain.Payload, []string) {
	payload := domain.NewPayload(BuildStoryPrompt(style, storyContext))

	var warnings []string
	for i, img := range images {
		if img.IsEmpty() {
			continue
		}

		enc, err := a.prepareImage(ctx, img)
		if err != nil {
			slog.WarnContext(ctx, "画像を読み込めなかったためスキップします", "index", i, "image", img.Label(), "error", err)
			warnings = append(warnings, skipWarning(img, err))
			continue
		}
		payload.AddImage(enc)
	}

	slog.DebugContext(ctx, "ペイロードの組み立てが完了しました",
		"segments", len(payload.Segments), "images", len(payload.Segments)-1, "skipped", len(warnings))
	return payload, warnings
}

func (a *Assembler) prepareImage(ctx context.Context, img domain.ImageInput) (domain.EncodedImage, error) {
	data, err := a.loader.Load(ctx, img)
	if err != nil {
		return domain.EncodedImage{}, err
	}

	if a.maxImageBytes > 0 && len(data) > a.maxImageBytes {
		fitted, err := imgutil.FitJPEG(data, a.maxImageBytes)
		if err != nil {
			return domain.EncodedImage{}, fmt.Errorf("image exceeds %d bytes: %w", a.maxImageBytes, err)
		}
		slog.InfoContext(ctx, "画像を上限サイズに収まるよう再圧縮しました",
			"image", img.Label(), "before", len(data), "after", len(fitted))
		data = fitted
	}

	return domain.EncodeImage(imageName(img), data), nil
}

func imageName(img domain.ImageInput) string {
	if img.Name != "" {
		return img.Name
	}
	if img.Source != "" {
		return filepath.Base(img.Source)
	}
	return "image"
}

func skipWarning(img domain.ImageInput, err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Sprintf("Warning: Image not found - %s", img.Label())
	}
	return fmt.Sprintf("Warning: Image skipped - %s: %v", img.Label(), err)
}
