package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/story-vision-kit/pkg/domain"
)

func newTestGenerator(t *testing.T, loader ImageLoader, client InferenceClient, maxImages int) *StoryGenerator {
	t.Helper()
	a, err := NewAssembler(loader, testMaxImageBytes)
	require.NoError(t, err)
	g, err := NewStoryGenerator(a, client, "llava", maxImages)
	require.NoError(t, err)
	return g
}

func TestNewStoryGenerator(t *testing.T) {
	a, _ := NewAssembler(&mockLoader{}, 0)

	_, err := NewStoryGenerator(nil, &mockClient{}, "llava", 5)
	assert.Error(t, err)
	_, err = NewStoryGenerator(a, nil, "llava", 5)
	assert.Error(t, err)
	_, err = NewStoryGenerator(a, &mockClient{}, "", 5)
	assert.Error(t, err)
}

func TestStoryGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("成功: ペイロードがそのままクライアントに渡されるのだ", func(t *testing.T) {
		client := &mockClient{}
		g := newTestGenerator(t, &mockLoader{}, client, 5)
		seed := int64(777)

		resp, err := g.Generate(ctx, domain.StoryRequest{
			Context: "a sunny day in Kerala",
			Style:   "nostalgic",
			Images:  []domain.ImageInput{{Source: "1.png"}, {Source: "2.png"}},
			Seed:    &seed,
		})

		require.NoError(t, err)
		assert.Equal(t, "Once upon a time", resp.Text)
		assert.Equal(t, 2, resp.ImageCount)
		assert.Equal(t, seed, resp.UsedSeed)
		assert.Equal(t, "llava", resp.Model)

		assert.Equal(t, 1, client.calls)
		assert.Equal(t, "llava", client.lastModel)
		require.Len(t, client.lastPayload.Segments, 3)
		assert.Contains(t, client.lastPayload.Text(), "nostalgic")
		assert.Contains(t, client.lastPayload.Text(), "a sunny day in Kerala")
		require.NotNil(t, client.lastOpts.Seed)
		assert.Equal(t, seed, *client.lastOpts.Seed)
	})

	t.Run("失敗: 画像がない場合は推論せずに ErrNoImages", func(t *testing.T) {
		client := &mockClient{}
		g := newTestGenerator(t, &mockLoader{}, client, 5)

		_, err := g.Generate(ctx, domain.StoryRequest{Context: "x", Style: domain.StylePoetic})

		assert.ErrorIs(t, err, ErrNoImages)
		assert.Zero(t, client.calls)
	})

	t.Run("失敗: すべての画像が読み込めない場合も ErrNoImages", func(t *testing.T) {
		client := &mockClient{}
		loader := &mockLoader{loadFunc: func(_ context.Context, img domain.ImageInput) ([]byte, error) {
			if img.Source == "a.png" {
				return nil, os.ErrNotExist
			}
			return nil, errors.New("gone")
		}}
		g := newTestGenerator(t, loader, client, 5)

		_, err := g.Generate(ctx, domain.StoryRequest{
			Style:  domain.StylePoetic,
			Images: []domain.ImageInput{{Source: "a.png"}, {Source: "b.png"}},
		})

		assert.ErrorIs(t, err, ErrNoImages)
		assert.Zero(t, client.calls)
		assert.ErrorContains(t, err, "Warning: Image not found - a.png", "どのファイルが失敗したか分かるべきなのだ")
		assert.ErrorContains(t, err, "Warning: Image skipped - b.png: gone")
	})

	t.Run("失敗: 空のエントリだけの場合も ErrNoImages", func(t *testing.T) {
		client := &mockClient{}
		g := newTestGenerator(t, &mockLoader{}, client, 5)

		_, err := g.Generate(ctx, domain.StoryRequest{
			Style:  domain.StylePoetic,
			Images: []domain.ImageInput{{}, {Source: " "}},
		})

		assert.ErrorIs(t, err, ErrNoImages)
		assert.ErrorContains(t, err, "empty")
		assert.Zero(t, client.calls)
	})

	t.Run("失敗: 上限を超える枚数は ErrTooManyImages", func(t *testing.T) {
		client := &mockClient{}
		g := newTestGenerator(t, &mockLoader{}, client, 2)

		_, err := g.Generate(ctx, domain.StoryRequest{
			Style:  domain.StylePoetic,
			Images: []domain.ImageInput{{Source: "a"}, {Source: "b"}, {Source: "c"}},
		})

		assert.ErrorIs(t, err, ErrTooManyImages)
		assert.Zero(t, client.calls)
	})

	t.Run("失敗: 未知のスタイル", func(t *testing.T) {
		g := newTestGenerator(t, &mockLoader{}, &mockClient{}, 5)

		_, err := g.Generate(ctx, domain.StoryRequest{
			Style:  "Spooky",
			Images: []domain.ImageInput{{Source: "a.png"}},
		})

		assert.ErrorIs(t, err, domain.ErrUnknownStyle)
	})

	t.Run("失敗: 推論エラーは ErrGeneration でラップされ、元のエラーも辿れる", func(t *testing.T) {
		cause := errors.New("dial tcp 127.0.0.1:11434: connect: connection refused")
		client := &mockClient{chatFunc: func(context.Context, string, domain.Payload, domain.GenerateOptions) (string, error) {
			return "", cause
		}}
		g := newTestGenerator(t, &mockLoader{}, client, 5)

		_, err := g.Generate(ctx, domain.StoryRequest{
			Style:  domain.StyleDramatic,
			Images: []domain.ImageInput{{Source: "a.png"}},
		})

		assert.ErrorIs(t, err, ErrGeneration)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 1, client.calls)
	})
}

func TestStoryGenerator_EndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	valid := writeImage(t, dir, "beach.png", validPng)
	missing := filepath.Join(dir, "nope.png")

	t.Run("存在しないパスが混ざっていても残りの画像で生成する", func(t *testing.T) {
		client := &mockClient{}
		g := newTestGenerator(t, fileLoader{}, client, 5)

		resp, err := g.Generate(ctx, domain.StoryRequest{
			Context: "waves",
			Style:   domain.StyleNostalgic,
			Images:  []domain.ImageInput{{Source: missing}, {Source: valid}},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, resp.ImageCount)
		require.Len(t, resp.Warnings, 1)
		assert.Contains(t, resp.Warnings[0], missing)
		assert.Len(t, client.lastPayload.Images(), 1)
	})

	t.Run("推論が失敗しても固定接頭辞付きの文字列が返り、パニックしない", func(t *testing.T) {
		client := &mockClient{chatFunc: func(context.Context, string, domain.Payload, domain.GenerateOptions) (string, error) {
			return "", errors.New(`model "llava" not found, try pulling it first`)
		}}
		g := newTestGenerator(t, fileLoader{}, client, 5)

		out := g.Tell(ctx, domain.StoryRequest{
			Context: "waves",
			Style:   domain.StyleNostalgic,
			Images:  []domain.ImageInput{{Source: valid}},
		})

		assert.True(t, strings.HasPrefix(out, StoryErrorPrefix), out)
		assert.Contains(t, out, `model "llava" not found, try pulling it first`)
		assert.Equal(t, 1, strings.Count(out, "\n")+1, "message should be a single line")
	})

	t.Run("成功時の Tell は物語のテキストそのもの", func(t *testing.T) {
		g := newTestGenerator(t, fileLoader{}, &mockClient{}, 5)

		out := g.Tell(ctx, domain.StoryRequest{Style: domain.StylePoetic, Images: []domain.ImageInput{{Source: valid}}})

		assert.Equal(t, "Once upon a time", out)
	})
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, "Error generating story: no images provided", ErrorMessage(ErrNoImages))
	assert.Equal(t, "Error: boom", FormatError(TravelErrorPrefix, errors.New("boom")))
}
