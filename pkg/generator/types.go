package generator

import (
	"errors"
	"fmt"
)

const (
	// StoryErrorPrefix は物語生成の失敗をユーザーに見せるときの固定接頭辞です。
	StoryErrorPrefix = "Error generating story: "
	// TravelErrorPrefix は旅行プラン生成の失敗に付ける接頭辞です。
	TravelErrorPrefix = "Error: "
)

var (
	// ErrNoImages は有効な画像が1枚もない場合のエラーです。
	ErrNoImages = errors.New("no images provided")
	// ErrTooManyImages は画像枚数が上限を超えた場合のエラーです。
	ErrTooManyImages = errors.New("too many images")
	// ErrGeneration は推論呼び出しが失敗した場合のエラーです。
	// 通信エラー、モデル未導入、不正なペイロードはすべてここに集約されます。
	ErrGeneration = errors.New("inference call failed")
)

// FormatError はエラーを接頭辞付きの1行メッセージに変換します。
func FormatError(prefix string, err error) string {
	if err == nil {
		return ""
	}
	return prefix + err.Error()
}

// ErrorMessage は物語生成のエラーを表示用の文字列に変換します。
func ErrorMessage(err error) string {
	return FormatError(StoryErrorPrefix, err)
}

func wrapGeneration(backend string, err error) error {
	return fmt.Errorf("%w (%s): %w", ErrGeneration, backend, err)
}
