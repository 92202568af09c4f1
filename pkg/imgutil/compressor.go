package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
)

// fitQualities は FitJPEG が順に試す品質値です。
var fitQualities = []int{85, 75, 60, 45, 30}

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）をJPEG形式に圧縮します。
// image.Decodeがサポートするフォーマットに対応しています。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("画像のデコードに失敗しました: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("JPEGエンコードに失敗しました (quality=%d): %w", quality, err)
	}
	return buf.Bytes(), nil
}

// FitJPEG は maxBytes 以下になるまで品質を下げながら CompressToJPEG を繰り返します。
// 最低品質でも収まらない場合はエラーを返します。
func FitJPEG(data []byte, maxBytes int) ([]byte, error) {
	var last int
	for _, q := range fitQualities {
		out, err := CompressToJPEG(data, q)
		if err != nil {
			return nil, err
		}
		if len(out) <= maxBytes {
			return out, nil
		}
		last = len(out)
	}
	return nil, fmt.Errorf("image does not fit in %d bytes (smallest: %d bytes)", maxBytes, last)
}
