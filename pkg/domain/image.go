package domain

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// ImageInput は呼び出し元から渡される1枚分の画像です。
// Source（ファイルパスまたは http(s) URL）か、メモリ上の Data のどちらかを持ちます。
type ImageInput struct {
	Source string
	Name   string
	Data   []byte
}

// Label はログや警告メッセージに出す識別名を返します。
// アップロード画像は一時ファイルのパスではなく元のファイル名を出すため、Name を優先します。
func (i ImageInput) Label() string {
	switch {
	case i.Name != "":
		return i.Name
	case i.Source != "":
		return i.Source
	default:
		return "<inline>"
	}
}

// IsEmpty は Source も Data も指定されていない場合に true を返します。
func (i ImageInput) IsEmpty() bool {
	return strings.TrimSpace(i.Source) == "" && len(i.Data) == 0
}

// EncodedImage はリクエストに埋め込むための base64 表現の画像です。
// リクエストの組み立て中だけ生存します。
type EncodedImage struct {
	Name     string
	MIMEType string
	Data     string // 標準アルファベット、パディングありの base64
}

// FallbackMIMEType は内容から画像形式を判定できない場合に使う MIME タイプです。
const FallbackMIMEType = "image/jpeg"

// EncodeImage はバイト列の MIME タイプを判定して base64 に変換します。
// HEIC や TIFF など判定できない形式も捨てずに FallbackMIMEType で送ります。
func EncodeImage(name string, data []byte) EncodedImage {
	return EncodedImage{
		Name:     name,
		MIMEType: sniffImageType(data),
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}

func sniffImageType(data []byte) string {
	if mimeType := http.DetectContentType(data); strings.HasPrefix(mimeType, "image/") {
		return mimeType
	}
	return FallbackMIMEType
}

// Decode は base64 表現から元のバイト列を復元します。
func (e EncodedImage) Decode() ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(e.Data)
	if err != nil {
		return nil, fmt.Errorf("base64デコードに失敗しました (%s): %w", e.Name, err)
	}
	return b, nil
}

// DataURL は data:<mime>;base64,<data> 形式の文字列を返します。
func (e EncodedImage) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", e.MIMEType, e.Data)
}
