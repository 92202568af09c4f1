package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStyle は未定義のスタイルラベルが指定された場合のエラーです。
var ErrUnknownStyle = errors.New("unknown story style")

// Style は物語の語り口を決めるラベルです。
type Style string

const (
	StyleNostalgic Style = "Nostalgic"
	StyleHumorous  Style = "Humorous"
	StyleDramatic  Style = "Dramatic"
	StylePoetic    Style = "Poetic"
)

// Styles はフォームのセレクタに並べる順序で全スタイルを返します。
func Styles() []Style {
	return []Style{StyleNostalgic, StyleHumorous, StyleDramatic, StylePoetic}
}

// ParseStyle は大文字小文字を区別せずにラベルを解釈します。
func ParseStyle(s string) (Style, error) {
	label := strings.TrimSpace(s)
	for _, st := range Styles() {
		if strings.EqualFold(label, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

// Prompt はプロンプトに埋め込む小文字のラベルを返します。
func (s Style) Prompt() string {
	return strings.ToLower(string(s))
}

// StoryRequest はユーザーの1回の送信内容です。
type StoryRequest struct {
	Context string
	Style   Style
	Images  []ImageInput
	Seed    *int64
}

// StoryResponse はモデルから返ってきたテキストとそのメタデータです。
type StoryResponse struct {
	Text       string
	Model      string
	ImageCount int
	UsedSeed   int64
	Warnings   []string
}
