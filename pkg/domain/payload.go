package domain

// SegmentKind はペイロード内のセグメント種別です。
type SegmentKind string

const (
	TextSegment  SegmentKind = "text"
	ImageSegment SegmentKind = "image"
)

// Segment はリクエストペイロードの1要素です。
type Segment struct {
	Kind  SegmentKind
	Text  string
	Image *EncodedImage
}

// Payload は1回の推論呼び出しに送る内容です。
// 先頭にテキストセグメントが1つ、その後ろに画像セグメントが入力順に並びます。
type Payload struct {
	Segments []Segment
}

// NewPayload は先頭テキストだけを持つペイロードを作成します。
func NewPayload(text string) Payload {
	return Payload{Segments: []Segment{{Kind: TextSegment, Text: text}}}
}

// AddImage は画像セグメントを末尾に追加します。
func (p *Payload) AddImage(img EncodedImage) {
	p.Segments = append(p.Segments, Segment{Kind: ImageSegment, Image: &img})
}

// Text は全テキストセグメントを連結して返します。
func (p Payload) Text() string {
	text := ""
	for _, s := range p.Segments {
		if s.Kind != TextSegment {
			continue
		}
		if text != "" {
			text += "\n\n"
		}
		text += s.Text
	}
	return text
}

// Images は画像セグメントを順序通りに返します。
func (p Payload) Images() []EncodedImage {
	var images []EncodedImage
	for _, s := range p.Segments {
		if s.Kind == ImageSegment && s.Image != nil {
			images = append(images, *s.Image)
		}
	}
	return images
}

// GenerateOptions は推論バックエンドに渡す生成パラメータです。
type GenerateOptions struct {
	SystemPrompt string
	Temperature  *float64
	Seed         *int64 // nil でモデル任せ
}
