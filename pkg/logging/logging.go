package logging

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options はプロセスロガーの設定です。
type Options struct {
	Level string
	// Console が true の場合は人間向けの整形出力になります（CLI 用）。
	Console bool
}

// New は zerolog のロガーを生成し、slog のデフォルトロガーを同じ出力先とレベルに揃えます。
// ライブラリ側のパッケージは slog で書き、実行ファイル側は返されたロガーを使います。
func New(w io.Writer, opts Options) zerolog.Logger {
	level := ParseLevel(opts.Level)

	out := w
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()

	slog.SetDefault(slog.New(NewSlogHandler(out, level)))
	return logger
}

// NewSlogHandler は zerolog と同じフィールド名で JSON を書き出す slog ハンドラーを返します。
// ConsoleWriter に渡しても整形されるように、キー名を zerolog に合わせています。
func NewSlogHandler(w io.Writer, level zerolog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: toSlogLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.MessageKey:
				a.Key = zerolog.MessageFieldName
			case slog.LevelKey:
				a.Key = zerolog.LevelFieldName
				a.Value = slog.StringValue(strings.ToLower(a.Value.String()))
			case slog.TimeKey:
				a.Key = zerolog.TimestampFieldName
			}
			return a
		},
	})
}

// ParseLevel はレベル名を解釈します。解釈できない場合は info です。
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func toSlogLevel(level zerolog.Level) slog.Level {
	switch {
	case level <= zerolog.DebugLevel:
		return slog.LevelDebug
	case level == zerolog.InfoLevel:
		return slog.LevelInfo
	case level == zerolog.WarnLevel:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
