package config

import "time"

// fileValues は YAML をそのまま読み込んだマップです。
// 型が合わないキーは未指定として扱い、既定値を使います。
type fileValues map[string]any

func (v fileValues) stringOr(key, def string) string {
	s, ok := v[key].(string)
	if !ok || s == "" {
		return def
	}
	return s
}

func (v fileValues) intOr(key string, def int) int {
	i, ok := v[key].(int)
	if !ok {
		return def
	}
	return i
}

// floatOr は整数で書かれた値も受け付けます（例: temperature: 1）。
func (v fileValues) floatOr(key string, def float64) float64 {
	switch f := v[key].(type) {
	case float64:
		return f
	case int:
		return float64(f)
	default:
		return def
	}
}

// durationOr はミリ秒単位の整数を Duration に変換します。
func (v fileValues) durationOr(key string, def time.Duration) time.Duration {
	ms := v.intOr(key, -1)
	if ms < 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}
