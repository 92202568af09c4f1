package utils

// DereferenceSeed は、int64のポインタを安全にデリファレンスします。
// ポインタがnilの場合は0を返します。
func DereferenceSeed(seed *int64) int64 {
	if seed == nil {
		return 0
	}
	return *seed
}

// SeedToPtrInt32 は *int64 を Gemini SDK 用の *int32 に変換します。
// 範囲外の値は上位ビットが切り捨てられますが、シードの再現性には影響しません。
func SeedToPtrInt32(seed *int64) *int32 {
	if seed == nil {
		return nil
	}
	v := int32(*seed)
	return &v
}

// SeedToPtrInt は *int64 を OpenAI クライアント用の *int に変換します。
func SeedToPtrInt(seed *int64) *int {
	if seed == nil {
		return nil
	}
	v := int(*seed)
	return &v
}

// FloatToPtr32 は *float64 を *float32 に変換します。
func FloatToPtr32(f *float64) *float32 {
	if f == nil {
		return nil
	}
	v := float32(*f)
	return &v
}
