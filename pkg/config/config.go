package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config はアプリケーション全体の設定値です。
// 値の優先順位は 環境変数 > 設定ファイル > 既定値 です。
type Config struct {
	Backend               string
	BaseURL               string
	APIKey                string
	StoryModel            string
	TravelModel           string
	RequestTimeout        time.Duration
	MaxImages             int
	MaxImageBytes         int
	// ImageCacheTTL が 0 の場合、リモート画像はキャッシュしません。
	ImageCacheTTL         time.Duration
	ListenAddr            string
	MaxConcurrentRequests int
	LogLevel              string
	TravelTemperature     float64
}

const (
	DefaultBackend               = "ollama"
	DefaultBaseURL               = "http://localhost:11434"
	DefaultStoryModel            = "llava"
	DefaultTravelModel           = "mistral"
	DefaultRequestTimeout        = 120 * time.Second
	DefaultMaxImages             = 5
	DefaultMaxImageBytes         = 10 << 20
	DefaultImageCacheTTL         = 10 * time.Minute
	DefaultListenAddr            = ":8080"
	DefaultMaxConcurrentRequests = 1
	DefaultLogLevel              = "info"
	DefaultTravelTemperature     = 0.3
)

var ErrInvalidConfig = errors.New("invalid config")

var knownBackends = map[string]bool{"ollama": true, "openai": true, "gemini": true}

// Default は既定値だけで構成された設定を返します。
func Default() *Config {
	return &Config{
		Backend:               DefaultBackend,
		BaseURL:               DefaultBaseURL,
		StoryModel:            DefaultStoryModel,
		TravelModel:           DefaultTravelModel,
		RequestTimeout:        DefaultRequestTimeout,
		MaxImages:             DefaultMaxImages,
		MaxImageBytes:         DefaultMaxImageBytes,
		ImageCacheTTL:         DefaultImageCacheTTL,
		ListenAddr:            DefaultListenAddr,
		MaxConcurrentRequests: DefaultMaxConcurrentRequests,
		LogLevel:              DefaultLogLevel,
		TravelTemperature:     DefaultTravelTemperature,
	}
}

// Load は設定を読み込みます。path が空なら設定ファイルは読まず、既定値に環境変数を重ねます。
// 読み込んだ後は必ず Validate を通します。
func Load(path string) (*Config, error) {
	values := make(map[string]any)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("設定ファイルの解析に失敗しました (%s): %w", path, err)
		}
	}

	cfg := fromValues(values)
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromValues(values map[string]any) *Config {
	v := fileValues(values)
	cfg := Default()
	cfg.Backend = v.stringOr("backend", cfg.Backend)
	cfg.BaseURL = v.stringOr("baseURL", cfg.BaseURL)
	cfg.APIKey = v.stringOr("apiKey", cfg.APIKey)
	cfg.StoryModel = v.stringOr("storyModel", cfg.StoryModel)
	cfg.TravelModel = v.stringOr("travelModel", cfg.TravelModel)
	cfg.RequestTimeout = v.durationOr("requestTimeoutMs", cfg.RequestTimeout)
	cfg.MaxImages = v.intOr("maxImages", cfg.MaxImages)
	cfg.MaxImageBytes = v.intOr("maxImageBytes", cfg.MaxImageBytes)
	cfg.ImageCacheTTL = v.durationOr("imageCacheTTLMs", cfg.ImageCacheTTL)
	cfg.ListenAddr = v.stringOr("listenAddr", cfg.ListenAddr)
	cfg.MaxConcurrentRequests = v.intOr("maxConcurrentRequests", cfg.MaxConcurrentRequests)
	cfg.LogLevel = v.stringOr("logLevel", cfg.LogLevel)
	cfg.TravelTemperature = v.floatOr("travelTemperature", cfg.TravelTemperature)
	return cfg
}

// applyEnv は環境変数で設定を上書きします。
func applyEnv(cfg *Config) {
	if v := os.Getenv("STORY_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("STORY_MODEL"); v != "" {
		cfg.StoryModel = v
	}
	if v := os.Getenv("TRAVEL_MODEL"); v != "" {
		cfg.TravelModel = v
	}
	if v := os.Getenv("STORY_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	switch cfg.Backend {
	case "ollama":
		if v := os.Getenv("OLLAMA_HOST"); v != "" {
			cfg.BaseURL = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
			cfg.BaseURL = v
		}
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	case "gemini":
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			cfg.APIKey = v
		} else if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
			cfg.APIKey = v
		}
	}
}

// Validate は設定値の整合性を検証します。
func (c *Config) Validate() error {
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	if c.StoryModel == "" {
		return fmt.Errorf("%w: storyModel is required", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: requestTimeoutMs must be positive", ErrInvalidConfig)
	}
	if c.MaxImages <= 0 {
		return fmt.Errorf("%w: maxImages must be positive", ErrInvalidConfig)
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("%w: maxImageBytes must be positive", ErrInvalidConfig)
	}
	if c.MaxConcurrentRequests <= 0 {
		return fmt.Errorf("%w: maxConcurrentRequests must be positive", ErrInvalidConfig)
	}
	if c.ImageCacheTTL < 0 {
		return fmt.Errorf("%w: imageCacheTTLMs must not be negative", ErrInvalidConfig)
	}
	return nil
}
