package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"

	"github.com/shouni/story-vision-kit/pkg/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// StoryService は物語生成の窓口です。generator.StoryGenerator が実装します。
type StoryService interface {
	Generate(ctx context.Context, req domain.StoryRequest) (*domain.StoryResponse, error)
}

// TravelService は旅行プラン生成の窓口です。generator.TravelPlanner が実装します。
type TravelService interface {
	Plan(ctx context.Context, req domain.TravelPlanRequest) (*domain.TravelPlanResponse, error)
}

// HealthChecker はバックエンドの疎通確認を行います。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Options はサーバーの依存とリミットです。
type Options struct {
	Logger zerolog.Logger
	// Pool は推論呼び出しを実行するワーカープールです。サイズが同時実行数の上限になります。
	Pool *ants.Pool
	// Health が nil の場合、/healthz は常に ok を返します。
	Health HealthChecker
	// Travel が nil の場合、/travel は登録されません。
	Travel        TravelService
	MaxImages     int
	MaxImageBytes int64
}

// Server はフォーム画面と JSON API を提供する HTTP サーバーです。
type Server struct {
	story         StoryService
	travel        TravelService
	health        HealthChecker
	pool          *ants.Pool
	logger        zerolog.Logger
	maxImages     int
	maxImageBytes int64
	engine        *gin.Engine
}

// New はルーティング済みのサーバーを生成します。
func New(story StoryService, opts Options) (*Server, error) {
	if story == nil {
		return nil, fmt.Errorf("story service is required")
	}
	if opts.Pool == nil {
		return nil, fmt.Errorf("worker pool is required")
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("テンプレートの読み込みに失敗しました: %w", err)
	}

	s := &Server{
		story:         story,
		travel:        opts.Travel,
		health:        opts.Health,
		pool:          opts.Pool,
		logger:        opts.Logger,
		maxImages:     opts.MaxImages,
		maxImageBytes: opts.MaxImageBytes,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger(s.logger))
	engine.SetHTMLTemplate(tmpl)
	if s.maxImages > 0 && s.maxImageBytes > 0 {
		engine.MaxMultipartMemory = int64(s.maxImages) * s.maxImageBytes
	}
	s.engine = engine
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/", s.storyForm)
	s.engine.POST("/story", s.submitStory)
	s.engine.POST("/api/story", s.apiStory)
	s.engine.GET("/healthz", s.healthz)
	if s.travel != nil {
		s.engine.GET("/travel", s.travelForm)
		s.engine.POST("/travel", s.submitTravel)
	}
}

// Handler はテスト用に http.Handler を返します。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run は addr で待ち受け、ctx がキャンセルされるとグレースフルに停止します。
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("HTTP サーバーを起動します")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info().Msg("HTTP サーバーを停止します")
		return srv.Shutdown(shutdownCtx)
	}
}

// submit は fn をワーカープールで実行し、終了まで待ちます。
// プールが埋まっている場合は空きが出るまで待たされます。
func (s *Server) submit(fn func()) error {
	done := make(chan struct{})
	if err := s.pool.Submit(func() {
		defer close(done)
		fn()
	}); err != nil {
		return fmt.Errorf("ワーカープールへの投入に失敗しました: %w", err)
	}
	<-done
	return nil
}
