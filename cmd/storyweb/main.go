package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"

	"github.com/shouni/story-vision-kit/pkg/app"
	"github.com/shouni/story-vision-kit/pkg/config"
	"github.com/shouni/story-vision-kit/pkg/logging"
	"github.com/shouni/story-vision-kit/pkg/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, logging.Options{Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("サーバーが異常終了しました")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()
	if err := a.Ping(ctx); err != nil {
		// 起動後にモデルサーバーが立ち上がることもあるので続行する
		logger.Warn().Err(err).Msg("推論バックエンドに接続できません")
	}

	panicHandler := func(p interface{}) {
		logger.Error().Err(fmt.Errorf("%v", p)).Msg("Panic in worker pool")
	}
	pool, err := ants.NewPool(cfg.MaxConcurrentRequests, ants.WithPanicHandler(panicHandler))
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	srv, err := server.New(a.Story, server.Options{
		Logger:        logger,
		Pool:          pool,
		Health:        a,
		Travel:        a.Travel,
		MaxImages:     cfg.MaxImages,
		MaxImageBytes: int64(cfg.MaxImageBytes),
	})
	if err != nil {
		return err
	}

	logger.Info().
		Str("backend", cfg.Backend).
		Str("base_url", cfg.BaseURL).
		Str("story_model", cfg.StoryModel).
		Str("travel_model", cfg.TravelModel).
		Int("workers", cfg.MaxConcurrentRequests).
		Msg("storyweb を起動します")
	return srv.Run(ctx, cfg.ListenAddr)
}
