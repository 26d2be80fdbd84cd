package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/alecf/manimator/internal/animation"
	"github.com/alecf/manimator/internal/cache"
	"github.com/alecf/manimator/internal/config"
	"github.com/alecf/manimator/internal/metrics"
	"github.com/alecf/manimator/internal/render"
)

// pipeline is everything a command needs to generate animations
type pipeline struct {
	cache    *cache.Cache
	invoker  *render.Invoker
	metrics  *metrics.Collector
	service  *animation.Service
	provider string
	model    string
}

func newPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger, observer animation.Observer) (*pipeline, error) {
	videoDir := cfg.GetVideoDir()
	if err := os.MkdirAll(videoDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create video directory: %w", err)
	}

	provider, err := CreateProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	invoker := render.NewInvoker(render.Options{
		Command: cfg.Renderer.Command,
		Quality: cfg.Renderer.Quality,
		Format:  cfg.Renderer.Format,
		Scene:   cfg.Renderer.Scene,
		Timeout: cfg.RenderTimeout(),
	}, logger)

	c := cache.New(videoDir)
	collector := metrics.NewCollector("manimator")
	service := animation.NewService(c, provider, invoker, animation.Options{
		Model:        cfg.Model.Model,
		MaxTokens:    cfg.Model.MaxTokens,
		Temperature:  cfg.Model.Temperature,
		ModelTimeout: cfg.ModelTimeout(),
		Observer:     observer,
	}, collector, logger)

	return &pipeline{
		cache:    c,
		invoker:  invoker,
		metrics:  collector,
		service:  service,
		provider: provider.Name(),
		model:    cfg.Model.Model,
	}, nil
}
