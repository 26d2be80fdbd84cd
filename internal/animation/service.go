package animation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/alecf/manimator/internal/cache"
	"github.com/alecf/manimator/internal/llm"
	"github.com/alecf/manimator/internal/metrics"
	"github.com/alecf/manimator/internal/parser"
	"github.com/alecf/manimator/internal/prompt"
	"github.com/alecf/manimator/internal/render"
)

// DefaultTopic is used when a request has no topic
const DefaultTopic = "general"

// Request asks for an animation of one lesson step
type Request struct {
	StepText   string
	StepNumber int // carried for callers, not used by generation
	Topic      string
	Refresh    bool // ignore any cached video and render again
}

// Result is a video ready to serve
type Result struct {
	Key       string
	FileName  string
	VideoPath string
	Cached    bool               // served from the cache without rendering
	Shared    bool               // joined another in-flight render of the same key
	Model     *llm.QueryResponse // nil when no model call was made for this request
}

// Renderer runs scene source through the external renderer
type Renderer interface {
	Render(ctx context.Context, source, outputFile string) (*render.Result, error)
	Scene() string
}

// Options tunes the model call and hooks
type Options struct {
	Model        string
	MaxTokens    int
	Temperature  float64
	ModelTimeout time.Duration // 0 means no timeout
	Observer     Observer
}

// Service turns lesson steps into cached videos:
// cache check, prompt, model call, extraction, render, locate, store.
type Service struct {
	cache    *cache.Cache
	provider llm.Provider
	renderer Renderer
	parser   *parser.Parser
	opts     Options
	metrics  *metrics.Collector
	logger   *zap.Logger

	// collapses concurrent misses for one key into a single render
	flights singleflight.Group
}

// NewService wires the pipeline. metrics may be nil.
func NewService(c *cache.Cache, provider llm.Provider, renderer Renderer, opts Options, m *metrics.Collector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cache:    c,
		provider: provider,
		renderer: renderer,
		parser:   parser.New("python"),
		opts:     opts,
		metrics:  m,
		logger:   logger.With(zap.String("component", "animation")),
	}
}

// Generate returns the video for req, rendering it on a cache miss
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	s.notify(StageReceived)

	if req.StepText == "" {
		s.notify(StageFailed)
		return nil, newError(KindInput, "", ErrStepTextRequired)
	}
	if req.Topic == "" {
		req.Topic = DefaultTopic
	}
	if req.StepNumber <= 0 {
		req.StepNumber = 1
	}

	key := cache.GenerateKey(req.Topic, req.StepText)
	logger := s.logger.With(zap.String("key", key), zap.Int("step_number", req.StepNumber))

	s.notify(StageCacheCheck)
	if path, ok := s.lookup(req); ok {
		logger.Info("using cached animation", zap.String("file", cache.FileName(key)))
		s.notify(StageCacheHit)
		s.notify(StageRespond)
		s.metrics.RecordGeneration(metrics.OutcomeCacheHit)
		return &Result{Key: key, FileName: cache.FileName(key), VideoPath: path, Cached: true}, nil
	}
	s.notify(StageCacheMiss)

	// The render outlives any single caller so that joined callers are not
	// failed by the leader's cancellation. Model and render timeouts still apply.
	ch := s.flights.DoChan(key, func() (interface{}, error) {
		return s.generate(context.WithoutCancel(ctx), req, key, logger)
	})

	var flight singleflight.Result
	select {
	case flight = <-ch:
	case <-ctx.Done():
		s.notify(StageFailed)
		s.metrics.RecordGeneration(metrics.OutcomeFailed)
		logger.Info("request cancelled while waiting for render", zap.Error(ctx.Err()))
		return nil, newError(KindInternal, "request cancelled", ctx.Err())
	}

	v, err, shared := flight.Val, flight.Err, flight.Shared
	if err != nil {
		s.notify(StageFailed)
		s.metrics.RecordGeneration(metrics.OutcomeFailed)
		logger.Error("animation generation failed", zap.String("kind", string(KindOf(err))), zap.Error(err))
		return nil, err
	}

	result := *v.(*Result)
	switch {
	case shared:
		result.Shared = true
		result.Model = nil
		s.metrics.RecordGeneration(metrics.OutcomeShared)
	case result.Cached:
		s.metrics.RecordGeneration(metrics.OutcomeCacheHit)
	default:
		s.metrics.RecordGeneration(metrics.OutcomeRendered)
	}
	s.notify(StageRespond)
	return &result, nil
}

// generate runs the miss path for one key
func (s *Service) generate(ctx context.Context, req Request, key string, logger *zap.Logger) (*Result, error) {
	fileName := cache.FileName(key)

	// A flight for this key may have finished between our lookup and now
	if path, ok := s.lookup(req); ok {
		return &Result{Key: key, FileName: fileName, VideoPath: path, Cached: true}, nil
	}

	s.notify(StagePrompting)
	builder := prompt.NewBuilder(req.StepText, req.Topic, s.renderer.Scene())

	s.notify(StageModelCall)
	logger.Info("generating manim code", zap.String("step", truncate(req.StepText, 50)))
	resp, err := s.queryModel(ctx, builder)
	if err != nil {
		return nil, err
	}

	s.notify(StageExtracting)
	parsed := s.parser.Parse(resp.Content)
	if err := parser.ValidateScene(parsed.Code, s.renderer.Scene()); err != nil {
		// Let the renderer have the final word
		logger.Warn("generated code looks wrong", zap.String("fence", parsed.Fence.String()), zap.Error(err))
	}

	s.notify(StageRendering)
	logger.Info("rendering animation")
	rendered, err := s.renderer.Render(ctx, parsed.Code, fileName)
	if rendered != nil {
		defer func() {
			if cerr := rendered.Cleanup(); cerr != nil {
				logger.Warn("failed to remove render directory", zap.Error(cerr))
			}
		}()
		s.metrics.RecordRender(rendered.ExitCode, rendered.Duration)
	}
	if err != nil {
		var rerr *render.Error
		if errors.As(err, &rerr) {
			return nil, newError(KindRender, "", err)
		}
		return nil, newError(KindInternal, "", err)
	}

	s.notify(StageLocating)
	video, err := render.Locate(rendered.OutputDir)
	if err != nil {
		if errors.Is(err, render.ErrVideoNotFound) {
			return nil, newError(KindArtifact, "", err)
		}
		return nil, newError(KindInternal, "", err)
	}

	path, err := s.cache.Store(key, video)
	if err != nil {
		return nil, newError(KindInternal, "", err)
	}

	logger.Info("animation generated successfully", zap.String("file", fileName))
	return &Result{Key: key, FileName: fileName, VideoPath: path, Model: resp}, nil
}

func (s *Service) lookup(req Request) (string, bool) {
	if req.Refresh {
		return "", false
	}
	return s.cache.Lookup(req.Topic, req.StepText)
}

// queryModel asks the provider for scene code
func (s *Service) queryModel(ctx context.Context, builder *prompt.Builder) (*llm.QueryResponse, error) {
	if s.opts.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.ModelTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.provider.Query(ctx, llm.QueryRequest{
		Model:        s.opts.Model,
		SystemPrompt: builder.SystemPrompt(),
		UserPrompt:   builder.UserPrompt(),
		MaxTokens:    s.opts.MaxTokens,
		Temperature:  s.opts.Temperature,
	})

	var tokensIn, tokensOut int
	if resp != nil {
		tokensIn, tokensOut = resp.TokensInput, resp.TokensOutput
	}
	s.metrics.RecordModelCall(s.provider.Name(), s.opts.Model, time.Since(start), tokensIn, tokensOut, err)

	if err != nil {
		return nil, newError(KindModel, "failed to generate scene code", err)
	}
	return resp, nil
}

func (s *Service) notify(stage Stage) {
	s.logger.Debug("stage", zap.Stringer("stage", stage))
	if s.opts.Observer != nil {
		s.opts.Observer(stage)
	}
}

// truncate shortens s to at most n runes for log output
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
