package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tapestry/pkg/art"
	"github.com/matzehuels/tapestry/pkg/cache"
	"github.com/matzehuels/tapestry/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete plan → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts:  make(map[string][]byte),
		ParamsHash: opts.ParamsHash(),
	}

	// Stage 1: Plan
	planStart := time.Now()
	plan, err := r.Plan(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Plan = plan
	result.Stats.PlanTime = time.Since(planStart)
	result.Stats.CellCount = len(plan.Cells)
	result.Stats.Draws = plan.Draws

	r.Logger.Info("planned cells",
		"grid", plan.Params.Grid,
		"pattern", plan.Params.Pattern,
		"cells", len(plan.Cells),
		"draws", plan.Draws,
		"duration", result.Stats.PlanTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, info, err := r.RenderWithCacheInfo(ctx, plan, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo = info

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", info.RenderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Plan computes the preview-size render plan.
func (r *Runner) Plan(ctx context.Context, opts Options) (*art.Plan, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	p := opts.Engine().Normalize(opts.Params)
	hooks.OnPlanStart(ctx, string(p.Grid), string(p.Pattern))

	start := time.Now()
	plan, err := opts.Engine().Plan(opts.Params, opts.Seed, opts.Width, opts.Height)
	if err != nil {
		hooks.OnPlanComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnPlanComplete(ctx, len(plan.Cells), plan.Draws, time.Since(start), nil)

	opts.Logger.Debug("normalized params",
		"grid", p.Grid,
		"cols", p.Cols,
		"rows", p.Rows,
		"variation", p.Variation,
		"colors", p.ColorMode,
		"palette", len(p.Palette),
		"sharpness", p.Sharpness)
	return plan, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// Formats found in the cache are returned as stored; the rest are rendered
// and written back.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, plan *art.Plan, opts Options) (map[string][]byte, CacheInfo, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, CacheInfo{}, err
	}

	paramsHash := opts.ParamsHash()
	info := CacheInfo{Hits: make(map[string]bool, len(opts.Formats))}
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string

	for _, format := range opts.Formats {
		key, keyType := r.key(paramsHash, format, opts)
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, keyType)
				artifacts[format] = data
				info.Hits[format] = true
				continue
			} else if err != nil {
				opts.Logger.Warn("cache read failed", "format", format, "error", err)
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyType)
		missing = append(missing, format)
	}

	info.RenderHit = len(missing) == 0
	if info.RenderHit {
		return artifacts, info, nil
	}

	rendered, err := r.renderFormats(ctx, plan, opts, missing)
	if err != nil {
		return nil, info, err
	}

	for format, data := range rendered {
		key, keyType := r.key(paramsHash, format, opts)
		ttl := cache.TTLArtifact
		if keyType == "plan" {
			ttl = cache.TTLPlan
		}
		if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyType, len(data))
		}
		artifacts[format] = data
	}

	return artifacts, info, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, plan *art.Plan, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, plan, opts)
	return artifacts, err
}

func (r *Runner) renderFormats(ctx context.Context, plan *art.Plan, opts Options, formats []string) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, formats)
	start := time.Now()

	out, err := RenderFromPlan(ctx, plan, opts, formats)
	hooks.OnRenderComplete(ctx, formats, time.Since(start), err)
	return out, err
}

// key returns the cache key for a format and the key type used in hooks.
// The plan document is keyed by plan options alone, so it is shared across
// scales.
func (r *Runner) key(paramsHash, format string, opts Options) (string, string) {
	if format == FormatJSON {
		return r.Keyer.PlanKey(paramsHash, opts.PlanKeyOpts()), "plan"
	}
	return r.Keyer.ArtifactKey(paramsHash, opts.ArtifactKeyOpts(format)), "artifact"
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
