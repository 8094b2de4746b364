package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/plasmap/pkg/cache"
	pkgio "github.com/matzehuels/plasmap/pkg/io"
	"github.com/matzehuels/plasmap/pkg/layout"
	"github.com/matzehuels/plasmap/pkg/observability"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner can serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses the default keyer.
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
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load, layout and render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	runID := uuid.NewString()
	logger := r.Logger.With("run", runID)
	opts.Logger = logger
	r.applyLogger(&opts)

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: runID}

	loadStart := time.Now()
	if err := Load(&opts); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Name = opts.Name
	result.InputHash = opts.InputHash()
	result.Stats.LoadTime = time.Since(loadStart)
	logger.Debug("loaded features", "source", opts.String())

	layoutStart := time.Now()
	l, hit, err := r.ComputeLayoutWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.CacheInfo.LayoutHit = hit
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Features = l.Stats.Features
	result.Stats.Visible = l.Stats.Visible
	result.Stats.Rings = l.Stats.Resolution.Rings
	result.Stats.Passes = l.Stats.Resolution.Passes

	logger.Info("computed layout",
		"features", l.Stats.Features,
		"rings", l.Stats.Resolution.Rings,
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered map",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeLayoutWithCacheInfo lays out the loaded sequence and reports
// whether the layout came from the cache.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, opts Options) (layout.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, false, err
	}
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	key := r.Keyer.LayoutKey(opts.InputHash(), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := pkgio.ReadLayoutJSON(bytes.NewReader(data)); err == nil {
				cacheHooks.OnCacheHit(ctx, "layout")
				hooks.OnLayoutComplete(ctx, len(opts.Features), 0, 0, nil)
				return cached, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", key, "err", err)
		}
		cacheHooks.OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	hooks.OnLayoutStart(ctx, len(opts.Features))
	l, err := ComputeLayout(opts)
	hooks.OnLayoutComplete(ctx, len(opts.Features), l.Stats.Resolution.Passes, time.Since(start), err)
	if err != nil {
		return layout.Layout{}, false, err
	}

	if data, err := marshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return l, false, nil
}

// ComputeLayout is ComputeLayoutWithCacheInfo without the hit flag.
func (r *Runner) ComputeLayout(ctx context.Context, opts Options) (layout.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, opts)
	return l, err
}

// RenderWithCacheInfo renders every requested format and reports whether
// all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	layoutData, err := marshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			cacheHooks.OnCacheMiss(ctx, "artifact")
		}
		allCached = false

		start := time.Now()
		hooks.OnRenderStart(ctx, format)
		data, err := renderFormat(l, format, opts)
		hooks.OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, false, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data

		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			cacheHooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return artifacts, allCached, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger where opts has none. It must run
// before validation, which installs a discarding layout logger.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if opts.Layout.Logger == nil {
		opts.Layout.Logger = opts.Logger
	}
}
