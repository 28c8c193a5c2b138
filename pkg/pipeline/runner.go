package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/orientplace/pkg/cache"
	"github.com/matzehuels/orientplace/pkg/errors"
	"github.com/matzehuels/orientplace/pkg/netio"
	"github.com/matzehuels/orientplace/pkg/observability"
	"github.com/matzehuels/orientplace/pkg/wireimg"
)

// cacheKeyType labels batch entries in cache hooks.
const cacheKeyType = "batch"

// Runner encapsulates pipeline execution with caching.
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

// Execute runs the complete validate → compute → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, nets wireimg.NetMap, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	result.Stats.Grid = opts.Grid
	result.Stats.NetCount = nets.NetCount()

	// Stage 1+2: Validate and compute
	computeStart := time.Now()
	b, hash, hit, err := r.compute(ctx, result.RunID, nets, opts)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}
	result.Batch = b
	result.NetsHash = hash
	result.CacheHit = hit
	result.Stats.ComputeTime = time.Since(computeStart)
	for o, img := range b {
		result.Stats.Images[o] = img.Stats()
	}

	r.Logger.Info("computed batch",
		"run", result.RunID,
		"grid", opts.Grid,
		"nets", result.Stats.NetCount,
		"mode", opts.Mode(),
		"cached", hit,
		"duration", result.Stats.ComputeTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, b, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered outputs",
		"run", result.RunID,
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ComputeWithCacheInfo validates the nets, then returns the cached batch or
// computes a fresh one. The bool reports a cache hit.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, nets wireimg.NetMap, opts Options) (wireimg.Batch, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return wireimg.Batch{}, false, err
	}
	b, _, hit, err := r.compute(ctx, uuid.NewString(), nets, opts)
	return b, hit, err
}

// Compute is a convenience wrapper that calls ComputeWithCacheInfo and discards the cache hit info.
func (r *Runner) Compute(ctx context.Context, nets wireimg.NetMap, opts Options) (wireimg.Batch, error) {
	b, _, err := r.ComputeWithCacheInfo(ctx, nets, opts)
	return b, err
}

func (r *Runner) compute(ctx context.Context, runID string, nets wireimg.NetMap, opts Options) (wireimg.Batch, string, bool, error) {
	// Invalid input never reaches the cache.
	if err := wireimg.Validate(nets, opts.Grid); err != nil {
		return wireimg.Batch{}, "", false, err
	}

	netsData, err := netio.MarshalNetMap(nets, opts.Grid)
	if err != nil {
		return wireimg.Batch{}, "", false, err
	}
	hash := cache.Hash(netsData)
	cacheKey := r.Keyer.BatchKey(hash, opts.BatchKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			b, err := netio.UnmarshalBatch(data)
			switch {
			case err != nil:
				opts.Logger.Warn("discarding unreadable cache entry", "key", cacheKey, "err", err)
			case b.Grid() != opts.Grid:
				opts.Logger.Warn("discarding cache entry with wrong grid size",
					"key", cacheKey, "cached", b.Grid(), "want", opts.Grid)
			default:
				observability.Cache().OnCacheHit(ctx, cacheKeyType)
				opts.Logger.Debug("batch cache hit", "key", cacheKey)
				return b, hash, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache lookup failed", "key", cacheKey, "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
	}

	b, err := r.run(ctx, runID, nets, opts)
	if err != nil {
		return wireimg.Batch{}, hash, false, err
	}
	if err := checkFinite(b); err != nil {
		return wireimg.Batch{}, hash, false, err
	}

	// Cache the result
	if data, err := netio.MarshalBatch(b); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLBatch); err != nil {
			opts.Logger.Warn("cache store failed", "key", cacheKey, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}

	return b, hash, false, nil
}

// run invokes the selected batch driver and reports to the batch hooks.
func (r *Runner) run(ctx context.Context, runID string, nets wireimg.NetMap, opts Options) (wireimg.Batch, error) {
	hooks := observability.Batch()
	hooks.OnBatchStart(ctx, runID, opts.Grid, nets.NetCount(), opts.Parallel)
	start := time.Now()

	var (
		b   wireimg.Batch
		err error
	)
	if opts.Parallel {
		b, err = wireimg.ComputeParallel(ctx, nets, opts.Grid)
	} else {
		b, err = wireimg.Compute(nets, opts.Grid)
	}

	failed := make(map[wireimg.Orientation]bool)
	for _, o := range wireimg.FailedOrientations(err) {
		failed[o] = true
	}
	for _, o := range wireimg.Orientations() {
		var oerr error
		if failed[o] {
			oerr = err
		}
		hooks.OnOrientationComplete(ctx, runID, int(o), oerr)
	}
	hooks.OnBatchComplete(ctx, runID, time.Since(start), err)

	if err != nil {
		for _, o := range wireimg.FailedOrientations(err) {
			opts.Logger.Error("orientation failed", "run", runID, "orientation", int(o))
		}
		return wireimg.Batch{}, err
	}
	return b, nil
}

// checkFinite rejects batches whose costs overflowed float64. Such cells
// cannot be encoded as JSON or placed on a color scale.
func checkFinite(b wireimg.Batch) error {
	for o, img := range b {
		if x, y, ok := img.NonFinite(); ok {
			return errors.New(errors.ErrCodeInvalidInput,
				"orientation %d: cost at (%d, %d) is %v; reduce net weights", o, x, y, img.At(x, y))
		}
	}
	return nil
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
