package pipeline

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/core/lsystem"
	"github.com/matzehuels/arbor/pkg/core/tree"
	"github.com/matzehuels/arbor/pkg/core/tree/prune"
	"github.com/matzehuels/arbor/pkg/core/turtle"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/graph"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/species"
)

// Cache key types reported to observability hooks.
const (
	keyTypeTree     = "tree"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its cache, catalogue and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Catalog species.Catalog
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and catalogue.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If catalog is nil, the embedded species catalogue is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, catalog species.Catalog, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if catalog == nil {
		catalog = species.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Catalog: catalog,
		Logger:  logger,
	}
}

// Execute runs the complete resolve → grow → prune → render pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	opts, sp, err := r.Resolve(ctx, opts)
	if err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		Species:   sp,
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Grow
	growStart := time.Now()
	full, growHit, err := r.GrowWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("grow: %w", err)
	}
	result.Full = full
	result.Stats.GrowTime = time.Since(growStart)
	result.Stats.Full = full.Stats()
	result.CacheInfo.GrowHit = growHit
	if rules, err := opts.Grammar(); err == nil {
		result.Stats.Symbols, _ = lsystem.Length(opts.Axiom, rules, opts.Generations())
	}

	opts.Logger.Info("grew tree",
		"species", opts.SpeciesID,
		"iterations", opts.Generations(),
		"branches", result.Stats.Full.Branches,
		"cached", growHit,
		"duration", result.Stats.GrowTime)

	// Stage 2: Prune
	pruneStart := time.Now()
	view, removed, err := r.Prune(ctx, full, opts.Pruned)
	if err != nil {
		return nil, fmt.Errorf("prune: %w", err)
	}
	result.Pruned = view
	result.Removed = removed
	result.Stats.PruneTime = time.Since(pruneStart)
	result.Stats.Pruned = view.Stats()
	result.Stats.Removed = removed.Len()

	if len(opts.Pruned) > 0 {
		opts.Logger.Info("pruned tree",
			"cuts", len(opts.Pruned),
			"removed", removed.Len(),
			"duration", result.Stats.PruneTime)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, hash, renderHit, err := r.render(ctx, full, view, removed, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.TreeHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit
	result.Options = opts

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Resolve fills in the grammar and the default angle and step from the
// species catalogue. An explicit Axiom skips the lookup. Without either a
// species or an axiom the first catalogue entry is used.
func (r *Runner) Resolve(ctx context.Context, opts Options) (Options, *species.Species, error) {
	if opts.Axiom != "" {
		return opts, nil, nil
	}
	if r.Catalog == nil {
		return opts, nil, errors.New(errors.ErrCodeInvalidInput, "axiom or species is required")
	}

	var (
		sp  species.Species
		err error
	)
	if opts.SpeciesID == "" {
		sp, err = species.First(ctx, r.Catalog)
	} else {
		if err := errors.ValidateSpeciesID(opts.SpeciesID); err != nil {
			return opts, nil, err
		}
		sp, err = r.Catalog.Get(ctx, opts.SpeciesID)
	}
	if err != nil {
		return opts, nil, err
	}

	opts.SpeciesID = sp.ID
	opts.Axiom = sp.Axiom
	opts.Rules = maps.Clone(sp.Rules)
	if opts.Angle == 0 {
		opts.Angle = sp.DefaultAngle
	}
	if opts.Step == 0 {
		opts.Step = sp.DefaultStep
	}
	return opts, &sp, nil
}

// Expand resolves the grammar and returns the expanded symbol string.
func (r *Runner) Expand(ctx context.Context, opts Options) (string, error) {
	opts, _, err := r.Resolve(ctx, opts)
	if err != nil {
		return "", err
	}
	if err := opts.ValidateForGrow(); err != nil {
		return "", err
	}
	rules, err := opts.Grammar()
	if err != nil {
		return "", err
	}
	return lsystem.ExpandBounded(opts.Axiom, rules, opts.Generations(), MaxSymbols)
}

// GrowWithCacheInfo grows the full tree with caching and returns cache hit
// info.
func (r *Runner) GrowWithCacheInfo(ctx context.Context, opts Options) (*tree.Tree, bool, error) {
	opts, _, err := r.Resolve(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	if err := opts.ValidateForGrow(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnGrowStart(ctx, opts.SpeciesID, opts.Generations())
	start := time.Now()

	t, hit, err := r.grow(ctx, opts)

	segments := 0
	if t != nil {
		segments = t.BranchCount()
	}
	hooks.OnGrowComplete(ctx, opts.SpeciesID, segments, hit, time.Since(start), err)
	return t, hit, err
}

// Grow is a convenience wrapper that calls GrowWithCacheInfo and discards the cache hit info.
func (r *Runner) Grow(ctx context.Context, opts Options) (*tree.Tree, error) {
	t, _, err := r.GrowWithCacheInfo(ctx, opts)
	return t, err
}

func (r *Runner) grow(ctx context.Context, opts Options) (*tree.Tree, bool, error) {
	cacheHooks := observability.Cache()
	cacheKey := r.Keyer.TreeKey(opts.TreeKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		switch {
		case err != nil:
			opts.Logger.Debug("cache read failed", "key", cacheKey, "error", err)
		case hit:
			t, err := graph.UnmarshalTree(data)
			if err == nil {
				cacheHooks.OnCacheHit(ctx, keyTypeTree)
				return t, true, nil // Cache hit
			}
			// If deserialization fails, fall through to regrow
			opts.Logger.Warn("discarding unreadable cached tree", "key", cacheKey, "error", err)
		}
		cacheHooks.OnCacheMiss(ctx, keyTypeTree)
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	rules, err := opts.Grammar()
	if err != nil {
		return nil, false, err
	}
	symbols, err := lsystem.ExpandBounded(opts.Axiom, rules, opts.Generations(), MaxSymbols)
	if err != nil {
		return nil, false, err
	}
	opts.Logger.Debug("expanded grammar", "symbols", len(symbols))

	t, err := turtle.InterpretWith(symbols, opts.Angle, opts.Step, turtle.Options{Renormalize: opts.Renormalize})
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := graph.MarshalTree(t); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TreeTTL); err != nil {
			opts.Logger.Debug("cache write failed", "key", cacheKey, "error", err)
		} else {
			cacheHooks.OnCacheSet(ctx, keyTypeTree, len(data))
		}
	}

	return t, false, nil // Cache miss
}

// Prune derives the pruned view of full. Every id must name a branch of
// full; the root cannot be pruned. The returned set holds every removed
// identity, the subtree closure of ids.
func (r *Runner) Prune(ctx context.Context, full *tree.Tree, ids []string) (*tree.Tree, prune.Set, error) {
	for _, id := range ids {
		if err := errors.ValidateBranchID(id); err != nil {
			return nil, nil, err
		}
		if !full.Has(id) {
			return nil, nil, errors.New(errors.ErrCodeBranchNotFound, "branch %q not found", id)
		}
	}

	hooks := observability.Pipeline()
	hooks.OnPruneStart(ctx, len(ids))
	start := time.Now()

	removed := prune.Closure(full, ids...)
	view := prune.Filter(full, removed)

	hooks.OnPruneComplete(ctx, removed.Len(), time.Since(start))
	return view, removed, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, full, view *tree.Tree, removed prune.Set, opts Options) (map[string][]byte, bool, error) {
	artifacts, _, hit, err := r.render(ctx, full, view, removed, opts)
	return artifacts, hit, err
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, full, view *tree.Tree, removed prune.Set, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, full, view, removed, opts)
	return artifacts, err
}

func (r *Runner) render(ctx context.Context, full, view *tree.Tree, removed prune.Set, opts Options) (map[string][]byte, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, "", false, err
	}

	// Compute cache key from the full tree
	treeData, err := graph.MarshalTree(full)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize tree for cache key: %w", err)
	}
	treeHash := cache.Hash(treeData)

	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(treeHash, opts.ArtifactKeyOpts(format, removed))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			cacheHooks.OnCacheMiss(ctx, keyTypeArtifact)
			break
		}
		cacheHooks.OnCacheHit(ctx, keyTypeArtifact)
		artifacts[format] = data
	}

	if len(artifacts) == len(opts.Formats) {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, treeHash, true, nil // All artifacts from cache
	}

	// Render all formats
	rendered, err := RenderTrees(ctx, full, view, removed, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(treeHash, opts.ArtifactKeyOpts(format, removed))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.ArtifactTTL); err == nil {
			cacheHooks.OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, treeHash, false, nil // Cache miss
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
