package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/cache"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/document"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/layouter"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/model"
	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/observability"
)

// Runner executes layouts with caching. Both the CLI and the API use it.
//
// The Runner holds no per-run state, so several goroutines may share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner. A nil keyer uses [cache.DefaultKeyer], a nil
// cache disables caching and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.Disabled("no cache configured")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultTTL,
	}
}

// Layout lays out defs, consulting the cache first.
//
// The cache key is computed before the layout runs, since laying out binds
// unlaned nodes to lanes in defs. Cache failures are logged and otherwise
// ignored.
func (r *Runner) Layout(ctx context.Context, defs *model.Definitions, opts Options) (*Result, error) {
	if defs == nil {
		return nil, fmt.Errorf("layout: nil definitions")
	}
	logger := r.logger(opts)

	canonical, err := document.Canonical(defs)
	if err != nil {
		return nil, fmt.Errorf("canonical document: %w", err)
	}
	res := &Result{
		RunID:        uuid.NewString(),
		DocumentHash: cache.Hash(canonical),
	}
	res.Stats.Nodes = countNodes(defs)
	key := r.Keyer.LayoutKey(res.DocumentHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if l, ok := r.cachedLayout(ctx, key, logger); ok {
			res.Layout = l
			res.CacheHit = true
			res.fillStats()
			logger.Info("layout from cache", "run", res.RunID, "document", defs.ID)
			return res, nil
		}
	}

	observability.Layout().OnLayoutStart(ctx, defs.ID, res.Stats.Nodes)
	start := time.Now()

	lopts := []layouter.Option{layouter.WithLogger(logger)}
	if opts.Grids {
		lopts = append(lopts, layouter.WithGrids())
	}
	l, err := layouter.New(opts.Layout, lopts...).Layout(ctx, defs)
	res.Stats.LayoutTime = time.Since(start)
	observability.Layout().OnLayoutComplete(ctx, defs.ID, res.Stats.LayoutTime, err)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", defs.ID, err)
	}
	res.Layout = l
	res.fillStats()

	logger.Info("computed layout",
		"run", res.RunID,
		"document", defs.ID,
		"shapes", res.Stats.Shapes,
		"edges", res.Stats.Edges,
		"steps", l.Stats.Steps,
		"duration", res.Stats.LayoutTime)
	if l.Stats.Truncated {
		logger.Warn("step budget exhausted; layout is partial", "document", defs.ID, "max_steps", opts.Layout.MaxSteps)
	}

	if data, err := cache.Encode(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}
	return res, nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string, logger *log.Logger) (*layouter.Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "error", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var l layouter.Result
	if err := cache.Decode(data, &l); err != nil {
		logger.Debug("discarding undecodable cache entry", "error", err)
		return nil, false
	}
	return &l, true
}

// Render encodes a layout result in format, caching rendered artifacts.
func (r *Runner) Render(ctx context.Context, l *layouter.Result, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("render: nil layout")
	}

	encoded, err := cache.Encode(l)
	if err != nil {
		return nil, fmt.Errorf("hash layout: %w", err)
	}
	key := r.Keyer.ArtifactKey(cache.Hash(encoded), cache.ArtifactKeyOpts{Format: format})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		return data, nil
	}

	data, err := Render(ctx, l, format)
	if err != nil {
		return nil, err
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
	}
	return data, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func (res *Result) fillStats() {
	res.Stats.Shapes = len(res.Layout.Shapes())
	res.Stats.Edges = len(res.Layout.Edges())
}

func countNodes(defs *model.Definitions) int {
	n := 0
	for _, p := range defs.AllProcesses() {
		n += len(p.Nodes)
	}
	return n
}
