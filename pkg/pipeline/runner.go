package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/springlayout/pkg/cache"
	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
	"github.com/matzehuels/springlayout/pkg/observability"
	"github.com/matzehuels/springlayout/pkg/preset"
	"github.com/matzehuels/springlayout/pkg/render"
)

// Runner executes runs with caching. It keeps no per-run state, so one
// Runner may serve concurrent calls.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// Hooks receive the events of every simulated model.
	Hooks observability.SimulationHooks
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// means [cache.DefaultKeyer] and a nil logger means log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Simulation is the outcome of the simulation stage, as cached.
type Simulation struct {
	Snapshot model.Snapshot `json:"snapshot"`
	Stats    Stats          `json:"stats"`
}

// Execute runs the simulation and renders the requested formats.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	run, hit, err := r.SimulateWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("simulation done",
		"vertices", run.Stats.Vertices,
		"steps", run.Stats.Steps,
		"finished", run.Stats.Finished,
		"overlaps", run.Stats.Metrics.Overlaps,
		"cached", hit)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, run.Snapshot, opts)
	if err != nil {
		return nil, err
	}
	run.Stats.RenderTime = time.Since(renderStart)
	r.Logger.Info("rendered outputs", "formats", opts.Formats, "duration", run.Stats.RenderTime)

	return &Result{
		Snapshot:  run.Snapshot,
		Artifacts: artifacts,
		Stats:     run.Stats,
		CacheInfo: CacheInfo{SnapshotHit: hit, RenderHit: renderHit},
	}, nil
}

// SimulateWithCacheInfo returns the final snapshot of the run described by
// opts, from the cache when possible.
func (r *Runner) SimulateWithCacheInfo(ctx context.Context, opts Options) (*Simulation, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	p, err := loadPreset(opts.Preset)
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.SnapshotKey(configHash(opts, p), opts.SnapshotKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var run Simulation
			if err := json.Unmarshal(data, &run); err == nil {
				return &run, true, nil
			}
		}
	}

	m, err := build(opts, p, r.Hooks)
	if err != nil {
		return nil, false, err
	}
	start := time.Now()
	steps, err := m.Run(ctx, model.RunOptions{MaxSteps: opts.Steps, UntilFinished: opts.UntilFinished})
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	run := &Simulation{Snapshot: m.Snapshot()}
	run.Stats = stats(run.Snapshot, steps, time.Since(start))
	if run.Stats.Metrics, err = m.Metrics(); err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(run); err == nil {
		if err := r.Cache.Set(ctx, key, data, TTLSnapshot); err != nil {
			r.Logger.Warn("cache write failed", "error", err)
		}
	}
	return run, false, nil
}

// RenderWithCacheInfo renders snap in every format of opts. The render
// counts as a cache hit only when every format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snap model.Snapshot, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	formats, err := opts.renderFormats()
	if err != nil {
		return nil, false, err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize snapshot for cache key")
	}
	snapHash := cache.Hash(data)

	artifacts := make(map[string][]byte, len(formats))
	if !opts.Refresh {
		for _, f := range formats {
			key := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(string(f)))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[string(f)] = data
		}
		if len(artifacts) == len(formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := render.Render(snap, formats, opts.RenderOptions())
	if err != nil {
		return nil, false, err
	}
	clear(artifacts)
	for f, out := range rendered {
		artifacts[string(f)] = out
		key := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(string(f)))
		_ = r.Cache.Set(ctx, key, out, TTLArtifact)
	}
	return artifacts, false, nil
}

// Build creates a model configured by opts, with its graph generated and
// no steps taken. Interactive consumers start from it.
func Build(opts Options, hooks observability.SimulationHooks) (*model.Model, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	p, err := loadPreset(opts.Preset)
	if err != nil {
		return nil, err
	}
	return build(opts, p, hooks)
}

// build applies, in order: the preset, the strategy names, the overrides.
// Then it generates the graph.
func build(opts Options, p *preset.Preset, hooks observability.SimulationHooks) (*model.Model, error) {
	placement, err := model.ParsePlacement(opts.Placement)
	if err != nil {
		return nil, err
	}
	m := model.New(model.Options{
		Seed:      opts.Seed,
		Placement: placement,
		Logger:    opts.Logger,
		Hooks:     hooks,
	})
	if p != nil {
		if err := preset.Configure(m, p); err != nil {
			return nil, err
		}
	}

	choices := []struct {
		name string
		use  func(string) error
	}{
		{opts.Graph, m.UseGenerator},
		{opts.Embedder, m.UseEmbedder},
		{opts.Rigid, m.UseRigid},
		{opts.Manager, m.UseManager},
	}
	for _, c := range choices {
		if c.name == "" {
			continue
		}
		if err := c.use(c.name); err != nil {
			return nil, err
		}
	}
	for _, ov := range opts.overrides {
		if err := m.SetParam(ov.Kind, ov.Param, ov.Value); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidArgument, err, "override %s", ov)
		}
	}
	if err := m.Generate(); err != nil {
		return nil, err
	}
	return m, nil
}

func loadPreset(path string) (*preset.Preset, error) {
	if path == "" {
		return nil, nil
	}
	return preset.Load(path)
}

// configHash identifies everything that shapes a run besides the key
// options: strategy names, overrides and the decoded preset. The preset is
// hashed decoded, so reformatting the file keeps cached results.
func configHash(opts Options, p *preset.Preset) string {
	names, _ := json.Marshal([]any{opts.Graph, opts.Embedder, opts.Rigid, opts.Manager, opts.Set})
	var presetData []byte
	if p != nil {
		presetData, _ = json.Marshal(p)
	}
	return cache.HashParts(names, presetData)
}

func stats(snap model.Snapshot, steps int, d time.Duration) Stats {
	s := Stats{
		Vertices: len(snap.Vertices),
		Edges:    len(snap.Edges),
		Steps:    steps,
		Finished: snap.Finished,
		Quality:  -1,
		RunTime:  d,
	}
	if snap.Auto != nil {
		s.Quality = snap.Auto.Quality
	}
	return s
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
