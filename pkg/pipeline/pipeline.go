// Package pipeline runs layout simulations in batch.
//
// A run configures a [model.Model] from a preset, strategy names and
// parameter overrides, generates the graph, steps the simulation and renders
// the final snapshot. The CLI "run" command and the HTTP viewer's initial
// configuration both go through this package, so they behave the same.
//
// # Caching
//
// A run is deterministic for a configuration and seed, so the final
// snapshot is cached under a hash of the options and the preset file
// contents. Rendered artifacts are cached per format under a hash of the
// snapshot. [Options.Refresh] bypasses both lookups.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Graph:    "QuadMesh",
//	    Embedder: "Eades (84)",
//	    Set:      []string{"Graph.Closed(X)=true"},
//	    Steps:    500,
//	    Formats:  []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/springlayout/pkg/cache"
	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
	"github.com/matzehuels/springlayout/pkg/render"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultSteps bounds a run that does not wait for the embedder.
	DefaultSteps = 1000

	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = render.DefaultWidth

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = render.DefaultHeight

	// DefaultSeed is the default random seed.
	DefaultSeed = model.DefaultSeed
)

// DefaultFormats are rendered when none are requested.
var DefaultFormats = []string{string(render.FormatSVG)}

// Cache lifetimes.
const (
	TTLSnapshot = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// =============================================================================
// Options
// =============================================================================

// Options configure one run. They serialize to JSON for cache keys.
type Options struct {
	// Preset is a preset file applied before the other options.
	Preset string `json:"preset,omitempty"`

	// Strategy names; empty keeps the preset's choice or the default.
	Graph    string `json:"graph,omitempty"`
	Embedder string `json:"embedder,omitempty"`
	Rigid    string `json:"rigid,omitempty"`
	Manager  string `json:"manager,omitempty"`

	// Set holds parameter overrides "Kind.Param=value", applied after the
	// strategies are selected.
	Set []string `json:"set,omitempty"`

	Seed          uint64 `json:"seed,omitempty"`
	Placement     string `json:"placement,omitempty"`
	Steps         int    `json:"steps,omitempty"`
	UntilFinished bool   `json:"until_finished,omitempty"`

	Formats []string `json:"formats,omitempty"`
	Width   int      `json:"width,omitempty"`
	Height  int      `json:"height,omitempty"`
	Forces  bool     `json:"forces,omitempty"`
	Labels  bool     `json:"labels,omitempty"`

	// Refresh recomputes even when the cache holds a result.
	Refresh bool `json:"-"`

	Logger *log.Logger `json:"-"`

	overrides []Override
	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Steps < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "steps must not be negative, got %d", o.Steps)
	}
	if o.Steps == 0 {
		o.Steps = DefaultSteps
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "invalid canvas %dx%d", o.Width, o.Height)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if _, err := model.ParsePlacement(o.Placement); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	if _, err := o.renderFormats(); err != nil {
		return err
	}
	if o.Preset != "" {
		if err := errors.ValidatePath(o.Preset); err != nil {
			return err
		}
	}
	o.overrides = o.overrides[:0]
	for _, s := range o.Set {
		ov, err := ParseOverride(s)
		if err != nil {
			return err
		}
		o.overrides = append(o.overrides, ov)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) renderFormats() ([]render.Format, error) {
	out := make([]render.Format, 0, len(o.Formats))
	for _, f := range o.Formats {
		parsed, err := render.ParseFormats(f)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed...)
	}
	return out, nil
}

// RenderOptions returns the drawing options.
func (o *Options) RenderOptions() render.Options {
	return render.Options{Width: o.Width, Height: o.Height, Forces: o.Forces, Labels: o.Labels}
}

// SnapshotKeyOpts returns the cache key options of the final snapshot.
func (o *Options) SnapshotKeyOpts() cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{
		Seed:          o.Seed,
		Placement:     o.Placement,
		Steps:         o.Steps,
		UntilFinished: o.UntilFinished,
	}
}

// ArtifactKeyOpts returns the cache key options of one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Width:  o.Width,
		Height: o.Height,
		Forces: o.Forces,
		Labels: o.Labels,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of a run.
type Result struct {
	Snapshot  model.Snapshot
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats describe the simulation and its final drawing.
type Stats struct {
	Vertices int           `json:"vertices"`
	Edges    int           `json:"edges"`
	Steps    int           `json:"steps"`
	Finished bool          `json:"finished"`
	Metrics  model.Metrics `json:"metrics"`
	// Quality is the accepted quality of the Auto path manager, -1 when
	// another manager ran.
	Quality    int           `json:"quality"`
	RunTime    time.Duration `json:"run_time"`
	RenderTime time.Duration `json:"render_time"`
}

// CacheInfo reports which stages were served from the cache.
type CacheInfo struct {
	SnapshotHit bool
	RenderHit   bool
}
