// Package model runs the layout simulation.
//
// A [Model] ties a graph to the strategies acting on it: an embedder for the
// layout forces, a rigid-edge model for the chains chosen by a path manager
// or by the user, and the integration of all forces into vertex motion. It
// is the only place that knows the order of a simulation step.
//
// # Concurrency
//
// One mutex guards the graph, the strategies, the selection and the flags.
// The step loop and every external command take it, so a command never
// observes or interrupts a half-finished step. Readers that need more than
// a single value take a [Snapshot], a deep copy made under the lock.
//
// # Environment
//
// Embedders need the iteration count and a way to say they are finished.
// The model hands each embedder in its [Catalog] an environment bound to
// itself; there is no process-wide application object.
package model

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/embed"
	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/graph/generate"
	"github.com/matzehuels/springlayout/pkg/observability"
	"github.com/matzehuels/springlayout/pkg/param"
	"github.com/matzehuels/springlayout/pkg/pathmgr"
	"github.com/matzehuels/springlayout/pkg/rigid"
)

// DefaultSeed seeds models created without an explicit seed.
const DefaultSeed = uint64(42)

// ErrNoGraph is returned by operations that need a graph before one is set.
var ErrNoGraph = errors.New(errors.ErrCodeInvalidArgument, "no graph loaded")

// =============================================================================
// Options
// =============================================================================

// Options configure a new model.
type Options struct {
	// Seed seeds the model's random source. Zero means DefaultSeed.
	Seed uint64
	// Placement is used whenever vertices are scattered.
	Placement Placement
	// Logger receives model events. Nil means log.Default().
	Logger *log.Logger
	// Hooks receive simulation events. Nil means no hooks.
	Hooks observability.SimulationHooks
}

// =============================================================================
// Model
// =============================================================================

// Model is a running layout simulation.
type Model struct {
	mu sync.Mutex

	id        string
	logger    *log.Logger
	hooks     observability.SimulationHooks
	rng       *rand.Rand
	catalog   *Catalog
	placement Placement

	g         *graph.Graph
	generator generate.Generator
	embedder  embed.Embedder
	rigid     rigid.Model
	manager   pathmgr.Manager
	settings  *settings

	fixTranslation bool
	fixRotation    bool
	running        bool

	iteration int
	finished  string

	active    []*graph.Path
	selecting *graph.Path
	selected  []*graph.Path
}

// New returns a model with the default strategy of each kind and no
// graph. Call [Model.Generate] or [Model.SetGraph] before stepping.
func New(opts Options) *Model {
	seed := opts.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	hooks := opts.Hooks
	if hooks == nil {
		hooks = observability.NoopSimulationHooks{}
	}
	placement := opts.Placement
	if placement == "" {
		placement = PlacementUniform
	}

	m := &Model{
		id:        uuid.New().String(),
		logger:    logger,
		hooks:     hooks,
		rng:       graph.NewRand(seed),
		placement: placement,
		settings:  newSettings(),
	}
	m.catalog = NewCatalog(env{m}, m.rng)
	m.generator = m.catalog.Generators[0]
	m.embedder = m.catalog.Embedders[0]
	m.rigid = m.catalog.Rigids[0]
	m.manager = m.catalog.Managers[0]
	return m
}

// ID returns the run identifier, unique per model.
func (m *Model) ID() string { return m.id }

// Catalog returns the strategies this model can switch to. Entries must
// only be modified through the model, or while no step is running.
func (m *Model) Catalog() *Catalog { return m.catalog }

// Logger returns the model's logger.
func (m *Model) Logger() *log.Logger { return m.logger }

// =============================================================================
// Environment
// =============================================================================

// env is the view of the model given to embedders. Its methods are called
// from inside Step, with the lock already held.
type env struct{ m *Model }

func (e env) Iteration() int { return e.m.iteration }

func (e env) Finished(name string) {
	m := e.m
	if m.finished != "" {
		return
	}
	m.finished = name
	m.logger.Debug("embedder finished", "run", m.id, "embedder", name, "iteration", m.iteration)
	m.hooks.OnFinished(context.Background(), m.id, name, m.iteration)
}

// =============================================================================
// Settings
// =============================================================================

// settings are the model's own parameters, stored in presets under the
// Model kind.
type settings struct {
	friction *param.Real
}

func newSettings() *settings {
	return &settings{
		friction: param.NewLinear("Friction", "Simulate dynamic system", 1.0, 0, 1),
	}
}

func (s *settings) Name() string      { return KindModel }
func (s *settings) Params() param.Set { return param.Set{s.friction} }

// Settings returns the model's own parameters.
func (m *Model) Settings() param.Provider { return m.settings }

// =============================================================================
// Step
// =============================================================================

// Step advances the simulation by one iteration.
func (m *Model) Step() error {
	return m.StepContext(context.Background())
}

// StepContext is Step with a context for the hooks.
func (m *Model) StepContext(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step(ctx)
}

func (m *Model) step(ctx context.Context) error {
	if m.g == nil {
		return ErrNoGraph
	}
	start := time.Now()
	m.iteration++
	g := m.g
	vs := g.Vertices()

	for _, v := range vs {
		v.ClearForces()
	}
	m.embedder.PrepareStep(g)
	m.embedder.ComputeForces(g)
	for _, v := range vs {
		v.Observed = v.Force
	}
	for _, p := range m.active {
		m.rigid.ComputeForces(g, p)
	}
	m.embedder.LimitForces(g)
	for _, v := range vs {
		v.Force = r2.Add(v.Force, v.Shape)
	}
	if m.fixRotation {
		fixRotation(vs)
	}
	if m.fixTranslation {
		fixTranslation(vs)
	}
	integrate(vs, m.settings.friction.Get())
	if !isFinite(vs) {
		err := errors.Invariant("layout diverged at iteration %d", m.iteration)
		m.logger.Error("step failed", "run", m.id, "err", err)
		m.hooks.OnError(ctx, m.id, err)
		return err
	}

	m.manage(ctx)

	m.hooks.OnStep(ctx, observability.StepInfo{
		RunID:     m.id,
		Iteration: m.iteration,
		Duration:  time.Since(start),
		Paths:     len(m.active),
	})
	return nil
}

// manage runs the path manager's tick. A failed tick is reported and
// otherwise ignored; the manager keeps its previous chains.
func (m *Model) manage(ctx context.Context) {
	if err := m.manager.Manage(); err != nil {
		m.logger.Warn("path manager tick failed", "run", m.id, "manager", m.manager.Name(), "err", err)
		m.hooks.OnError(ctx, m.id, err)
	}
	if a, ok := m.manager.(*pathmgr.Auto); ok {
		switch a.LastEvent() {
		case pathmgr.EventCheckpoint:
			m.hooks.OnCheckpoint(ctx, m.id, float64(a.Quality()), a.StackDepth())
		case pathmgr.EventRollback:
			m.hooks.OnRollback(ctx, m.id, float64(a.Quality()), a.StackDepth())
		}
	}
	if m.manager.PathsChanged() {
		m.refreshPaths(ctx)
	}
}

// refreshPaths rebuilds the list of chains handed to the rigid-edge model:
// the user's stored selections first, then the manager's chains.
func (m *Model) refreshPaths(ctx context.Context) {
	mp := m.manager.Paths()
	active := make([]*graph.Path, 0, len(m.selected)+len(mp))
	active = append(active, m.selected...)
	active = append(active, mp...)
	m.active = active
	m.hooks.OnPathsChanged(ctx, m.id, len(active))
}

// integrate applies the forces as velocity changes, moves the vertices and
// damps the velocity by friction.
func integrate(vs []*graph.Vertex, friction float64) {
	for _, v := range vs {
		v.Vel = r2.Add(v.Vel, v.Force)
		v.Pos = r2.Add(v.Pos, v.Vel)
		v.Vel = r2.Scale(1-friction, v.Vel)
	}
}

// fixTranslation removes the mean force so the drawing does not drift.
func fixTranslation(vs []*graph.Vertex) {
	if len(vs) == 0 {
		return
	}
	var sum r2.Vec
	for _, v := range vs {
		sum = r2.Add(sum, v.Force)
	}
	mean := r2.Scale(1/float64(len(vs)), sum)
	for _, v := range vs {
		v.Force = r2.Sub(v.Force, mean)
	}
}

// fixRotation removes the net torque about the barycentre by adding a
// tangential correction to every vertex. Vertices at the barycentre get no
// correction.
func fixRotation(vs []*graph.Vertex) {
	if len(vs) == 0 {
		return
	}
	var bary r2.Vec
	for _, v := range vs {
		bary = r2.Add(bary, v.Pos)
	}
	bary = r2.Scale(1/float64(len(vs)), bary)

	torque, sumR := 0.0, 0.0
	for _, v := range vs {
		rv := r2.Sub(v.Pos, bary)
		sumR += r2.Norm(rv)
		torque += r2.Cross(rv, v.Force)
	}
	if sumR == 0 {
		return
	}
	torque /= sumR

	for _, v := range vs {
		rv := r2.Sub(v.Pos, bary)
		r := r2.Norm(rv)
		if r == 0 {
			continue
		}
		v.Force = r2.Add(v.Force, r2.Scale(torque/r, r2.Vec{X: rv.Y, Y: -rv.X}))
	}
}

// =============================================================================
// Run loop
// =============================================================================

// idlePoll is how often a paused, unthrottled run loop checks the running
// flag.
const idlePoll = 50 * time.Millisecond

// RunOptions bound a call to [Model.Run].
type RunOptions struct {
	// MaxSteps stops the loop after this many steps. Zero means no limit.
	MaxSteps int
	// UntilFinished stops the loop once the embedder reports finished.
	UntilFinished bool
	// Throttle is the minimum duration of one iteration.
	Throttle time.Duration
	// Paused, when set, makes the loop idle while [Model.Running] is false
	// instead of stepping.
	Paused bool
}

// Run steps the model until a limit in opts is reached or ctx is done. It
// returns the number of steps taken. Cancellation is not an error.
func (m *Model) Run(ctx context.Context, opts RunOptions) (int, error) {
	var ticker *time.Ticker
	if opts.Throttle > 0 {
		ticker = time.NewTicker(opts.Throttle)
		defer ticker.Stop()
	}

	steps := 0
	for opts.MaxSteps <= 0 || steps < opts.MaxSteps {
		if ctx.Err() != nil {
			return steps, nil
		}
		idle := opts.Paused && !m.Running()
		if !idle {
			if err := m.StepContext(ctx); err != nil {
				return steps, err
			}
			steps++
			if opts.UntilFinished && m.Finished() {
				return steps, nil
			}
		}
		var wait <-chan time.Time
		switch {
		case ticker != nil:
			wait = ticker.C
		case idle:
			wait = time.After(idlePoll)
		default:
			continue
		}
		select {
		case <-ctx.Done():
			return steps, nil
		case <-wait:
		}
	}
	return steps, nil
}

// Running reports whether interactive consumers should keep stepping.
func (m *Model) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// SetRunning sets the keep-stepping flag.
func (m *Model) SetRunning(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = on
}

// Iteration returns the number of steps since the last restart.
func (m *Model) Iteration() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.iteration
}

// Finished reports whether the embedder has declared the layout done since
// the last restart. The model keeps stepping regardless.
func (m *Model) Finished() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finished != ""
}

// =============================================================================
// Strategies
// =============================================================================

// restart resets the per-run state after the vertices moved or the graph
// or embedder changed.
func (m *Model) restart() {
	m.iteration = 0
	m.finished = ""
	m.embedder.Restart()
}

// SetGraph replaces the graph. The embedder restarts, the path manager is
// rebound and reset, and the selection is dropped.
func (m *Model) SetGraph(g *graph.Graph) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setGraph(g)
}

func (m *Model) setGraph(g *graph.Graph) {
	m.g = g
	m.selecting = nil
	m.selected = nil
	m.restart()
	m.manager.SetGraph(g)
	m.manager.Reset()
	m.refreshPaths(context.Background())
	m.logger.Debug("graph set", "run", m.id, "vertices", g.NumVertices(), "edges", g.NumEdges())
}

// Graph returns the current graph, or nil. The graph is only safe to read
// while no step runs; use [Model.Snapshot] otherwise.
func (m *Model) Graph() *graph.Graph {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.g
}

// Generate builds a new graph with the current generator and scatters its
// vertices, unless the generator supplies its own layout.
func (m *Model) Generate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, err := m.generator.Generate(m.rng)
	if err != nil {
		return err
	}
	if p, ok := m.generator.(generate.Positioned); !ok || !p.KeepsPositions() {
		m.placement.scatter(g, m.rng)
	}
	m.setGraph(g)
	m.logger.Info("graph generated", "run", m.id, "generator", m.generator.Name(), "vertices", g.NumVertices(), "edges", g.NumEdges())
	return nil
}

// SetGenerator selects the generator used by the next Generate.
func (m *Model) SetGenerator(gen generate.Generator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generator = gen
}

// SetEmbedder switches the embedder and restarts it.
func (m *Model) SetEmbedder(e embed.Embedder) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedder = e
	m.restart()
}

// SetRigid switches the rigid-edge model.
func (m *Model) SetRigid(r rigid.Model) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rigid = r
	m.refreshPaths(context.Background())
}

// SetManager switches the path manager, binds it to the graph and resets
// it. Chains of the previous manager are released.
func (m *Model) SetManager(pm pathmgr.Manager) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.g != nil {
		m.g.Unmark(graph.MarkLocked)
	}
	m.manager.SetGraph(nil)
	m.manager = pm
	pm.SetGraph(m.g)
	pm.Reset()
	m.refreshPaths(context.Background())
}

// ResetVertices scatters the vertices, restarts the embedder and resets
// the path manager.
func (m *Model) ResetVertices() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.g == nil {
		return ErrNoGraph
	}
	m.placement.scatter(m.g, m.rng)
	m.restart()
	m.manager.Reset()
	return nil
}

// SetPlacement selects how vertices are scattered from now on.
func (m *Model) SetPlacement(p Placement) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placement = p
}

// UseGenerator selects the catalog generator called name.
func (m *Model) UseGenerator(name string) error {
	gen, err := m.catalog.Generator(name)
	if err != nil {
		return err
	}
	m.SetGenerator(gen)
	return nil
}

// UseEmbedder switches to the catalog embedder called name.
func (m *Model) UseEmbedder(name string) error {
	e, err := m.catalog.Embedder(name)
	if err != nil {
		return err
	}
	m.SetEmbedder(e)
	return nil
}

// UseRigid switches to the catalog rigid-edge model called name.
func (m *Model) UseRigid(name string) error {
	r, err := m.catalog.Rigid(name)
	if err != nil {
		return err
	}
	m.SetRigid(r)
	return nil
}

// UseManager switches to the catalog path manager called name.
func (m *Model) UseManager(name string) error {
	pm, err := m.catalog.Manager(name)
	if err != nil {
		return err
	}
	m.SetManager(pm)
	return nil
}

// Current returns the name of the active strategy of a kind.
func (m *Model) Current(kind string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case KindGraph:
		return m.generator.Name()
	case KindEmbedder:
		return m.embedder.Name()
	case KindRigid:
		return m.rigid.Name()
	case KindPathManager:
		return m.manager.Name()
	case KindModel:
		return m.settings.Name()
	}
	return ""
}

// =============================================================================
// Parameters and commands
// =============================================================================

// strategy returns the strategy of kind currently in use.
func (m *Model) strategy(kind string) (param.Provider, error) {
	switch kind {
	case KindGraph:
		return m.generator, nil
	case KindEmbedder:
		return m.embedder, nil
	case KindRigid:
		return m.rigid, nil
	case KindPathManager:
		return m.manager, nil
	case KindModel:
		return m.settings, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidArgument, "unknown kind %q", kind)
}

// SetParam parses value into the parameter called name of the active
// strategy of kind.
func (m *Model) SetParam(kind, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.strategy(kind)
	if err != nil {
		return err
	}
	return p.Params().Parse(name, value)
}

// Values serializes the parameters of the active strategy of kind.
func (m *Model) Values(kind string) []param.Value {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, err := m.strategy(kind)
	if err != nil {
		return nil
	}
	return p.Params().Values()
}

// ApplyParams sets parameters of the catalog entry kind/name, whether or
// not it is in use. Unknown parameter names are skipped. The Model kind
// accepts any name.
func (m *Model) ApplyParams(kind, name string, values []param.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var p param.Provider = m.settings
	if kind != KindModel {
		var err error
		if p, err = m.catalog.Provider(kind, name); err != nil {
			return err
		}
	}
	return p.Params().Apply(values)
}

// Commands returns the commands the active path manager accepts.
func (m *Model) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.manager.(pathmgr.Commander); ok {
		return c.Commands()
	}
	return nil
}

// Command runs a named command of the active path manager.
func (m *Model) Command(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.manager.(pathmgr.Commander)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "%s accepts no commands", m.manager.Name())
	}
	if m.g == nil {
		return ErrNoGraph
	}
	return c.Run(name)
}

// SetAutoRunning switches the search of an Auto path manager on or off.
// It reports false if the active manager is not Auto.
func (m *Model) SetAutoRunning(on bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.manager.(*pathmgr.Auto)
	if ok {
		a.SetRunning(on)
	}
	return ok
}

// FixTranslation reports whether the mean force is removed every step.
func (m *Model) FixTranslation() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fixTranslation
}

// SetFixTranslation sets whether the mean force is removed every step.
func (m *Model) SetFixTranslation(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixTranslation = on
}

// FixRotation reports whether the net torque is removed every step.
func (m *Model) FixRotation() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fixRotation
}

// SetFixRotation sets whether the net torque is removed every step.
func (m *Model) SetFixRotation(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fixRotation = on
}

// Friction returns the velocity damping in [0,1].
func (m *Model) Friction() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.friction.Get()
}

// SetFriction sets the velocity damping, clamped to [0,1].
func (m *Model) SetFriction(f float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.friction.Set(f)
}

// =============================================================================
// Metrics
// =============================================================================

// Metrics are the quality measures of the current drawing.
type Metrics struct {
	Overlaps   int     `json:"overlaps"`
	Complexity int     `json:"complexity"`
	Diagonal   float64 `json:"diagonal"`
}

// Metrics measures the current drawing with the default quality
// parameters.
func (m *Model) Metrics() (Metrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.g == nil {
		return Metrics{}, ErrNoGraph
	}
	return Metrics{
		Overlaps:   m.g.Overlaps(graph.DefaultOverlapDegrees, graph.DefaultOverlapBoxDim),
		Complexity: m.g.VisualComplexity(graph.DefaultComplexityDegrees),
		Diagonal:   m.g.Bounds().Diagonal(),
	}, nil
}

// isFinite reports whether every vertex position is a finite number.
func isFinite(vs []*graph.Vertex) bool {
	for _, v := range vs {
		if math.IsNaN(v.Pos.X) || math.IsNaN(v.Pos.Y) || math.IsInf(v.Pos.X, 0) || math.IsInf(v.Pos.Y, 0) {
			return false
		}
	}
	return true
}
