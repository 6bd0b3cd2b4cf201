package model

import (
	"context"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/embed"
	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/graph/generate"
	"github.com/matzehuels/springlayout/pkg/observability"
	"github.com/matzehuels/springlayout/pkg/pathmgr"
	"github.com/matzehuels/springlayout/pkg/rigid"
)

func quiet() *log.Logger { return log.New(io.Discard) }

func newModel(t *testing.T, hooks observability.SimulationHooks) *Model {
	t.Helper()
	return New(Options{Seed: 7, Logger: quiet(), Hooks: hooks})
}

// line returns a path graph v0 - v1 - ... - v(n-1) along the x axis.
func line(t *testing.T, n int) *graph.Graph {
	t.Helper()
	g := graph.New(graph.WithRand(graph.NewRand(1)))
	var prev *graph.Vertex
	for i := range n {
		v, err := g.AddVertexWithID(i, r2.Vec{X: float64(i)})
		require.NoError(t, err)
		if prev != nil {
			_, err := g.AddEdge(prev, v)
			require.NoError(t, err)
		}
		prev = v
	}
	return g
}

type countingHooks struct {
	observability.NoopSimulationHooks
	mu       sync.Mutex
	steps    int
	finished []string
	changes  []int
	errs     []error
}

func (h *countingHooks) OnStep(context.Context, observability.StepInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.steps++
}

func (h *countingHooks) OnFinished(_ context.Context, _, embedder string, _ int) {
	h.finished = append(h.finished, embedder)
}

func (h *countingHooks) OnPathsChanged(_ context.Context, _ string, paths int) {
	h.changes = append(h.changes, paths)
}

func (h *countingHooks) OnError(_ context.Context, _ string, err error) {
	h.errs = append(h.errs, err)
}

// =============================================================================
// End to end
// =============================================================================

func TestQuadMeshCylinderUntangles(t *testing.T) {
	m := newModel(t, nil)
	require.NoError(t, m.UseGenerator(generate.QuadMeshName))
	require.NoError(t, m.SetParam(KindGraph, "w", "4"))
	require.NoError(t, m.SetParam(KindGraph, "h", "4"))
	require.NoError(t, m.SetParam(KindGraph, "Closed(X)", "true"))
	require.NoError(t, m.Generate())
	require.Equal(t, embed.EadesName, m.Current(KindEmbedder))
	require.Equal(t, 1.0, m.Friction())

	g := m.Graph()
	require.Equal(t, 16, g.NumVertices())
	require.Equal(t, 28, g.NumEdges())
	rng := graph.NewRand(3)
	g.Scatter(func(*graph.Vertex) r2.Vec {
		return r2.Vec{X: 10 * rng.Float64(), Y: 10 * rng.Float64()}
	})
	before := g.Bounds().Diagonal()

	for range 100 {
		require.NoError(t, m.Step())
	}

	metrics, err := m.Metrics()
	require.NoError(t, err)
	require.Less(t, metrics.Diagonal, before)
	require.Zero(t, metrics.Overlaps)
	require.Equal(t, 100, m.Iteration())
	require.True(t, m.Finished(), "Eades finishes after its default 100 iterations")
}

func TestDeterministicPerSeed(t *testing.T) {
	run := func() Snapshot {
		m := New(Options{Seed: 11, Logger: quiet()})
		require.NoError(t, m.Generate())
		for range 20 {
			require.NoError(t, m.Step())
		}
		return m.Snapshot()
	}
	a, b := run(), run()
	require.NotEqual(t, a.RunID, b.RunID)
	require.Equal(t, a.Positions(), b.Positions())
}

// =============================================================================
// Step
// =============================================================================

func TestStepWithoutGraph(t *testing.T) {
	m := newModel(t, nil)
	err := m.Step()
	require.ErrorIs(t, err, ErrNoGraph)
	require.Equal(t, 0, m.Iteration())
}

func TestIntegrate(t *testing.T) {
	tests := []struct {
		friction float64
		wantVel  r2.Vec
	}{
		{1, r2.Vec{}},
		{0.5, r2.Vec{X: 1, Y: 0.5}},
		{0, r2.Vec{X: 2, Y: 1}},
	}
	for _, tt := range tests {
		v := &graph.Vertex{Vel: r2.Vec{X: 1}, Force: r2.Vec{X: 1, Y: 1}}
		integrate([]*graph.Vertex{v}, tt.friction)
		if v.Pos != (r2.Vec{X: 2, Y: 1}) {
			t.Errorf("friction %v: Pos = %v, want (2, 1)", tt.friction, v.Pos)
		}
		if v.Vel != tt.wantVel {
			t.Errorf("friction %v: Vel = %v, want %v", tt.friction, v.Vel, tt.wantVel)
		}
	}
}

func TestFixTranslation(t *testing.T) {
	vs := []*graph.Vertex{
		{Force: r2.Vec{X: 3, Y: 1}},
		{Force: r2.Vec{X: 1, Y: 1}},
	}
	fixTranslation(vs)
	if vs[0].Force != (r2.Vec{X: 1}) || vs[1].Force != (r2.Vec{X: -1}) {
		t.Errorf("forces = %v %v, want (1, 0) (-1, 0)", vs[0].Force, vs[1].Force)
	}
	fixTranslation(nil)
}

func TestFixRotation(t *testing.T) {
	// A pair spun about its midpoint, plus a vertex at the barycentre.
	vs := []*graph.Vertex{
		{Pos: r2.Vec{X: -1}, Force: r2.Vec{Y: -1}},
		{Pos: r2.Vec{X: 1}, Force: r2.Vec{Y: 1}},
		{Pos: r2.Vec{}, Force: r2.Vec{X: 0.5}},
	}
	fixRotation(vs)

	torque := 0.0
	for _, v := range vs {
		torque += r2.Cross(v.Pos, v.Force)
	}
	if math.Abs(torque) > 1e-12 {
		t.Errorf("torque after fix = %v, want 0", torque)
	}
	if vs[2].Force != (r2.Vec{X: 0.5}) {
		t.Errorf("barycentre force = %v, want unchanged", vs[2].Force)
	}
}

func TestFixRotationCoincident(t *testing.T) {
	vs := []*graph.Vertex{{Force: r2.Vec{X: 1}}, {Force: r2.Vec{Y: 1}}}
	fixRotation(vs)
	if vs[0].Force != (r2.Vec{X: 1}) || vs[1].Force != (r2.Vec{Y: 1}) {
		t.Errorf("forces changed on a degenerate layout: %v %v", vs[0].Force, vs[1].Force)
	}
}

func TestObservedForceExcludesShape(t *testing.T) {
	m := newModel(t, nil)
	m.SetGraph(line(t, 3))
	require.NoError(t, m.UseRigid(rigid.StraightName))
	require.NoError(t, m.Select(0))
	require.NoError(t, m.Select(2))
	require.NoError(t, m.StoreSelection())

	// Bend the chain so the straight model has work to do.
	mid, _ := m.Graph().Vertex(1)
	mid.Pos = r2.Vec{X: 1, Y: 1}
	require.NoError(t, m.Step())

	snap := m.Snapshot()
	v, ok := snap.Vertex(1)
	require.True(t, ok)
	require.Equal(t, r2.Vec{Y: -1}, mid.Shape)
	require.InDelta(t, 0, v.Pos.Y, 1e-12, "embedder forces on the chain are eliminated")
	require.Less(t, v.Force.Y, 0.0)
	require.Greater(t, v.Force.Y, -0.5, "the observed force is the embedder's alone")
}

func TestFinishedAndRestart(t *testing.T) {
	hooks := &countingHooks{}
	m := newModel(t, hooks)
	require.NoError(t, m.Generate())
	require.NoError(t, m.SetParam(KindEmbedder, "N", "10"))

	for range 9 {
		require.NoError(t, m.Step())
	}
	require.False(t, m.Finished())
	require.NoError(t, m.Step())
	require.True(t, m.Finished())
	require.NoError(t, m.Step())
	require.Equal(t, []string{embed.EadesName}, hooks.finished, "finished is reported once")
	require.Equal(t, 11, hooks.steps)

	require.NoError(t, m.ResetVertices())
	require.False(t, m.Finished())
	require.Equal(t, 0, m.Iteration())
}

// =============================================================================
// Run loop
// =============================================================================

func TestRun(t *testing.T) {
	m := newModel(t, nil)
	require.NoError(t, m.Generate())
	require.NoError(t, m.SetParam(KindEmbedder, "N", "10"))

	n, err := m.Run(context.Background(), RunOptions{MaxSteps: 1000, UntilFinished: true})
	require.NoError(t, err)
	require.Equal(t, 10, n)

	n, err = m.Run(context.Background(), RunOptions{MaxSteps: 5})
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, 15, m.Iteration())
}

func TestRunCancelled(t *testing.T) {
	m := newModel(t, nil)
	require.NoError(t, m.Generate())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := m.Run(ctx, RunOptions{})
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRunPaused(t *testing.T) {
	m := newModel(t, nil)
	require.NoError(t, m.Generate())
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	n, err := m.Run(ctx, RunOptions{Paused: true, Throttle: time.Millisecond})
	require.NoError(t, err)
	require.Zero(t, n, "a paused model does not step")

	m.SetRunning(true)
	n, err = m.Run(context.Background(), RunOptions{Paused: true, MaxSteps: 3})
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestRunNoGraph(t *testing.T) {
	m := newModel(t, nil)
	_, err := m.Run(context.Background(), RunOptions{MaxSteps: 1})
	require.True(t, errors.Is(err, errors.ErrCodeInvalidArgument))
}

func TestConcurrentReaders(t *testing.T) {
	m := newModel(t, nil)
	require.NoError(t, m.Generate())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = m.Run(ctx, RunOptions{})
	}()

	for range 50 {
		snap := m.Snapshot()
		require.Len(t, snap.Vertices, 100)
		require.NoError(t, m.SetParam(KindEmbedder, "C1", "1.5"))
		m.SetFixTranslation(true)
	}
	cancel()
	wg.Wait()
}

// =============================================================================
// Strategies
// =============================================================================

func TestStrategySwitching(t *testing.T) {
	m := newModel(t, nil)

	err := m.UseEmbedder("Kamada-Kawai")
	require.True(t, errors.Is(err, errors.ErrCodeNotFound))
	require.ErrorIs(t, err, ErrUnknownStrategy)

	require.NoError(t, m.UseEmbedder(embed.FruchtermanReingoldName))
	require.NoError(t, m.UseRigid(rigid.ConvexName))
	require.NoError(t, m.UseManager(pathmgr.AutoName))
	require.NoError(t, m.UseGenerator(generate.TreeName))

	snap := m.Snapshot()
	require.Equal(t, embed.FruchtermanReingoldName, snap.Embedder)
	require.Equal(t, rigid.ConvexName, snap.Rigid)
	require.Equal(t, pathmgr.AutoName, snap.Manager)
	require.Equal(t, generate.TreeName, snap.Generator)
	require.Equal(t, 1.0, snap.Temperature)
	require.NotNil(t, snap.Auto)
	require.Empty(t, snap.Vertices)

	require.NoError(t, m.Generate())
	require.Len(t, m.Snapshot().Vertices, 85)
	require.True(t, m.SetAutoRunning(true))
}

func TestSetParamErrors(t *testing.T) {
	m := newModel(t, nil)
	require.True(t, errors.Is(m.SetParam("Renderer", "x", "1"), errors.ErrCodeInvalidArgument))
	require.True(t, errors.Is(m.SetParam(KindEmbedder, "C1", "abc"), errors.ErrCodeInvalidArgument))
	require.NoError(t, m.SetParam(KindModel, "Friction", "0.25"))
	require.Equal(t, 0.25, m.Friction())
	m.SetFriction(3)
	require.Equal(t, 1.0, m.Friction(), "friction is clamped")
}

func TestCommands(t *testing.T) {
	hooks := &countingHooks{}
	m := newModel(t, hooks)
	require.NoError(t, m.Generate())

	require.Nil(t, m.Commands())
	require.True(t, errors.Is(m.Command(pathmgr.CmdStore), errors.ErrCodeUnsupported))
	require.False(t, m.SetAutoRunning(true))

	require.NoError(t, m.UseManager(pathmgr.ManualName))
	require.Equal(t, []string{pathmgr.CmdStore, pathmgr.CmdChange, pathmgr.CmdRemove}, m.Commands())
	require.NoError(t, m.Command(pathmgr.CmdStore))
	require.NoError(t, m.Step())
	require.Len(t, m.Snapshot().Paths, 1)
	require.Equal(t, 1, hooks.changes[len(hooks.changes)-1])

	require.True(t, errors.Is(m.Command("explode"), errors.ErrCodeNotFound))

	// Switching managers releases the chains.
	require.NoError(t, m.UseManager(pathmgr.DisabledName))
	require.Empty(t, m.Snapshot().Paths)
	for _, e := range m.Graph().Edges() {
		require.NotEqual(t, graph.MarkLocked, e.Mark)
	}
}

func TestFlags(t *testing.T) {
	m := newModel(t, nil)
	require.False(t, m.FixTranslation())
	require.False(t, m.FixRotation())
	m.SetFixTranslation(true)
	m.SetFixRotation(true)
	require.True(t, m.FixTranslation())
	require.True(t, m.FixRotation())
	require.False(t, m.Running())
	m.SetRunning(true)
	require.True(t, m.Running())
}

// =============================================================================
// Selection
// =============================================================================

func TestSelection(t *testing.T) {
	hooks := &countingHooks{}
	m := newModel(t, hooks)
	g := line(t, 5)
	m.SetGraph(g)

	require.ErrorIs(t, m.StoreSelection(), ErrNoSelection)
	require.True(t, errors.Is(m.Select(99), errors.ErrCodeNotFound))

	require.NoError(t, m.Select(0))
	require.ErrorIs(t, m.StoreSelection(), ErrNoSelection, "a single vertex is no chain")
	require.NoError(t, m.Select(3))
	require.NoError(t, m.Select(1), "vertices on the walk are ignored")

	snap := m.Snapshot()
	require.NotNil(t, snap.Selecting)
	require.Equal(t, []int{0, 1, 2, 3}, snap.Selecting.Vertices)
	v, _ := g.Vertex(2)
	require.Equal(t, graph.MarkSelecting, v.Mark)

	require.NoError(t, m.StoreSelection())
	snap = m.Snapshot()
	require.Nil(t, snap.Selecting)
	require.Len(t, snap.Paths, 1)
	require.Equal(t, []int{0, 1, 2, 3}, snap.Paths[0].Vertices)
	require.InDelta(t, 3.0, snap.Paths[0].InitialDistance, 1e-12)
	require.Equal(t, graph.MarkSelected, v.Mark)
	require.Len(t, m.Selected(), 1)

	require.NoError(t, m.Select(4))
	m.ClearSelection()
	require.Nil(t, m.Snapshot().Selecting)
	require.Len(t, m.Snapshot().Paths, 1)

	m.ClearSelections()
	require.Empty(t, m.Snapshot().Paths)
	require.Equal(t, graph.Unmarked, v.Mark)
	require.Equal(t, 0, hooks.changes[len(hooks.changes)-1])
}

func TestSelectionUnreachable(t *testing.T) {
	g := line(t, 2)
	lone, err := g.AddVertexWithID(9, r2.Vec{Y: 5})
	require.NoError(t, err)

	m := newModel(t, nil)
	m.SetGraph(g)
	require.NoError(t, m.Select(0))
	require.NoError(t, m.Select(lone.ID))
	require.Equal(t, []int{0}, m.Snapshot().Selecting.Vertices)
}

func TestSetGraphDropsSelection(t *testing.T) {
	m := newModel(t, nil)
	m.SetGraph(line(t, 3))
	require.NoError(t, m.Select(0))
	require.NoError(t, m.Select(2))
	require.NoError(t, m.StoreSelection())

	m.SetGraph(line(t, 3))
	require.Empty(t, m.Snapshot().Paths)
	require.Empty(t, m.Selected())
}

// =============================================================================
// Snapshot and placement
// =============================================================================

func TestSnapshotIsACopy(t *testing.T) {
	m := newModel(t, nil)
	m.SetGraph(line(t, 3))
	snap := m.Snapshot()
	snap.Vertices[0].Pos = r2.Vec{X: 100}

	v, _ := m.Graph().Vertex(0)
	require.Equal(t, r2.Vec{}, v.Pos)
	require.Equal(t, 2.0, snap.Bounds.Width())
	require.Len(t, snap.Edges, 2)
}

func TestPlacement(t *testing.T) {
	for _, p := range []Placement{PlacementUniform, PlacementSimplex} {
		t.Run(string(p), func(t *testing.T) {
			positions := func() map[int]r2.Vec {
				m := New(Options{Seed: 5, Placement: p, Logger: quiet()})
				require.NoError(t, m.Generate())
				return m.Snapshot().Positions()
			}
			a := positions()
			require.Equal(t, a, positions())
			for id, pos := range a {
				if pos.X < 0 || pos.X > 1 || pos.Y < 0 || pos.Y > 1 {
					t.Errorf("vertex %d at %v, want inside the unit square", id, pos)
				}
			}
		})
	}
}

func TestParsePlacement(t *testing.T) {
	tests := []struct {
		in      string
		want    Placement
		wantErr bool
	}{
		{"", PlacementUniform, false},
		{"uniform", PlacementUniform, false},
		{"simplex", PlacementSimplex, false},
		{"grid", "", true},
	}
	for _, tt := range tests {
		got, err := ParsePlacement(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePlacement(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParsePlacement(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJSONGraphKeepsPositions(t *testing.T) {
	src := line(t, 4)
	path := t.TempDir() + "/line.json"
	require.NoError(t, graph.WriteGraphFile(src, path))

	m := newModel(t, nil)
	require.NoError(t, m.UseGenerator(generate.JSONName))
	require.NoError(t, m.SetParam(KindGraph, "File", path))
	require.NoError(t, m.Generate())
	require.Equal(t, map[int]r2.Vec{0: {}, 1: {X: 1}, 2: {X: 2}, 3: {X: 3}}, m.Snapshot().Positions())
}

func TestCatalog(t *testing.T) {
	c := NewCatalog(nil, graph.NewRand(1))
	require.Equal(t, []string{embed.EadesName, embed.FruchtermanReingoldName}, c.Names(KindEmbedder))
	require.Len(t, c.Names(KindRigid), 4)
	require.Len(t, c.Names(KindPathManager), 4)
	require.Len(t, c.Providers(KindGraph), 7)
	require.Nil(t, c.Names(KindModel))

	p, err := c.Provider(KindRigid, rigid.ConcaveName)
	require.NoError(t, err)
	require.Equal(t, rigid.ConcaveName, p.Name())
	_, err = c.Manager("Genetic")
	require.True(t, errors.Is(err, errors.ErrCodeNotFound))
}
