package pathmgr

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/graph"
)

const (
	// maxFocusRegion bounds the number of highlighted vertices.
	maxFocusRegion = 20
	// focusLifetime is the number of ticks a focus region stays valid.
	focusLifetime = 100
)

// Base implements the state every strategy shares: the chain list with
// its published shadow copy, the focus region and chain construction.
//
// The chain list itself is only touched from Manage and from commands,
// both of which run under the owning model's lock. The shadow copy and the
// changed flag are additionally guarded by an RWMutex so they can be read
// from anywhere.
type Base struct {
	g   *graph.Graph
	rng *rand.Rand

	paths    []*graph.Path
	needMark bool

	mu      sync.RWMutex
	shadow  []*graph.Path
	changed bool

	focus          []*graph.Vertex // all vertices, most asymmetric first
	focusRegion    int
	focusAvailable int
	focusValidFor  int
}

func newBase(rng *rand.Rand) Base {
	if rng == nil {
		rng = graph.NewRand(1)
	}
	return Base{rng: rng, needMark: true}
}

// Graph returns the bound graph, or nil.
func (b *Base) Graph() *graph.Graph { return b.g }

// SetGraph binds the manager to g and drops all chains.
func (b *Base) SetGraph(g *graph.Graph) {
	b.g = g
	b.ClearPaths()
	b.focus = nil
	b.focusAvailable = 0
	b.focusValidFor = 0
	b.publish()
}

// Reset is a no-op for strategies without search state.
func (b *Base) Reset() {}

// PathsChanged reports and clears the changed flag.
func (b *Base) PathsChanged() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	changed := b.changed
	b.changed = false
	return changed
}

// Paths returns the chain list published by the last Manage call. The
// slice must not be modified.
func (b *Base) Paths() []*graph.Path {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.shadow
}

// Focus returns the highlighted vertices.
func (b *Base) Focus() []*graph.Vertex {
	if b.focus == nil {
		return nil
	}
	return slices.Clone(b.focus[:b.focusRegion])
}

// =============================================================================
// Chain Collection
// =============================================================================

func (b *Base) touch() {
	b.needMark = true
	b.mu.Lock()
	b.changed = true
	b.mu.Unlock()
}

// AddPath appends p to the chain list.
func (b *Base) AddPath(p *graph.Path) {
	b.paths = append(b.paths, p)
	b.touch()
}

// PathAt returns the i-th chain.
func (b *Base) PathAt(i int) *graph.Path { return b.paths[i] }

// RemovePathAt drops the i-th chain.
func (b *Base) RemovePathAt(i int) {
	b.paths = slices.Delete(b.paths, i, i+1)
	b.touch()
}

// RemovePath drops p if it is in the list.
func (b *Base) RemovePath(p *graph.Path) {
	if i := slices.Index(b.paths, p); i >= 0 {
		b.RemovePathAt(i)
	}
}

// RemoveLastPath drops the most recently added chain, if any.
func (b *Base) RemoveLastPath() {
	if n := len(b.paths); n > 0 {
		b.RemovePathAt(n - 1)
	}
}

// ClearPaths drops every chain.
func (b *Base) ClearPaths() {
	b.paths = nil
	b.touch()
}

// Count returns the number of chains.
func (b *Base) Count() int { return len(b.paths) }

// ReplaceAll replaces the chain list with copies of paths.
func (b *Base) ReplaceAll(paths []*graph.Path) {
	b.paths = graph.ClonePaths(paths)
	b.touch()
}

// =============================================================================
// Management Tick
// =============================================================================

// manage wraps one strategy tick: it refreshes the focus region when it
// has expired, runs step, publishes the chain list and re-marks the chains
// when the list changed. The list is published even when step fails.
func (b *Base) manage(step func() error) error {
	if b.g == nil {
		return nil
	}

	b.focusValidFor--
	if b.focusValidFor < 0 {
		b.setupFocus()
	}

	err := step()
	b.publish()

	if b.needMark {
		b.g.Unmark(graph.MarkLocked)
		for _, p := range b.paths {
			p.MaybeMark(graph.MarkLocked)
		}
		b.needMark = false
	}
	return err
}

func (b *Base) publish() {
	b.mu.Lock()
	b.shadow = slices.Clone(b.paths)
	b.mu.Unlock()
}

// =============================================================================
// Focus Region
// =============================================================================

// setupFocus ranks all vertices by how lopsided their edge directions are:
// the weight of a vertex is the length of the sum of unit vectors towards
// its neighbors. The heaviest vertices form the focus region.
func (b *Base) setupFocus() {
	vs := slices.Clone(b.g.Vertices())
	for _, v := range vs {
		v.Highlight = false
		var sum r2.Vec
		for _, e := range b.g.IncidentEdges(v) {
			d, d2 := b.g.Separation(e.Other(v), v)
			sum = r2.Add(sum, r2.Scale(1/math.Sqrt(d2), d))
		}
		v.Weight = r2.Norm(sum)
	}
	slices.SortStableFunc(vs, func(a, c *graph.Vertex) int {
		return cmp.Compare(c.Weight, a.Weight)
	})

	b.focusRegion = min(maxFocusRegion, len(vs))
	for _, v := range vs[:b.focusRegion] {
		v.Highlight = true
	}
	b.focus = vs
	b.focusAvailable = b.focusRegion
	b.focusValidFor = focusLifetime
}

// FocusedVertex picks a vertex uniformly from the focus region, rebuilding
// the region once it has handed out as many vertices as it holds or has
// expired. It returns nil for an empty graph.
func (b *Base) FocusedVertex() *graph.Vertex {
	if b.focus == nil || b.focusAvailable <= 0 || b.focusValidFor <= 0 {
		b.setupFocus()
	}
	b.focusAvailable--
	if b.focusRegion == 0 {
		return nil
	}
	return b.focus[b.rng.IntN(b.focusRegion)]
}

// =============================================================================
// Chain Construction
// =============================================================================

type edgePair struct {
	e1, e2 *graph.Edge
	score  float64
}

// BuildChain builds a chain of at most about maxLen edges through v. Of all
// pairs of edges at v, it takes the unmarked pair whose normalized inner
// product is closest to ideal (-1 for a straight line through v), grows an
// arm along each edge and joins the arms at v.
//
// It returns nil when v has fewer than two edges, when every pair touches
// a marked edge, or when the arms cannot be joined into a simple chain.
func (b *Base) BuildChain(v *graph.Vertex, maxLen int, ideal float64) *graph.Path {
	edges := b.g.IncidentEdges(v)
	if len(edges) < 2 {
		return nil
	}

	var pairs []edgePair
	for i := 0; i < len(edges)-1; i++ {
		for j := i + 1; j < len(edges); j++ {
			ei, ej := edges[i], edges[j]
			nip := b.g.NormalizedInnerProduct(v, ei.Other(v), v, ej.Other(v))
			pairs = append(pairs, edgePair{ei, ej, math.Abs(nip - ideal)})
		}
	}
	slices.SortStableFunc(pairs, func(a, c edgePair) int {
		return cmp.Compare(a.score, c.score)
	})

	i := slices.IndexFunc(pairs, func(p edgePair) bool {
		return p.e1.Mark == graph.Unmarked && p.e2.Mark == graph.Unmarked
	})
	if i < 0 {
		return nil
	}

	half := max(1, maxLen/2)
	arm1 := b.buildAlong(v, pairs[i].e1, half)
	arm2 := b.buildAlong(v, pairs[i].e2, half)
	if arm1 == nil || arm2 == nil {
		return nil
	}

	arm1.Reverse()
	if err := arm1.Append(arm2); err != nil {
		return nil
	}
	arm1.SetInitialDistance()
	return arm1
}

// buildAlong grows a chain from v across e, then keeps following the edge
// that best continues the current direction. It stops after maxLen edges,
// on returning to a vertex already in the chain, or before a marked edge.
func (b *Base) buildAlong(v *graph.Vertex, e *graph.Edge, maxLen int) *graph.Path {
	p := graph.NewPath(v)
	for ; maxLen > 0; maxLen-- {
		v = e.Other(v)
		if v == nil || p.Contains(v) {
			break
		}
		if err := p.Add(e, v); err != nil {
			break
		}
		e = b.bestFollowingEdge(v, e)
		if e == nil || e.Mark != graph.Unmarked {
			break
		}
	}
	if p.Len() == 0 {
		return nil
	}
	p.SetInitialDistance()
	return p
}

// bestFollowingEdge returns the edge at v whose direction best matches the
// direction in which e0 arrived at v.
func (b *Base) bestFollowingEdge(v *graph.Vertex, e0 *graph.Edge) *graph.Edge {
	in, in2 := b.g.Separation(v, e0.Other(v))
	in = r2.Scale(1/math.Sqrt(in2), in)

	var best *graph.Edge
	bestDot := math.Inf(-1)
	for _, e := range b.g.IncidentEdges(v) {
		out, out2 := b.g.Separation(e.Other(v), v)
		if dot := r2.Dot(in, out) / math.Sqrt(out2); dot > bestDot {
			best, bestDot = e, dot
		}
	}
	return best
}
