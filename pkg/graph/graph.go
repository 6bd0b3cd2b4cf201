package graph

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/geom"
)

var (
	// ErrDuplicateVertexID is returned by [Graph.AddVertexWithID] when the
	// identifier is already taken.
	ErrDuplicateVertexID = errors.New(errors.ErrCodeInvalidArgument, "duplicate vertex id")

	// ErrForeignVertex is returned when a vertex passed to a graph method
	// does not belong to that graph.
	ErrForeignVertex = errors.New(errors.ErrCodeInvalidArgument, "vertex does not belong to graph")

	// ErrSelfLoop is returned by [Graph.AddEdge] for an edge from a vertex
	// to itself.
	ErrSelfLoop = errors.New(errors.ErrCodeInvalidArgument, "edge endpoints must differ")
)

// NewRand returns the PCG-backed random source used throughout the engine.
// Equal seeds give equal layouts.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Graph is an undirected graph whose vertices carry 2-D positions and
// force accumulators.
//
// Vertices and edges keep their insertion order, which makes every
// iteration (and therefore every layout run) deterministic for a given
// random seed. Incident edges are indexed lazily and the index is dropped
// whenever an edge is added.
//
// The zero value is not usable; create graphs with [New].
// Graph is not safe for concurrent use; the layout model serializes access.
type Graph struct {
	vertices []*Vertex
	edges    []*Edge
	byID     map[int]*Vertex
	incident map[*Vertex][]*Edge
	seq      int
	rng      *rand.Rand
}

// Option configures a Graph.
type Option func(*Graph)

// WithRand sets the random source used for jitter, random vertex choice and
// scattering. The default is NewRand(0).
func WithRand(rng *rand.Rand) Option {
	return func(g *Graph) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		byID: make(map[int]*Vertex),
		rng:  NewRand(0),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rand returns the graph's random source.
func (g *Graph) Rand() *rand.Rand { return g.rng }

// =============================================================================
// Construction
// =============================================================================

// AddVertex adds a vertex at pos. Its ID is its sequence number, or the
// next free identifier above it when that number is already taken by an
// explicitly numbered vertex.
func (g *Graph) AddVertex(pos r2.Vec) *Vertex {
	g.seq++
	id := g.seq
	for g.byID[id] != nil {
		id++
	}
	return g.insert(id, pos)
}

// AddVertexWithID adds a vertex with an explicit identifier. It returns
// ErrDuplicateVertexID if id is already in use.
func (g *Graph) AddVertexWithID(id int, pos r2.Vec) (*Vertex, error) {
	if g.byID[id] != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrDuplicateVertexID, "vertex %d", id)
	}
	g.seq++
	return g.insert(id, pos), nil
}

// FindOrAddVertex returns the vertex with the given id, adding one at pos
// if none exists. Loaders that only know edge lists use it.
func (g *Graph) FindOrAddVertex(id int, pos r2.Vec) *Vertex {
	if v := g.byID[id]; v != nil {
		return v
	}
	g.seq++
	return g.insert(id, pos)
}

func (g *Graph) insert(id int, pos r2.Vec) *Vertex {
	v := &Vertex{ID: id, Seq: g.seq, Pos: pos}
	g.vertices = append(g.vertices, v)
	g.byID[id] = v
	if g.incident != nil {
		g.incident[v] = nil
	}
	return v
}

// AddEdge adds an edge between u and v. Parallel edges are allowed; use
// [Graph.AddEdgeIfAbsent] to avoid them.
func (g *Graph) AddEdge(u, v *Vertex) (*Edge, error) {
	if u == v {
		return nil, ErrSelfLoop
	}
	if !g.owns(u) || !g.owns(v) {
		return nil, ErrForeignVertex
	}
	e := &Edge{V1: u, V2: v}
	g.edges = append(g.edges, e)
	g.incident = nil
	return e, nil
}

// AddEdgeIfAbsent returns the existing edge between u and v in either
// direction, or adds a new one.
func (g *Graph) AddEdgeIfAbsent(u, v *Vertex) (*Edge, error) {
	if e := g.FindEdge(u, v); e != nil {
		return e, nil
	}
	return g.AddEdge(u, v)
}

func (g *Graph) owns(v *Vertex) bool {
	return v != nil && g.byID[v.ID] == v
}

// Clear removes all vertices and edges.
func (g *Graph) Clear() {
	g.vertices = nil
	g.edges = nil
	g.byID = make(map[int]*Vertex)
	g.incident = nil
	g.seq = 0
}

// =============================================================================
// Access
// =============================================================================

// Vertices returns the vertices in insertion order. The slice is owned by
// the graph and must not be modified.
func (g *Graph) Vertices() []*Vertex { return g.vertices }

// Edges returns the edges in insertion order. The slice is owned by the
// graph and must not be modified.
func (g *Graph) Edges() []*Edge { return g.edges }

// NumVertices returns the number of vertices.
func (g *Graph) NumVertices() int { return len(g.vertices) }

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Vertex returns the vertex with the given identifier.
func (g *Graph) Vertex(id int) (*Vertex, bool) {
	v, ok := g.byID[id]
	return v, ok
}

// Contains reports whether v belongs to g.
func (g *Graph) Contains(v *Vertex) bool { return g.owns(v) }

// IncidentEdges returns the edges touching v, in edge insertion order.
// The result is memoized until the next edge is added and must not be
// modified.
func (g *Graph) IncidentEdges(v *Vertex) []*Edge {
	if g.incident == nil {
		g.incident = make(map[*Vertex][]*Edge, len(g.vertices))
		for _, e := range g.edges {
			g.incident[e.V1] = append(g.incident[e.V1], e)
			g.incident[e.V2] = append(g.incident[e.V2], e)
		}
	}
	return g.incident[v]
}

// Degree returns the number of edges touching v.
func (g *Graph) Degree(v *Vertex) int {
	return len(g.IncidentEdges(v))
}

// Neighbors returns the vertices adjacent to v.
func (g *Graph) Neighbors(v *Vertex) []*Vertex {
	edges := g.IncidentEdges(v)
	out := make([]*Vertex, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Other(v))
	}
	return out
}

// FindEdge returns an edge joining u and v, or nil.
func (g *Graph) FindEdge(u, v *Vertex) *Edge {
	for _, e := range g.IncidentEdges(u) {
		if e.Other(u) == v {
			return e
		}
	}
	return nil
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v *Vertex) bool {
	return g.FindEdge(u, v) != nil
}

// RandomVertex returns a uniformly chosen vertex, or nil for an empty graph.
func (g *Graph) RandomVertex() *Vertex {
	if len(g.vertices) == 0 {
		return nil
	}
	return g.vertices[g.rng.IntN(len(g.vertices))]
}

// =============================================================================
// Layout state
// =============================================================================

// Bounds returns the bounding box of all vertex positions. An empty graph
// has the zero Rect.
func (g *Graph) Bounds() geom.Rect {
	if len(g.vertices) == 0 {
		return geom.Rect{}
	}
	r := geom.Rect{Min: g.vertices[0].Pos, Max: g.vertices[0].Pos}
	for _, v := range g.vertices[1:] {
		r = r.Include(v.Pos)
	}
	return r
}

// Scatter moves every vertex to place(v) and zeroes its velocity and
// accumulators.
func (g *Graph) Scatter(place func(v *Vertex) r2.Vec) {
	for _, v := range g.vertices {
		v.Pos = place(v)
		v.Vel = r2.Vec{}
		v.Observed = r2.Vec{}
		v.ClearForces()
	}
}

// ResetVertices scatters the vertices uniformly over the unit square.
func (g *Graph) ResetVertices() {
	g.Scatter(func(*Vertex) r2.Vec {
		return r2.Vec{X: g.rng.Float64(), Y: g.rng.Float64()}
	})
}

// Unmark clears mark m from every vertex and edge that carries it. Other
// marks are left alone.
func (g *Graph) Unmark(m Mark) {
	for _, v := range g.vertices {
		if v.Mark == m {
			v.Mark = Unmarked
		}
	}
	for _, e := range g.edges {
		if e.Mark == m {
			e.Mark = Unmarked
		}
	}
}

// Separation returns a.Pos - b.Pos and its squared length, jittering
// coincident vertices apart with the graph's random source.
func (g *Graph) Separation(a, b *Vertex) (r2.Vec, float64) {
	return geom.Separation(&a.Pos, &b.Pos, g.rng)
}

// NormalizedInnerProduct returns the cosine of the angle between the
// segments u0→u1 and v0→v1.
func (g *Graph) NormalizedInnerProduct(u0, u1, v0, v1 *Vertex) float64 {
	return geom.NormalizedInnerProduct(&u0.Pos, &u1.Pos, &v0.Pos, &v1.Pos, g.rng)
}
