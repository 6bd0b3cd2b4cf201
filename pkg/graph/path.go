package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/geom"
)

// Path is a simple chain of vertices joined by edges.
//
// A path stores its start vertex separately from the remaining vertices;
// Vertices()[i] is reached from its predecessor through Edges()[i]. An empty
// path (no edges) ends at its start. No vertex ever appears twice: every
// operation that would break this returns an INVARIANT_VIOLATION error
// and leaves the path unchanged.
//
// Paths reference graph elements but own their lists; [Path.Clone] gives an
// independent chain over the same vertices and edges.
type Path struct {
	start    *Vertex
	vertices []*Vertex
	edges    []*Edge

	TTL             int     // Ticks left before a managed path expires
	InitialDistance float64 // Endpoint distance recorded when the path was built
	Weight          float64 // Ranking score used by path managers
}

// NewPath returns an empty path at start.
func NewPath(start *Vertex) *Path {
	return &Path{start: start}
}

// NewPathAlong returns the one-edge path from start across e.
func NewPathAlong(start *Vertex, e *Edge) (*Path, error) {
	p := NewPath(start)
	if err := p.Add(e, e.Other(start)); err != nil {
		return nil, err
	}
	return p, nil
}

// Start returns the first vertex.
func (p *Path) Start() *Vertex { return p.start }

// End returns the last vertex, which is the start for an empty path.
func (p *Path) End() *Vertex {
	if len(p.vertices) == 0 {
		return p.start
	}
	return p.vertices[len(p.vertices)-1]
}

// Vertices returns the vertices after the start. The slice is owned by the
// path.
func (p *Path) Vertices() []*Vertex { return p.vertices }

// AllVertices returns a new slice holding the start followed by the other
// vertices.
func (p *Path) AllVertices() []*Vertex {
	out := make([]*Vertex, 0, len(p.vertices)+1)
	out = append(out, p.start)
	return append(out, p.vertices...)
}

// Edges returns the edges in path order. The slice is owned by the path.
func (p *Path) Edges() []*Edge { return p.edges }

// Len returns the number of edges.
func (p *Path) Len() int { return len(p.edges) }

// Contains reports whether v is on the path, start included.
func (p *Path) Contains(v *Vertex) bool {
	return v == p.start || slices.Contains(p.vertices, v)
}

// Add extends the path by edge e to vertex u. The edge must join the
// current end and u, and u must not already be on the path.
func (p *Path) Add(e *Edge, u *Vertex) error {
	switch {
	case e == nil || u == nil:
		return errors.Invariant("path %v: add nil edge or vertex", p)
	case p.Contains(u):
		return errors.Invariant("path %v: vertex %v already on path", p, u)
	case !e.Joins(p.End(), u):
		return errors.Invariant("path %v: edge %v does not join %v and %v", p, e, p.End(), u)
	}
	p.vertices = append(p.vertices, u)
	p.edges = append(p.edges, e)
	return nil
}

// MayAppend reports whether q starts where p ends and shares no other
// vertex with p.
func (p *Path) MayAppend(q *Path) bool {
	if q.start != p.End() {
		return false
	}
	for _, v := range q.vertices {
		if p.Contains(v) {
			return false
		}
	}
	return true
}

// Append concatenates q onto the end of p. q itself is not modified.
func (p *Path) Append(q *Path) error {
	if !p.MayAppend(q) {
		return errors.Invariant("path %v: cannot append %v", p, q)
	}
	p.vertices = append(p.vertices, q.vertices...)
	p.edges = append(p.edges, q.edges...)
	return nil
}

// Reverse reverses the direction of the path in place. Reversing twice
// restores the original path.
func (p *Path) Reverse() {
	if len(p.vertices) == 0 {
		return
	}
	last := p.vertices[len(p.vertices)-1]
	rest := p.vertices[:len(p.vertices)-1]
	slices.Reverse(rest)
	p.vertices = append(rest, p.start)
	p.start = last
	slices.Reverse(p.edges)
}

// Mark sets m on every vertex and edge of the path.
func (p *Path) Mark(m Mark) {
	p.start.Mark = m
	for _, v := range p.vertices {
		v.Mark = m
	}
	for _, e := range p.edges {
		e.Mark = m
	}
}

// MaybeMark sets m on the path's unmarked vertices and edges only, so
// elements claimed by another role keep their mark.
func (p *Path) MaybeMark(m Mark) {
	if p.start.Mark == Unmarked {
		p.start.Mark = m
	}
	for _, v := range p.vertices {
		if v.Mark == Unmarked {
			v.Mark = m
		}
	}
	for _, e := range p.edges {
		if e.Mark == Unmarked {
			e.Mark = m
		}
	}
}

// Distance returns the summed length of the edges.
func (p *Path) Distance() float64 {
	d := 0.0
	for _, e := range p.edges {
		d += e.Length()
	}
	return d
}

// SetInitialDistance records the current [Path.Distance] as the rest
// length used by the concave rigid-edge model.
func (p *Path) SetInitialDistance() {
	p.InitialDistance = p.Distance()
}

// Straightness sums the normalized inner products of consecutive segments.
// A perfectly straight path of n edges scores n-1. An empty path scores -1.
func (p *Path) Straightness(rng geom.Rand) float64 {
	if len(p.edges) == 0 {
		return -1
	}
	s := 0.0
	prev := p.start
	for i := 0; i+1 < len(p.vertices); i++ {
		u, w := p.vertices[i], p.vertices[i+1]
		s += geom.NormalizedInnerProduct(&prev.Pos, &u.Pos, &u.Pos, &w.Pos, rng)
		prev = u
	}
	return s
}

// Clone returns a copy with its own vertex and edge lists. TTL, weight and
// initial distance are copied too.
func (p *Path) Clone() *Path {
	return &Path{
		start:           p.start,
		vertices:        slices.Clone(p.vertices),
		edges:           slices.Clone(p.edges),
		TTL:             p.TTL,
		InitialDistance: p.InitialDistance,
		Weight:          p.Weight,
	}
}

// ClonePaths deep-copies a list of paths.
func ClonePaths(paths []*Path) []*Path {
	out := make([]*Path, len(paths))
	for i, p := range paths {
		out[i] = p.Clone()
	}
	return out
}

// String returns "v1 -> v2 -> ...".
func (p *Path) String() string {
	var b strings.Builder
	b.WriteString(p.start.String())
	for _, v := range p.vertices {
		fmt.Fprintf(&b, " -> %v", v)
	}
	return b.String()
}
