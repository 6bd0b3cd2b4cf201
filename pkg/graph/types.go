package graph

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// =============================================================================
// Marks
// =============================================================================

// Mark tags vertices and edges with their role in paths. Marks are small
// integers so that a single field can carry the state of both the path
// manager and the interactive selection.
type Mark int

const (
	// Unmarked elements are free for any path.
	Unmarked Mark = iota
	// MarkLocked is set on elements used by path-manager paths.
	MarkLocked
	// MarkSelecting is set on the selection currently being built.
	MarkSelecting
	// MarkSelected is set on stored user selections.
	MarkSelected
)

// String returns the mark's name.
func (m Mark) String() string {
	switch m {
	case Unmarked:
		return "none"
	case MarkLocked:
		return "locked"
	case MarkSelecting:
		return "selecting"
	case MarkSelected:
		return "selected"
	}
	return fmt.Sprintf("mark(%d)", int(m))
}

// =============================================================================
// Vertex
// =============================================================================

// Vertex is a point of the layout together with its per-step accumulators.
//
// Force receives the embedder's forces and is limited every step. Shape is
// the secondary accumulator used by rigid-edge models; it bypasses the
// limiter and is added to Force just before integration. Observed holds a
// copy of the embedder force taken before rigid-edge models run, which
// renderers use to draw force vectors.
type Vertex struct {
	ID  int // Identifier, unique within a graph
	Seq int // Insertion sequence number, starting at 1

	Pos      r2.Vec
	Vel      r2.Vec
	Force    r2.Vec
	Shape    r2.Vec
	Observed r2.Vec

	Weight    float64 // Scratch weight (focus-region scoring)
	Mark      Mark
	Highlight bool // Member of the path manager's focus region

	// shortest-path scratch state
	dist int
	pred *Vertex
}

// ClearForces zeroes the force and shape accumulators.
func (v *Vertex) ClearForces() {
	v.Force = r2.Vec{}
	v.Shape = r2.Vec{}
}

// String returns "v<ID>".
func (v *Vertex) String() string {
	return fmt.Sprintf("v%d", v.ID)
}

// =============================================================================
// Edge
// =============================================================================

// Edge is an undirected connection between two distinct vertices.
type Edge struct {
	V1, V2 *Vertex
	Mark   Mark
	Weight float64
	Group  int // Bundle index assigned by [Graph.VisualComplexity]
}

// Other returns the endpoint of e opposite to v, or nil if v is not an
// endpoint of e.
func (e *Edge) Other(v *Vertex) *Vertex {
	switch v {
	case e.V1:
		return e.V2
	case e.V2:
		return e.V1
	}
	return nil
}

// Contains reports whether v is an endpoint of e.
func (e *Edge) Contains(v *Vertex) bool {
	return v == e.V1 || v == e.V2
}

// Joins reports whether e connects a and b in either direction.
func (e *Edge) Joins(a, b *Vertex) bool {
	return (e.V1 == a && e.V2 == b) || (e.V1 == b && e.V2 == a)
}

// Length returns the euclidean length of e.
func (e *Edge) Length() float64 {
	return r2.Norm(r2.Sub(e.V2.Pos, e.V1.Pos))
}

// String returns "v<a>-v<b>".
func (e *Edge) String() string {
	return fmt.Sprintf("%v-%v", e.V1, e.V2)
}
