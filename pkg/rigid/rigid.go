// Package rigid provides force models that keep chosen edge chains in
// shape while the embedder moves the rest of the graph.
//
// A [Model] is applied once per step to every active [graph.Path], after the
// embedder has computed its forces and before they are limited. Models may
// rewrite the embedder forces of path vertices (Force) and add corrective
// displacements (Shape); Shape is added to Force after limiting, so shape
// corrections are never capped.
//
// # Models
//
//   - [None]: leaves paths alone
//   - [Straight]: pulls interior vertices onto the chord between the
//     endpoints, either to fixed evenly spaced slots or onto a rail
//   - [Convex]: bends every interior angle of the path towards 180°
//   - [Concave]: keeps the endpoint distance at its value when the path was
//     built
package rigid

import (
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// Model names as listed in the catalog.
const (
	NoneName     = "None"
	StraightName = "Straight"
	ConvexName   = "Convex"
	ConcaveName  = "Concave"
)

// Model computes forces on the vertices of one path.
type Model interface {
	param.Provider

	// ComputeForces adjusts Force and Shape of the vertices on p.
	ComputeForces(g *graph.Graph, p *graph.Path)
}

// None is the model without rigid edges.
type None struct{}

// NewNone returns the no-op model.
func NewNone() *None { return &None{} }

func (*None) Name() string                            { return NoneName }
func (*None) Params() param.Set                       { return nil }
func (*None) ComputeForces(*graph.Graph, *graph.Path) {}
