package graph

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/geom"
)

// Default parameters of the layout quality measures.
const (
	DefaultOverlapDegrees    = 2.0
	DefaultOverlapBoxDim     = 0.1
	DefaultComplexityDegrees = 5.0
)

// Overlaps counts unordered pairs of edges that visually overlap.
//
// Two edges overlap when the angle between them is below deg degrees
// (parallel and antiparallel count alike) and at least one endpoint of
// either edge lies inside the other edge's tolerance box. The box extends
// dim·|edge| past both ends along the edge and dim·|edge| to either side.
// Shared endpoints never count as lying near an edge.
func (g *Graph) Overlaps(deg, dim float64) int {
	limit := geom.Radians(deg)
	n := 0
	for i, e1 := range g.edges {
		for _, e2 := range g.edges[i+1:] {
			if g.edgesOverlap(e1, e2, limit, dim) {
				n++
			}
		}
	}
	return n
}

func (g *Graph) edgesOverlap(e1, e2 *Edge, limit, dim float64) bool {
	if geom.Angle(g.NormalizedInnerProduct(e1.V1, e1.V2, e2.V1, e2.V2)) >= limit {
		return false
	}
	return vertexNearEdge(e1.V1, e2, dim) || vertexNearEdge(e1.V2, e2, dim) ||
		vertexNearEdge(e2.V1, e1, dim) || vertexNearEdge(e2.V2, e1, dim)
}

func vertexNearEdge(v *Vertex, e *Edge, dim float64) bool {
	if e.Contains(v) {
		return false
	}
	r := r2.Sub(e.V2.Pos, e.V1.Pos)
	rr := r2.Norm2(r)
	if rr == 0 {
		return false
	}
	l := r2.Dot(r2.Sub(v.Pos, e.V1.Pos), r) / rr
	foot := r2.Add(e.V1.Pos, r2.Scale(l, r))
	d := r2.Norm(r2.Sub(v.Pos, foot))
	return l > -dim && l < 1+dim && d < math.Sqrt(rr)*dim
}

// VisualComplexity partitions the edges into bundles of nearly straight
// continuations and returns the number of bundles.
//
// A bundle starts with the first unassigned edge (a, b) and grows greedily
// from b: the first remaining edge (b, c) whose direction deviates from
// a→b by less than angle degrees joins it, and the search continues from
// c. When no edge extends the bundle forward it is extended once backwards
// from a, then the next bundle starts. Every edge's Group is set to its
// 1-based bundle index.
func (g *Graph) VisualComplexity(angle float64) int {
	remaining := slices.Clone(g.edges)
	for _, e := range remaining {
		e.Group = 0
	}

	limit := geom.Radians(angle)
	group := 0
	var v1, v2 *Vertex
	var first *Edge

	for len(remaining) > 0 {
		if v1 == nil {
			first = remaining[0]
			remaining = remaining[1:]
			group++
			first.Group = group
			v1, v2 = first.V1, first.V2
		}

		extended := false
		for i, e := range remaining {
			v3 := e.Other(v2)
			if v3 == nil {
				continue
			}
			nip := g.NormalizedInnerProduct(v1, v2, v2, v3)
			if math.Acos(geom.Clamp(nip, 0, 1)) >= limit {
				continue
			}
			remaining = slices.Delete(remaining, i, i+1)
			e.Group = group
			v1, v2 = v2, v3
			extended = true
			break
		}
		if extended {
			continue
		}

		if first == nil {
			v1, v2 = nil, nil
		} else {
			v1, v2 = first.V2, first.V1
			first = nil
		}
	}
	return group
}
