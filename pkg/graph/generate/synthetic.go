package generate

import (
	"math/rand/v2"

	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// =============================================================================
// QuadMesh
// =============================================================================

// QuadMesh is a w×h lattice of quadrilaterals. Closing it in one direction
// joins the first and last vertex of every row (X) or column (Y), giving a
// cylinder; closing both gives a torus.
type QuadMesh struct {
	w, h             *param.Int
	closedX, closedY *param.Bool
}

// NewQuadMesh returns an open 10×10 mesh generator.
func NewQuadMesh() *QuadMesh {
	return &QuadMesh{
		w:       param.NewInt("w", "Width of mesh", 10, 2, 100),
		h:       param.NewInt("h", "Height of mesh", 10, 2, 100),
		closedX: param.NewBool("Closed(X)", "Close surface in X-direction", false),
		closedY: param.NewBool("Closed(Y)", "Close surface in Y-direction", false),
	}
}

func (q *QuadMesh) Name() string { return QuadMeshName }

func (q *QuadMesh) Params() param.Set { return param.Set{q.w, q.h, q.closedX, q.closedY} }

// Generate numbers vertex (x, y) as y*w+x.
func (q *QuadMesh) Generate(rng *rand.Rand) (*graph.Graph, error) {
	w, h := q.w.Get(), q.h.Get()
	g := graph.New(graph.WithRand(rng))
	vs := make([]*graph.Vertex, w*h)
	for i := range vs {
		v, err := g.AddVertexWithID(i, randomPos(rng))
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}

	link := func(a, b int) error {
		_, err := g.AddEdgeIfAbsent(vs[a], vs[b])
		return err
	}
	for x := 0; x < w-1; x++ {
		for y := 0; y < h-1; y++ {
			corners := [4]int{y*w + x, y*w + x + 1, (y+1)*w + x + 1, (y+1)*w + x}
			for i := range corners {
				if err := link(corners[i], corners[(i+1)%4]); err != nil {
					return nil, err
				}
			}
		}
	}
	if q.closedX.Get() {
		for y := range h {
			if err := link(y*w, (y+1)*w-1); err != nil {
				return nil, err
			}
		}
	}
	if q.closedY.Get() {
		for x := range w {
			if err := link(x, x+(h-1)*w); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// =============================================================================
// Tree
// =============================================================================

// Tree is a complete tree in which every inner vertex has numChilds
// children.
type Tree struct {
	depth     *param.Int
	numChilds *param.Int
}

// NewTree returns a generator for trees of depth 3 with 4 children each.
func NewTree() *Tree {
	return &Tree{
		depth:     param.NewInt("depth", "Depth of tree", 3, 1, 5),
		numChilds: param.NewInt("numChilds", "Number of childs for each node", 4, 1, 6),
	}
}

func (t *Tree) Name() string { return TreeName }

func (t *Tree) Params() param.Set { return param.Set{t.depth, t.numChilds} }

// Generate numbers vertices in depth-first order, the root being 0.
func (t *Tree) Generate(rng *rand.Rand) (*graph.Graph, error) {
	g := graph.New(graph.WithRand(rng))
	next := 0
	add := func() (*graph.Vertex, error) {
		v, err := g.AddVertexWithID(next, randomPos(rng))
		next++
		return v, err
	}

	var grow func(parent *graph.Vertex, depth int) error
	grow = func(parent *graph.Vertex, depth int) error {
		if depth <= 0 {
			return nil
		}
		for range t.numChilds.Get() {
			child, err := add()
			if err != nil {
				return err
			}
			if _, err := g.AddEdge(child, parent); err != nil {
				return err
			}
			if err := grow(child, depth-1); err != nil {
				return err
			}
		}
		return nil
	}

	root, err := add()
	if err != nil {
		return nil, err
	}
	if err := grow(root, t.depth.Get()); err != nil {
		return nil, err
	}
	return g, nil
}

// =============================================================================
// Gilbert
// =============================================================================

// Gilbert is the G(N, p) random graph: each of the N(N-1)/2 possible edges
// is present independently with probability p.
type Gilbert struct {
	n *param.Int
	p *param.Real
}

// NewGilbert returns a generator for the complete graph on 10 vertices;
// lower p to thin it out.
func NewGilbert() *Gilbert {
	return &Gilbert{
		n: param.NewInt("N", "Number of vertices", 10, 2, 100),
		p: param.NewLinear("p", "Probability for edge", 1, 0, 1),
	}
}

func (r *Gilbert) Name() string { return GilbertName }

func (r *Gilbert) Params() param.Set { return param.Set{r.n, r.p} }

func (r *Gilbert) Generate(rng *rand.Rand) (*graph.Graph, error) {
	n, p := r.n.Get(), r.p.Get()
	g := graph.New(graph.WithRand(rng))
	vs := make([]*graph.Vertex, n)
	for i := range vs {
		v, err := g.AddVertexWithID(i, randomPos(rng))
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < p {
				if _, err := g.AddEdge(vs[i], vs[j]); err != nil {
					return nil, err
				}
			}
		}
	}
	return g, nil
}
