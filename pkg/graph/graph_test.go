package graph

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	serrors "github.com/matzehuels/springlayout/pkg/errors"
)

// cycle builds the n-cycle v0-v1-...-v(n-1)-v0 with ids 0..n-1 on a line.
func cycle(t *testing.T, n int) (*Graph, []*Vertex) {
	t.Helper()
	g := New(WithRand(NewRand(7)))
	vs := make([]*Vertex, n)
	for i := range vs {
		v, err := g.AddVertexWithID(i, r2.Vec{X: float64(i)})
		if err != nil {
			t.Fatalf("AddVertexWithID(%d): %v", i, err)
		}
		vs[i] = v
	}
	for i := range vs {
		if _, err := g.AddEdge(vs[i], vs[(i+1)%n]); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return g, vs
}

func TestAddVertex(t *testing.T) {
	g := New()
	a := g.AddVertex(r2.Vec{})
	b := g.AddVertex(r2.Vec{})
	if a.ID != 1 || b.ID != 2 {
		t.Errorf("ids = %d,%d, want 1,2", a.ID, b.ID)
	}
	if a.Seq != 1 || b.Seq != 2 {
		t.Errorf("seqs = %d,%d, want 1,2", a.Seq, b.Seq)
	}

	if _, err := g.AddVertexWithID(2, r2.Vec{}); !errors.Is(err, ErrDuplicateVertexID) {
		t.Errorf("duplicate id error = %v, want ErrDuplicateVertexID", err)
	}

	explicit, err := g.AddVertexWithID(4, r2.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	auto := g.AddVertex(r2.Vec{})
	if auto.ID == explicit.ID {
		t.Errorf("auto id %d collides with explicit id", auto.ID)
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	a := g.AddVertex(r2.Vec{})
	b := g.AddVertex(r2.Vec{X: 1})

	if _, err := g.AddEdge(a, a); !errors.Is(err, ErrSelfLoop) {
		t.Errorf("self loop error = %v, want ErrSelfLoop", err)
	}
	foreign := New().AddVertex(r2.Vec{})
	if _, err := g.AddEdge(a, foreign); !serrors.Is(err, serrors.ErrCodeInvalidArgument) {
		t.Errorf("foreign vertex error = %v, want INVALID_ARGUMENT", err)
	}

	e1, _ := g.AddEdgeIfAbsent(a, b)
	e2, _ := g.AddEdgeIfAbsent(b, a)
	if e1 != e2 {
		t.Error("AddEdgeIfAbsent added a duplicate for the reversed pair")
	}
	if g.NumEdges() != 1 {
		t.Errorf("NumEdges() = %d, want 1", g.NumEdges())
	}
	if e1.Length() != 1 {
		t.Errorf("Length() = %v, want 1", e1.Length())
	}
}

func TestIncidentEdgesInvalidation(t *testing.T) {
	g := New()
	a := g.AddVertex(r2.Vec{})
	b := g.AddVertex(r2.Vec{})
	c := g.AddVertex(r2.Vec{})
	g.AddEdge(a, b)

	if got := g.Degree(a); got != 1 {
		t.Fatalf("Degree(a) = %d, want 1", got)
	}
	g.AddEdge(a, c)
	if got := g.Degree(a); got != 2 {
		t.Errorf("Degree(a) after AddEdge = %d, want 2", got)
	}
	if !g.HasEdge(c, a) || g.HasEdge(b, c) {
		t.Error("HasEdge reports wrong adjacency")
	}
	if got := len(g.Neighbors(a)); got != 2 {
		t.Errorf("len(Neighbors(a)) = %d, want 2", got)
	}
}

func TestBounds(t *testing.T) {
	if b := New().Bounds(); b.Width() != 0 || b.Height() != 0 || b.Min != (r2.Vec{}) {
		t.Errorf("empty Bounds() = %v, want zero", b)
	}

	g := New()
	g.AddVertex(r2.Vec{X: -1, Y: 2})
	g.AddVertex(r2.Vec{X: 3, Y: -2})
	b := g.Bounds()
	if b.Min != (r2.Vec{X: -1, Y: -2}) || b.Max != (r2.Vec{X: 3, Y: 2}) {
		t.Errorf("Bounds() = %v", b)
	}
}

func TestResetVertices(t *testing.T) {
	g, vs := cycle(t, 6)
	vs[0].Force = r2.Vec{X: 5}
	vs[0].Vel = r2.Vec{Y: 5}
	g.ResetVertices()

	for _, v := range g.Vertices() {
		if v.Pos.X < 0 || v.Pos.X > 1 || v.Pos.Y < 0 || v.Pos.Y > 1 {
			t.Errorf("%v at %v, want inside unit square", v, v.Pos)
		}
	}
	if vs[0].Force != (r2.Vec{}) || vs[0].Vel != (r2.Vec{}) {
		t.Error("ResetVertices did not clear force and velocity")
	}
}

func TestUnmarkOnlyClearsGivenMark(t *testing.T) {
	g, vs := cycle(t, 4)
	vs[0].Mark = MarkLocked
	vs[1].Mark = MarkSelected
	g.Edges()[0].Mark = MarkLocked
	g.Edges()[1].Mark = MarkSelected

	g.Unmark(MarkLocked)

	if vs[0].Mark != Unmarked || g.Edges()[0].Mark != Unmarked {
		t.Error("locked marks were not cleared")
	}
	if vs[1].Mark != MarkSelected || g.Edges()[1].Mark != MarkSelected {
		t.Error("selected marks were cleared")
	}
}

func TestRandomVertexDeterministic(t *testing.T) {
	pick := func() int {
		g, _ := cycle(t, 10)
		return g.RandomVertex().ID
	}
	if pick() != pick() {
		t.Error("RandomVertex differs for equal seeds")
	}
	if New().RandomVertex() != nil {
		t.Error("RandomVertex on empty graph should be nil")
	}
}
