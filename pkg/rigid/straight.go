package rigid

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// Ways [Straight] treats the embedder forces on path vertices.
const (
	EliminateAll     = "Eliminate all"
	EliminateBorders = "Eliminate at borders"
	CollectAndApply  = "Collect and apply"
	DoNothing        = "Do nothing"
)

// Straight keeps paths on the straight line between their endpoints.
//
// In fix mode every interior vertex is pulled to an evenly spaced slot on
// the chord. In rail mode it is pulled onto the chord at its own
// projection and may slide along it, keeping the tangential part of its
// embedder force. Paths with fewer than two edges are left alone.
type Straight struct {
	rail   *param.Bool
	forces *param.Choice
}

// NewStraight returns the straight model in fix mode, eliminating all
// embedder forces on path vertices.
func NewStraight() *Straight {
	return &Straight{
		rail: param.NewBool("Rail mode", "Allow movement along connecting line", false),
		forces: param.NewChoice("Embedder forces", "How to handle embedder forces",
			[]string{EliminateAll, EliminateBorders, CollectAndApply, DoNothing}, EliminateAll),
	}
}

func (s *Straight) Name() string { return StraightName }

func (s *Straight) Params() param.Set { return param.Set{s.rail, s.forces} }

func (s *Straight) ComputeForces(g *graph.Graph, p *graph.Path) {
	if p.Len() < 2 {
		return
	}

	mode := s.forces.Get()
	start, end := p.Start(), p.End()
	if mode == EliminateAll || mode == EliminateBorders {
		start.Force = r2.Vec{}
		end.Force = r2.Vec{}
	}
	elimInner := mode == EliminateAll || mode == CollectAndApply

	var collected r2.Vec
	if s.rail.Get() {
		collected = s.rails(g, p, elimInner)
	} else {
		collected = s.slots(g, p, elimInner)
	}

	if mode == CollectAndApply {
		half := r2.Scale(0.5, collected)
		start.Force = r2.Add(start.Force, half)
		end.Force = r2.Add(end.Force, half)
	}
}

// slots pulls interior vertex i to start + i·(end-start)/len and returns
// the sum of the embedder forces on interior vertices.
func (s *Straight) slots(g *graph.Graph, p *graph.Path, elimInner bool) r2.Vec {
	d, _ := g.Separation(p.End(), p.Start())
	step := r2.Scale(1/float64(p.Len()), d)

	var sum r2.Vec
	target := p.Start().Pos
	for _, v := range p.Vertices()[:p.Len()-1] {
		target = r2.Add(target, step)
		sum = r2.Add(sum, v.Force)
		if elimInner {
			v.Force = r2.Vec{}
		}
		v.Shape = r2.Sub(target, v.Pos)
	}
	return sum
}

// rails pulls interior vertices onto the chord at their projection and
// returns the sum of the perpendicular parts of their embedder forces.
func (s *Straight) rails(g *graph.Graph, p *graph.Path, elimInner bool) r2.Vec {
	d, d2 := g.Separation(p.End(), p.Start())
	origin := p.Start().Pos

	var sum r2.Vec
	for _, v := range p.Vertices()[:p.Len()-1] {
		l := r2.Dot(r2.Sub(v.Pos, origin), d) / d2
		v.Shape = r2.Sub(r2.Add(origin, r2.Scale(l, d)), v.Pos)

		tangential := r2.Scale(r2.Dot(v.Force, d)/d2, d)
		sum = r2.Add(sum, r2.Sub(v.Force, tangential))
		if elimInner {
			v.Force = tangential
		}
	}
	return sum
}
