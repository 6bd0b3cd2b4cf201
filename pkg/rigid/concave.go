package rigid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// Concave holds the endpoints of a path at the distance they had when the
// path was built, pushing them apart or together with a force growing with
// the square of the deviation.
type Concave struct {
	force *param.Real
}

// NewConcave returns the concave model with its default force.
func NewConcave() *Concave {
	return &Concave{force: param.NewLog("Force", "Force along path", 1e4, 1e-6, 1e8)}
}

func (c *Concave) Name() string { return ConcaveName }

func (c *Concave) Params() param.Set { return param.Set{c.force} }

func (c *Concave) ComputeForces(g *graph.Graph, p *graph.Path) {
	if p.Len() == 0 {
		return
	}
	start, end := p.Start(), p.End()
	d, d2 := g.Separation(start, end)
	dist := math.Sqrt(d2)

	diff := p.InitialDistance - dist
	f := c.force.Get() * diff * diff
	if diff < 0 {
		f = -f
	}

	push := r2.Scale(f/dist, d)
	start.Force = r2.Add(start.Force, push)
	end.Force = r2.Sub(end.Force, push)
}
