package embed

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// EadesName is the catalog name of [Eades].
const EadesName = "Eades (84)"

// Eades is the classic spring embedder: every edge is a logarithmic spring
// of rest length C2 and strength C1, every vertex pair repels with C3/d²,
// and all forces are scaled by the step size C4. It signals finished once
// N iterations have run.
type Eades struct {
	env Env

	c1, c2, c3, c4 *param.Real
	n              *param.Int
}

// NewEades returns an Eades embedder with default constants.
func NewEades(env Env) *Eades {
	return &Eades{
		env: env,
		c1:  param.NewLinear("C1", "Attractive force", 2.0, 0, 5),
		c2:  param.NewLog("C2", "Ideal spring length", 1.0, 0.1, 10),
		c3:  param.NewLinear("C3", "Repulsive force", 0.1, 0, 2),
		c4:  param.NewLinear("C4", "Step size", 0.1, 0, 1),
		n:   param.NewInt("N", "Number of iterations", 100, 10, 1000),
	}
}

func (e *Eades) Name() string { return EadesName }

func (e *Eades) Params() param.Set {
	return param.Set{e.c1, e.c2, e.c3, e.c4, e.n}
}

func (e *Eades) PrepareStep(*graph.Graph) {}

func (e *Eades) ComputeForces(g *graph.Graph) {
	c1, c2, c3, c4 := e.c1.Get(), e.c2.Get(), e.c3.Get(), e.c4.Get()

	spring := func(d float64) float64 { return c1 * math.Log(d/c2) }
	for _, edge := range g.Edges() {
		attract(g, edge, spring, c4)
	}

	vs := g.Vertices()
	for _, v := range vs {
		for _, u := range vs {
			if u == v {
				continue
			}
			d, d2 := g.Separation(v, u)
			f := c4 * c3 / d2
			v.Force = r2.Add(v.Force, r2.Scale(f/math.Sqrt(d2), d))
		}
	}

	if e.env != nil && e.n.Get() <= e.env.Iteration() {
		e.env.Finished(e.Name())
	}
}

func (e *Eades) LimitForces(g *graph.Graph) {
	LimitForces(g, DefaultForceLimit)
}

func (e *Eades) Restart() {}
