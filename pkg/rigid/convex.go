package rigid

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/geom"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// Convex straightens a path by applying, at every interior vertex q with
// neighbors u and v on the path, a torque proportional to how far the
// angle u-q-v is from 180°. The forces act perpendicular to the two path
// segments and are scaled by their inverse lengths, so they bend the path
// without stretching it.
type Convex struct {
	force *param.Real
}

// NewConvex returns the convex model with its default force.
func NewConvex() *Convex {
	return &Convex{force: param.NewLog("Force", "Force along path", 1e5, 1e-2, 1e9)}
}

func (c *Convex) Name() string { return ConvexName }

func (c *Convex) Params() param.Set { return param.Set{c.force} }

func (c *Convex) ComputeForces(_ *graph.Graph, p *graph.Path) {
	force := c.force.Get()
	all := p.AllVertices()
	for i := 1; i+1 < len(all); i++ {
		u, q, v := all[i-1], all[i], all[i+1]

		r1 := r2.Sub(u.Pos, q.Pos)
		r2v := r2.Sub(v.Pos, q.Pos)
		n1, n2 := r2.Norm(r1), r2.Norm(r2v)
		if n1 == 0 || n2 == 0 {
			continue
		}

		cos := geom.Clamp(r2.Dot(r1, r2v)/(n1*n2), -1, 1)
		f := force * (math.Pi - math.Acos(cos))
		if r2.Cross(r1, r2v) > 0 {
			f = -f
		}

		f1 := r2.Scale(f/n1, r2.Vec{X: r1.Y / n1, Y: -r1.X / n1})
		f2 := r2.Scale(f/n2, r2.Vec{X: r2v.Y / n2, Y: -r2v.X / n2})

		u.Force = r2.Sub(u.Force, f1)
		q.Force = r2.Sub(r2.Add(q.Force, f1), f2)
		v.Force = r2.Add(v.Force, f2)
	}
}
