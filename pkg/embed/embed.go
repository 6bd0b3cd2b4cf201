// Package embed provides the force laws that pull a graph into shape.
//
// An [Embedder] contributes forces to every vertex's Force accumulator once
// per step and then limits their magnitude. The layout model clears the
// accumulators, calls [Embedder.PrepareStep], [Embedder.ComputeForces] and
// later [Embedder.LimitForces]; embedders never clear accumulators
// themselves and never move vertices.
//
// # Strategies
//
//   - [Eades]: logarithmic springs and inverse-square repulsion with a fixed
//     step size, finishing after a configured number of iterations
//   - [FruchtermanReingold]: k²/d repulsion and polynomial attraction with a
//     temperature that caps force magnitude and anneals itself; repulsion can
//     be restricted to nearby pairs with a bucketing grid
//
// # Environment
//
// Embedders that depend on the run's progress receive an [Env] at
// construction: it reports the current iteration and takes the "finished"
// signal. There is no global application state.
package embed

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// DefaultForceLimit caps force magnitudes for embedders without their own
// limit.
const DefaultForceLimit = 1.0

// minLimitedForce is the magnitude below which forces are left alone.
const minLimitedForce = 1e-4

// Env is the part of the running model an embedder may observe.
type Env interface {
	// Iteration returns the number of steps started since the last restart.
	Iteration() int
	// Finished signals that the named embedder considers the layout done.
	// It is advisory: the model may keep stepping.
	Finished(name string)
}

// Embedder computes layout forces.
type Embedder interface {
	param.Provider

	// PrepareStep runs once per step before ComputeForces.
	PrepareStep(g *graph.Graph)
	// ComputeForces adds this step's forces into every vertex's Force.
	ComputeForces(g *graph.Graph)
	// LimitForces caps the magnitude of every vertex's Force.
	LimitForces(g *graph.Graph)
	// Restart resets per-run state after a new graph or a re-scatter.
	Restart()
}

// LimitForces scales every force larger than limit down to limit, keeping
// its direction. Forces below 1e-4 are left untouched.
func LimitForces(g *graph.Graph, limit float64) {
	for _, v := range g.Vertices() {
		d := r2.Norm(v.Force)
		if d > minLimitedForce {
			v.Force = r2.Scale(min(limit, d)/d, v.Force)
		}
	}
}

// attract applies an attractive force of magnitude f along edge e, pulling
// both endpoints towards each other for positive f.
func attract(g *graph.Graph, e *graph.Edge, fa func(d float64) float64, scale float64) {
	d, d2 := g.Separation(e.V1, e.V2)
	dist := math.Sqrt(d2)
	f := r2.Scale(scale*fa(dist)/dist, d)
	e.V1.Force = r2.Sub(e.V1.Force, f)
	e.V2.Force = r2.Add(e.V2.Force, f)
}
