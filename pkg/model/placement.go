package model

import (
	"math/rand/v2"

	opensimplex "github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
)

// Placement decides where vertices start when a layout is (re)started.
type Placement string

const (
	// PlacementUniform scatters vertices uniformly over the unit square.
	PlacementUniform Placement = "uniform"
	// PlacementSimplex samples two simplex noise fields along the vertex
	// sequence, so consecutive vertices start near each other.
	PlacementSimplex Placement = "simplex"
)

// noiseStep is the distance between consecutive vertices in noise space.
const noiseStep = 0.37

// noiseOffset separates the X and Y noise fields.
const noiseOffset = 1000

// ParsePlacement returns the placement called s.
func ParsePlacement(s string) (Placement, error) {
	switch p := Placement(s); p {
	case PlacementUniform, PlacementSimplex:
		return p, nil
	case "":
		return PlacementUniform, nil
	}
	return "", errors.New(errors.ErrCodeInvalidArgument, "unknown placement %q (want uniform or simplex)", s)
}

// scatter moves every vertex of g to its start position. Simplex noise is
// seeded from rng, so repeated resets differ but each run is reproducible.
func (p Placement) scatter(g *graph.Graph, rng *rand.Rand) {
	if p != PlacementSimplex {
		g.ResetVertices()
		return
	}
	noise := opensimplex.NewNormalized(rng.Int64())
	g.Scatter(func(v *graph.Vertex) r2.Vec {
		t := float64(v.Seq) * noiseStep
		return r2.Vec{
			X: noise.Eval2(t, 0),
			Y: noise.Eval2(0, t+noiseOffset),
		}
	})
}
