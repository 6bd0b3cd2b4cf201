// Package geom provides the small set of planar helpers the layout engine
// needs on top of gonum's [r2.Vec].
//
// Positions, forces and velocities are all r2.Vec values. The one piece of
// behavior that is not plain vector arithmetic is the degeneracy jitter in
// [Separation]: two points closer than 1e-5 are pushed one unit apart in a
// random direction so that no force law ever divides by zero. The jitter
// mutates its arguments and draws from an injected [Rand], which keeps test
// runs reproducible.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// MinSquaredDistance is the squared separation below which two points are
// considered coincident and get jittered apart.
const MinSquaredDistance = 1e-10

// Rand is the random source used for jitter. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	Float64() float64
}

// Separation returns d = a - b and |d|².
//
// If the points coincide (|d|² < MinSquaredDistance), a and b are moved one
// unit apart along a random direction, a backwards and b forwards, and the
// separation is recomputed. The caller's vectors are updated in place.
func Separation(a, b *r2.Vec, rng Rand) (r2.Vec, float64) {
	d := r2.Sub(*a, *b)
	d2 := r2.Norm2(d)
	for d2 < MinSquaredDistance {
		phi := 2 * math.Pi * rng.Float64()
		j := r2.Vec{X: math.Cos(phi), Y: math.Sin(phi)}
		*a = r2.Sub(*a, j)
		*b = r2.Add(*b, j)
		d = r2.Sub(*a, *b)
		d2 = r2.Norm2(d)
	}
	return d, d2
}

// Distance is the euclidean distance between a and b.
func Distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// NormalizedInnerProduct returns the cosine of the angle between the
// segments u0→u1 and v0→v1. Coincident endpoints are jittered through
// [Separation] first, so the result is always defined.
func NormalizedInnerProduct(u0, u1, v0, v1 *r2.Vec, rng Rand) float64 {
	u, u2 := Separation(u1, u0, rng)
	v, v2 := Separation(v1, v0, rng)
	return r2.Dot(u, v) / math.Sqrt(u2*v2)
}

// Unit returns v scaled to length 1, or the zero vector if v is zero.
func Unit(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Angle returns the unsigned angle in radians corresponding to a
// normalized inner product, folding obtuse angles onto acute ones. Two
// segments are parallel (angle 0) whether they point the same or opposite
// ways.
func Angle(nip float64) float64 {
	return math.Acos(Clamp(math.Abs(nip), 0, 1))
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min, Max r2.Vec
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Diagonal returns the length of the diagonal of r.
func (r Rect) Diagonal() float64 {
	return math.Hypot(r.Width(), r.Height())
}

// Center returns the midpoint of r.
func (r Rect) Center() r2.Vec {
	return r2.Scale(0.5, r2.Add(r.Min, r.Max))
}

// Grow returns r scaled by f around its center.
func (r Rect) Grow(f float64) Rect {
	c := r.Center()
	h := r2.Scale(0.5*f, r2.Sub(r.Max, r.Min))
	return Rect{Min: r2.Sub(c, h), Max: r2.Add(c, h)}
}

// Include returns the smallest Rect containing both r and p.
func (r Rect) Include(p r2.Vec) Rect {
	return Rect{
		Min: r2.Vec{X: math.Min(r.Min.X, p.X), Y: math.Min(r.Min.Y, p.Y)},
		Max: r2.Vec{X: math.Max(r.Max.X, p.X), Y: math.Max(r.Max.Y, p.Y)},
	}
}
