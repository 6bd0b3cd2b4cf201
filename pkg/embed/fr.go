package embed

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/geom"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// FruchtermanReingoldName is the catalog name of [FruchtermanReingold].
const FruchtermanReingoldName = "Fruchterman & Reingold (91)"

const (
	// annealWindow is the number of bounding-box samples compared per
	// temperature update; the older half is compared with the newer half.
	annealWindow = 20
	// annealTolerance is the relative diagonal change below which the
	// layout counts as settled and the temperature drops.
	annealTolerance = 0.01
	annealCool      = 0.9
	annealHeat      = 1.1
	// minTemperature is the floor below which annealing stops and the
	// embedder reports finished.
	minTemperature = 0.1
	// maxBoxesPerAxis bounds the repulsion grid.
	maxBoxesPerAxis = 100
	// gridMargin enlarges the bounding box before bucketing.
	gridMargin = 1.1
)

// FruchtermanReingold implements the force model of Fruchterman and
// Reingold: repulsion k²/d between all pairs, attraction d^(2^(faExp-1))/k
// along edges, with k = C·sqrt(1/|V|). The temperature Tmax caps every
// force and, with Auto Temp on, is annealed from the evolution of the
// bounding-box diagonal. With Grid on, repulsion only acts between
// vertices in neighboring grid boxes closer than the box size.
type FruchtermanReingold struct {
	env Env

	c        *param.Real
	tmax     *param.Real
	faExp    *param.Int
	autoTemp *param.Bool
	grid     *param.Bool

	k        float64
	firstRun bool
	diag     [annealWindow]float64
	diagPtr  int
	boxes    [][]*graph.Vertex
}

// NewFruchtermanReingold returns an embedder with default constants.
func NewFruchtermanReingold(env Env) *FruchtermanReingold {
	return &FruchtermanReingold{
		env:      env,
		c:        param.NewLog("C", "Force constant", 5e2, 1e-1, 1e5),
		tmax:     param.NewLinear("Tmax", "Maximum temperature", 1, 0, 5),
		faExp:    param.NewInt("faExp", "Attractive force exponent", 2, 1, 10),
		autoTemp: param.NewBool("Auto Temp", "Enable simulated annealing", true),
		grid:     param.NewBool("Grid", "Use grid algorithm", false),
		firstRun: true,
	}
}

func (fr *FruchtermanReingold) Name() string { return FruchtermanReingoldName }

func (fr *FruchtermanReingold) Params() param.Set {
	return param.Set{fr.c, fr.tmax, fr.faExp, fr.autoTemp, fr.grid}
}

// Temperature returns the current force cap.
func (fr *FruchtermanReingold) Temperature() float64 { return fr.tmax.Get() }

// K returns the ideal distance computed by the last PrepareStep.
func (fr *FruchtermanReingold) K() float64 { return fr.k }

func (fr *FruchtermanReingold) PrepareStep(g *graph.Graph) {
	if n := g.NumVertices(); n > 0 {
		fr.k = fr.c.Get() * math.Sqrt(1/float64(n))
	}
	if fr.autoTemp.Get() {
		fr.controlTemp(g)
	}
}

func (fr *FruchtermanReingold) repulsion(d float64) float64 {
	return fr.k * fr.k / d
}

func (fr *FruchtermanReingold) attraction(d float64) float64 {
	for i := 1; i < fr.faExp.Get(); i++ {
		d *= d
	}
	return d / fr.k
}

func (fr *FruchtermanReingold) ComputeForces(g *graph.Graph) {
	if fr.grid.Get() {
		fr.repelGrid(g)
	} else {
		fr.repelAll(g, math.Inf(1))
	}
	for _, e := range g.Edges() {
		attract(g, e, fr.attraction, 1)
	}
}

// repel applies half of the repulsion between v and u to each of them, in
// opposite directions. Pairs closer than cutoff only.
func (fr *FruchtermanReingold) repel(g *graph.Graph, v, u *graph.Vertex, cutoff float64) {
	d, d2 := g.Separation(v, u)
	dist := math.Sqrt(d2)
	if dist > cutoff {
		return
	}
	f := r2.Scale(fr.repulsion(dist)/dist/2, d)
	v.Force = r2.Add(v.Force, f)
	u.Force = r2.Sub(u.Force, f)
}

// repelAll visits every ordered pair, so each unordered pair receives the
// full repulsion in two halves.
func (fr *FruchtermanReingold) repelAll(g *graph.Graph, cutoff float64) {
	vs := g.Vertices()
	for _, v := range vs {
		for _, u := range vs {
			if u != v {
				fr.repel(g, v, u, cutoff)
			}
		}
	}
}

// gridSpec returns the box size and box counts for the current layout.
func (fr *FruchtermanReingold) gridSpec(b geom.Rect) (size float64, nx, ny int) {
	w := b.Width() * gridMargin
	h := b.Height() * gridMargin
	size = math.Max(math.Max(w, h)/maxBoxesPerAxis, 2*fr.k)
	return size, 1 + int(w/size), 1 + int(h/size)
}

func (fr *FruchtermanReingold) repelGrid(g *graph.Graph) {
	bounds := g.Bounds()
	size, nx, ny := fr.gridSpec(bounds)
	if !(size > 0) {
		fr.repelAll(g, math.Inf(1))
		return
	}

	if n := nx * ny; cap(fr.boxes) < n {
		fr.boxes = make([][]*graph.Vertex, n)
	} else {
		fr.boxes = fr.boxes[:n]
	}
	for i := range fr.boxes {
		fr.boxes[i] = fr.boxes[i][:0]
	}

	cell := func(v *graph.Vertex) (int, int) {
		return int((v.Pos.X - bounds.Min.X) / size), int((v.Pos.Y - bounds.Min.Y) / size)
	}
	for _, v := range g.Vertices() {
		x, y := cell(v)
		fr.boxes[y*nx+x] = append(fr.boxes[y*nx+x], v)
	}

	for _, v := range g.Vertices() {
		x, y := cell(v)
		for j := -1; j <= 1; j++ {
			for i := -1; i <= 1; i++ {
				bx, by := x+i, y+j
				if bx < 0 || bx >= nx || by < 0 || by >= ny {
					continue
				}
				for _, u := range fr.boxes[by*nx+bx] {
					if u != v {
						fr.repel(g, v, u, size)
					}
				}
			}
		}
	}
}

func (fr *FruchtermanReingold) LimitForces(g *graph.Graph) {
	LimitForces(g, fr.tmax.Get())
}

// controlTemp records the bounding-box diagonal and, every annealWindow
// steps, cools the temperature if the layout has stopped growing or
// shrinking, or heats it otherwise.
func (fr *FruchtermanReingold) controlTemp(g *graph.Graph) {
	fr.diag[fr.diagPtr] = g.Bounds().Diagonal()
	fr.diagPtr = (fr.diagPtr + 1) % annealWindow

	if fr.diagPtr == 0 {
		older := floats.Sum(fr.diag[:annealWindow/2])
		newer := floats.Sum(fr.diag[annealWindow/2:])
		t := fr.tmax.Get()
		if math.Abs(newer/older-1) < annealTolerance {
			t *= annealCool
		} else {
			t *= annealHeat
		}
		if t < minTemperature {
			t = 0
			if fr.env != nil {
				fr.env.Finished(fr.Name())
			}
		}
		fr.tmax.Set(t)
	}

	if fr.firstRun {
		fr.tmax.Set(fr.tmax.Max())
	}
	fr.firstRun = false
}

// Restart makes the next step reset the temperature to its maximum.
func (fr *FruchtermanReingold) Restart() {
	fr.firstRun = true
}
