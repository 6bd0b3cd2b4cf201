package pathmgr

import (
	"cmp"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// CmdClear drops every chain of a [Random] manager.
const CmdClear = "clear"

// Random keeps up to NumPaths chains alive. Each tick it builds at most one
// new chain, from a focus vertex with probability Focus and from a random
// vertex otherwise. Every chain has a time to live; the straightest share
// of chains (KeepRatio) gets its TTL extended each tick, so crooked chains
// expire first.
type Random struct {
	Base

	numPaths  *param.Int
	pathLen   *param.Int
	minTTL    *param.Int
	keep      *param.Real
	focus     *param.Real
	dirFocus  *param.Real
	dirOthers *param.Real
}

// NewRandom returns a TTL manager with default settings. NumPaths starts
// at 0, so no chains are built until it is raised.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{
		Base:      newBase(rng),
		numPaths:  param.NewInt("NumPaths", "Maximum number of paths to generate", 0, 0, 100),
		pathLen:   param.NewInt("PathLen", "Maximum path length", 5, 2, 100),
		minTTL:    param.NewInt("MinTTL", "Minimum time to live for a path", 250, 1, 500),
		keep:      param.NewLinear("KeepRatio", "Amount of straight paths to keep", 0.5, 0, 1),
		focus:     param.NewLinear("Focus", "Focus path creation on problem regions", 0, 0, 1),
		dirFocus:  param.NewLinear("PrefDir_Focus", "Edge direction for first vertex (inner product)", 1, -1, 1),
		dirOthers: param.NewLinear("PrefDir_Other", "Edge direction for first vertex (inner product)", -1, -1, 1),
	}
}

func (r *Random) Name() string { return RandomName }

func (r *Random) Params() param.Set {
	return param.Set{r.numPaths, r.pathLen, r.minTTL, r.keep, r.focus, r.dirFocus, r.dirOthers}
}

func (r *Random) Commands() []string { return []string{CmdClear} }

func (r *Random) Run(name string) error {
	if name != CmdClear {
		return unknownCommand(r, name)
	}
	r.ClearPaths()
	return nil
}

func (r *Random) Manage() error { return r.manage(r.step) }

func (r *Random) step() error {
	if r.Count() < r.numPaths.Get() {
		r.spawn()
	}

	// PathLen may have been lowered since the chains were built.
	maxLen := r.pathLen.Get()
	for i := r.Count() - 1; i >= 0; i-- {
		if r.paths[i].Len() > maxLen {
			r.RemovePathAt(i)
		}
	}

	for _, p := range r.paths {
		p.Weight = p.Straightness(r.g.Rand())
	}
	slices.SortStableFunc(r.paths, func(p, q *graph.Path) int {
		return cmp.Compare(q.Weight, p.Weight)
	})

	n := r.Count()
	keep := min(n, max(0, int(r.keep.Get()*float64(n))))
	for _, p := range r.paths[:keep] {
		p.TTL++
	}

	for i, p := range r.paths {
		p.TTL--
		if p.TTL < -1 {
			r.RemovePathAt(i)
			break
		}
	}

	if r.Count() > r.numPaths.Get() {
		r.RemovePathAt(0)
	}
	return nil
}

func (r *Random) spawn() {
	focused := r.rng.Float64() <= r.focus.Get()
	var v *graph.Vertex
	ideal := r.dirOthers.Get()
	if focused {
		v = r.FocusedVertex()
		ideal = r.dirFocus.Get()
	} else {
		v = r.g.RandomVertex()
	}
	if v == nil {
		return
	}
	if p := r.BuildChain(v, r.pathLen.Get(), ideal); p != nil {
		p.TTL = r.minTTL.Get()
		r.AddPath(p)
	}
}
