package pathmgr

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// CmdReset returns an [Auto] manager to its initial state.
const CmdReset = "reset"

const (
	// warmupTicks is the number of ticks after a reset before the first
	// active tick, giving the embedder time to converge.
	warmupTicks = 100
	// maxFail is the number of consecutive failures after which an action
	// is no longer tried.
	maxFail = 3
	// overlapPenalty weighs overlapping edge pairs against bundles in the
	// quality measure.
	overlapPenalty = 3
	// noAction marks that the last active tick did not try an action.
	noAction = -1
)

// Local search actions, in the order they are tried.
const (
	actionAdd = iota
	actionExtend
	actionConnect
	numActions
)

// Event is what the last active tick of an [Auto] manager did to its undo
// stack.
type Event int

const (
	EventNone Event = iota
	EventCheckpoint
	EventRollback
)

// checkpoint is an immutable record of a chain set, the vertex positions it
// was reached with and the quality measured there.
type checkpoint struct {
	paths     []*graph.Path
	positions map[*graph.Vertex]r2.Vec
	quality   int
}

// Auto searches for a good chain set by trial and error.
//
// Every Delay ticks it measures the drawing quality. If Run is set, it
// then judges the action it tried on the previous active tick: if quality
// dropped below the last checkpoint, the checkpoint is restored and the
// action's failure count goes up; otherwise the new state becomes a
// checkpoint. It then tries the first action that has failed fewer than
// three times in a row: add a two-edge chain, extend a chain by one edge,
// or connect two chains sharing an endpoint. When no action applies, the
// search is done and Run is cleared.
//
// If quality drops below the top checkpoint on a tick where no action was
// tried, the drop is a late effect of an earlier change that passed while
// the layout was still moving. The checkpoint is restored and also popped,
// stepping back one level.
type Auto struct {
	Base

	delay   *param.Real
	run     *param.Bool
	degrees *param.Real
	boxDim  *param.Real

	counter    int
	stack      []checkpoint
	quality    int
	overlaps   int
	complexity int
	tried      int
	fail       [numActions]int
	done       bool
	event      Event
}

// NewAuto returns a local search manager. Run is off; the search starts
// once it is switched on.
func NewAuto(rng *rand.Rand) *Auto {
	a := &Auto{
		Base:    newBase(rng),
		delay:   param.NewLog("Delay", "Delay", 500, 1, 1e5),
		run:     param.NewBool("Run", "Run", false),
		degrees: param.NewLinear("Degrees", "Direction within which edges are considered parallel", 2, 1, 20),
		boxDim:  param.NewLinear("Box-Dim", "Dimension of bounding box around edge", 0.1, 0.02, 0.5),
	}
	a.Reset()
	return a
}

func (a *Auto) Name() string { return AutoName }

func (a *Auto) Params() param.Set { return param.Set{a.run, a.delay, a.degrees, a.boxDim} }

func (a *Auto) Commands() []string { return []string{CmdReset} }

func (a *Auto) Run(name string) error {
	if name != CmdReset {
		return unknownCommand(a, name)
	}
	a.Reset()
	return nil
}

// Reset clears the undo stack, the chains and the failure counts and
// switches the search off. The first search tick afterwards checkpoints
// the state it finds.
func (a *Auto) Reset() {
	a.counter = -warmupTicks
	a.stack = nil
	a.ClearPaths()
	a.fail = [numActions]int{}
	a.done = false
	a.tried = actionAdd
	a.event = EventNone
	a.run.Set(false)
}

// SetRunning switches the search on or off.
func (a *Auto) SetRunning(on bool) { a.run.Set(on) }

// Quality returns the quality measured on the last active tick. Higher is
// better; zero means no overlaps and no bundles.
func (a *Auto) Quality() int { return a.quality }

// Done reports whether no action is left to try.
func (a *Auto) Done() bool { return a.done }

// StackDepth returns the number of checkpoints.
func (a *Auto) StackDepth() int { return len(a.stack) }

// Failures returns the consecutive failure count of each action.
func (a *Auto) Failures() [3]int { return a.fail }

// LastEvent reports what the most recent tick did to the undo stack.
func (a *Auto) LastEvent() Event { return a.event }

// Status summarizes the search state in one line.
func (a *Auto) Status() string {
	s := fmt.Sprintf("[%d] quality=%d overlap=%d #=%d", len(a.stack), a.quality, a.overlaps, a.complexity)
	if a.done {
		s += " done"
	}
	return s
}

func (a *Auto) Manage() error { return a.manage(a.tick) }

func (a *Auto) tick() error {
	a.event = EventNone
	c := a.counter
	a.counter++
	if c < 0 || a.counter%max(1, int(a.delay.Get())) != 0 {
		return nil
	}
	a.measure()
	if a.run.Get() {
		return a.search()
	}
	return nil
}

func (a *Auto) measure() {
	a.overlaps = a.g.Overlaps(a.degrees.Get(), a.boxDim.Get())
	a.complexity = a.g.VisualComplexity(graph.DefaultComplexityDegrees)
	a.quality = -overlapPenalty*a.overlaps - a.complexity
}

func (a *Auto) search() error {
	if a.done {
		a.run.Set(false)
		return nil
	}

	if n := len(a.stack); n > 0 {
		top := a.stack[n-1]
		if a.quality < top.quality {
			a.restore(top)
			if a.tried == noAction {
				a.stack = a.stack[:n-1]
			} else {
				a.fail[a.tried]++
			}
			a.tried = noAction
			a.event = EventRollback
			return nil
		}
		if a.tried != noAction {
			if a.fail[a.tried] > 0 {
				a.fail[a.tried]--
			}
			for i := range a.tried {
				a.fail[i] = 0
			}
		}
	}

	if a.tried != noAction {
		a.tried = noAction
		a.stack = append(a.stack, a.checkpoint())
		a.event = EventCheckpoint
	}

	tries := [numActions]func() (bool, error){a.tryAdd, a.tryExtend, a.tryConnect}
	for action, try := range tries {
		if a.fail[action] >= maxFail {
			continue
		}
		ok, err := try()
		if err != nil {
			return err
		}
		if ok {
			a.tried = action
			return nil
		}
	}
	a.done = true
	return nil
}

func (a *Auto) checkpoint() checkpoint {
	cp := checkpoint{
		paths:     graph.ClonePaths(a.paths),
		positions: make(map[*graph.Vertex]r2.Vec, a.g.NumVertices()),
		quality:   a.quality,
	}
	for _, v := range a.g.Vertices() {
		cp.positions[v] = v.Pos
	}
	return cp
}

func (a *Auto) restore(cp checkpoint) {
	a.ReplaceAll(cp.paths)
	for _, v := range a.g.Vertices() {
		if pos, ok := cp.positions[v]; ok {
			v.Pos = pos
		}
	}
}

// =============================================================================
// Actions
// =============================================================================

// tryAdd adds a two-edge chain through the first vertex, in random order,
// that admits a straight one.
func (a *Auto) tryAdd() (bool, error) {
	vs := slices.Clone(a.g.Vertices())
	for len(vs) > 0 {
		i := a.rng.IntN(len(vs))
		v := vs[i]
		vs[i] = vs[len(vs)-1]
		vs = vs[:len(vs)-1]
		if p := a.BuildChain(v, 2, -1); p != nil {
			a.AddPath(p)
			return true, nil
		}
	}
	return false, nil
}

// tryExtend lengthens a random chain by one unmarked edge at a random end.
func (a *Auto) tryExtend() (bool, error) {
	candidates := slices.Clone(a.paths)
	for len(candidates) > 0 {
		i := a.rng.IntN(len(candidates))
		p := candidates[i]
		candidates = slices.Delete(candidates, i, i+1)

		ends := []*graph.Vertex{p.Start(), p.End()}
		if a.rng.Float64() >= 0.5 {
			ends[0], ends[1] = ends[1], ends[0]
		}
		for _, v := range ends {
			edges := slices.Clone(a.g.IncidentEdges(v))
			for len(edges) > 0 {
				j := a.rng.IntN(len(edges))
				e := edges[j]
				edges = slices.Delete(edges, j, j+1)
				if e.Mark != graph.Unmarked {
					continue
				}
				u := e.Other(v)
				if p.Contains(u) {
					continue
				}

				var q *graph.Path
				if v == p.Start() {
					q = graph.NewPath(u)
					if err := q.Add(e, v); err != nil {
						return false, err
					}
					if err := q.Append(p); err != nil {
						return false, err
					}
					q.InitialDistance = p.InitialDistance
				} else {
					q = p.Clone()
					if err := q.Add(e, u); err != nil {
						return false, err
					}
				}
				a.RemovePath(p)
				a.AddPath(q)
				return true, nil
			}
		}
	}
	return false, nil
}

// tryConnect joins two chains that share an endpoint into one.
func (a *Auto) tryConnect() (bool, error) {
	first := slices.Clone(a.paths)
	for len(first) > 0 {
		i := a.rng.IntN(len(first))
		p1 := first[i]
		first = slices.Delete(first, i, i+1)

		second := slices.Clone(first)
		for len(second) > 0 {
			j := a.rng.IntN(len(second))
			p2 := second[j]
			second = slices.Delete(second, j, j+1)

			q := join(p1, p2)
			if q == nil {
				continue
			}
			a.RemovePath(p1)
			a.RemovePath(p2)
			a.AddPath(q)
			return true, nil
		}
	}
	return false, nil
}

// join returns a new chain made of p1 and p2 joined at a shared endpoint,
// or nil if they share none or the union would not be a simple chain.
func join(p1, p2 *graph.Path) *graph.Path {
	var head, tail *graph.Path
	switch {
	case p1.Start() == p2.End():
		head, tail = p2.Clone(), p1
	case p1.End() == p2.Start():
		head, tail = p1.Clone(), p2
	case p1.Start() == p2.Start():
		head, tail = p1.Clone(), p2
		head.Reverse()
	case p1.End() == p2.End():
		head, tail = p1.Clone(), p2.Clone()
		tail.Reverse()
	default:
		return nil
	}
	if err := head.Append(tail); err != nil {
		return nil
	}
	return head
}
