package pathmgr

import (
	"math/rand/v2"

	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// Commands understood by [Manual].
const (
	CmdStore  = "store"
	CmdChange = "change"
	CmdRemove = "remove"
)

// manualAttempts bounds the random start vertices tried per command.
const manualAttempts = 50

// Manual builds chains only when told to. Its tick does nothing besides
// the shared bookkeeping.
type Manual struct {
	Base

	pathLen   *param.Int
	direction *param.Real
}

// NewManual returns a manual manager drawing start vertices from rng.
func NewManual(rng *rand.Rand) *Manual {
	return &Manual{
		Base:      newBase(rng),
		pathLen:   param.NewInt("PathLen", "Maximum path length", 5, 2, 20),
		direction: param.NewLinear("InitialDirection", "Initial Direction", -1, -1, 1),
	}
}

func (m *Manual) Name() string { return ManualName }

func (m *Manual) Params() param.Set { return param.Set{m.pathLen, m.direction} }

func (m *Manual) Manage() error { return m.manage(func() error { return nil }) }

func (m *Manual) Commands() []string { return []string{CmdStore, CmdChange, CmdRemove} }

// Run executes a command:
//   - store appends a new chain
//   - change replaces the last chain with a new one
//   - remove drops the last chain
//
// A chain is built from the first of up to 50 random vertices that is not
// already locked and admits one. If none does, store and change leave the
// list as it is.
func (m *Manual) Run(name string) error {
	switch name {
	case CmdStore:
		m.alternate(true)
	case CmdChange:
		m.alternate(false)
	case CmdRemove:
		m.RemoveLastPath()
	default:
		return unknownCommand(m, name)
	}
	return nil
}

func (m *Manual) alternate(keepLast bool) {
	if m.g == nil || m.g.NumVertices() == 0 {
		return
	}
	vs := m.g.Vertices()
	for range manualAttempts {
		v := vs[m.rng.IntN(len(vs))]
		if v.Mark == graph.MarkLocked {
			continue
		}
		if p := m.BuildChain(v, m.pathLen.Get(), m.direction.Get()); p != nil {
			if !keepLast {
				m.RemoveLastPath()
			}
			m.AddPath(p)
			return
		}
	}
}
