// Package pathmgr decides which chains of edges are held rigid.
//
// A [Manager] owns a list of [graph.Path] values over the current graph and
// updates it once per simulation step in [Manager.Manage]. The layout model
// applies its rigid-edge model to whatever [Manager.Paths] returns; that
// list is a shadow copy published at the end of each Manage call, so
// readers never observe a half-updated list.
//
// # Strategies
//
//   - [Disabled]: never builds a chain
//   - [Manual]: builds, replaces and removes chains on command
//   - [Random]: keeps a population of chains alive with a time to live,
//     extending the life of the straightest ones
//   - [Auto]: local search over chain sets with an undo stack, keeping a
//     change only if the drawing quality does not drop
//
// All strategies share [Base], which implements the path collection, the
// focus region of badly embedded vertices and chain construction.
package pathmgr

import (
	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// Manager names as listed in the catalog.
const (
	DisabledName = "Disabled"
	ManualName   = "Manual"
	RandomName   = "Random"
	AutoName     = "Auto"
)

// Manager maintains the set of rigid chains.
type Manager interface {
	param.Provider

	// SetGraph binds the manager to g and drops all chains.
	SetGraph(g *graph.Graph)
	// Reset returns the strategy to its initial state.
	Reset()
	// Manage runs one management tick.
	Manage() error
	// PathsChanged reports whether the chain list changed since the last
	// call, and clears the flag.
	PathsChanged() bool
	// Paths returns the chain list published by the last Manage call.
	Paths() []*graph.Path
	// Focus returns the highlighted vertices of the current focus region.
	Focus() []*graph.Vertex
}

// Commander is implemented by managers that accept named commands.
type Commander interface {
	Commands() []string
	Run(name string) error
}

// ErrUnknownCommand is returned by [Commander.Run] for a name the manager
// does not know.
var ErrUnknownCommand = errors.New(errors.ErrCodeNotFound, "unknown path manager command")

func unknownCommand(m Manager, name string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrUnknownCommand, "%s: unknown command %q", m.Name(), name)
}
