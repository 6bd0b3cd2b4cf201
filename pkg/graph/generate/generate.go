// Package generate builds the graphs the layout engine works on.
//
// Every [Generator] exposes its settings as a [param.Set] and produces a
// fresh [graph.Graph] on each call to Generate. Synthetic generators
// (QuadMesh, Tree, Gilbert) derive everything from their parameters and
// the random source; loaders (Matrix, Rome, GraphML, JSON) read a file
// named by a text parameter and scatter the vertices they create over the
// unit square.
//
// # Loaders
//
//   - Matrix: a MatrixMarket coordinate file
//   - Rome: an entry of a zip archive in the Rome graph library format
//   - GraphML: an entry of a zip archive of GraphML documents
//   - JSON: the node-link document written by [graph.WriteGraph]
//
// Loaders merge duplicate edges and skip self-loops.
package generate

import (
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// Generator names as listed in the catalog.
const (
	QuadMeshName = "QuadMesh"
	TreeName     = "Tree"
	GilbertName  = "Gilbert (Random)"
	MatrixName   = "Matrix"
	RomeName     = "Rome Graph Library"
	GraphMLName  = "GraphML"
	JSONName     = "JSON"
)

// ErrNoSource is returned by loaders whose file parameter is empty.
var ErrNoSource = errors.New(errors.ErrCodeInvalidArgument, "no input file set")

// Generator builds graphs from its parameters.
type Generator interface {
	param.Provider

	// Generate returns a new graph using rng for positions and any random
	// structure.
	Generate(rng *rand.Rand) (*graph.Graph, error)
}

// All returns one instance of every generator, QuadMesh first.
func All() []Generator {
	return []Generator{
		NewQuadMesh(),
		NewTree(),
		NewGilbert(),
		NewMatrix(),
		NewRome(),
		NewGraphML(),
		NewJSON(),
	}
}

func randomPos(rng *rand.Rand) r2.Vec {
	return r2.Vec{X: rng.Float64(), Y: rng.Float64()}
}

// connect adds an edge between the vertices with ids a and b, creating
// them at random positions as needed. Self-loops are ignored.
func connect(g *graph.Graph, rng *rand.Rand, a, b int) error {
	if a == b {
		return nil
	}
	u := g.FindOrAddVertex(a, randomPos(rng))
	v := g.FindOrAddVertex(b, randomPos(rng))
	_, err := g.AddEdgeIfAbsent(u, v)
	return err
}

// open opens the file named by a loader parameter.
func open(gen Generator, path string) (*os.File, error) {
	if path == "" {
		return nil, errors.Wrap(errors.ErrCodeInvalidArgument, ErrNoSource, "%s", gen.Name())
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s: %s", gen.Name(), path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: open %s", gen.Name(), path)
	}
	return f, nil
}

// Positioned is implemented by generators whose graphs come with a layout
// of their own, which callers should keep instead of scattering.
type Positioned interface {
	KeepsPositions() bool
}
