package generate

import (
	"math/rand/v2"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// JSON loads a graph saved with [graph.WriteGraph], keeping its positions.
type JSON struct {
	file *param.Text
}

// NewJSON returns a loader without a file.
func NewJSON() *JSON {
	return &JSON{file: param.NewText("File", "Graph JSON file", "")}
}

func (j *JSON) Name() string { return JSONName }

func (j *JSON) Params() param.Set { return param.Set{j.file} }

func (j *JSON) Generate(rng *rand.Rand) (*graph.Graph, error) {
	f, err := open(j, j.file.Get())
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := graph.ReadGraph(f, graph.WithRand(rng))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: %s", j.Name(), j.file.Get())
	}
	return g, nil
}

// SetFile points a file-based loader at path. It reports whether gen reads
// a single file or archive.
func SetFile(gen Generator, path string) bool {
	for _, name := range []string{"File", "Archive"} {
		if p, ok := gen.Params().Lookup(name); ok {
			return p.Parse(path) == nil
		}
	}
	return false
}

// KeepsPositions reports true: the saved layout is part of the document.
func (j *JSON) KeepsPositions() bool { return true }
