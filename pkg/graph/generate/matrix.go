package generate

import (
	"bufio"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// matrixHeaderLines is the number of lines before the first entry: the
// banner and the size line.
const matrixHeaderLines = 2

// Matrix loads the adjacency structure of a sparse matrix in MatrixMarket
// coordinate format. Only the row and column of each entry are read; any
// value column is ignored.
type Matrix struct {
	file *param.Text
}

// NewMatrix returns a loader without a file.
func NewMatrix() *Matrix {
	return &Matrix{file: param.NewText("File", "MatrixMarket file", "")}
}

func (m *Matrix) Name() string { return MatrixName }

func (m *Matrix) Params() param.Set { return param.Set{m.file} }

func (m *Matrix) Generate(rng *rand.Rand) (*graph.Graph, error) {
	f, err := open(m, m.file.Get())
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMatrix(f, rng)
}

// ParseMatrix reads a MatrixMarket coordinate stream. Blank lines and
// comment lines after the header are skipped.
func ParseMatrix(r io.Reader, rng *rand.Rand) (*graph.Graph, error) {
	g := graph.New(graph.WithRand(rng))
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if n <= matrixHeaderLines || line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		a, b, err := pair(strings.Fields(line), 0)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "matrix line %d", n)
		}
		if err := connect(g, rng, a, b); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read matrix")
	}
	return g, nil
}

// pair parses fields[at] and fields[at+1] as vertex ids.
func pair(fields []string, at int) (int, int, error) {
	if len(fields) < at+2 {
		return 0, 0, errors.New(errors.ErrCodeInvalidFormat, "want at least %d fields, got %d", at+2, len(fields))
	}
	a, err := strconv.Atoi(fields[at])
	if err != nil {
		return 0, 0, err
	}
	b, err := strconv.Atoi(fields[at+1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
