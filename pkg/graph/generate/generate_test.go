package generate

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
)

func TestQuadMesh(t *testing.T) {
	tests := []struct {
		name             string
		w, h             int
		closedX, closedY bool
		wantEdges        int
	}{
		{"open 4x4", 4, 4, false, false, 24},
		{"cylinder", 4, 4, true, false, 28},
		{"torus", 4, 4, true, true, 32},
		{"narrow cylinder merges", 2, 3, true, false, 7},
		{"rectangle", 5, 2, false, false, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQuadMesh()
			q.w.Set(tt.w)
			q.h.Set(tt.h)
			q.closedX.Set(tt.closedX)
			q.closedY.Set(tt.closedY)

			g, err := q.Generate(graph.NewRand(1))
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got := g.NumVertices(); got != tt.w*tt.h {
				t.Errorf("NumVertices = %d, want %d", got, tt.w*tt.h)
			}
			if got := g.NumEdges(); got != tt.wantEdges {
				t.Errorf("NumEdges = %d, want %d", got, tt.wantEdges)
			}
		})
	}
}

func TestQuadMeshTorusIsRegular(t *testing.T) {
	q := NewQuadMesh()
	q.w.Set(5)
	q.h.Set(4)
	q.closedX.Set(true)
	q.closedY.Set(true)
	g, err := q.Generate(graph.NewRand(2))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, v := range g.Vertices() {
		if d := g.Degree(v); d != 4 {
			t.Errorf("Degree(%v) = %d, want 4", v, d)
		}
		if v.Pos.X < 0 || v.Pos.X >= 1 || v.Pos.Y < 0 || v.Pos.Y >= 1 {
			t.Errorf("%v at %v, want inside the unit square", v, v.Pos)
		}
	}
}

func TestTree(t *testing.T) {
	tests := []struct {
		depth, childs int
		want          int
	}{
		{1, 1, 2},
		{3, 4, 85},
		{2, 6, 43},
	}
	for _, tt := range tests {
		tr := NewTree()
		tr.depth.Set(tt.depth)
		tr.numChilds.Set(tt.childs)
		g, err := tr.Generate(graph.NewRand(3))
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if g.NumVertices() != tt.want || g.NumEdges() != tt.want-1 {
			t.Errorf("depth=%d childs=%d: |V|=%d |E|=%d, want %d and %d",
				tt.depth, tt.childs, g.NumVertices(), g.NumEdges(), tt.want, tt.want-1)
		}
	}
}

func TestGilbert(t *testing.T) {
	r := NewGilbert()
	g, err := r.Generate(graph.NewRand(4))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if g.NumEdges() != 45 {
		t.Errorf("complete graph on 10 vertices: NumEdges = %d, want 45", g.NumEdges())
	}

	r.p.Set(0)
	g, err = r.Generate(graph.NewRand(4))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if g.NumVertices() != 10 || g.NumEdges() != 0 {
		t.Errorf("p=0: |V|=%d |E|=%d, want 10 and 0", g.NumVertices(), g.NumEdges())
	}
}

func TestGeneratorsAreDeterministic(t *testing.T) {
	for _, gen := range []Generator{NewQuadMesh(), NewTree(), NewGilbert()} {
		a, err := gen.Generate(graph.NewRand(9))
		require.NoError(t, err)
		b, err := gen.Generate(graph.NewRand(9))
		require.NoError(t, err)
		require.Equal(t, graph.ToDocument(a), graph.ToDocument(b), gen.Name())
	}
}

func TestParseMatrix(t *testing.T) {
	src := strings.Join([]string{
		"%%MatrixMarket matrix coordinate pattern symmetric",
		"4 4 5",
		"1 1",
		"2 1",
		"3 2 0.5",
		"",
		"4 3",
		"1 2",
	}, "\n")
	g, err := ParseMatrix(strings.NewReader(src), graph.NewRand(5))
	require.NoError(t, err)
	require.Equal(t, 4, g.NumVertices())
	require.Equal(t, 3, g.NumEdges(), "self-loop skipped and duplicate merged")

	_, err = ParseMatrix(strings.NewReader("h\nh\n1 x\n"), graph.NewRand(5))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestParseRome(t *testing.T) {
	src := "1 0\n2 0\n3 0\n#\n1 0 1 2\n2 0 2 3\n3 0 3 3\n"
	g, err := ParseRome(strings.NewReader(src), graph.NewRand(6))
	require.NoError(t, err)
	require.Equal(t, 3, g.NumVertices())
	require.Equal(t, 2, g.NumEdges())
}

func TestParseGraphML(t *testing.T) {
	src := `<?xml version="1.0"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
  <graph edgedefault="undirected">
    <node id="0"/><node id="1"/><node id="2"/>
    <edge source="0" target="1"/>
    <edge source="1" target="2"/>
    <edge source="2" target="2"/>
  </graph>
</graphml>`
	g, err := ParseGraphML(strings.NewReader(src), graph.NewRand(7))
	require.NoError(t, err)
	require.Equal(t, 3, g.NumVertices())
	require.Equal(t, 2, g.NumEdges())

	_, err = ParseGraphML(strings.NewReader(`<graphml><edge source="a" target="1"/></graphml>`), graph.NewRand(7))
	require.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graphs.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestRomeArchive(t *testing.T) {
	path := writeZip(t, map[string]string{
		"rome/grafo2.10": "#\n1 0 1 2\n2 0 2 3\n3 0 3 1\n",
		"rome/grafo1.10": "#\n1 0 1 2\n",
		"rome/bad/x.10":  "garbage",
	})

	names, err := Entries(path)
	require.NoError(t, err)
	require.Equal(t, []string{"rome/grafo1.10", "rome/grafo2.10"}, names)

	r := NewRome()
	require.True(t, SetFile(r, path))
	require.NoError(t, r.index.Parse("1"))
	g, err := r.Generate(graph.NewRand(8))
	require.NoError(t, err)
	require.Equal(t, 3, g.NumEdges())

	require.NoError(t, r.index.Parse("2"))
	_, err = r.Generate(graph.NewRand(8))
	require.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestGraphMLArchive(t *testing.T) {
	path := writeZip(t, map[string]string{
		"g.graphml": `<graphml><graph><edge source="1" target="2"/></graph></graphml>`,
	})
	m := NewGraphML()
	require.True(t, SetFile(m, path))
	g, err := m.Generate(graph.NewRand(9))
	require.NoError(t, err)
	require.Equal(t, 1, g.NumEdges())
}

func TestJSONLoader(t *testing.T) {
	src, err := NewTree().Generate(graph.NewRand(10))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, graph.WriteGraphFile(src, path))

	j := NewJSON()
	require.True(t, SetFile(j, path))
	g, err := j.Generate(graph.NewRand(10))
	require.NoError(t, err)
	require.Equal(t, graph.ToDocument(src), graph.ToDocument(g))
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name string
		gen  Generator
		file string
		want errors.Code
	}{
		{"matrix without file", NewMatrix(), "", errors.ErrCodeInvalidArgument},
		{"missing matrix", NewMatrix(), "/nonexistent/m.mtx", errors.ErrCodeFileNotFound},
		{"missing json", NewJSON(), "/nonexistent/g.json", errors.ErrCodeFileNotFound},
		{"rome without archive", NewRome(), "", errors.ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.file != "" {
				SetFile(tt.gen, tt.file)
			}
			_, err := tt.gen.Generate(graph.NewRand(1))
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate() error = %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestSetFile(t *testing.T) {
	if SetFile(NewQuadMesh(), "x") {
		t.Error("SetFile(QuadMesh) = true, want false")
	}
	if !SetFile(NewMatrix(), "x.mtx") {
		t.Error("SetFile(Matrix) = false, want true")
	}
}

func TestAllNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, gen := range All() {
		require.False(t, seen[gen.Name()], gen.Name())
		seen[gen.Name()] = true
	}
	require.Len(t, seen, 7)
}
