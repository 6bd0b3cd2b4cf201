package generate

import (
	"archive/zip"
	"bufio"
	"encoding/xml"
	"io"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/param"
)

// maxArchiveIndex bounds the Index parameter of archive loaders.
const maxArchiveIndex = 1 << 20

// Entries lists the graph files of a zip archive in name order.
// Directories and anything below a "bad/" directory are left out.
func Entries(archive string) ([]string, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open archive %s", archive)
	}
	defer zr.Close()

	files := graphFiles(&zr.Reader)
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names, nil
}

func graphFiles(zr *zip.Reader) []*zip.File {
	var files []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.Contains("/"+f.Name, "/bad/") {
			continue
		}
		files = append(files, f)
	}
	slices.SortFunc(files, func(a, b *zip.File) int { return strings.Compare(a.Name, b.Name) })
	return files
}

// archiveLoader holds the parameters shared by zip-backed loaders and
// hands the selected entry to parse.
type archiveLoader struct {
	archive *param.Text
	index   *param.Int
}

func newArchiveLoader(desc string) archiveLoader {
	return archiveLoader{
		archive: param.NewText("Archive", desc, ""),
		index:   param.NewInt("Index", "Entry of the archive, in name order", 0, 0, maxArchiveIndex),
	}
}

func (l archiveLoader) params() param.Set { return param.Set{l.archive, l.index} }

func (l archiveLoader) load(gen Generator, rng *rand.Rand, parse func(io.Reader, *rand.Rand) (*graph.Graph, error)) (*graph.Graph, error) {
	f, err := open(gen, l.archive.Get())
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stat %s", f.Name())
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s: not a zip archive", gen.Name())
	}

	files := graphFiles(zr)
	i := l.index.Get()
	if i >= len(files) {
		return nil, errors.New(errors.ErrCodeNotFound, "%s: entry %d of %d", gen.Name(), i, len(files))
	}
	entry := files[i]
	if err := errors.ValidateArchiveEntry(entry.Name); err != nil {
		return nil, err
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open entry %s", entry.Name)
	}
	defer rc.Close()

	g, err := parse(rc, rng)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInvalidFormat
		}
		return nil, errors.Wrap(code, err, "%s: %s", gen.Name(), entry.Name)
	}
	return g, nil
}

// =============================================================================
// Rome Graph Library
// =============================================================================

// Rome loads one graph of the Rome graph library. Each entry lists its
// nodes, a line holding a single "#", then one edge per line as
// "id 0 source target".
type Rome struct {
	archiveLoader
}

// NewRome returns a loader without an archive.
func NewRome() *Rome {
	return &Rome{newArchiveLoader("Rome graph library archive (rome-lib.zip)")}
}

func (r *Rome) Name() string { return RomeName }

func (r *Rome) Params() param.Set { return r.params() }

func (r *Rome) Generate(rng *rand.Rand) (*graph.Graph, error) {
	return r.load(r, rng, ParseRome)
}

// ParseRome reads one graph in Rome library format.
func ParseRome(rd io.Reader, rng *rand.Rand) (*graph.Graph, error) {
	g := graph.New(graph.WithRand(rng))
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "#" {
			break
		}
	}
	for n := 1; sc.Scan(); n++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		a, b, err := pair(fields, 2)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edge line %d", n)
		}
		if err := connect(g, rng, a, b); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read rome graph")
	}
	return g, nil
}

// =============================================================================
// GraphML
// =============================================================================

// GraphML loads one GraphML document from a zip archive. Only edge
// elements are read; their source and target attributes must be integer
// node ids.
type GraphML struct {
	archiveLoader
}

// NewGraphML returns a loader without an archive.
func NewGraphML() *GraphML {
	return &GraphML{newArchiveLoader("GraphML archive (graphml.zip)")}
}

func (m *GraphML) Name() string { return GraphMLName }

func (m *GraphML) Params() param.Set { return m.params() }

func (m *GraphML) Generate(rng *rand.Rand) (*graph.Graph, error) {
	return m.load(m, rng, ParseGraphML)
}

// ParseGraphML reads the edges of a GraphML document, wherever they are
// nested.
func ParseGraphML(rd io.Reader, rng *rand.Rand) (*graph.Graph, error) {
	g := graph.New(graph.WithRand(rng))
	dec := xml.NewDecoder(rd)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return g, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "graphml")
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Local != "edge" {
			continue
		}
		var src, dst string
		for _, attr := range el.Attr {
			switch attr.Name.Local {
			case "source":
				src = attr.Value
			case "target":
				dst = attr.Value
			}
		}
		a, b, err := pair([]string{src, dst}, 0)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "graphml edge %q-%q", src, dst)
		}
		if err := connect(g, rng, a, b); err != nil {
			return nil, err
		}
	}
}
