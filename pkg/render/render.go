package render

import (
	"bytes"
	"image/color"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/model"
)

// Format is an output format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatDOT, FormatJSON}

// Default canvas size in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 800
	DefaultMargin = 20
)

// Options controls the drawing. Zero values take the defaults.
type Options struct {
	Width  int
	Height int
	Margin int
	// Forces draws the observed force of every vertex.
	Forces bool
	// Labels draws vertex ids.
	Labels bool
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.Margin < 0 || 2*o.Margin >= min(o.Width, o.Height) {
		o.Margin = 0
	}
	return o
}

// ParseFormats reads a comma-separated format list such as "svg,png".
// Duplicates are dropped.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !slices.Contains(Formats, Format(f)) {
			return nil, errors.New(errors.ErrCodeUnsupported, "unknown format %q", f)
		}
		if !slices.Contains(out, Format(f)) {
			out = append(out, Format(f))
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "no output format given")
	}
	return out, nil
}

// Render draws snap in every requested format.
func Render(snap model.Snapshot, formats []Format, opts Options) (map[Format][]byte, error) {
	out := make(map[Format][]byte, len(formats))
	for _, f := range formats {
		var buf bytes.Buffer
		var err error
		switch f {
		case FormatSVG:
			err = SVG(&buf, snap, opts)
		case FormatPNG:
			err = PNG(&buf, snap, opts)
		case FormatDOT:
			buf.WriteString(DOT(snap, opts))
		case FormatJSON:
			err = JSON(&buf, snap)
		default:
			err = errors.New(errors.ErrCodeUnsupported, "unknown format %q", f)
		}
		if err != nil {
			return nil, err
		}
		out[f] = buf.Bytes()
	}
	return out, nil
}

// =============================================================================
// Viewport
// =============================================================================

// viewport maps layout coordinates onto the canvas.
type viewport struct {
	scale  float64
	origin r2.Vec
	offset r2.Vec
}

func newViewport(snap model.Snapshot, opts Options) viewport {
	b := snap.Bounds
	w, h := b.Width(), b.Height()
	availW := float64(opts.Width - 2*opts.Margin)
	availH := float64(opts.Height - 2*opts.Margin)

	scale := 1.0
	switch {
	case w > 0 && h > 0:
		scale = math.Min(availW/w, availH/h)
	case w > 0:
		scale = availW / w
	case h > 0:
		scale = availH / h
	}
	// Center the drawing in both directions.
	offset := r2.Vec{
		X: float64(opts.Margin) + (availW-w*scale)/2,
		Y: float64(opts.Margin) + (availH-h*scale)/2,
	}
	return viewport{scale: scale, origin: b.Min, offset: offset}
}

func (v viewport) point(p r2.Vec) (float64, float64) {
	q := r2.Add(v.offset, r2.Scale(v.scale, r2.Sub(p, v.origin)))
	return q.X, q.Y
}

// forceEnd is where a force arrow drawn from p ends. Arrows are capped at
// forceCap pixels.
func (v viewport) forceEnd(p, f r2.Vec) (float64, float64) {
	const forceCap = 30
	x, y := v.point(p)
	l := r2.Norm(f) * v.scale
	if l == 0 {
		return x, y
	}
	s := math.Min(l, forceCap) / r2.Norm(f)
	return x + f.X*s, y + f.Y*s
}

// =============================================================================
// Palette
// =============================================================================

var (
	background = color.RGBA{0xff, 0xff, 0xff, 0xff}
	halo       = color.RGBA{0xe0, 0x3c, 0x31, 0xff}
	forceColor = color.RGBA{0x8e, 0x44, 0xad, 0xff}
)

func markColor(m graph.Mark) color.RGBA {
	switch m {
	case graph.MarkLocked:
		return color.RGBA{0x1f, 0x6f, 0xd0, 0xff}
	case graph.MarkSelecting:
		return color.RGBA{0xf3, 0x9c, 0x12, 0xff}
	case graph.MarkSelected:
		return color.RGBA{0x27, 0xae, 0x60, 0xff}
	default:
		return color.RGBA{0x7f, 0x8c, 0x8d, 0xff}
	}
}

// edgeWidth is the stroke width of an edge; edges on a path are thicker.
func edgeWidth(m graph.Mark) float64 {
	if m == graph.Unmarked {
		return 1.5
	}
	return 3.5
}

// vertexRadius shrinks with the vertex count so dense graphs stay legible.
func vertexRadius(n int) float64 {
	if n <= 0 {
		return 4
	}
	return math.Max(2, math.Min(6, 60/math.Sqrt(float64(n))))
}
