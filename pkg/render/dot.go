package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/model"
)

// pointsPerInch converts canvas pixels to the inches Graphviz positions use.
const pointsPerInch = 72.0

// DOT converts snap to Graphviz DOT. Every vertex is pinned at its layout
// position ("pos" with "!"), so the neato engine draws the layout as is
// instead of computing its own. The result can be rendered with
// [GraphvizSVG].
func DOT(snap model.Snapshot, opts Options) string {
	opts = opts.withDefaults()
	vp := newViewport(snap, opts)
	height := float64(opts.Height)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.12, label=\"\", penwidth=0];\n")
	buf.WriteString("\n")

	for _, v := range snap.Vertices {
		x, y := vp.point(v.Pos)
		// Graphviz has y pointing up.
		attrs := fmt.Sprintf("pos=\"%.2f,%.2f!\", fillcolor=%q", x/pointsPerInch, (height-y)/pointsPerInch, cssColor(markColor(v.Mark)))
		if v.Highlight {
			attrs += fmt.Sprintf(", penwidth=2, color=%q", cssColor(halo))
		}
		if opts.Labels {
			attrs += fmt.Sprintf(", xlabel=%q", strconv.Itoa(v.ID))
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", v.ID, attrs)
	}

	buf.WriteString("\n")
	for _, e := range snap.Edges {
		fmt.Fprintf(&buf, "  %d -- %d [color=%q, penwidth=%.1f];\n", e.From, e.To, cssColor(markColor(e.Mark)), edgeWidth(e.Mark))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// GraphvizSVG renders a DOT graph to SVG with the neato engine.
func GraphvizSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz svg tag, which sizes the image in
// points, with one sized in pixels.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
