package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/model"
)

// SVG draws snap as an SVG document.
func SVG(w io.Writer, snap model.Snapshot, opts Options) error {
	opts = opts.withDefaults()
	vp := newViewport(snap, opts)
	pos := snap.Positions()
	r := vertexRadius(len(snap.Vertices))

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Title(fmt.Sprintf("%s, iteration %d", snap.Embedder, snap.Iteration))
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:"+cssColor(background))

	canvas.Gid("edges")
	for _, e := range snap.Edges {
		x1, y1 := vp.point(pos[e.From])
		x2, y2 := vp.point(pos[e.To])
		canvas.Line(px(x1), px(y1), px(x2), px(y2),
			fmt.Sprintf("stroke:%s;stroke-width:%.1f;stroke-linecap:round", cssColor(markColor(e.Mark)), edgeWidth(e.Mark)))
	}
	canvas.Gend()

	if snap.Selecting != nil {
		xs, ys := polyline(vp, pos, snap.Selecting.Vertices)
		canvas.Polyline(xs, ys, "fill:none;stroke-dasharray:6,4;stroke-width:2;stroke:"+cssColor(markColor(graph.MarkSelecting)))
	}

	if opts.Forces {
		canvas.Gid("forces")
		for _, v := range snap.Vertices {
			x1, y1 := vp.point(v.Pos)
			x2, y2 := vp.forceEnd(v.Pos, v.Force)
			canvas.Line(px(x1), px(y1), px(x2), px(y2), "stroke-width:1;stroke:"+cssColor(forceColor))
		}
		canvas.Gend()
	}

	canvas.Gid("vertices")
	for _, v := range snap.Vertices {
		x, y := vp.point(v.Pos)
		if v.Highlight {
			canvas.Circle(px(x), px(y), px(2.5*r), "fill:none;stroke-width:2;stroke:"+cssColor(halo))
		}
		canvas.Circle(px(x), px(y), px(r), "stroke:#fff;stroke-width:1;fill:"+cssColor(markColor(v.Mark)))
		if opts.Labels {
			canvas.Text(px(x+r+2), px(y-r-2), strconv.Itoa(v.ID), "font-size:10px;font-family:sans-serif;fill:#333")
		}
	}
	canvas.Gend()

	canvas.End()
	return nil
}

func polyline(vp viewport, pos map[int]r2.Vec, ids []int) ([]int, []int) {
	xs := make([]int, 0, len(ids))
	ys := make([]int, 0, len(ids))
	for _, id := range ids {
		x, y := vp.point(pos[id])
		xs = append(xs, px(x))
		ys = append(ys, px(y))
	}
	return xs, ys
}

func px(f float64) int { return int(math.Round(f)) }

func cssColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
