package render

import (
	"image/png"
	"io"
	"strconv"

	"git.sr.ht/~sbinet/gg"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/model"
)

// PNG draws snap as a PNG image. The drawing matches [SVG].
func PNG(w io.Writer, snap model.Snapshot, opts Options) error {
	opts = opts.withDefaults()
	vp := newViewport(snap, opts)
	pos := snap.Positions()
	r := vertexRadius(len(snap.Vertices))

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(background)
	dc.Clear()
	dc.SetLineCapRound()

	for _, e := range snap.Edges {
		x1, y1 := vp.point(pos[e.From])
		x2, y2 := vp.point(pos[e.To])
		dc.SetColor(markColor(e.Mark))
		dc.SetLineWidth(edgeWidth(e.Mark))
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}

	if snap.Selecting != nil {
		dc.SetColor(markColor(graph.MarkSelecting))
		dc.SetLineWidth(2)
		dc.SetDash(6, 4)
		for i, id := range snap.Selecting.Vertices {
			x, y := vp.point(pos[id])
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
		dc.SetDash()
	}

	if opts.Forces {
		dc.SetColor(forceColor)
		dc.SetLineWidth(1)
		for _, v := range snap.Vertices {
			x1, y1 := vp.point(v.Pos)
			x2, y2 := vp.forceEnd(v.Pos, v.Force)
			dc.DrawLine(x1, y1, x2, y2)
			dc.Stroke()
		}
	}

	for _, v := range snap.Vertices {
		x, y := vp.point(v.Pos)
		if v.Highlight {
			dc.SetColor(halo)
			dc.SetLineWidth(2)
			dc.DrawCircle(x, y, 2.5*r)
			dc.Stroke()
		}
		dc.SetColor(markColor(v.Mark))
		dc.DrawCircle(x, y, r)
		dc.Fill()
		if opts.Labels {
			dc.SetRGB(0.2, 0.2, 0.2)
			dc.DrawString(strconv.Itoa(v.ID), x+r+2, y-r-2)
		}
	}

	if err := png.Encode(w, dc.Image()); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return nil
}
