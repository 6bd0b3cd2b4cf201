// Package render draws snapshots of a layout model.
//
// # Overview
//
// Every renderer takes a [model.Snapshot], so drawing never holds the model
// lock. The formats are:
//
//   - SVG: vector drawing via svgo, see [SVG]
//   - PNG: raster drawing via gg, see [PNG]
//   - DOT: Graphviz source with pinned positions, see [DOT] and [GraphvizSVG]
//   - JSON: the snapshot itself, see [JSON]
//
// [Render] produces several formats at once:
//
//	snap := m.Snapshot()
//	out, err := render.Render(snap, []render.Format{render.FormatSVG, render.FormatPNG}, render.Options{})
//	os.WriteFile("layout.svg", out[render.FormatSVG], 0o644)
//
// # Drawing
//
// The layout is scaled uniformly to fit [Options.Width] and [Options.Height]
// inside [Options.Margin]. Edges and vertices are coloured by their mark:
// grey when free, blue on a rigid path, orange while a selection is being
// drawn and green once it is stored. Highlighted vertices get a red halo.
// With [Options.Forces] the observed embedder force of each vertex is drawn
// as a short line.
//
// [model.Snapshot]: github.com/matzehuels/springlayout/pkg/model.Snapshot
package render
