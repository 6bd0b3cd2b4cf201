// Package pkg provides the libraries of springlayout, an interactive
// force-directed graph layout engine.
//
// # Overview
//
// A layout model holds one graph and four exchangeable strategies: a graph
// generator, an embedder that computes spring forces, a rigid-edge model
// that keeps chosen paths straight or bent, and a path manager that decides
// which paths are rigid. Each step the model sums the forces, lets the
// rigid-edge model correct them and moves the vertices.
//
//	generator → graph
//	               ↓
//	embedder → forces → rigid-edge model → integration → snapshot
//	               ↑                                         ↓
//	          path manager ←──────── metrics ────────── drawing
//
// # Quick Start
//
// Untangle a cylinder with the Fruchterman & Reingold embedder while the
// Auto path manager searches for straight paths:
//
//	m := model.New(model.Options{Seed: 7})
//	_ = m.UseGenerator(generate.QuadMeshName)
//	_ = m.SetParam(model.KindGraph, "Closed(X)", "true")
//	_ = m.UseEmbedder(embed.FruchtermanReingoldName)
//	_ = m.UseRigid(rigid.StraightName)
//	_ = m.UseManager(pathmgr.AutoName)
//	if err := m.Generate(); err != nil {
//	    return err
//	}
//	m.SetAutoRunning(true)
//	steps, err := m.Run(ctx, model.RunOptions{MaxSteps: 2000, UntilFinished: true})
//
//	out, err := render.Render(m.Snapshot(), []render.Format{render.FormatSVG}, render.Options{})
//
// # Main Packages
//
// ## Engine
//
// [geom] - Vector helpers, segment intersection and bounding boxes.
//
// [graph] - Vertices, edges, paths and the drawing metrics (overlaps,
// complexity). [graph/generate] builds meshes, trees, random graphs and
// loads graphs from files.
//
// [embed] - Spring embedders: Eades and Fruchterman & Reingold with a
// spatial grid and simulated annealing.
//
// [rigid] - Rigid-edge models that act on the vertices of active paths:
// None, Straight, Convex and Concave.
//
// [pathmgr] - Path managers: Disabled, Manual, Random and the Auto local
// search with its undo stack.
//
// [model] - The step orchestrator, strategy catalog, user selection and
// snapshots. Safe for one stepping goroutine and many readers.
//
// [param] - Typed, bounded tuning parameters shared by all strategies.
//
// ## Batch Runs
//
// [preset] - Saved configurations in the line-based text format, TOML or
// YAML.
//
// [pipeline] - Configures, runs and renders a model, used by the CLI.
//
// [cache] - Content-addressed cache of snapshots and drawings.
//
// [render] - SVG, PNG, DOT and JSON drawings of a snapshot.
//
// ## Support
//
// [errors] - Error codes shared by every package.
//
// [observability] - Hooks for step, path and search events.
//
// [buildinfo] - Version information set at build time.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/geom
// [graph]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/graph
// [graph/generate]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/graph/generate
// [embed]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/embed
// [rigid]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/rigid
// [pathmgr]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/pathmgr
// [model]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/model
// [param]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/param
// [preset]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/preset
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/render
// [errors]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/springlayout/pkg/buildinfo
package pkg
