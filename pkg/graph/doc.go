// Package graph is the graph engine of the layout system.
//
// It owns the vertices and edges being laid out together with their
// per-step force accumulators, and provides the structural queries the
// force model and the path managers rely on.
//
// # Core Types
//
//   - [Graph]: undirected graph with insertion-ordered vertices and edges
//   - [Vertex]: position, velocity and force accumulators, mark and focus flag
//   - [Edge]: unordered vertex pair with a mark and a bundle group
//   - [Path]: simple chain used by rigid-edge models and the selection
//
// # Marks
//
// Vertices and edges carry a [Mark] describing which kind of path uses them:
// [MarkLocked] for path-manager paths, [MarkSelecting] for the selection in
// progress and [MarkSelected] for stored selections. [Graph.Unmark] clears
// one kind without touching the others.
//
// # Quality Measures
//
// [Graph.Overlaps] counts nearly collinear edge pairs that lie on top of
// each other, and [Graph.VisualComplexity] counts the bundles left after
// greedily chaining straight continuations. The automatic path manager
// optimizes a weighted sum of both.
//
// # Serialization
//
// Graphs use a node-link JSON format:
//
//	g, _ := graph.ReadGraphFile("mesh.json")
//	graph.WriteGraphFile(g, "out.json")
//	data, _ := graph.MarshalGraph(g)
//
// # Randomness
//
// Every random decision (degeneracy jitter, random vertex choice, scatter)
// draws from the graph's source, set with [WithRand]. Equal seeds give
// equal runs.
package graph
