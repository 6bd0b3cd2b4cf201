package graph_test

import (
	"bytes"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/graph"
)

func ExampleGraph_ShortestPath() {
	g := graph.New()
	vs := make([]*graph.Vertex, 5)
	for i := range vs {
		vs[i], _ = g.AddVertexWithID(i, r2.Vec{X: float64(i)})
	}
	for i := range vs {
		g.AddEdge(vs[i], vs[(i+1)%len(vs)])
	}

	p, err := g.ShortestPath(vs[0], vs[3])
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(p, "edges:", p.Len())
	// Output:
	// v0 -> v4 -> v3 edges: 2
}

func ExampleWriteGraph() {
	g := graph.New()
	a, _ := g.AddVertexWithID(1, r2.Vec{X: 0, Y: 0})
	b, _ := g.AddVertexWithID(2, r2.Vec{X: 1, Y: 0.5})
	g.AddEdge(a, b)

	var buf bytes.Buffer
	if err := graph.WriteGraph(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": 1,
	//       "x": 0,
	//       "y": 0
	//     },
	//     {
	//       "id": 2,
	//       "x": 1,
	//       "y": 0.5
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "from": 1,
	//       "to": 2
	//     }
	//   ]
	// }
}
