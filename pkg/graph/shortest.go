package graph

import (
	"container/heap"

	"github.com/matzehuels/springlayout/pkg/errors"
)

var (
	// ErrSameEndpoints is returned by [Graph.ShortestPath] when start and
	// end are the same vertex.
	ErrSameEndpoints = errors.New(errors.ErrCodeInvalidArgument, "shortest path: start equals end")

	// ErrMissingEndpoint is returned by [Graph.ShortestPath] when start or
	// end is not a vertex of the graph.
	ErrMissingEndpoint = errors.New(errors.ErrCodeInvalidArgument, "shortest path: endpoint not in graph")

	// ErrUnreachable is returned by [Graph.ShortestPath] when no path joins
	// start and end.
	ErrUnreachable = errors.New(errors.ErrCodeNotFound, "shortest path: end is unreachable")
)

// ShortestPath returns a path with the fewest edges from start to end.
//
// The search is Dijkstra with unit edge weights. Distances start at |V|,
// ties are resolved by vertex insertion order, and the search stops as soon
// as end receives its final distance.
func (g *Graph) ShortestPath(start, end *Vertex) (*Path, error) {
	if start == end {
		return nil, ErrSameEndpoints
	}
	if !g.owns(start) || !g.owns(end) {
		return nil, ErrMissingEndpoint
	}

	n := len(g.vertices)
	for _, v := range g.vertices {
		v.dist = n
		v.pred = nil
	}
	start.dist = 0

	done := make(map[*Vertex]bool, n)
	pq := vertexPQ{{v: start, dist: 0}}
	heap.Init(&pq)

	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*vertexItem)
		u := item.v
		if done[u] || item.dist > u.dist {
			continue
		}
		done[u] = true
		if u == end {
			break
		}
		next := u.dist + 1
		for _, e := range g.IncidentEdges(u) {
			w := e.Other(u)
			if w.dist > next {
				w.dist = next
				w.pred = u
				heap.Push(&pq, &vertexItem{v: w, dist: next})
			}
		}
	}

	if end.pred == nil {
		return nil, ErrUnreachable
	}

	var chain []*Vertex
	for v := end; v != start; v = v.pred {
		chain = append(chain, v)
	}
	p := NewPath(start)
	u := start
	for i := len(chain) - 1; i >= 0; i-- {
		v := chain[i]
		if err := p.Add(g.FindEdge(u, v), v); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "shortest path: rebuild")
		}
		u = v
	}
	return p, nil
}

// vertexItem is a lazy-deletion heap entry: stale entries whose dist no
// longer matches the vertex are skipped when popped.
type vertexItem struct {
	v    *Vertex
	dist int
}

// vertexPQ orders items by distance, then by insertion sequence.
type vertexPQ []*vertexItem

func (pq vertexPQ) Len() int { return len(pq) }

func (pq vertexPQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].v.Seq < pq[j].v.Seq
}

func (pq vertexPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *vertexPQ) Push(x any) { *pq = append(*pq, x.(*vertexItem)) }

func (pq *vertexPQ) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}
