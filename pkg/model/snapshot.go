package model

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/springlayout/pkg/embed"
	"github.com/matzehuels/springlayout/pkg/geom"
	"github.com/matzehuels/springlayout/pkg/graph"
	"github.com/matzehuels/springlayout/pkg/pathmgr"
)

// Snapshot is a consistent copy of the simulation state, taken under the
// model lock. It shares nothing with the model.
type Snapshot struct {
	RunID     string `json:"run_id"`
	Iteration int    `json:"iteration"`
	Finished  bool   `json:"finished"`
	Running   bool   `json:"running"`

	Generator string `json:"generator"`
	Embedder  string `json:"embedder"`
	Rigid     string `json:"rigid"`
	Manager   string `json:"manager"`

	Vertices  []VertexState `json:"vertices"`
	Edges     []EdgeState   `json:"edges"`
	Paths     []PathState   `json:"paths"`
	Selecting *PathState    `json:"selecting,omitempty"`
	Bounds    geom.Rect     `json:"bounds"`

	// Temperature is set when the embedder anneals.
	Temperature float64 `json:"temperature,omitempty"`
	// Auto is set when the Auto path manager is active.
	Auto *AutoState `json:"auto,omitempty"`
}

// VertexState is a vertex as seen at snapshot time. Force is the embedder
// force observed before rigid-edge models ran.
type VertexState struct {
	ID        int        `json:"id"`
	Pos       r2.Vec     `json:"pos"`
	Vel       r2.Vec     `json:"vel"`
	Force     r2.Vec     `json:"force"`
	Mark      graph.Mark `json:"mark"`
	Highlight bool       `json:"highlight,omitempty"`
}

// EdgeState is an edge as seen at snapshot time.
type EdgeState struct {
	From int        `json:"from"`
	To   int        `json:"to"`
	Mark graph.Mark `json:"mark"`
}

// PathState lists the vertex ids of a chain in order.
type PathState struct {
	Vertices        []int   `json:"vertices"`
	InitialDistance float64 `json:"initial_distance"`
}

// AutoState reports the progress of the Auto path manager.
type AutoState struct {
	Quality    int    `json:"quality"`
	Done       bool   `json:"done"`
	StackDepth int    `json:"stack_depth"`
	Status     string `json:"status"`
}

func pathState(p *graph.Path) PathState {
	vs := p.AllVertices()
	ids := make([]int, len(vs))
	for i, v := range vs {
		ids[i] = v.ID
	}
	return PathState{Vertices: ids, InitialDistance: p.InitialDistance}
}

// Snapshot copies the current state. Without a graph, the snapshot has no
// vertices but still names the strategies.
func (m *Model) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		RunID:     m.id,
		Iteration: m.iteration,
		Finished:  m.finished != "",
		Running:   m.running,
		Generator: m.generator.Name(),
		Embedder:  m.embedder.Name(),
		Rigid:     m.rigid.Name(),
		Manager:   m.manager.Name(),
	}
	if fr, ok := m.embedder.(*embed.FruchtermanReingold); ok {
		s.Temperature = fr.Temperature()
	}
	if a, ok := m.manager.(*pathmgr.Auto); ok {
		s.Auto = &AutoState{
			Quality:    a.Quality(),
			Done:       a.Done(),
			StackDepth: a.StackDepth(),
			Status:     a.Status(),
		}
	}
	if m.g == nil {
		return s
	}

	s.Vertices = make([]VertexState, 0, m.g.NumVertices())
	for _, v := range m.g.Vertices() {
		s.Vertices = append(s.Vertices, VertexState{
			ID:        v.ID,
			Pos:       v.Pos,
			Vel:       v.Vel,
			Force:     v.Observed,
			Mark:      v.Mark,
			Highlight: v.Highlight,
		})
	}
	s.Edges = make([]EdgeState, 0, m.g.NumEdges())
	for _, e := range m.g.Edges() {
		s.Edges = append(s.Edges, EdgeState{From: e.V1.ID, To: e.V2.ID, Mark: e.Mark})
	}
	s.Paths = make([]PathState, 0, len(m.active))
	for _, p := range m.active {
		s.Paths = append(s.Paths, pathState(p))
	}
	if m.selecting != nil {
		ps := pathState(m.selecting)
		s.Selecting = &ps
	}
	s.Bounds = m.g.Bounds()
	return s
}

// Vertex returns the state of the vertex with the given id.
func (s Snapshot) Vertex(id int) (VertexState, bool) {
	for _, v := range s.Vertices {
		if v.ID == id {
			return v, true
		}
	}
	return VertexState{}, false
}

// Positions maps vertex ids to positions.
func (s Snapshot) Positions() map[int]r2.Vec {
	out := make(map[int]r2.Vec, len(s.Vertices))
	for _, v := range s.Vertices {
		out[v.ID] = v.Pos
	}
	return out
}
