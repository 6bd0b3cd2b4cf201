package model

import (
	"context"

	"github.com/matzehuels/springlayout/pkg/errors"
	"github.com/matzehuels/springlayout/pkg/graph"
)

// ErrNoSelection is returned when storing a walk that has no edge yet.
var ErrNoSelection = errors.New(errors.ErrCodeInvalidArgument, "no selection to store")

// Select adds the vertex with the given id to the walk under construction.
//
// The first vertex starts the walk. Each further vertex is reached by a
// shortest path from the current end, appended only if it keeps the walk
// simple; vertices already on the walk and unreachable vertices are
// ignored. The walk is marked as selecting.
func (m *Model) Select(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.g == nil {
		return ErrNoGraph
	}
	v, ok := m.g.Vertex(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "no vertex with id %d", id)
	}

	m.g.Unmark(graph.MarkSelecting)
	switch {
	case m.selecting == nil:
		m.selecting = graph.NewPath(v)
	case !m.selecting.Contains(v):
		p, err := m.g.ShortestPath(m.selecting.End(), v)
		if err != nil {
			m.logger.Debug("selection not extended", "run", m.id, "vertex", v, "err", err)
			break
		}
		if m.selecting.MayAppend(p) {
			if err := m.selecting.Append(p); err != nil {
				return err
			}
		}
	}
	m.selecting.Mark(graph.MarkSelecting)
	return nil
}

// StoreSelection turns the walk under construction into a rigid path. Its
// current length becomes the path's rest length.
func (m *Model) StoreSelection() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selecting == nil || m.selecting.Len() == 0 {
		return ErrNoSelection
	}
	p := m.selecting
	p.Mark(graph.MarkSelected)
	p.SetInitialDistance()
	m.selected = append(m.selected, p)
	m.selecting = nil
	m.g.Unmark(graph.MarkSelecting)
	m.refreshPaths(context.Background())
	return nil
}

// ClearSelection drops the walk under construction.
func (m *Model) ClearSelection() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selecting = nil
	if m.g != nil {
		m.g.Unmark(graph.MarkSelecting)
	}
}

// ClearSelections drops the walk under construction and every stored
// selection.
func (m *Model) ClearSelections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selecting = nil
	m.selected = nil
	if m.g != nil {
		m.g.Unmark(graph.MarkSelecting)
		m.g.Unmark(graph.MarkSelected)
	}
	m.refreshPaths(context.Background())
}

// Selected returns copies of the stored selections.
func (m *Model) Selected() []*graph.Path {
	m.mu.Lock()
	defer m.mu.Unlock()
	return graph.ClonePaths(m.selected)
}
