package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r2"
)

// =============================================================================
// Wire Types
// =============================================================================

// Document is the node-link JSON form of a graph:
//
//	{
//	  "nodes": [{"id": 1, "x": 0.5, "y": 0.25}],
//	  "edges": [{"from": 1, "to": 2}]
//	}
type Document struct {
	Nodes []Node    `json:"nodes"`
	Edges []EdgeRef `json:"edges"`
}

// Node is a serialized vertex.
type Node struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// EdgeRef is a serialized edge, referring to vertices by ID.
type EdgeRef struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// =============================================================================
// Serialization API
// =============================================================================

// ToDocument converts g to its wire form, in insertion order.
func ToDocument(g *Graph) Document {
	doc := Document{
		Nodes: make([]Node, 0, len(g.vertices)),
		Edges: make([]EdgeRef, 0, len(g.edges)),
	}
	for _, v := range g.vertices {
		doc.Nodes = append(doc.Nodes, Node{ID: v.ID, X: v.Pos.X, Y: v.Pos.Y})
	}
	for _, e := range g.edges {
		doc.Edges = append(doc.Edges, EdgeRef{From: e.V1.ID, To: e.V2.ID})
	}
	return doc
}

// FromDocument builds a graph from its wire form. Duplicate edges are
// merged; self-loops and edges to unknown IDs are rejected.
func FromDocument(doc Document, opts ...Option) (*Graph, error) {
	g := New(opts...)
	for _, n := range doc.Nodes {
		if _, err := g.AddVertexWithID(n.ID, r2.Vec{X: n.X, Y: n.Y}); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.Edges {
		u, ok := g.Vertex(e.From)
		if !ok {
			return nil, fmt.Errorf("edge %d-%d: unknown vertex %d", e.From, e.To, e.From)
		}
		v, ok := g.Vertex(e.To)
		if !ok {
			return nil, fmt.Errorf("edge %d-%d: unknown vertex %d", e.From, e.To, e.To)
		}
		if _, err := g.AddEdgeIfAbsent(u, v); err != nil {
			return nil, fmt.Errorf("edge %d-%d: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph as JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteGraphFile writes a graph to a JSON file.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraph decodes a JSON graph from r.
func ReadGraph(r io.Reader, opts ...Option) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromDocument(doc, opts...)
}

// ReadGraphFile reads a JSON graph file.
func ReadGraphFile(path string, opts ...Option) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f, opts...)
}
