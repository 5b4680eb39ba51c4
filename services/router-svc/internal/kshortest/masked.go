package kshortest

import (
	"routeguide/pkg/domain"

	"routeguide/services/router-svc/internal/strategy"
)

// maskedGraph is a search view over a base graph with some nodes and edges
// hidden and the origin moved to the spur node. The base graph is never
// modified; spur searches see the mask through the ordinary accessors.
type maskedGraph struct {
	base         strategy.Graph
	origin       int64
	removedNodes map[int64]bool
	removedEdges map[domain.EdgeKey]bool
}

func newMaskedGraph(base strategy.Graph, origin int64) *maskedGraph {
	return &maskedGraph{
		base:         base,
		origin:       origin,
		removedNodes: make(map[int64]bool),
		removedEdges: make(map[domain.EdgeKey]bool),
	}
}

func (m *maskedGraph) removeNode(id int64) {
	m.removedNodes[id] = true
}

func (m *maskedGraph) removeEdge(from, to int64) {
	m.removedEdges[domain.EdgeKey{From: from, To: to}] = true
}

func (m *maskedGraph) Origin() int64 { return m.origin }

func (m *maskedGraph) Destinations() []int64 {
	dests := m.base.Destinations()
	visible := dests[:0:0]
	for _, d := range dests {
		if !m.removedNodes[d] {
			visible = append(visible, d)
		}
	}
	return visible
}

func (m *maskedGraph) Neighbors(id int64) []int64 {
	if m.removedNodes[id] {
		return nil
	}
	neighbors := m.base.Neighbors(id)
	visible := neighbors[:0:0]
	for _, n := range neighbors {
		if m.removedNodes[n] || m.removedEdges[domain.EdgeKey{From: id, To: n}] {
			continue
		}
		visible = append(visible, n)
	}
	return visible
}

func (m *maskedGraph) InNeighbors(id int64) []int64 {
	if m.removedNodes[id] {
		return nil
	}
	preds := m.base.InNeighbors(id)
	visible := preds[:0:0]
	for _, p := range preds {
		if m.removedNodes[p] || m.removedEdges[domain.EdgeKey{From: p, To: id}] {
			continue
		}
		visible = append(visible, p)
	}
	return visible
}

func (m *maskedGraph) EdgeCost(from, to int64) (float64, bool) {
	if m.removedNodes[from] || m.removedNodes[to] {
		return 0, false
	}
	if m.removedEdges[domain.EdgeKey{From: from, To: to}] {
		return 0, false
	}
	return m.base.EdgeCost(from, to)
}

func (m *maskedGraph) HasNode(id int64) bool {
	return !m.removedNodes[id] && m.base.HasNode(id)
}

func (m *maskedGraph) IsDestination(id int64) bool {
	return !m.removedNodes[id] && m.base.IsDestination(id)
}

func (m *maskedGraph) Heuristic(id int64) float64 {
	// The estimate over the unmasked graph is a lower bound for the masked
	// one, so admissibility is preserved.
	return m.base.Heuristic(id)
}
