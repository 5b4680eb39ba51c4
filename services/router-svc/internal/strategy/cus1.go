package strategy

import "context"

// =============================================================================
// Uniform-Cost Search
// =============================================================================
//
// Dijkstra-style search that expands the frontier node with the lowest
// accumulated cost. Equivalent to A* with a zero estimate: it explores more
// nodes but needs no geometry, which makes it the reference the informed
// strategies are checked against.
//
// Time Complexity: O((V + E) log V)
// Space Complexity: O(V)
// =============================================================================

type uniformCost struct{}

func (s *uniformCost) Name() string { return NameCUS1 }

func (s *uniformCost) Search(ctx context.Context, g Graph) (*Result, error) {
	return costSearch(ctx, g, false)
}
