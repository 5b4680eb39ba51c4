package strategy

import (
	"context"

	"routeguide/pkg/domain"
)

// =============================================================================
// A* Search
// =============================================================================
//
// Expands the frontier node with the lowest f = g + h, where g is the cost
// accumulated from the origin and h is the straight-line estimate to the
// nearest destination. The estimate never exceeds the true remaining cost
// (free-flow speed bounds edge speeds), so the first destination expanded
// closes the cheapest route.
//
// Time Complexity: O((V + E) log V)
// Space Complexity: O(V)
//
// References:
//   - Hart, P. E.; Nilsson, N. J.; Raphael, B. (1968). "A Formal Basis for
//     the Heuristic Determination of Minimum Cost Paths"
// =============================================================================

type aStar struct{}

func (s *aStar) Name() string { return NameAStar }

func (s *aStar) Search(ctx context.Context, g Graph) (*Result, error) {
	return costSearch(ctx, g, true)
}

// costSearch is the shared frontier loop of A* and uniform-cost search.
// With useHeuristic=false the priority degenerates to the accumulated cost.
func costSearch(ctx context.Context, g Graph, useHeuristic bool) (*Result, error) {
	origin := g.Origin()
	if !g.HasNode(origin) {
		return &Result{}, nil
	}

	h := func(id int64) float64 {
		if !useHeuristic {
			return 0
		}
		return g.Heuristic(id)
	}

	dist := map[int64]float64{origin: 0}
	parent := map[int64]int64{origin: -1}

	pq := &frontier{}
	pq.push(origin, h(origin))

	expanded := 0
	iterations := 0
	for pq.Len() > 0 {
		// Periodic context check
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctxErr(ctx)
			default:
			}
		}
		iterations++

		current := pq.pop()
		u := current.node

		// Skip stale entries (already processed with a better cost)
		if current.priority > dist[u]+h(u)+domain.Epsilon {
			continue
		}
		expanded++

		if g.IsDestination(u) {
			return &Result{
				Found:    true,
				Path:     domain.ReconstructPath(parent, u),
				Cost:     dist[u],
				Expanded: expanded,
			}, nil
		}

		for _, v := range g.Neighbors(u) {
			cost, ok := g.EdgeCost(u, v)
			if !ok {
				continue
			}

			newDist := dist[u] + cost
			if old, seen := dist[v]; !seen || newDist < old-domain.Epsilon {
				dist[v] = newDist
				parent[v] = u
				pq.push(v, newDist+h(v))
			}
		}
	}

	return &Result{Expanded: expanded}, nil
}
