package strategy

import "context"

// =============================================================================
// Greedy Best-First Search
// =============================================================================
//
// Always expands the frontier node whose straight-line estimate to the
// nearest destination is smallest. Fast in practice but ignores accumulated
// cost, so the route it finds is not guaranteed to be the cheapest.
//
// Time Complexity: O((V + E) log V)
// Space Complexity: O(V)
// =============================================================================

type greedyBestFirst struct{}

func (s *greedyBestFirst) Name() string { return NameGBFS }

func (s *greedyBestFirst) Search(ctx context.Context, g Graph) (*Result, error) {
	origin := g.Origin()
	if !g.HasNode(origin) {
		return &Result{}, nil
	}

	parent := map[int64]int64{origin: -1}
	visited := map[int64]bool{origin: true}

	pq := &frontier{}
	pq.push(origin, g.Heuristic(origin))

	expanded := 0
	for pq.Len() > 0 {
		// Periodic context check
		if expanded%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctxErr(ctx)
			default:
			}
		}

		u := pq.pop().node
		expanded++

		if g.IsDestination(u) {
			return found(g, parent, u, expanded), nil
		}

		for _, v := range g.Neighbors(u) {
			if visited[v] {
				continue
			}
			visited[v] = true
			parent[v] = u
			pq.push(v, g.Heuristic(v))
		}
	}

	return &Result{Expanded: expanded}, nil
}
