package strategy

import "context"

// =============================================================================
// Breadth-First Search
// =============================================================================
//
// Expands nodes level by level from the origin, so the first destination
// reached lies the fewest edges away. Edge costs are ignored during the
// search; the reported cost is the sum along the returned route.
//
// Time Complexity: O(V + E)
// Space Complexity: O(V)
// =============================================================================

type breadthFirst struct{}

func (s *breadthFirst) Name() string { return NameBFS }

func (s *breadthFirst) Search(ctx context.Context, g Graph) (*Result, error) {
	origin := g.Origin()
	if !g.HasNode(origin) {
		return &Result{}, nil
	}

	parent := map[int64]int64{origin: -1}
	visited := map[int64]bool{origin: true}
	queue := []int64{origin}

	expanded := 0
	for len(queue) > 0 {
		// Periodic context check
		if expanded%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctxErr(ctx)
			default:
			}
		}

		u := queue[0]
		queue = queue[1:]
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
			queue = append(queue, v)
		}
	}

	return &Result{Expanded: expanded}, nil
}
