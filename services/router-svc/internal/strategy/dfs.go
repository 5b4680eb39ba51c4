package strategy

import "context"

// =============================================================================
// Depth-First Search
// =============================================================================
//
// Follows one branch as deep as possible before backtracking. Neighbors are
// pushed in reverse id order so the lowest-id branch is explored first,
// matching the tie-break rule of the other strategies. The route it returns
// is the first one found, with no optimality guarantee.
//
// Time Complexity: O(V + E)
// Space Complexity: O(V)
// =============================================================================

type depthFirst struct{}

func (s *depthFirst) Name() string { return NameDFS }

func (s *depthFirst) Search(ctx context.Context, g Graph) (*Result, error) {
	origin := g.Origin()
	if !g.HasNode(origin) {
		return &Result{}, nil
	}

	parent := map[int64]int64{origin: -1}
	visited := make(map[int64]bool)
	stack := []int64{origin}

	expanded := 0
	for len(stack) > 0 {
		// Periodic context check
		if expanded%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctxErr(ctx)
			default:
			}
		}

		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[u] {
			continue
		}
		visited[u] = true
		expanded++

		if g.IsDestination(u) {
			return found(g, parent, u, expanded), nil
		}

		neighbors := g.Neighbors(u)
		for i := len(neighbors) - 1; i >= 0; i-- {
			v := neighbors[i]
			if visited[v] {
				continue
			}
			// Overwrite on re-push: the latest push is popped first,
			// so its parent is the tree edge actually followed
			parent[v] = u
			stack = append(stack, v)
		}
	}

	return &Result{Expanded: expanded}, nil
}
