package strategy

import (
	"context"

	"routeguide/pkg/domain"
)

// =============================================================================
// Bidirectional Uniform-Cost Search
// =============================================================================
//
// Runs two uniform-cost searches at once: forward from the origin over
// outgoing edges, and backward from every destination at once over incoming
// edges. The cheapest known total through any node settled on both sides is
// tracked as mu; the search stops when the two frontier minimums together
// can no longer beat it. On road graphs this roughly halves the explored
// area compared to a single uniform-cost search.
//
// Time Complexity: O((V + E) log V), typically far fewer expansions
// Space Complexity: O(V)
// =============================================================================

type bidirectionalUCS struct{}

func (s *bidirectionalUCS) Name() string { return NameCUS2 }

func (s *bidirectionalUCS) Search(ctx context.Context, g Graph) (*Result, error) {
	origin := g.Origin()
	if !g.HasNode(origin) {
		return &Result{}, nil
	}
	if g.IsDestination(origin) {
		return &Result{Found: true, Path: []int64{origin}, Expanded: 1}, nil
	}

	distF := map[int64]float64{origin: 0}
	parentF := map[int64]int64{origin: -1}
	pqF := &frontier{}
	pqF.push(origin, 0)

	// The backward search is multi-source: every destination starts at cost
	// zero, and parentB points toward the destination, not away from it.
	distB := make(map[int64]float64)
	parentB := make(map[int64]int64)
	pqB := &frontier{}
	for _, d := range g.Destinations() {
		if !g.HasNode(d) {
			continue
		}
		distB[d] = 0
		parentB[d] = -1
		pqB.push(d, 0)
	}
	if pqB.Len() == 0 {
		return &Result{}, nil
	}

	mu := domain.Infinity
	meet := int64(-1)
	expanded := 0
	iterations := 0

	// consider updates the best known meeting point. Cost ties resolve to
	// the smaller node id so repeated runs pick the same route.
	consider := func(node int64, total float64) {
		if total < mu-domain.Epsilon {
			mu = total
			meet = node
		} else if total < mu+domain.Epsilon && node < meet {
			meet = node
		}
	}

	for pqF.Len() > 0 && pqB.Len() > 0 {
		// Periodic context check
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return nil, ctxErr(ctx)
			default:
			}
		}
		iterations++

		// No pair of frontier entries can beat the best meeting point
		if pqF.items[0].priority+pqB.items[0].priority >= mu-domain.Epsilon {
			break
		}

		// Expand the cheaper frontier; ties go to the forward side
		if pqF.items[0].priority <= pqB.items[0].priority {
			current := pqF.pop()
			u := current.node
			if current.priority > distF[u]+domain.Epsilon {
				continue
			}
			expanded++

			if back, ok := distB[u]; ok {
				consider(u, distF[u]+back)
			}

			for _, v := range g.Neighbors(u) {
				cost, ok := g.EdgeCost(u, v)
				if !ok {
					continue
				}
				newDist := distF[u] + cost
				if old, seen := distF[v]; !seen || newDist < old-domain.Epsilon {
					distF[v] = newDist
					parentF[v] = u
					pqF.push(v, newDist)
				}
				if back, ok := distB[v]; ok {
					consider(v, newDist+back)
				}
			}
		} else {
			current := pqB.pop()
			u := current.node
			if current.priority > distB[u]+domain.Epsilon {
				continue
			}
			expanded++

			if fwd, ok := distF[u]; ok {
				consider(u, fwd+distB[u])
			}

			for _, v := range g.InNeighbors(u) {
				cost, ok := g.EdgeCost(v, u)
				if !ok {
					continue
				}
				newDist := distB[u] + cost
				if old, seen := distB[v]; !seen || newDist < old-domain.Epsilon {
					distB[v] = newDist
					parentB[v] = u
					pqB.push(v, newDist)
				}
				if fwd, ok := distF[v]; ok {
					consider(v, fwd+newDist)
				}
			}
		}
	}

	if meet == -1 {
		return &Result{Expanded: expanded}, nil
	}

	// Stitch the two half-routes together at the meeting node
	path := domain.ReconstructPath(parentF, meet)
	for x := parentB[meet]; x != -1; x = parentB[x] {
		path = append(path, x)
	}

	return &Result{
		Found:    true,
		Path:     path,
		Cost:     mu,
		Expanded: expanded,
	}, nil
}
