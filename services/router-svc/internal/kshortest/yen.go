// Package kshortest ranks alternative routes between the origin and the
// destination set of a weighted road graph.
package kshortest

import (
	"container/heap"
	"context"
	"fmt"

	"routeguide/pkg/apperror"
	"routeguide/pkg/domain"

	"routeguide/services/router-svc/internal/strategy"
)

// =============================================================================
// Yen's K Shortest Paths
// =============================================================================
//
// Finds the k cheapest simple (loopless) routes in ascending cost order.
// The first route comes from a plain shortest-path search; each following
// route is built by deviating from an already accepted route at a spur
// node, with the edges used by previous routes sharing the same prefix
// masked out so the deviation is genuinely new.
//
// Candidates are kept in a min-heap ordered by cost, with lexicographic
// node-sequence order breaking ties, so the ranking is deterministic.
// Duplicate node sequences are discarded.
//
// The number of spur searches is capped; hitting the cap returns the
// routes accepted so far rather than an error.
//
// Time Complexity: O(k * V * (E + V log V))
// Space Complexity: O(k * V)
//
// References:
//   - Yen, J. Y. (1971). "Finding the K Shortest Loopless Paths in a Network"
// =============================================================================

// DefaultMaxIterations caps spur searches per request.
const DefaultMaxIterations = 1000

// Engine ranks the top-k routes using an exact shortest-path strategy for
// the initial route and every spur search.
type Engine struct {
	search        strategy.Strategy
	maxIterations int
}

// New creates an engine. The strategy must return cheapest routes (astar or
// cus1/cus2); a non-positive iteration cap falls back to the default.
func New(search strategy.Strategy, maxIterations int) *Engine {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	return &Engine{search: search, maxIterations: maxIterations}
}

// TopK returns up to k cheapest simple routes in ascending cost order.
// Fewer than k routes are returned when the graph has fewer distinct simple
// routes or the iteration cap is reached. No route at all is a normal
// outcome: the slice is empty and the error nil.
func (e *Engine) TopK(ctx context.Context, g strategy.Graph, k int) ([]strategy.Result, error) {
	if k < 1 {
		return nil, apperror.NewWithField(apperror.CodeInvalidK,
			fmt.Sprintf("k must be at least 1, got %d", k), "k")
	}

	first, err := e.search.Search(ctx, g)
	if err != nil {
		return nil, err
	}
	if !first.Found {
		return []strategy.Result{}, nil
	}

	accepted := []strategy.Result{*first}
	seen := map[string]bool{pathKey(first.Path): true}

	candidates := make(candidateHeap, 0)
	heap.Init(&candidates)

	iterations := 0
	for len(accepted) < k {
		prev := accepted[len(accepted)-1].Path

		// Deviate from every node of the last accepted route except its
		// destination.
		for i := 0; i < len(prev)-1; i++ {
			if iterations >= e.maxIterations {
				return accepted, nil
			}
			iterations++

			spur := prev[i]
			root := prev[:i+1]

			masked := newMaskedGraph(g, spur)
			// Routes sharing this prefix must not be rediscovered
			for _, a := range accepted {
				if hasPrefix(a.Path, root) && i+1 < len(a.Path) {
					masked.removeEdge(a.Path[i], a.Path[i+1])
				}
			}
			// The spur route must not re-enter the prefix
			for _, node := range root[:len(root)-1] {
				masked.removeNode(node)
			}

			spurResult, err := e.search.Search(ctx, masked)
			if err != nil {
				return nil, err
			}
			if !spurResult.Found {
				continue
			}

			total := append(append([]int64(nil), root...), spurResult.Path[1:]...)
			if !domain.IsSimplePath(total) {
				continue
			}

			key := pathKey(total)
			if seen[key] {
				continue
			}
			seen[key] = true

			prefixCost, err := rootCost(g, root)
			if err != nil {
				return nil, err
			}
			heap.Push(&candidates, &candidate{
				path:     total,
				cost:     prefixCost + spurResult.Cost,
				expanded: spurResult.Expanded,
			})
		}

		if candidates.Len() == 0 {
			break
		}

		best := heap.Pop(&candidates).(*candidate)
		accepted = append(accepted, strategy.Result{
			Found:    true,
			Path:     best.path,
			Cost:     best.cost,
			Expanded: best.expanded,
		})
	}

	return accepted, nil
}

// rootCost sums the edge costs of the deviation prefix.
func rootCost(g strategy.Graph, root []int64) (float64, error) {
	total := 0.0
	for i := 1; i < len(root); i++ {
		cost, ok := g.EdgeCost(root[i-1], root[i])
		if !ok {
			return 0, apperror.New(apperror.CodeInternal,
				fmt.Sprintf("accepted route uses missing edge %d->%d", root[i-1], root[i]))
		}
		total += cost
	}
	return total, nil
}

func hasPrefix(path, prefix []int64) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

func pathKey(path []int64) string {
	return fmt.Sprint(path)
}

// candidate is a deviation route awaiting acceptance.
type candidate struct {
	path     []int64
	cost     float64
	expanded int
}

// candidateHeap is a min-heap on cost with lexicographic tie-breaking.
type candidateHeap []*candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if !domain.FloatEquals(h[i].cost, h[j].cost) {
		return h[i].cost < h[j].cost
	}
	return domain.LexLess(h[i].path, h[j].path)
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) { *h = append(*h, x.(*candidate)) }

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
