// Package strategy implements the search algorithms that find routes from an
// origin to the nearest destination over a weighted road graph. All
// strategies expand neighbors in ascending node id and break cost ties by
// node id, so repeated runs over the same graph produce identical routes.
package strategy

import (
	"context"
	"errors"
	"fmt"

	"routeguide/pkg/apperror"
	"routeguide/pkg/domain"
)

// Graph is the read-only view a strategy searches. *domain.Graph satisfies
// it directly; path-ranking wraps it with masked views.
type Graph interface {
	Origin() int64
	Destinations() []int64
	Neighbors(id int64) []int64
	InNeighbors(id int64) []int64
	EdgeCost(from, to int64) (float64, bool)
	HasNode(id int64) bool
	IsDestination(id int64) bool
	Heuristic(id int64) float64
}

// Result is the outcome of a single search. An unreachable destination is
// reported with Found=false, not an error.
type Result struct {
	Found    bool
	Path     []int64
	Cost     float64
	Expanded int
}

// Strategy is a single-route search algorithm.
type Strategy interface {
	Name() string
	Search(ctx context.Context, g Graph) (*Result, error)
}

// Names of the supported strategies.
const (
	NameBFS   = "bfs"
	NameDFS   = "dfs"
	NameGBFS  = "gbfs"
	NameAStar = "astar"
	NameCUS1  = "cus1" // uniform-cost search
	NameCUS2  = "cus2" // bidirectional uniform-cost search
)

// Names lists the supported strategy names in registration order.
func Names() []string {
	return []string{NameBFS, NameDFS, NameGBFS, NameAStar, NameCUS1, NameCUS2}
}

// ForName returns the strategy registered under the given name.
func ForName(name string) (Strategy, error) {
	switch name {
	case NameBFS:
		return &breadthFirst{}, nil
	case NameDFS:
		return &depthFirst{}, nil
	case NameGBFS:
		return &greedyBestFirst{}, nil
	case NameAStar:
		return &aStar{}, nil
	case NameCUS1:
		return &uniformCost{}, nil
	case NameCUS2:
		return &bidirectionalUCS{}, nil
	default:
		return nil, apperror.NewWithField(apperror.CodeInvalidStrategy,
			fmt.Sprintf("unknown search strategy %q, supported: %v", name, Names()),
			"strategy")
	}
}

// checkInterval controls how often searches poll the context.
const checkInterval = 100

// ctxErr maps a context error to an application error.
func ctxErr(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return apperror.Wrap(err, apperror.CodeTimeout, "search timed out")
	}
	return apperror.Wrap(err, apperror.CodeCanceled, "search canceled")
}

// pathCost sums the edge costs along a path. Used by the uninformed
// strategies that do not track accumulated cost during the search.
func pathCost(g Graph, path []int64) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		cost, ok := g.EdgeCost(path[i-1], path[i])
		if !ok {
			return domain.Infinity
		}
		total += cost
	}
	return total
}

// found builds a successful result from a parent chain.
func found(g Graph, parent map[int64]int64, goal int64, expanded int) *Result {
	path := domain.ReconstructPath(parent, goal)
	return &Result{
		Found:    true,
		Path:     path,
		Cost:     pathCost(g, path),
		Expanded: expanded,
	}
}
