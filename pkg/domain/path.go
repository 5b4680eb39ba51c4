package domain

import (
	"fmt"

	"routeguide/pkg/apperror"
)

// PathResult - найденный маршрут
type PathResult struct {
	Nodes      []int64 `json:"nodes"`       // последовательность узлов от origin до destination
	TravelTime float64 `json:"travel_time"` // суммарный вес рёбер (секунды для взвешенного графа)
	Expanded   int     `json:"expanded"`    // количество раскрытых узлов при поиске
	Strategy   string  `json:"strategy"`    // имя стратегии поиска
}

// Destination возвращает конечный узел маршрута
func (p *PathResult) Destination() int64 {
	if len(p.Nodes) == 0 {
		return -1
	}
	return p.Nodes[len(p.Nodes)-1]
}

// ReconstructPath восстанавливает путь от target к началу по карте родителей.
// Родитель начального узла должен быть -1.
func ReconstructPath(parent map[int64]int64, target int64) []int64 {
	var path []int64

	current := target
	for current != -1 {
		path = append(path, current)
		p, ok := parent[current]
		if !ok {
			return nil
		}
		current = p
	}

	// Разворачиваем путь
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

// PathCost возвращает суммарный вес рёбер пути
func (g *Graph) PathCost(nodes []int64) (float64, error) {
	var total float64
	for i := 0; i+1 < len(nodes); i++ {
		cost, ok := g.EdgeCost(nodes[i], nodes[i+1])
		if !ok {
			return 0, apperror.New(apperror.CodeInvalidArgument,
				fmt.Sprintf("path uses missing edge %d->%d", nodes[i], nodes[i+1]))
		}
		total += cost
	}
	return total, nil
}

// PathDistance возвращает суммарную длину пути в метрах
func (g *Graph) PathDistance(nodes []int64) (float64, error) {
	var total float64
	for i := 0; i+1 < len(nodes); i++ {
		e, ok := g.Edge(nodes[i], nodes[i+1])
		if !ok {
			return 0, apperror.New(apperror.CodeInvalidArgument,
				fmt.Sprintf("path uses missing edge %d->%d", nodes[i], nodes[i+1]))
		}
		total += e.DistanceM
	}
	return total, nil
}

// EqualPath сравнивает две последовательности узлов
func EqualPath(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LexLess сравнивает последовательности узлов лексикографически
func LexLess(a, b []int64) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// IsSimplePath проверяет, что путь не содержит повторяющихся узлов
func IsSimplePath(nodes []int64) bool {
	seen := make(map[int64]struct{}, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n]; ok {
			return false
		}
		seen[n] = struct{}{}
	}
	return true
}
