package domain

import (
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"routeguide/pkg/apperror"
)

// Node - узел дорожной сети (перекрёсток с детектором)
type Node struct {
	ID    int64
	Name  string
	Point orb.Point // плоские координаты (x, y) в метрах
}

// EdgeKey - ключ направленного ребра
type EdgeKey struct {
	From int64
	To   int64
}

// String возвращает строковое представление ключа
func (k EdgeKey) String() string {
	return fmt.Sprintf("%d->%d", k.From, k.To)
}

// Edge - направленное ребро дорожной сети
type Edge struct {
	From      int64
	To        int64
	DistanceM float64 // длина участка дороги, метры
	Cost      float64 // вес для поиска: метры (базовый граф) или секунды (взвешенный)
	Degraded  bool    // скорость ограничена до crawl speed при переводе потока во время
	Defaulted bool    // объём трафика взят по умолчанию (нет замера)
}

// Key возвращает ключ ребра
func (e *Edge) Key() EdgeKey {
	return EdgeKey{From: e.From, To: e.To}
}

// Graph - дорожная сеть: узлы, направленные рёбра, точка отправления
// и множество пунктов назначения. Структура неизменяема после создания:
// все операции поиска работают только на чтение, перевзвешивание создаёт
// новый экземпляр.
type Graph struct {
	nodes        map[int64]*Node
	edges        map[EdgeKey]*Edge
	adjacency    map[int64][]int64 // соседи по исходящим рёбрам, отсортированы по id
	reverse      map[int64][]int64 // соседи по входящим рёбрам, отсортированы по id
	origin       int64
	destinations map[int64]struct{}

	// Скорость для эвристики, м/с. Ноль означает, что веса рёбер - метры
	// и эвристика возвращает евклидово расстояние как есть.
	heuristicSpeedMs float64
}

// NewGraph создаёт граф с весами-расстояниями и валидирует входные данные.
// Отклоняются: дубликаты узлов и рёбер, петли, рёбра с несуществующими
// концами, отрицательные длины, неизвестные origin/destinations.
func NewGraph(nodes []Node, edges []Edge, origin int64, destinations []int64) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, apperror.ErrEmptyNetwork
	}
	if len(destinations) == 0 {
		return nil, apperror.ErrNoDestinations
	}

	g := &Graph{
		nodes:        make(map[int64]*Node, len(nodes)),
		edges:        make(map[EdgeKey]*Edge, len(edges)),
		adjacency:    make(map[int64][]int64),
		reverse:      make(map[int64][]int64),
		origin:       origin,
		destinations: make(map[int64]struct{}, len(destinations)),
	}

	for i := range nodes {
		n := nodes[i]
		if _, ok := g.nodes[n.ID]; ok {
			return nil, apperror.New(apperror.CodeDuplicateNode,
				fmt.Sprintf("node %d declared twice", n.ID))
		}
		g.nodes[n.ID] = &n
	}

	for i := range edges {
		e := edges[i]
		if e.From == e.To {
			return nil, apperror.New(apperror.CodeSelfLoop,
				fmt.Sprintf("edge %d->%d is a self loop", e.From, e.To))
		}
		if _, ok := g.nodes[e.From]; !ok {
			return nil, apperror.New(apperror.CodeDanglingEdge,
				fmt.Sprintf("edge %d->%d references unknown node %d", e.From, e.To, e.From))
		}
		if _, ok := g.nodes[e.To]; !ok {
			return nil, apperror.New(apperror.CodeDanglingEdge,
				fmt.Sprintf("edge %d->%d references unknown node %d", e.From, e.To, e.To))
		}
		if e.DistanceM < 0 {
			return nil, apperror.New(apperror.CodeNegativeDistance,
				fmt.Sprintf("edge %d->%d has negative distance", e.From, e.To))
		}

		key := e.Key()
		if _, ok := g.edges[key]; ok {
			return nil, apperror.New(apperror.CodeDuplicateEdge,
				fmt.Sprintf("edge %s declared twice", key))
		}

		if e.Cost == 0 {
			e.Cost = e.DistanceM
		}
		g.edges[key] = &e
		g.adjacency[e.From] = append(g.adjacency[e.From], e.To)
		g.reverse[e.To] = append(g.reverse[e.To], e.From)
	}

	// Детерминированный порядок обхода соседей
	for id := range g.adjacency {
		neighbors := g.adjacency[id]
		sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
	}
	for id := range g.reverse {
		preds := g.reverse[id]
		sort.Slice(preds, func(i, j int) bool { return preds[i] < preds[j] })
	}

	if _, ok := g.nodes[origin]; !ok {
		return nil, apperror.ErrInvalidOrigin
	}
	for _, d := range destinations {
		if _, ok := g.nodes[d]; !ok {
			return nil, apperror.New(apperror.CodeInvalidGoal,
				fmt.Sprintf("destination node %d not found in network", d))
		}
		g.destinations[d] = struct{}{}
	}

	return g, nil
}

// Weight - новый вес ребра при перевзвешивании
type Weight struct {
	Cost      float64
	Degraded  bool
	Defaulted bool
}

// Reweight создаёт копию графа с новыми весами рёбер (секунды) и скоростью
// для эвристики. Исходный граф не изменяется. Каждое ребро графа должно
// присутствовать в weights.
func (g *Graph) Reweight(weights map[EdgeKey]Weight, heuristicSpeedKmh float64) (*Graph, error) {
	if heuristicSpeedKmh <= 0 {
		return nil, apperror.New(apperror.CodeInvalidArgument, "heuristic speed must be positive")
	}

	ng := &Graph{
		nodes:            make(map[int64]*Node, len(g.nodes)),
		edges:            make(map[EdgeKey]*Edge, len(g.edges)),
		adjacency:        make(map[int64][]int64, len(g.adjacency)),
		reverse:          make(map[int64][]int64, len(g.reverse)),
		origin:           g.origin,
		destinations:     make(map[int64]struct{}, len(g.destinations)),
		heuristicSpeedMs: KmhToMs(heuristicSpeedKmh),
	}

	for id, n := range g.nodes {
		node := *n
		ng.nodes[id] = &node
	}
	for d := range g.destinations {
		ng.destinations[d] = struct{}{}
	}
	for id, neighbors := range g.adjacency {
		ng.adjacency[id] = append([]int64(nil), neighbors...)
	}
	for id, preds := range g.reverse {
		ng.reverse[id] = append([]int64(nil), preds...)
	}

	for key, e := range g.edges {
		w, ok := weights[key]
		if !ok {
			return nil, apperror.New(apperror.CodeInvalidArgument,
				fmt.Sprintf("no weight for edge %s", key))
		}
		if w.Cost < 0 {
			return nil, apperror.New(apperror.CodeInvalidArgument,
				fmt.Sprintf("negative weight for edge %s", key))
		}

		edge := *e
		edge.Cost = w.Cost
		edge.Degraded = w.Degraded
		edge.Defaulted = w.Defaulted
		ng.edges[key] = &edge
	}

	return ng, nil
}

// Clone создаёт глубокую копию графа
func (g *Graph) Clone() *Graph {
	ng := &Graph{
		nodes:            make(map[int64]*Node, len(g.nodes)),
		edges:            make(map[EdgeKey]*Edge, len(g.edges)),
		adjacency:        make(map[int64][]int64, len(g.adjacency)),
		reverse:          make(map[int64][]int64, len(g.reverse)),
		origin:           g.origin,
		destinations:     make(map[int64]struct{}, len(g.destinations)),
		heuristicSpeedMs: g.heuristicSpeedMs,
	}

	for id, n := range g.nodes {
		node := *n
		ng.nodes[id] = &node
	}
	for key, e := range g.edges {
		edge := *e
		ng.edges[key] = &edge
	}
	for id, neighbors := range g.adjacency {
		ng.adjacency[id] = append([]int64(nil), neighbors...)
	}
	for id, preds := range g.reverse {
		ng.reverse[id] = append([]int64(nil), preds...)
	}
	for d := range g.destinations {
		ng.destinations[d] = struct{}{}
	}

	return ng
}

// Node возвращает узел по id
func (g *Graph) Node(id int64) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode проверяет наличие узла
func (g *Graph) HasNode(id int64) bool {
	_, ok := g.nodes[id]
	return ok
}

// Edge возвращает ребро по концам
func (g *Graph) Edge(from, to int64) (*Edge, bool) {
	e, ok := g.edges[EdgeKey{From: from, To: to}]
	return e, ok
}

// EdgeCost возвращает вес ребра
func (g *Graph) EdgeCost(from, to int64) (float64, bool) {
	e, ok := g.edges[EdgeKey{From: from, To: to}]
	if !ok {
		return 0, false
	}
	return e.Cost, true
}

// Neighbors возвращает соседей узла по исходящим рёбрам,
// отсортированных по возрастанию id. Возвращается копия.
func (g *Graph) Neighbors(id int64) []int64 {
	neighbors, ok := g.adjacency[id]
	if !ok {
		return nil
	}
	return append([]int64(nil), neighbors...)
}

// InNeighbors возвращает соседей узла по входящим рёбрам,
// отсортированных по возрастанию id. Возвращается копия.
func (g *Graph) InNeighbors(id int64) []int64 {
	preds, ok := g.reverse[id]
	if !ok {
		return nil
	}
	return append([]int64(nil), preds...)
}

// Origin возвращает точку отправления
func (g *Graph) Origin() int64 {
	return g.origin
}

// Destinations возвращает пункты назначения, отсортированные по id
func (g *Graph) Destinations() []int64 {
	result := make([]int64, 0, len(g.destinations))
	for d := range g.destinations {
		result = append(result, d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// IsDestination проверяет, является ли узел пунктом назначения
func (g *Graph) IsDestination(id int64) bool {
	_, ok := g.destinations[id]
	return ok
}

// NodeCount возвращает количество узлов
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount возвращает количество рёбер
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Nodes возвращает все узлы, отсортированные по id
func (g *Graph) Nodes() []*Node {
	result := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Edges возвращает все рёбра в детерминированном порядке (from, to)
func (g *Graph) Edges() []*Edge {
	result := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].From != result[j].From {
			return result[i].From < result[j].From
		}
		return result[i].To < result[j].To
	})
	return result
}

// TimeWeighted сообщает, являются ли веса рёбер временем в секундах
func (g *Graph) TimeWeighted() bool {
	return g.heuristicSpeedMs > 0
}

// HeuristicTo возвращает оценку стоимости пути от узла from до узла to:
// евклидово расстояние по прямой, для взвешенного по времени графа -
// делённое на скорость свободного потока. Скорость на ребре не превышает
// эту скорость по построению, поэтому оценка никогда не завышает
// фактическую стоимость.
func (g *Graph) HeuristicTo(from, to int64) float64 {
	a, ok := g.nodes[from]
	if !ok {
		return Infinity
	}
	b, ok := g.nodes[to]
	if !ok {
		return Infinity
	}

	d := planar.Distance(a.Point, b.Point)
	if g.heuristicSpeedMs > 0 {
		return d / g.heuristicSpeedMs
	}
	return d
}

// Heuristic возвращает минимальную оценку до ближайшего пункта назначения
func (g *Graph) Heuristic(from int64) float64 {
	best := Infinity
	for d := range g.destinations {
		if h := g.HeuristicTo(from, d); h < best {
			best = h
		}
	}
	return best
}
