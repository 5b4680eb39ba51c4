package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Граф
	AttrGraphNodes   = "graph.nodes"
	AttrGraphEdges   = "graph.edges"
	AttrGraphOrigin  = "graph.origin_id"
	AttrGraphGoals   = "graph.destinations"
	AttrGraphDegraded = "graph.degraded_edges"

	// Поиск
	AttrStrategy   = "search.strategy"
	AttrExpanded   = "search.nodes_expanded"
	AttrPathsFound = "search.paths_found"
	AttrTravelTime = "search.best_travel_time_s"
	AttrTopK       = "search.k"

	// Трафик
	AttrInterval       = "traffic.interval"
	AttrDefaultedEdges = "traffic.defaulted_edges"
)

// GraphAttributes возвращает атрибуты графа
func GraphAttributes(nodes, edges int, originID int64, destinations int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphNodes, nodes),
		attribute.Int(AttrGraphEdges, edges),
		attribute.Int64(AttrGraphOrigin, originID),
		attribute.Int(AttrGraphGoals, destinations),
	}
}

// SearchAttributes возвращает атрибуты поиска маршрута
func SearchAttributes(strategy string, k, expanded, paths int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrStrategy, strategy),
		attribute.Int(AttrTopK, k),
		attribute.Int(AttrExpanded, expanded),
		attribute.Int(AttrPathsFound, paths),
	}
}

// TrafficAttributes возвращает атрибуты построения взвешенного графа
func TrafficAttributes(interval string, defaulted, degraded int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrInterval, interval),
		attribute.Int(AttrDefaultedEdges, defaulted),
		attribute.Int(AttrGraphDegraded, degraded),
	}
}
