// Package service содержит конвейер маршрутизации: загрузка сети,
// взвешивание трафиком, поиск и кэширование результатов.
package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"routeguide/pkg/apperror"
	"routeguide/pkg/cache"
	"routeguide/pkg/config"
	"routeguide/pkg/domain"
	"routeguide/pkg/logger"
	"routeguide/pkg/metrics"
	"routeguide/pkg/telemetry"

	"routeguide/services/router-svc/internal/builder"
	"routeguide/services/router-svc/internal/kshortest"
	"routeguide/services/router-svc/internal/repository"
	"routeguide/services/router-svc/internal/strategy"
	"routeguide/services/router-svc/internal/traffic"
)

// RoutingPipeline - тонкий оркестратор: сеть из репозитория, веса из
// наблюдений, поиск выбранной стратегией, результат в кэш.
type RoutingPipeline struct {
	repo       repository.NetworkRepository
	builder    *builder.Builder
	routeCache *cache.RouteCache // nil - без кэша
	cfg        config.RoutingConfig
}

// NewRoutingPipeline создаёт конвейер маршрутизации
func NewRoutingPipeline(repo repository.NetworkRepository, b *builder.Builder, routeCache *cache.RouteCache, cfg config.RoutingConfig) *RoutingPipeline {
	return &RoutingPipeline{
		repo:       repo,
		builder:    b,
		routeCache: routeCache,
		cfg:        cfg,
	}
}

// RouteRequest - запрос маршрута. Origin и Destinations переопределяют
// сохранённые в сети точки отправления и назначения для одного запроса;
// ноль и пустой список означают значения из сети.
type RouteRequest struct {
	NetworkID    string
	Strategy     string
	Interval     string // окно наблюдений "HHMM", пусто - объёмы по умолчанию
	K            int    // число маршрутов, 0 трактуется как 1
	Origin       int64
	Destinations []int64
}

// RouteResponse - результат маршрутизации. Отсутствие маршрута - это
// нормальный результат: Paths пуст, ошибки нет.
type RouteResponse struct {
	NetworkID   string              `json:"network_id"`
	NetworkName string              `json:"network_name,omitempty"`
	Strategy    string              `json:"strategy"`
	Interval    string              `json:"interval,omitempty"`
	K           int                 `json:"k"`
	Paths       []domain.PathResult `json:"paths"`
	Warnings    []string            `json:"warnings,omitempty"`
	Cached      bool                `json:"cached"`
	DurationMs  float64             `json:"duration_ms"`
}

// Route выполняет полный конвейер для одного запроса
func (p *RoutingPipeline) Route(ctx context.Context, req RouteRequest) (*RouteResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "RoutingPipeline.Route")
	defer span.End()

	start := time.Now()
	m := metrics.Get()

	searcher, err := strategy.ForName(req.Strategy)
	if err != nil {
		return nil, err
	}

	k := req.K
	if k == 0 {
		k = 1
	}
	if k < 0 {
		return nil, apperror.NewWithField(apperror.CodeInvalidK, "k must be positive", "k")
	}

	var warnings []string
	maxK := p.cfg.MaxK
	if maxK > 0 && k > maxK {
		warnings = append(warnings, "k reduced to configured maximum")
		k = maxK
	}

	if req.Interval != "" {
		if err := traffic.ValidateInterval(req.Interval); err != nil {
			return nil, err
		}
	}

	network, err := p.repo.GetByID(ctx, req.NetworkID)
	if err != nil {
		telemetry.SetError(ctx, err)
		return nil, err
	}

	// Переопределение точек отправления и назначения для одного запроса.
	// Неизвестные узлы отклоняются при пересборке графа.
	var base *domain.Graph
	if req.Origin != 0 || len(req.Destinations) > 0 {
		origin := network.Origin
		if req.Origin != 0 {
			origin = req.Origin
		}
		destinations := network.Destinations
		if len(req.Destinations) > 0 {
			destinations = req.Destinations
		}
		base, err = domain.NewGraph(network.Nodes, network.Edges, origin, destinations)
	} else {
		base, err = network.Graph()
	}
	if err != nil {
		return nil, err
	}

	var samples []traffic.FlowSample
	if req.Interval != "" {
		samples, err = p.repo.SamplesForInterval(ctx, req.NetworkID, req.Interval)
		if err != nil {
			telemetry.SetError(ctx, err)
			return nil, err
		}
	}

	weighted, report, err := p.builder.Build(base, samples, req.Interval)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, report.Warnings...)

	span.SetAttributes(telemetry.GraphAttributes(
		weighted.NodeCount(), weighted.EdgeCount(),
		weighted.Origin(), len(weighted.Destinations()))...)
	m.RecordGraphSize("route", weighted.NodeCount(), weighted.EdgeCount())
	m.RecordDegradedEdges(req.Interval, len(report.DegradedEdges))

	if p.routeCache != nil {
		cached, hit, err := p.routeCache.Get(ctx, weighted, req.Strategy, req.Interval, k)
		if err != nil {
			logger.Log.Warn("Route cache lookup failed", "error", err)
		} else if hit {
			m.RecordCacheHit("route")
			return &RouteResponse{
				NetworkID:   req.NetworkID,
				NetworkName: network.Name,
				Strategy:    req.Strategy,
				Interval:    req.Interval,
				K:           k,
				Paths:       cached.Paths,
				Warnings:    cached.Warnings,
				Cached:      true,
				DurationMs:  float64(time.Since(start).Microseconds()) / 1000,
			}, nil
		}
		m.RecordCacheMiss("route")
	}

	searchCtx := ctx
	if p.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, p.cfg.SearchTimeout)
		defer cancel()
	}

	engine := kshortest.New(searcher, p.cfg.MaxIterations)
	results, err := engine.TopK(searchCtx, weighted, k)
	if err != nil {
		telemetry.SetError(ctx, err)
		m.RecordRouteRequest(req.Strategy, false, time.Since(start), 0)
		return nil, err
	}
	if len(results) < k {
		if len(results) == 0 {
			warnings = append(warnings, "no route exists from origin to any destination")
		} else {
			warnings = append(warnings, "fewer distinct routes exist than requested")
		}
	}

	paths := make([]domain.PathResult, 0, len(results))
	totalExpanded := 0
	for _, r := range results {
		paths = append(paths, domain.PathResult{
			Nodes:      r.Path,
			TravelTime: r.Cost,
			Expanded:   r.Expanded,
			Strategy:   req.Strategy,
		})
		totalExpanded += r.Expanded
	}

	span.SetAttributes(telemetry.SearchAttributes(req.Strategy, k, totalExpanded, len(paths))...)
	span.SetAttributes(attribute.String("routing.interval", req.Interval))
	m.RecordSearch(req.Strategy, totalExpanded, len(paths))

	best := 0.0
	if len(paths) > 0 {
		best = paths[0].TravelTime
	}
	m.RecordRouteRequest(req.Strategy, len(paths) > 0, time.Since(start), best)

	if p.routeCache != nil && len(paths) > 0 {
		entry := &cache.CachedRoute{
			Paths:    paths,
			Strategy: req.Strategy,
			Interval: req.Interval,
			K:        k,
			Warnings: warnings,
		}
		if err := p.routeCache.Set(ctx, weighted, req.Strategy, req.Interval, k, entry, 0); err != nil {
			logger.Log.Warn("Route cache store failed", "error", err)
		}
	}

	return &RouteResponse{
		NetworkID:   req.NetworkID,
		NetworkName: network.Name,
		Strategy:    req.Strategy,
		Interval:    req.Interval,
		K:           k,
		Paths:       paths,
		Warnings:    warnings,
		Cached:      false,
		DurationMs:  float64(time.Since(start).Microseconds()) / 1000,
	}, nil
}

// Preview взвешивает сеть без поиска маршрута. Используется для проверки
// покрытия наблюдениями перед запросом маршрутов.
func (p *RoutingPipeline) Preview(ctx context.Context, networkID, interval string) (*builder.Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "RoutingPipeline.Preview")
	defer span.End()

	if interval != "" {
		if err := traffic.ValidateInterval(interval); err != nil {
			return nil, err
		}
	}

	network, err := p.repo.GetByID(ctx, networkID)
	if err != nil {
		return nil, err
	}
	base, err := network.Graph()
	if err != nil {
		return nil, err
	}

	var samples []traffic.FlowSample
	if interval != "" {
		samples, err = p.repo.SamplesForInterval(ctx, networkID, interval)
		if err != nil {
			return nil, err
		}
	}

	_, report, err := p.builder.Build(base, samples, interval)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(telemetry.TrafficAttributes(interval,
		len(report.DefaultedEdges), len(report.DegradedEdges))...)

	return report, nil
}
