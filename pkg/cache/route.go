package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"routeguide/pkg/domain"
)

// RouteCache специализированный кэш для результатов маршрутизации
type RouteCache struct {
	cache      Cache
	defaultTTL time.Duration
}

// CachedRoute кэшированный результат маршрутизации
type CachedRoute struct {
	Paths      []domain.PathResult `json:"paths"`
	Strategy   string              `json:"strategy"`
	Interval   string              `json:"interval,omitempty"`
	K          int                 `json:"k"`
	Warnings   []string            `json:"warnings,omitempty"`
	ComputedAt time.Time           `json:"computed_at"`
}

// NewRouteCache создаёт кэш для результатов маршрутизации
func NewRouteCache(cache Cache, defaultTTL time.Duration) *RouteCache {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	return &RouteCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}
}

// Get получает кэшированный результат
func (rc *RouteCache) Get(ctx context.Context, g *domain.Graph, strategy, interval string, k int) (*CachedRoute, bool, error) {
	key := BuildRouteKey(NetworkHash(g), strategy, interval, k)

	data, err := rc.cache.Get(ctx, key)
	if err != nil {
		if err == ErrKeyNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	var route CachedRoute
	if err := json.Unmarshal(data, &route); err != nil {
		// Повреждённый кэш — удаляем, ошибку удаления игнорируем намеренно
		_ = rc.cache.Delete(ctx, key) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}

	return &route, true, nil
}

// Set сохраняет результат в кэш
func (rc *RouteCache) Set(ctx context.Context, g *domain.Graph, strategy, interval string, k int, route *CachedRoute, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = rc.defaultTTL
	}

	key := BuildRouteKey(NetworkHash(g), strategy, interval, k)

	route.ComputedAt = time.Now()

	data, err := json.Marshal(route)
	if err != nil {
		return err
	}

	return rc.cache.Set(ctx, key, data, ttl)
}

// Invalidate удаляет все кэшированные результаты для сети
func (rc *RouteCache) Invalidate(ctx context.Context, g *domain.Graph) error {
	pattern := fmt.Sprintf("route:*:%s", NetworkHash(g))
	_, err := rc.cache.DeleteByPattern(ctx, pattern)
	return err
}

// InvalidateAll удаляет весь кэш маршрутов
func (rc *RouteCache) InvalidateAll(ctx context.Context) (int64, error) {
	return rc.cache.DeleteByPattern(ctx, "route:*")
}
