// services/router-svc/factory.go
package routersvc

import (
	"routeguide/pkg/config"
	"routeguide/services/router-svc/internal/builder"
	"routeguide/services/router-svc/internal/repository"
	"routeguide/services/router-svc/internal/service"
	"routeguide/services/router-svc/internal/traffic"
)

// NewBenchmarkPipeline создаёт конвейер маршрутизации с in-memory
// хранилищем для внешних бенчмарков, без HTTP слоя и кэша.
func NewBenchmarkPipeline(cfg config.RoutingConfig) (*service.RoutingPipeline, repository.NetworkRepository) {
	repo := repository.NewMemoryNetworkRepository()
	converter := traffic.NewConverter(traffic.Config{
		CoeffA:            cfg.CoeffA,
		CoeffB:            cfg.CoeffB,
		SpeedLimitKmh:     cfg.SpeedLimitKmh,
		FreeFlowVolume:    cfg.FreeFlowVolume,
		FixedDelaySeconds: cfg.FixedDelaySeconds,
		MinCrawlSpeedKmh:  cfg.MinCrawlSpeedKmh,
	})
	pipeline := service.NewRoutingPipeline(repo, builder.New(converter, cfg.DefaultVolume), nil, cfg)
	return pipeline, repo
}
