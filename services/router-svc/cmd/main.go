// Package main is the entry point for the router-svc microservice.
//
// router-svc provides traffic-aware route guidance as an HTTP API. Given a
// road network, traffic flow observations and a search strategy, it computes
// the top-k fastest routes from an origin to one or more destinations.
//
// # Service Overview
//
// The router service exposes the following capabilities via REST:
//   - Road network management (create, list, inspect, delete)
//   - Traffic flow sample ingestion per 15-minute interval
//   - Route search with six strategies (bfs, dfs, gbfs, astar, cus1, cus2)
//   - Top-k alternative routes via Yen's algorithm
//   - Route export in CSV, JSON and Excel formats
//   - Result caching keyed by network topology, strategy, interval and k
//
// # Architecture
//
// The service follows a clean architecture pattern with clear separation of concerns:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                    HTTP Transport Layer                     │
//	│  Middleware: request-id, logging, metrics, tracing, JWT     │
//	│  (internal/handler/handler.go)                              │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Service Layer                          │
//	│  (internal/service/pipeline.go - RoutingPipeline)           │
//	│  - Request validation and k clamping                        │
//	│  - Weighting + search orchestration                         │
//	│  - Caching logic                                            │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Search Layer                           │
//	│  (internal/strategy/*.go, internal/kshortest/*.go)          │
//	│  - BFS, DFS, Greedy Best-First, A*                          │
//	│  - Uniform-cost and bidirectional uniform-cost search       │
//	│  - Yen's top-k simple paths over masked graphs              │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Traffic Layer                          │
//	│  (internal/traffic/*.go, internal/builder/*.go)             │
//	│  - Flow-to-speed conversion (calibrated parabola)           │
//	│  - Travel-time edge weighting with default-volume fallback  │
//	├─────────────────────────────────────────────────────────────┤
//	│                      Storage Layer                          │
//	│  (internal/repository/*.go)                                 │
//	│  - PostgreSQL (pgx) or in-memory network repository         │
//	│  - Flow sample persistence per network and interval         │
//	└─────────────────────────────────────────────────────────────┘
//
// # Configuration
//
// Configuration is loaded with the following priority (highest to lowest):
//  1. Environment variables (prefix: ROUTEGUIDE_)
//  2. Config files (config.yaml, config/config.yaml, /etc/routeguide/config.yaml)
//  3. Default values
//
// Key configuration options (environment variable format):
//
//	# Application
//	ROUTEGUIDE_APP_NAME           - Service name (default: router-svc)
//	ROUTEGUIDE_APP_VERSION        - Service version (default: 1.0.0)
//	ROUTEGUIDE_APP_ENVIRONMENT    - Environment: development, staging, production
//
//	# HTTP Server
//	ROUTEGUIDE_HTTP_PORT             - HTTP server port (default: 8080)
//	ROUTEGUIDE_HTTP_READ_TIMEOUT     - Read timeout (default: 15s)
//	ROUTEGUIDE_HTTP_WRITE_TIMEOUT    - Write timeout (default: 30s)
//	ROUTEGUIDE_HTTP_SHUTDOWN_TIMEOUT - Graceful shutdown timeout (default: 30s)
//
//	# Logging
//	ROUTEGUIDE_LOG_LEVEL     - Log level: debug, info, warn, error (default: info)
//	ROUTEGUIDE_LOG_FORMAT    - Log format: json, text (default: json)
//	ROUTEGUIDE_LOG_OUTPUT    - Output: stdout, stderr, file (default: stdout)
//	ROUTEGUIDE_LOG_FILE_PATH - Log file path when output=file
//
//	# Database
//	ROUTEGUIDE_DATABASE_DRIVER       - Storage backend: postgres, memory (default: memory)
//	ROUTEGUIDE_DATABASE_HOST         - PostgreSQL host (default: localhost)
//	ROUTEGUIDE_DATABASE_PORT         - PostgreSQL port (default: 5432)
//	ROUTEGUIDE_DATABASE_AUTO_MIGRATE - Run goose migrations on startup (default: true)
//
//	# Caching
//	ROUTEGUIDE_CACHE_ENABLED     - Enable route caching (default: false)
//	ROUTEGUIDE_CACHE_DRIVER      - Cache backend: memory, redis (default: memory)
//	ROUTEGUIDE_CACHE_HOST        - Redis host (default: localhost)
//	ROUTEGUIDE_CACHE_PORT        - Redis port (default: 6379)
//	ROUTEGUIDE_CACHE_DEFAULT_TTL - Cache TTL duration (default: 5m)
//
//	# Routing model
//	ROUTEGUIDE_ROUTING_SPEED_LIMIT_KMH     - Free-flow speed in km/h (default: 60)
//	ROUTEGUIDE_ROUTING_FIXED_DELAY_SECONDS - Per-edge fixed delay (default: 30)
//	ROUTEGUIDE_ROUTING_FREE_FLOW_VOLUME    - Congestion threshold in veh/h (default: 351)
//	ROUTEGUIDE_ROUTING_DEFAULT_VOLUME      - Fallback volume for unobserved edges
//	ROUTEGUIDE_ROUTING_MAX_K               - Upper bound for requested k
//	ROUTEGUIDE_ROUTING_SEARCH_TIMEOUT      - Per-request search deadline
//
//	# Observability
//	ROUTEGUIDE_METRICS_ENABLED   - Expose Prometheus metrics (default: true)
//	ROUTEGUIDE_METRICS_PORT      - Metrics server port (default: 9090)
//	ROUTEGUIDE_TRACING_ENABLED   - Export OpenTelemetry traces (default: false)
//	ROUTEGUIDE_TRACING_ENDPOINT  - OTLP endpoint (e.g., localhost:4317)
//
//	# Security
//	ROUTEGUIDE_AUTH_ENABLED      - Require JWT for mutating endpoints
//	ROUTEGUIDE_AUTH_SECRET       - HMAC signing secret
//	ROUTEGUIDE_RATE_LIMIT_ENABLED - Enable per-client rate limiting
//	ROUTEGUIDE_AUDIT_ENABLED     - Write an audit log of API operations
//	ROUTEGUIDE_AUDIT_BACKEND     - Audit backend: stdout, file (default: stdout)
//
//	# Documentation
//	ROUTEGUIDE_SWAGGER_ENABLED   - Serve Swagger UI on a separate port
//	ROUTEGUIDE_SWAGGER_PORT      - Swagger UI port (default: 8081)
//
// # Middleware Chain
//
// Every request passes through (in order): request-id generation, panic
// recovery, body limit, CORS, rate limiting, request logging, metrics and
// tracing. Mutating endpoints additionally require a valid Bearer token when
// auth is enabled.
//
// # Health Checks
//
// GET /healthz returns 200 while the service is accepting traffic. Kubernetes
// liveness and readiness probes should target this endpoint.
//
// # Graceful Shutdown
//
// On SIGINT/SIGTERM the server stops accepting connections, waits up to
// ROUTEGUIDE_HTTP_SHUTDOWN_TIMEOUT for in-flight requests, flushes pending
// trace spans and closes the database pool.
//
// # Observability
//
// Prometheus metrics are served on the metrics port at /metrics. Key series:
//
//	routeguide_http_requests_total        - HTTP requests by method/path/status
//	routeguide_http_request_duration_seconds - Request latency histogram
//	routeguide_route_requests_total       - Route computations by strategy/outcome
//	routeguide_search_expanded_nodes      - Nodes expanded per search
//	routeguide_graph_edges                - Weighted graph size per build
//	routeguide_degraded_edges_total       - Edges clamped to crawl speed
//	routeguide_cache_hits_total           - Route cache hits/misses
//
// # Docker / Kubernetes
//
// The service is stateless when database.driver=memory and horizontally
// scalable when backed by PostgreSQL and Redis. A single container image
// serves both the API port and the metrics port.
package main

import (
	"context"
	"log"

	"routeguide/pkg/cache"
	"routeguide/pkg/config"
	"routeguide/pkg/logger"
	"routeguide/pkg/metrics"
	"routeguide/pkg/server"
	"routeguide/services/router-svc/internal/builder"
	"routeguide/services/router-svc/internal/handler"
	"routeguide/services/router-svc/internal/repository"
	"routeguide/services/router-svc/internal/service"
	"routeguide/services/router-svc/internal/traffic"
)

func main() {
	// =========================================================================
	// Configuration Loading
	// =========================================================================
	//
	// Load reads configuration with the following priority:
	//   1. Environment variables (ROUTEGUIDE_* prefix)
	//   2. Config files (config.yaml in standard locations)
	//   3. Default values from pkg/config/loader.go
	cfg, err := config.NewLoader().Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// =========================================================================
	// Logger Initialization
	// =========================================================================
	//
	// Supported outputs:
	//   - stdout/stderr: Direct console output
	//   - file: File output with automatic rotation (via lumberjack)
	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx := context.Background()

	// =========================================================================
	// Metrics Initialization (Prometheus)
	// =========================================================================
	//
	// Initializes Prometheus metrics with the configured namespace. The
	// metrics server itself is started by server.Run() on the metrics port.
	metrics.InitMetrics(cfg.Metrics.Namespace, cfg.App.Name)

	// =========================================================================
	// Repository Initialization
	// =========================================================================
	//
	// The repository stores road networks and traffic flow samples.
	// Supported drivers:
	//   - memory: In-process storage (single instance, data lost on restart)
	//   - postgres: pgx connection pool, goose migrations run on startup
	//     when database.auto_migrate is enabled
	repo, cleanup, err := repository.NewNetworkRepository(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("failed to init repository: %v", err)
	}
	defer cleanup()
	logger.Log.Info("Repository initialized", "driver", cfg.Database.Driver)

	// =========================================================================
	// Cache Initialization
	// =========================================================================
	//
	// The route cache stores computed responses keyed by network topology
	// hash, strategy, interval and k. Any change to the network or its
	// weights produces a different hash, so stale routes are never served.
	//
	// The cache is optional: the service continues without it if
	// initialization fails.
	var routeCache *cache.RouteCache
	if cfg.Cache.Enabled {
		baseCache, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Log.Warn("Failed to create cache, continuing without cache", "error", err)
		} else {
			routeCache = cache.NewRouteCache(baseCache, cfg.Cache.DefaultTTL)
			logger.Log.Info("Route cache initialized",
				"driver", cfg.Cache.Driver,
				"ttl", cfg.Cache.DefaultTTL,
			)
		}
	}

	// =========================================================================
	// Routing Pipeline Assembly
	// =========================================================================
	//
	// Converter: calibrated flow-to-speed model producing edge travel times.
	// Builder:   weighs a network for a given interval, falling back to the
	//            configured default volume for unobserved edges.
	// Pipeline:  orchestrates repository, builder, search and cache.
	converter := traffic.NewConverter(traffic.Config{
		CoeffA:            cfg.Routing.CoeffA,
		CoeffB:            cfg.Routing.CoeffB,
		SpeedLimitKmh:     cfg.Routing.SpeedLimitKmh,
		FreeFlowVolume:    cfg.Routing.FreeFlowVolume,
		FixedDelaySeconds: cfg.Routing.FixedDelaySeconds,
		MinCrawlSpeedKmh:  cfg.Routing.MinCrawlSpeedKmh,
	})
	weigher := builder.New(converter, cfg.Routing.DefaultVolume)
	pipeline := service.NewRoutingPipeline(repo, weigher, routeCache, cfg.Routing)

	// =========================================================================
	// HTTP Server Creation and Route Registration
	// =========================================================================
	//
	// server.New creates an echo server with the full middleware chain
	// (request-id, recovery, body limit, CORS, rate limiting, logging,
	// metrics, tracing). Mutating endpoints are JWT-protected when auth
	// is enabled.
	srv := server.New(cfg)
	handler.New(repo, pipeline).Register(srv.Echo(), srv.JWTManager())

	logger.Log.Info("Starting router service",
		"port", cfg.HTTP.Port,
		"environment", cfg.App.Environment,
		"version", cfg.App.Version,
		"database", cfg.Database.Driver,
		"cache_enabled", routeCache != nil,
	)

	// =========================================================================
	// Run Server (Blocking)
	// =========================================================================
	//
	// srv.Run() initializes telemetry, starts the metrics server, binds the
	// HTTP port and blocks until a shutdown signal arrives, then drains
	// in-flight requests within the configured shutdown timeout.
	if err := srv.Run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
