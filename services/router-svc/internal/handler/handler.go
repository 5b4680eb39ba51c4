// Package handler содержит HTTP-обработчики сервиса маршрутизации.
package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb"

	"routeguide/pkg/auth"
	"routeguide/pkg/domain"
	"routeguide/pkg/server"

	"routeguide/services/router-svc/internal/export"
	"routeguide/services/router-svc/internal/repository"
	"routeguide/services/router-svc/internal/service"
	"routeguide/services/router-svc/internal/strategy"
	"routeguide/services/router-svc/internal/traffic"
)

// Handler обработчики HTTP API
type Handler struct {
	repo     repository.NetworkRepository
	pipeline *service.RoutingPipeline
}

// New создаёт обработчики
func New(repo repository.NetworkRepository, pipeline *service.RoutingPipeline) *Handler {
	return &Handler{repo: repo, pipeline: pipeline}
}

// Register регистрирует маршруты. Изменяющие сеть операции защищаются
// JWT, если авторизация включена.
func (h *Handler) Register(e *echo.Echo, jwtManager *auth.JWTManager) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api/v1")
	api.GET("/strategies", h.Strategies)
	api.GET("/networks", h.ListNetworks)
	api.GET("/networks/:id", h.GetNetwork)
	api.GET("/networks/:id/report", h.NetworkReport)
	api.POST("/routes", h.Route)
	api.POST("/routes/export", h.ExportRoutes)

	mutating := api.Group("")
	if jwtManager != nil {
		mutating.Use(server.JWTMiddleware(jwtManager))
	}
	mutating.POST("/networks", h.CreateNetwork)
	mutating.DELETE("/networks/:id", h.DeleteNetwork)
	mutating.POST("/networks/:id/samples", h.UploadSamples)
}

// Health проверка живости сервиса
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Strategies возвращает поддерживаемые стратегии поиска
func (h *Handler) Strategies(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"strategies": strategy.Names()})
}

type nodeDTO struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type edgeDTO struct {
	From      int64   `json:"from"`
	To        int64   `json:"to"`
	DistanceM float64 `json:"distance_m"`
}

type createNetworkRequest struct {
	Name         string    `json:"name" validate:"required"`
	Description  string    `json:"description"`
	Origin       int64     `json:"origin"`
	Destinations []int64   `json:"destinations" validate:"required,min=1"`
	Nodes        []nodeDTO `json:"nodes" validate:"required,min=1"`
	Edges        []edgeDTO `json:"edges"`
}

// CreateNetwork сохраняет новую дорожную сеть
func (h *Handler) CreateNetwork(c echo.Context) error {
	var req createNetworkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	network := &repository.Network{
		Name:         req.Name,
		Description:  req.Description,
		Origin:       req.Origin,
		Destinations: req.Destinations,
		Nodes:        make([]domain.Node, 0, len(req.Nodes)),
		Edges:        make([]domain.Edge, 0, len(req.Edges)),
	}
	for _, n := range req.Nodes {
		network.Nodes = append(network.Nodes, domain.Node{ID: n.ID, Point: orb.Point{n.X, n.Y}})
	}
	for _, e := range req.Edges {
		network.Edges = append(network.Edges, domain.Edge{From: e.From, To: e.To, DistanceM: e.DistanceM})
	}

	// Невалидная топология отклоняется до сохранения
	if _, err := network.Graph(); err != nil {
		return err
	}

	if err := h.repo.Create(c.Request().Context(), network); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{"id": network.ID})
}

// ListNetworks возвращает список сетей
func (h *Handler) ListNetworks(c echo.Context) error {
	var opts repository.ListOptions
	echo.QueryParamsBinder(c).Int("limit", &opts.Limit).Int("offset", &opts.Offset)

	summaries, err := h.repo.List(c.Request().Context(), opts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"networks": summaries})
}

// GetNetwork возвращает сеть по идентификатору
func (h *Handler) GetNetwork(c echo.Context) error {
	network, err := h.repo.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, network)
}

// DeleteNetwork удаляет сеть
func (h *Handler) DeleteNetwork(c echo.Context) error {
	if err := h.repo.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type sampleDTO struct {
	From     int64   `json:"from"`
	To       int64   `json:"to"`
	Interval string  `json:"interval"`
	Volume   float64 `json:"volume"`
}

type uploadSamplesRequest struct {
	Samples []sampleDTO `json:"samples" validate:"required,min=1"`
}

// UploadSamples сохраняет наблюдения трафика для сети
func (h *Handler) UploadSamples(c echo.Context) error {
	var req uploadSamplesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	samples := make([]traffic.FlowSample, 0, len(req.Samples))
	for _, s := range req.Samples {
		sample := traffic.FlowSample{From: s.From, To: s.To, Interval: s.Interval, Volume: s.Volume}
		if err := sample.Validate(); err != nil {
			return err
		}
		samples = append(samples, sample)
	}

	if err := h.repo.SaveSamples(c.Request().Context(), c.Param("id"), samples); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]int{"saved": len(samples)})
}

// NetworkReport возвращает отчёт о покрытии сети наблюдениями
func (h *Handler) NetworkReport(c echo.Context) error {
	report, err := h.pipeline.Preview(c.Request().Context(), c.Param("id"), c.QueryParam("interval"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

type routeRequest struct {
	NetworkID string `json:"network_id" validate:"required"`
	Strategy  string `json:"strategy" validate:"required"`
	Interval  string `json:"interval"`
	K         int    `json:"k"`

	// Переопределяют сохранённые в сети точки для одного запроса
	Origin       int64   `json:"origin"`
	Destinations []int64 `json:"destinations"`
}

// Route находит маршруты по запросу
func (h *Handler) Route(c echo.Context) error {
	var req routeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.pipeline.Route(c.Request().Context(), service.RouteRequest{
		NetworkID:    req.NetworkID,
		Strategy:     req.Strategy,
		Interval:     req.Interval,
		K:            req.K,
		Origin:       req.Origin,
		Destinations: req.Destinations,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

type exportRequest struct {
	routeRequest
	Format string `json:"format"`
}

// ExportRoutes находит маршруты и выгружает их файлом
func (h *Handler) ExportRoutes(c echo.Context) error {
	var req exportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	exporter, err := export.ForFormat(export.Format(req.Format))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	resp, err := h.pipeline.Route(ctx, service.RouteRequest{
		NetworkID:    req.NetworkID,
		Strategy:     req.Strategy,
		Interval:     req.Interval,
		K:            req.K,
		Origin:       req.Origin,
		Destinations: req.Destinations,
	})
	if err != nil {
		return err
	}

	data, err := exporter.Export(ctx, &export.ExportData{
		NetworkName: resp.NetworkName,
		Response:    resp,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	fileName := export.FileName(exporter.Format(), resp.NetworkName)
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)

	return c.Blob(http.StatusOK, exporter.ContentType(), data)
}
