package repository

import (
	"context"
	"time"

	"routeguide/pkg/apperror"
	"routeguide/pkg/domain"

	"routeguide/services/router-svc/internal/traffic"
)

// Стандартные ошибки
var (
	ErrNetworkNotFound = apperror.New(apperror.CodeNotFound, "network not found")
)

// Network модель дорожной сети
type Network struct {
	ID           string
	Name         string
	Description  string
	Origin       int64
	Destinations []int64
	Nodes        []domain.Node // хранится как JSONB
	Edges        []domain.Edge // хранится как JSONB
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Graph строит валидированный граф из сохранённой сети
func (n *Network) Graph() (*domain.Graph, error) {
	return domain.NewGraph(n.Nodes, n.Edges, n.Origin, n.Destinations)
}

// NetworkSummary краткая информация о сети
type NetworkSummary struct {
	ID        string
	Name      string
	NodeCount int
	EdgeCount int
	CreatedAt time.Time
}

// ListOptions опции для списка сетей
type ListOptions struct {
	Limit  int
	Offset int
}

// NetworkRepository доступ к сетям и наблюдениям трафика
type NetworkRepository interface {
	Create(ctx context.Context, network *Network) error
	GetByID(ctx context.Context, id string) (*Network, error)
	List(ctx context.Context, opts ListOptions) ([]*NetworkSummary, error)
	Delete(ctx context.Context, id string) error

	SaveSamples(ctx context.Context, networkID string, samples []traffic.FlowSample) error
	SamplesForInterval(ctx context.Context, networkID, interval string) ([]traffic.FlowSample, error)
}
