package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"routeguide/pkg/database"
	"routeguide/pkg/domain"
	"routeguide/pkg/telemetry"

	"routeguide/services/router-svc/internal/traffic"
)

// PostgresNetworkRepository PostgreSQL реализация
type PostgresNetworkRepository struct {
	db database.DB
}

// NewPostgresNetworkRepository создаёт новый репозиторий
func NewPostgresNetworkRepository(db database.DB) *PostgresNetworkRepository {
	return &PostgresNetworkRepository{db: db}
}

func (r *PostgresNetworkRepository) Create(ctx context.Context, network *Network) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresNetworkRepository.Create")
	defer span.End()

	nodes, edges, err := marshalTopology(network)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO networks (
			name, description, origin, destinations, nodes, edges
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRow(ctx, query,
		network.Name,
		network.Description,
		network.Origin,
		network.Destinations,
		nodes,
		edges,
	).Scan(&network.ID, &network.CreatedAt, &network.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create network: %w", err)
	}

	return nil
}

func (r *PostgresNetworkRepository) GetByID(ctx context.Context, id string) (*Network, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresNetworkRepository.GetByID")
	defer span.End()

	query := `
		SELECT
			id, name, description, origin, destinations, nodes, edges,
			created_at, updated_at
		FROM networks
		WHERE id = $1
	`

	network := &Network{}
	var nodes, edges []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&network.ID,
		&network.Name,
		&network.Description,
		&network.Origin,
		&network.Destinations,
		&nodes,
		&edges,
		&network.CreatedAt,
		&network.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNetworkNotFound
		}
		return nil, fmt.Errorf("failed to get network: %w", err)
	}

	if err := json.Unmarshal(nodes, &network.Nodes); err != nil {
		return nil, fmt.Errorf("failed to decode network nodes: %w", err)
	}
	if err := json.Unmarshal(edges, &network.Edges); err != nil {
		return nil, fmt.Errorf("failed to decode network edges: %w", err)
	}

	return network, nil
}

func (r *PostgresNetworkRepository) List(ctx context.Context, opts ListOptions) ([]*NetworkSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresNetworkRepository.List")
	defer span.End()

	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT
			id, name,
			jsonb_array_length(nodes) AS node_count,
			jsonb_array_length(edges) AS edge_count,
			created_at
		FROM networks
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}
	defer rows.Close()

	var summaries []*NetworkSummary
	for rows.Next() {
		s := &NetworkSummary{}
		if err := rows.Scan(&s.ID, &s.Name, &s.NodeCount, &s.EdgeCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan network summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate networks: %w", err)
	}

	return summaries, nil
}

func (r *PostgresNetworkRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresNetworkRepository.Delete")
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM networks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete network: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNetworkNotFound
	}

	return nil
}

func (r *PostgresNetworkRepository) SaveSamples(ctx context.Context, networkID string, samples []traffic.FlowSample) error {
	ctx, span := telemetry.StartSpan(ctx, "PostgresNetworkRepository.SaveSamples")
	defer span.End()

	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO flow_samples (network_id, from_node, to_node, interval, volume)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (network_id, from_node, to_node, interval)
			DO UPDATE SET volume = EXCLUDED.volume, recorded_at = now()
		`
		for _, s := range samples {
			if _, err := tx.Exec(ctx, query, networkID, s.From, s.To, s.Interval, s.Volume); err != nil {
				return fmt.Errorf("failed to save flow sample: %w", err)
			}
		}
		return nil
	})
}

func (r *PostgresNetworkRepository) SamplesForInterval(ctx context.Context, networkID, interval string) ([]traffic.FlowSample, error) {
	ctx, span := telemetry.StartSpan(ctx, "PostgresNetworkRepository.SamplesForInterval")
	defer span.End()

	query := `
		SELECT from_node, to_node, interval, volume
		FROM flow_samples
		WHERE network_id = $1 AND interval = $2
		ORDER BY from_node, to_node
	`

	rows, err := r.db.Query(ctx, query, networkID, interval)
	if err != nil {
		return nil, fmt.Errorf("failed to query flow samples: %w", err)
	}
	defer rows.Close()

	var samples []traffic.FlowSample
	for rows.Next() {
		var s traffic.FlowSample
		if err := rows.Scan(&s.From, &s.To, &s.Interval, &s.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan flow sample: %w", err)
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flow samples: %w", err)
	}

	return samples, nil
}

// marshalTopology сериализует узлы и рёбра в JSONB
func marshalTopology(network *Network) (nodes, edges []byte, err error) {
	if network.Nodes == nil {
		network.Nodes = []domain.Node{}
	}
	if network.Edges == nil {
		network.Edges = []domain.Edge{}
	}

	nodes, err = json.Marshal(network.Nodes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode network nodes: %w", err)
	}
	edges, err = json.Marshal(network.Edges)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode network edges: %w", err)
	}
	return nodes, edges, nil
}
