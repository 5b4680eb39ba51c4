package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeguide/pkg/domain"

	"routeguide/services/router-svc/internal/traffic"
)

// ============================================================
// MOCK DB ADAPTER
// ============================================================

type pgxMockAdapter struct {
	mock pgxmock.PgxPoolIface
}

func (a *pgxMockAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return a.mock.Exec(ctx, sql, args...)
}

func (a *pgxMockAdapter) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return a.mock.Query(ctx, sql, args...)
}

func (a *pgxMockAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return a.mock.QueryRow(ctx, sql, args...)
}

func (a *pgxMockAdapter) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return a.mock.BeginTx(ctx, txOptions)
}

func (a *pgxMockAdapter) Close() {
	a.mock.Close()
}

func (a *pgxMockAdapter) Ping(ctx context.Context) error {
	return a.mock.Ping(ctx)
}

// ============================================================
// HELPER FUNCTIONS
// ============================================================

func setupMockDB(t *testing.T) (pgxmock.PgxPoolIface, *PostgresNetworkRepository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	adapter := &pgxMockAdapter{mock: mock}
	repo := NewPostgresNetworkRepository(adapter)

	return mock, repo
}

func sampleNetwork() *Network {
	return &Network{
		Name:         "downtown",
		Description:  "city center arterials",
		Origin:       1,
		Destinations: []int64{3},
		Nodes: []domain.Node{
			{ID: 1}, {ID: 2}, {ID: 3},
		},
		Edges: []domain.Edge{
			{From: 1, To: 2, DistanceM: 1000},
			{From: 2, To: 3, DistanceM: 1000},
		},
	}
}

// ============================================================
// CREATE TESTS
// ============================================================

func TestPostgresNetworkRepository_Create_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	ctx := context.Background()
	now := time.Now()
	network := sampleNetwork()

	rows := pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
		AddRow("net-123", now, now)

	mock.ExpectQuery(`INSERT INTO networks`).
		WithArgs(
			network.Name,
			network.Description,
			network.Origin,
			network.Destinations,
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).
		WillReturnRows(rows)

	err := repo.Create(ctx, network)
	require.NoError(t, err)
	assert.Equal(t, "net-123", network.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresNetworkRepository_Create_Error(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO networks`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	err := repo.Create(context.Background(), sampleNetwork())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create network")
}

// ============================================================
// GET TESTS
// ============================================================

func TestPostgresNetworkRepository_GetByID_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	now := time.Now()
	nodes := []byte(`[{"ID":1,"Point":[0,0]},{"ID":2,"Point":[1000,0]}]`)
	edges := []byte(`[{"From":1,"To":2,"DistanceM":1000,"Cost":1000}]`)

	rows := pgxmock.NewRows([]string{
		"id", "name", "description", "origin", "destinations",
		"nodes", "edges", "created_at", "updated_at",
	}).AddRow("net-123", "downtown", "", int64(1), []int64{2}, nodes, edges, now, now)

	mock.ExpectQuery(`SELECT`).WithArgs("net-123").WillReturnRows(rows)

	network, err := repo.GetByID(context.Background(), "net-123")
	require.NoError(t, err)
	assert.Equal(t, "downtown", network.Name)
	require.Len(t, network.Nodes, 2)
	require.Len(t, network.Edges, 1)
	assert.Equal(t, int64(1), network.Origin)
	assert.Equal(t, []int64{2}, network.Destinations)

	g, err := network.Graph()
	require.NoError(t, err)
	assert.Equal(t, 2, g.NodeCount())
}

func TestPostgresNetworkRepository_GetByID_NotFound(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

// ============================================================
// LIST TESTS
// ============================================================

func TestPostgresNetworkRepository_List_Success(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "name", "node_count", "edge_count", "created_at"}).
		AddRow("net-1", "downtown", 10, 20, now).
		AddRow("net-2", "suburbs", 5, 8, now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT`).WithArgs(50, 0).WillReturnRows(rows)

	summaries, err := repo.List(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "net-1", summaries[0].ID)
	assert.Equal(t, 10, summaries[0].NodeCount)
}

// ============================================================
// DELETE TESTS
// ============================================================

func TestPostgresNetworkRepository_Delete(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM networks`).
		WithArgs("net-123").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.Delete(context.Background(), "net-123"))

	mock.ExpectExec(`DELETE FROM networks`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

// ============================================================
// SAMPLE TESTS
// ============================================================

func TestPostgresNetworkRepository_SaveSamples(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	samples := []traffic.FlowSample{
		{From: 1, To: 2, Interval: "0830", Volume: 42},
		{From: 2, To: 3, Interval: "0830", Volume: 17},
	}

	mock.ExpectBeginTx(pgx.TxOptions{})
	for _, s := range samples {
		mock.ExpectExec(`INSERT INTO flow_samples`).
			WithArgs("net-123", s.From, s.To, s.Interval, s.Volume).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	err := repo.SaveSamples(context.Background(), "net-123", samples)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresNetworkRepository_SamplesForInterval(t *testing.T) {
	mock, repo := setupMockDB(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"from_node", "to_node", "interval", "volume"}).
		AddRow(int64(1), int64(2), "0830", 42.0).
		AddRow(int64(2), int64(3), "0830", 17.0)

	mock.ExpectQuery(`SELECT`).WithArgs("net-123", "0830").WillReturnRows(rows)

	samples, err := repo.SamplesForInterval(context.Background(), "net-123", "0830")
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 168.0, samples[0].VolumePerHour())
}
