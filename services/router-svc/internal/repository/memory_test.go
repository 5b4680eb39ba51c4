package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeguide/services/router-svc/internal/traffic"
)

func TestMemoryNetworkRepository_CRUD(t *testing.T) {
	repo := NewMemoryNetworkRepository()
	ctx := context.Background()

	network := sampleNetwork()
	require.NoError(t, repo.Create(ctx, network))
	require.NotEmpty(t, network.ID)

	got, err := repo.GetByID(ctx, network.ID)
	require.NoError(t, err)
	assert.Equal(t, "downtown", got.Name)
	assert.Equal(t, int64(1), got.Origin)

	summaries, err := repo.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].NodeCount)
	assert.Equal(t, 2, summaries[0].EdgeCount)

	require.NoError(t, repo.Delete(ctx, network.ID))
	_, err = repo.GetByID(ctx, network.ID)
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestMemoryNetworkRepository_NotFound(t *testing.T) {
	repo := NewMemoryNetworkRepository()
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNetworkNotFound)
	assert.ErrorIs(t, repo.SaveSamples(ctx, "missing", nil), ErrNetworkNotFound)
	_, err = repo.SamplesForInterval(ctx, "missing", "0830")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestMemoryNetworkRepository_Samples(t *testing.T) {
	repo := NewMemoryNetworkRepository()
	ctx := context.Background()

	network := sampleNetwork()
	require.NoError(t, repo.Create(ctx, network))

	samples := []traffic.FlowSample{
		{From: 2, To: 3, Interval: "0830", Volume: 17},
		{From: 1, To: 2, Interval: "0830", Volume: 42},
		{From: 1, To: 2, Interval: "0845", Volume: 99},
	}
	require.NoError(t, repo.SaveSamples(ctx, network.ID, samples))

	got, err := repo.SamplesForInterval(ctx, network.ID, "0830")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Отсортированы по рёбрам
	assert.Equal(t, int64(1), got[0].From)
	assert.Equal(t, int64(2), got[1].From)

	// Повторное наблюдение замещает прежнее
	require.NoError(t, repo.SaveSamples(ctx, network.ID, []traffic.FlowSample{
		{From: 1, To: 2, Interval: "0830", Volume: 50},
	}))
	got, err = repo.SamplesForInterval(ctx, network.ID, "0830")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 50.0, got[0].Volume)
}

func TestMemoryNetworkRepository_ListPagination(t *testing.T) {
	repo := NewMemoryNetworkRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		n := sampleNetwork()
		n.Name = "net"
		require.NoError(t, repo.Create(ctx, n))
	}

	page, err := repo.List(ctx, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := repo.List(ctx, ListOptions{Offset: 4})
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	empty, err := repo.List(ctx, ListOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
