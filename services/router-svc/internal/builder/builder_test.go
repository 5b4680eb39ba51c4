package builder

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeguide/pkg/apperror"
	"routeguide/pkg/domain"

	"routeguide/services/router-svc/internal/traffic"
)

func testNetwork(t *testing.T) *domain.Graph {
	t.Helper()
	nodes := []domain.Node{
		{ID: 1, Point: orb.Point{0, 0}},
		{ID: 2, Point: orb.Point{1000, 0}},
		{ID: 3, Point: orb.Point{1000, 1000}},
	}
	edges := []domain.Edge{
		{From: 1, To: 2, DistanceM: 1000},
		{From: 2, To: 3, DistanceM: 1000},
	}
	g, err := domain.NewGraph(nodes, edges, 1, []int64{3})
	require.NoError(t, err)
	return g
}

func testBuilder() *Builder {
	return New(traffic.NewConverter(traffic.Config{}), 120)
}

func TestBuilder_Build(t *testing.T) {
	base := testNetwork(t)
	samples := []traffic.FlowSample{
		{From: 1, To: 2, Interval: "0830", Volume: 50}, // 200 veh/h, free flow
		{From: 2, To: 3, Interval: "0830", Volume: 50},
	}

	weighted, report, err := testBuilder().Build(base, samples, "0830")
	require.NoError(t, err)
	require.NotNil(t, weighted)

	assert.True(t, weighted.TimeWeighted())
	assert.Empty(t, report.DefaultedEdges)
	assert.Empty(t, report.DegradedEdges)
	assert.Equal(t, 2, report.EdgeCount)

	// 200 veh/h is below the free-flow threshold: 60 s drive + 30 s delay
	cost, ok := weighted.EdgeCost(1, 2)
	require.True(t, ok)
	assert.InDelta(t, 90.0, cost, 1e-9)

	// The base network keeps its distance weights
	cost, ok = base.EdgeCost(1, 2)
	require.True(t, ok)
	assert.Equal(t, 1000.0, cost)
}

func TestBuilder_DefaultVolumeFallback(t *testing.T) {
	base := testNetwork(t)
	samples := []traffic.FlowSample{
		{From: 1, To: 2, Interval: "0830", Volume: 50},
	}

	weighted, report, err := testBuilder().Build(base, samples, "0830")
	require.NoError(t, err)

	require.Equal(t, []domain.EdgeKey{{From: 2, To: 3}}, report.DefaultedEdges)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "default volume")

	e, ok := weighted.Edge(2, 3)
	require.True(t, ok)
	assert.True(t, e.Defaulted)
}

func TestBuilder_DegradedEdge(t *testing.T) {
	base := testNetwork(t)
	samples := []traffic.FlowSample{
		{From: 1, To: 2, Volume: 400}, // 1600 veh/h, beyond model capacity
		{From: 2, To: 3, Volume: 50},
	}

	weighted, report, err := testBuilder().Build(base, samples, "")
	require.NoError(t, err)

	require.Equal(t, []domain.EdgeKey{{From: 1, To: 2}}, report.DegradedEdges)

	e, ok := weighted.Edge(1, 2)
	require.True(t, ok)
	assert.True(t, e.Degraded)

	// Crawl speed, 5 km/h over 1 km
	cost, ok := weighted.EdgeCost(1, 2)
	require.True(t, ok)
	assert.InDelta(t, 1000/(5.0/3.6)+30, cost, 1e-6)
}

func TestBuilder_FiltersOtherIntervals(t *testing.T) {
	base := testNetwork(t)
	samples := []traffic.FlowSample{
		{From: 1, To: 2, Interval: "0815", Volume: 400},
		{From: 1, To: 2, Interval: "0830", Volume: 50},
		{From: 2, To: 3, Interval: "0830", Volume: 50},
	}

	weighted, report, err := testBuilder().Build(base, samples, "0830")
	require.NoError(t, err)
	assert.Empty(t, report.DegradedEdges)

	cost, ok := weighted.EdgeCost(1, 2)
	require.True(t, ok)
	assert.InDelta(t, 90.0, cost, 1e-9)
}

func TestBuilder_UnknownSegmentWarning(t *testing.T) {
	base := testNetwork(t)
	samples := []traffic.FlowSample{
		{From: 1, To: 2, Volume: 50},
		{From: 2, To: 3, Volume: 50},
		{From: 7, To: 8, Volume: 50},
	}

	_, report, err := testBuilder().Build(base, samples, "")
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "unknown segment")
}

func TestBuilder_Errors(t *testing.T) {
	base := testNetwork(t)

	t.Run("nil network", func(t *testing.T) {
		_, _, err := testBuilder().Build(nil, nil, "")
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.CodeNilInput))
	})

	t.Run("bad interval", func(t *testing.T) {
		_, _, err := testBuilder().Build(base, nil, "0817")
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.CodeInvalidInterval))
	})

	t.Run("negative sample volume", func(t *testing.T) {
		samples := []traffic.FlowSample{{From: 1, To: 2, Volume: -1}}
		_, _, err := testBuilder().Build(base, samples, "")
		require.Error(t, err)
		assert.True(t, apperror.Is(err, apperror.CodeInvalidVolume))
	})
}
