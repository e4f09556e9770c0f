package route

import (
	"context"
	"testing"
	"time"

	"github.com/dpup/prefab/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/trimap/internal/lib/geo"
)

func testContext() context.Context {
	return logging.With(context.Background(), logging.NewDevLogger())
}

func TestGenerator_GenerateRoute(t *testing.T) {
	ctx := testContext()

	points := []geo.Point{
		{Latitude: 43.70, Longitude: -79.40},
		{Latitude: 44.00, Longitude: -79.40},
		{Latitude: 43.70, Longitude: -79.00},
	}
	snapshot := append([]geo.Point(nil), points...)

	gen := NewGenerator()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	gen.(*stubGenerator).now = func() time.Time { return fixed }

	var notified []Request
	gen.OnRequest(func(r Request) { notified = append(notified, r) })

	req, err := gen.GenerateRoute(ctx, points)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "A"}, req.Labels)
	assert.Equal(t, points, req.Points)
	assert.Equal(t, fixed, req.RequestedAt)
	assert.Equal(t, snapshot, points, "caller's points must not be mutated")

	require.Len(t, notified, 1)
	assert.Equal(t, req, notified[0])

	assert.Equal(t, "Generating route A → B → C → A", req.LogMessage())

	// Returned request does not alias the input
	req.Points[0] = geo.Point{}
	assert.Equal(t, snapshot, points)
}

func TestGenerator_NoPoints(t *testing.T) {
	gen := NewGenerator()
	called := 0
	gen.OnRequest(func(Request) { called++ })

	req, err := gen.GenerateRoute(testContext(), nil)
	require.NoError(t, err)
	assert.Empty(t, req.Labels)
	assert.Empty(t, req.Points)
	assert.Equal(t, "Generating route with no points selected", req.LogMessage())
	assert.Equal(t, 1, called, "empty requests still reach listeners")
}

func TestLabels(t *testing.T) {
	assert.Nil(t, CycleLabels(0))
	assert.Equal(t, []string{"A", "A"}, CycleLabels(1))
	assert.Equal(t, "A", VertexLabel(0))
	assert.Equal(t, "C", VertexLabel(2))
	assert.Equal(t, "Z", VertexLabel(25))
	assert.Equal(t, "AA", VertexLabel(26))
}
