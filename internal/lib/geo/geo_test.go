package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoUtils_PointToPoint(t *testing.T) {
	// Toronto city centre and a point 0.3 degrees north of it
	toronto := Point{Latitude: 43.70, Longitude: -79.40}
	north := Point{Latitude: 44.00, Longitude: -79.40}

	geoUtils := NewGeoUtils()

	distance, err := geoUtils.PointToPoint(toronto, north)
	require.NoError(t, err)

	// 0.3 degrees of latitude on a 6371 km sphere
	assert.InDelta(t, 33358.48, distance, 0.5, "Distance should be approximately 33.36km")

	// Distance is symmetric
	reverse, err := geoUtils.PointToPoint(north, toronto)
	require.NoError(t, err)
	assert.InDelta(t, distance, reverse, 1e-9)

	// Same point is exactly zero
	same, err := geoUtils.PointToPoint(toronto, toronto)
	require.NoError(t, err)
	assert.Equal(t, 0.0, same)

	invalidPoint := Point{Latitude: 200, Longitude: -300}
	_, err = geoUtils.PointToPoint(toronto, invalidPoint)
	assert.ErrorIs(t, err, ErrOutOfRange, "Should return error for invalid coordinates")
}

func TestGeoUtils_FirstWithin(t *testing.T) {
	geoUtils := NewGeoUtils()

	points := []Point{
		{Latitude: 43.7000, Longitude: -79.4000},
		{Latitude: 43.7020, Longitude: -79.4000}, // ~222m north of the first
		{Latitude: 44.0000, Longitude: -79.4000},
	}

	// Both of the first two points are within 500m; the first one wins
	idx, err := geoUtils.FirstWithin(points, Point{Latitude: 43.7010, Longitude: -79.4000}, 500)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = geoUtils.FirstWithin(points, Point{Latitude: 44.0010, Longitude: -79.4000}, 500)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	idx, err = geoUtils.FirstWithin(points, Point{Latitude: 45.0, Longitude: -79.4}, 500)
	require.NoError(t, err)
	assert.Equal(t, -1, idx)

	// Threshold is strict: a point exactly on the threshold does not match
	exact, err := geoUtils.PointToPoint(points[0], points[1])
	require.NoError(t, err)
	idx, err = geoUtils.FirstWithin(points[:1], points[1], exact)
	require.NoError(t, err)
	assert.Equal(t, -1, idx)

	_, err = geoUtils.FirstWithin(points, Point{Latitude: 91}, 500)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestGeoUtils_Polyline(t *testing.T) {
	geoUtils := NewGeoUtils()

	// Reference example from the Google polyline algorithm documentation
	points := []Point{
		{Latitude: 38.5, Longitude: -120.2},
		{Latitude: 40.7, Longitude: -120.95},
		{Latitude: 43.252, Longitude: -126.453},
	}

	encoded, err := geoUtils.EncodePolyline(points)
	require.NoError(t, err)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)

	decoded, err := geoUtils.DecodePolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for i := range points {
		assert.InDelta(t, points[i].Latitude, decoded[i].Latitude, 1e-5)
		assert.InDelta(t, points[i].Longitude, decoded[i].Longitude, 1e-5)
	}

	_, err = geoUtils.DecodePolyline("")
	assert.Error(t, err, "Should return error for empty polyline")

	_, err = geoUtils.EncodePolyline(nil)
	assert.Error(t, err)

	_, err = geoUtils.EncodePolyline([]Point{{Latitude: 95, Longitude: 0}})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestNewPoint(t *testing.T) {
	p, err := NewPoint(43.7, -79.4)
	require.NoError(t, err)
	assert.Equal(t, Point{Latitude: 43.7, Longitude: -79.4}, p)
	assert.Equal(t, "43.700000,-79.400000", p.String())

	for _, bad := range []Point{
		{Latitude: 90.0001, Longitude: 0},
		{Latitude: -90.0001, Longitude: 0},
		{Latitude: 0, Longitude: 180.0001},
		{Latitude: 0, Longitude: -180.0001},
		{Latitude: math.NaN(), Longitude: 0},
	} {
		_, err := NewPoint(bad.Latitude, bad.Longitude)
		assert.ErrorIs(t, err, ErrOutOfRange, "expected %v to be rejected", bad)
	}

	// Bounds are inclusive
	_, err = NewPoint(90, 180)
	assert.NoError(t, err)
	_, err = NewPoint(-90, -180)
	assert.NoError(t, err)
}

func TestRegion_Contains(t *testing.T) {
	region := Region{
		Center:        Point{Latitude: 43.7, Longitude: -79.4},
		LatitudeSpan:  2.0,
		LongitudeSpan: 2.0,
	}

	assert.True(t, region.Contains(Point{Latitude: 43.7, Longitude: -79.4}))
	assert.True(t, region.Contains(Point{Latitude: 44.2, Longitude: -78.9}))
	assert.False(t, region.Contains(Point{Latitude: 45.0, Longitude: -79.4}))
	assert.False(t, region.Contains(Point{Latitude: 43.7, Longitude: -81.0}))

	// Window straddling the antimeridian
	pacific := Region{Center: Point{Latitude: 0, Longitude: 179.5}, LatitudeSpan: 2, LongitudeSpan: 2}
	assert.True(t, pacific.Contains(Point{Latitude: 0, Longitude: -179.8}))
	assert.True(t, pacific.Contains(Point{Latitude: 0.5, Longitude: 178.6}))
	assert.False(t, pacific.Contains(Point{Latitude: 0, Longitude: -178.0}))
}

func TestNormalizeLongitude(t *testing.T) {
	assert.Equal(t, -79.4, NormalizeLongitude(-79.4))
	assert.Equal(t, 180.0, NormalizeLongitude(180))
	assert.Equal(t, -180.0, NormalizeLongitude(-180))
	assert.InDelta(t, -179.5666, NormalizeLongitude(180.4334), 1e-9)
	assert.InDelta(t, 179.2, NormalizeLongitude(-180.8), 1e-9)
	assert.InDelta(t, 10, NormalizeLongitude(730), 1e-9)
	assert.True(t, math.IsNaN(NormalizeLongitude(math.Inf(1))))
	assert.True(t, math.IsNaN(NormalizeLongitude(math.NaN())))
}
