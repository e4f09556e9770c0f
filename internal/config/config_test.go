package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/trimap/internal/lib/geo"
	"github.com/dpup/trimap/internal/lib/projection"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, geo.Region{
		Center:        geo.Point{Latitude: 43.7, Longitude: -79.4},
		LatitudeSpan:  2.0,
		LongitudeSpan: 2.0,
	}, cfg.Map.Region())
	assert.Equal(t, projection.Size{Width: 300, Height: 300}, cfg.Map.Size())
	assert.Equal(t, 500.0, cfg.Map.ProximityThresholdMeters)
	assert.Equal(t, "linear", cfg.Map.Projection)
	assert.False(t, cfg.Log.Development)
}

func TestLoad_WithYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trimap.yaml")
	yaml := `
map:
  center:
    latitude: 38.1327
    longitude: -120.4606
  latitude_span: 0.5
  viewport:
    width: 390
    height: 844
  projection: mercator
log:
  development: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 38.1327, cfg.Map.Center.Latitude)
	assert.Equal(t, -120.4606, cfg.Map.Center.Longitude)
	assert.Equal(t, 0.5, cfg.Map.LatitudeSpan)
	assert.Equal(t, 2.0, cfg.Map.LongitudeSpan, "unset keys keep their defaults")
	assert.Equal(t, projection.Size{Width: 390, Height: 844}, cfg.Map.Size())
	assert.Equal(t, "mercator", cfg.Map.Projection)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TRIMAP__MAP__PROXIMITY_THRESHOLD_METERS", "250")
	t.Setenv("TRIMAP__LOG__DEVELOPMENT", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 250.0, cfg.Map.ProximityThresholdMeters)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("/nonexistent/trimap.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file")

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("map:\n  projection: azimuthal\n  latitude_span: -1\n"), 0644))

	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map.projection")
	assert.Contains(t, err.Error(), "span must be positive")
}

func TestMapConfig_Validate(t *testing.T) {
	m := DefaultConfig().Map
	assert.NoError(t, m.Validate())

	m.Center.Latitude = 120
	assert.ErrorIs(t, m.Validate(), geo.ErrOutOfRange)

	m = DefaultConfig().Map
	m.Viewport.Width = 0
	assert.Error(t, m.Validate())

	m = DefaultConfig().Map
	m.ProximityThresholdMeters = -5
	assert.Error(t, m.Validate())
}
