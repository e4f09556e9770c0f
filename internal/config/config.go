package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dpup/trimap/internal/lib/geo"
	"github.com/dpup/trimap/internal/lib/projection"
	"github.com/dpup/trimap/internal/lib/selection"
)

// EnvPrefix prefixes environment overrides; "__" separates nested keys,
// e.g. TRIMAP__MAP__PROJECTION=mercator
const EnvPrefix = "TRIMAP__"

// Config represents the complete application configuration
type Config struct {
	Map MapConfig `yaml:"map"`
	Log LogConfig `yaml:"log"`
}

// MapConfig holds the initial map window and selection behaviour
type MapConfig struct {
	Center                   CoordinatesYAML `yaml:"center"`
	LatitudeSpan             float64         `yaml:"latitude_span"`
	LongitudeSpan            float64         `yaml:"longitude_span"`
	Viewport                 ViewportYAML    `yaml:"viewport"`
	ProximityThresholdMeters float64         `yaml:"proximity_threshold_meters"`
	Projection               string          `yaml:"projection"`
}

// LogConfig holds logger settings. Development loggers write human-readable output at debug
// level; production loggers write JSON.
type LogConfig struct {
	Development bool `yaml:"development"`
}

// CoordinatesYAML represents lat/lon coordinates in YAML config
type CoordinatesYAML struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// ViewportYAML represents the viewport size in pixels
type ViewportYAML struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// ToPoint converts CoordinatesYAML to a geo.Point
func (c CoordinatesYAML) ToPoint() geo.Point {
	return geo.Point{Latitude: c.Latitude, Longitude: c.Longitude}
}

// Region returns the configured visible region
func (m MapConfig) Region() geo.Region {
	return geo.Region{
		Center:        m.Center.ToPoint(),
		LatitudeSpan:  m.LatitudeSpan,
		LongitudeSpan: m.LongitudeSpan,
	}
}

// Size returns the configured viewport size
func (m MapConfig) Size() projection.Size {
	return projection.Size{Width: m.Viewport.Width, Height: m.Viewport.Height}
}

// Validate checks the map settings
func (m MapConfig) Validate() error {
	var errs []error
	if err := m.Center.ToPoint().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("map.center: %w", err))
	}
	if m.LatitudeSpan <= 0 || m.LongitudeSpan <= 0 {
		errs = append(errs, fmt.Errorf("map span must be positive, got %gx%g", m.LatitudeSpan, m.LongitudeSpan))
	}
	if m.Viewport.Width <= 0 || m.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("map.viewport must be positive, got %gx%g", m.Viewport.Width, m.Viewport.Height))
	}
	if m.ProximityThresholdMeters < 0 {
		errs = append(errs, fmt.Errorf("map.proximity_threshold_meters must not be negative, got %g", m.ProximityThresholdMeters))
	}
	if _, err := projection.New(projection.Kind(m.Projection)); err != nil {
		errs = append(errs, fmt.Errorf("map.projection: %w", err))
	}
	return errors.Join(errs...)
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Map: MapConfig{
			// Toronto, Ontario
			Center: CoordinatesYAML{
				Latitude:  43.7,
				Longitude: -79.4,
			},
			LatitudeSpan:  2.0,
			LongitudeSpan: 2.0,
			Viewport: ViewportYAML{
				Width:  300,
				Height: 300,
			},
			ProximityThresholdMeters: selection.DefaultProximityThreshold,
			Projection:               string(projection.Linear),
		},
		Log: LogConfig{
			Development: false,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path (if path is not
// empty), then TRIMAP__ environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	envToKey := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Map.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// defaultsMap flattens DefaultConfig into koanf keys
func defaultsMap() map[string]interface{} {
	d := DefaultConfig()
	return map[string]interface{}{
		"map.center.latitude":            d.Map.Center.Latitude,
		"map.center.longitude":           d.Map.Center.Longitude,
		"map.latitude_span":              d.Map.LatitudeSpan,
		"map.longitude_span":             d.Map.LongitudeSpan,
		"map.viewport.width":             d.Map.Viewport.Width,
		"map.viewport.height":            d.Map.Viewport.Height,
		"map.proximity_threshold_meters": d.Map.ProximityThresholdMeters,
		"map.projection":                 d.Map.Projection,
		"log.development":                d.Log.Development,
	}
}
