// Package session holds the interactive state of one map screen: the visible region, the
// viewport size, the selected points and the distances derived from them. A UI feeds it
// taps and button presses and renders the Snapshot it publishes after every change.
package session

import (
	"context"
	"fmt"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/trimap/internal/config"
	"github.com/dpup/trimap/internal/lib/distance"
	"github.com/dpup/trimap/internal/lib/geo"
	"github.com/dpup/trimap/internal/lib/overlay"
	"github.com/dpup/trimap/internal/lib/projection"
	"github.com/dpup/trimap/internal/lib/route"
	"github.com/dpup/trimap/internal/lib/selection"
)

// Snapshot is the render state published to subscribers
type Snapshot struct {
	Region    geo.Region                `json:"region"`
	Viewport  projection.Size           `json:"viewport"`
	Points    []selection.SelectedPoint `json:"points"`
	Distances []distance.EdgeDistance   `json:"distances,omitempty"`
	Overlay   *overlay.Overlay          `json:"overlay,omitempty"`
}

// TapResult reports what a tap did
type TapResult struct {
	selection.Result
	Coordinate geo.Point `json:"coordinate"`
}

// Session is the explicit state aggregate for one map screen.
// It is driven by a single UI event loop and is not safe for concurrent use.
type Session struct {
	region    geo.Region
	viewport  projection.Size
	threshold float64

	points     *selection.GeoPointSet
	distances  []distance.EdgeDistance
	projector  projection.Projector
	calculator distance.Calculator
	router     route.Generator

	subscribers []func(Snapshot)
}

// New creates a session from map settings. A nil projector selects the one named in cfg.
func New(cfg config.MapConfig, projector projection.Projector) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid map config: %w", err)
	}
	if projector == nil {
		p, err := projection.New(projection.Kind(cfg.Projection))
		if err != nil {
			return nil, err
		}
		projector = p
	}

	return &Session{
		region:     cfg.Region(),
		viewport:   cfg.Size(),
		threshold:  cfg.ProximityThresholdMeters,
		points:     selection.NewGeoPointSet(),
		projector:  projector,
		calculator: distance.NewCalculator(),
		router:     route.NewGenerator(),
	}, nil
}

// Subscribe registers fn to receive a Snapshot after every state change
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.subscribers = append(s.subscribers, fn)
}

// OnRoute registers fn to receive route requests made through ShowRoute
func (s *Session) OnRoute(fn route.Listener) {
	s.router.OnRequest(fn)
}

// Tap converts a viewport position to a coordinate and toggles the selection there
func (s *Session) Tap(ctx context.Context, pixel projection.Pixel) (TapResult, error) {
	coord, err := s.projector.ScreenToGeo(pixel, s.viewport, s.region)
	if err != nil {
		return TapResult{}, fmt.Errorf("failed to convert tap (%g, %g): %w", pixel.X, pixel.Y, err)
	}
	logging.Debugw(ctx, "Tap converted", "x", pixel.X, "y", pixel.Y, "coordinate", coord.String())
	return s.Select(ctx, coord)
}

// Select toggles the selection at coord
func (s *Session) Select(ctx context.Context, coord geo.Point) (TapResult, error) {
	res, err := s.points.ToggleOrAdd(coord, s.threshold)
	if err != nil {
		return TapResult{Result: res, Coordinate: coord}, err
	}

	if res.Action != selection.Ignored {
		if err := s.recompute(); err != nil {
			return TapResult{Result: res, Coordinate: coord}, err
		}
	}

	logging.Infow(ctx, "Selection updated",
		"action", string(res.Action),
		"index", res.Index,
		"size", s.points.Size(),
	)
	if res.Action != selection.Ignored {
		s.publish(ctx)
	}
	return TapResult{Result: res, Coordinate: coord}, nil
}

// Clear drops every selected point
func (s *Session) Clear(ctx context.Context) {
	s.points.Clear()
	s.distances = nil
	logging.Infow(ctx, "Selection cleared")
	s.publish(ctx)
}

// SetRegion moves the visible window; selected points keep their coordinates
func (s *Session) SetRegion(ctx context.Context, region geo.Region) error {
	if _, err := s.projector.GeoToScreen(region.Center, s.viewport, region); err != nil {
		return fmt.Errorf("invalid region: %w", err)
	}
	s.region = region
	s.publish(ctx)
	return nil
}

// SetViewport resizes the viewport
func (s *Session) SetViewport(ctx context.Context, size projection.Size) error {
	if _, err := s.projector.GeoToScreen(s.region.Center, size, s.region); err != nil {
		return fmt.Errorf("invalid viewport: %w", err)
	}
	s.viewport = size
	s.publish(ctx)
	return nil
}

func (s *Session) Region() geo.Region {
	return s.region
}

func (s *Session) Viewport() projection.Size {
	return s.viewport
}

// Points returns the selected points in insertion order
func (s *Session) Points() []selection.SelectedPoint {
	return s.points.Points()
}

// Distances returns the cycle edge distances, or nil unless exactly three points are selected
func (s *Session) Distances() []distance.EdgeDistance {
	if s.distances == nil {
		return nil
	}
	return append([]distance.EdgeDistance(nil), s.distances...)
}

// Overlay returns the triangle overlay for the current region and viewport, or nil when
// fewer than three points are selected
func (s *Session) Overlay() (*overlay.Overlay, error) {
	if s.distances == nil {
		return nil, nil
	}
	return overlay.Build(s.points.Coordinates(), s.distances, s.viewport, s.region, s.projector)
}

// ShowRoute hands the current selection, possibly empty, to the route generator
func (s *Session) ShowRoute(ctx context.Context) (route.Request, error) {
	return s.router.GenerateRoute(ctx, s.points.Coordinates())
}

// Snapshot returns the current render state
func (s *Session) Snapshot() (Snapshot, error) {
	o, err := s.Overlay()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Region:    s.region,
		Viewport:  s.viewport,
		Points:    s.Points(),
		Distances: s.Distances(),
		Overlay:   o,
	}, nil
}

// recompute refreshes the derived distances; partial selections carry none
func (s *Session) recompute() error {
	if !s.points.Full() {
		s.distances = nil
		return nil
	}
	edges, err := s.calculator.ComputeCycleDistances(s.points.Coordinates())
	if err != nil {
		s.distances = nil
		return fmt.Errorf("failed to compute distances: %w", err)
	}
	s.distances = edges
	return nil
}

func (s *Session) publish(ctx context.Context) {
	if len(s.subscribers) == 0 {
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		logging.Errorw(ctx, "Failed to build snapshot", "error", err)
		return
	}
	for _, fn := range s.subscribers {
		fn(snap)
	}
}
