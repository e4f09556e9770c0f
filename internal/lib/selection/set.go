package selection

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dpup/trimap/internal/lib/geo"
)

// GeoPointSet holds up to MaxPoints selected points in insertion order.
// It is not safe for concurrent use.
type GeoPointSet struct {
	points   []SelectedPoint
	geoUtils geo.GeoUtils
	newID    func() uuid.UUID
}

// NewGeoPointSet creates an empty point set
func NewGeoPointSet() *GeoPointSet {
	return &GeoPointSet{
		points:   make([]SelectedPoint, 0, MaxPoints),
		geoUtils: geo.NewGeoUtils(),
		newID:    uuid.New,
	}
}

// ToggleOrAdd removes the first point closer than proximityThresholdMeters to coordinate, or
// appends coordinate when nothing is that close and the set has room. A full set with no
// nearby point is left untouched.
func (s *GeoPointSet) ToggleOrAdd(coordinate geo.Point, proximityThresholdMeters float64) (Result, error) {
	if err := coordinate.Validate(); err != nil {
		return Result{Action: Ignored, Index: -1}, err
	}

	idx, err := s.geoUtils.FirstWithin(s.Coordinates(), coordinate, proximityThresholdMeters)
	if err != nil {
		return Result{Action: Ignored, Index: -1}, fmt.Errorf("proximity check failed: %w", err)
	}

	if idx >= 0 {
		removed := s.points[idx]
		s.points = append(s.points[:idx], s.points[idx+1:]...)
		return Result{Action: Removed, Index: idx, Point: removed}, nil
	}

	if len(s.points) >= MaxPoints {
		return Result{Action: Ignored, Index: -1}, nil
	}

	added := SelectedPoint{ID: s.newID(), Coordinate: coordinate}
	s.points = append(s.points, added)
	return Result{Action: Added, Index: len(s.points) - 1, Point: added}, nil
}

// Clear empties the set
func (s *GeoPointSet) Clear() {
	s.points = s.points[:0]
}

func (s *GeoPointSet) Size() int {
	return len(s.points)
}

// Full reports whether the set holds MaxPoints points
func (s *GeoPointSet) Full() bool {
	return len(s.points) == MaxPoints
}

// Points returns a copy of the selected points in insertion order
func (s *GeoPointSet) Points() []SelectedPoint {
	out := make([]SelectedPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Coordinates returns the coordinates of the selected points in insertion order
func (s *GeoPointSet) Coordinates() []geo.Point {
	out := make([]geo.Point, len(s.points))
	for i, p := range s.points {
		out[i] = p.Coordinate
	}
	return out
}
