package distance

import (
	"errors"
	"fmt"

	"github.com/dpup/trimap/internal/lib/geo"
)

// CycleLength is the number of vertices in the distance cycle
const CycleLength = 3

// ErrInvalidInput is returned when the calculator is given anything other than three points
var ErrInvalidInput = errors.New("cycle distances require exactly 3 points")

// EdgeDistance is the great-circle length of the edge FromIndex -> ToIndex
type EdgeDistance struct {
	FromIndex int     `json:"from_index"`
	ToIndex   int     `json:"to_index"`
	Meters    float64 `json:"meters"`
}

// Calculator computes edge distances around a closed triangle
type Calculator interface {
	ComputeCycleDistances(points []geo.Point) ([]EdgeDistance, error)
}

type calculator struct {
	geoUtils geo.GeoUtils
}

// NewCalculator creates a haversine-backed Calculator
func NewCalculator() Calculator {
	return &calculator{geoUtils: geo.NewGeoUtils()}
}

// ComputeCycleDistances returns the edges 0->1, 1->2 and 2->0 in that order
func (c *calculator) ComputeCycleDistances(points []geo.Point) ([]EdgeDistance, error) {
	if len(points) != CycleLength {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidInput, len(points))
	}

	edges := make([]EdgeDistance, 0, CycleLength)
	for i := range points {
		next := (i + 1) % CycleLength
		meters, err := c.geoUtils.PointToPoint(points[i], points[next])
		if err != nil {
			return nil, fmt.Errorf("edge %d->%d: %w", i, next, err)
		}
		edges = append(edges, EdgeDistance{FromIndex: i, ToIndex: next, Meters: meters})
	}

	return edges, nil
}

// FormatKilometers renders a distance the way edge labels display it, e.g. "33.36 km"
func FormatKilometers(meters float64) string {
	return fmt.Sprintf("%.2f km", meters/1000)
}

// Perimeter sums the edge lengths in meters
func Perimeter(edges []EdgeDistance) float64 {
	total := 0.0
	for _, e := range edges {
		total += e.Meters
	}
	return total
}

// Label returns the edge label text
func (e EdgeDistance) Label() string {
	return FormatKilometers(e.Meters)
}
