package projection

import (
	"errors"

	"github.com/dpup/trimap/internal/lib/geo"
)

// ErrInvalidViewport is returned for a non-positive viewport size or region span
var ErrInvalidViewport = errors.New("invalid viewport")

// Kind names a projection implementation
type Kind string

const (
	Linear   Kind = "linear"
	Mercator Kind = "mercator"
)

// Pixel is a position in viewport space; X grows rightward and Y grows downward
type Pixel struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the viewport size in pixels
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Projector maps between viewport pixels and geographic coordinates for a visible region.
// GeoToScreen is the inverse of ScreenToGeo.
type Projector interface {
	// Convert a tap position to the coordinate under it
	ScreenToGeo(pixel Pixel, size Size, region geo.Region) (geo.Point, error)

	// Convert a coordinate to its position in the viewport
	GeoToScreen(point geo.Point, size Size, region geo.Region) (Pixel, error)
}

// Center returns the pixel at the middle of the viewport
func (s Size) Center() Pixel {
	return Pixel{X: s.Width / 2, Y: s.Height / 2}
}

// Midpoint returns the pixel halfway between p and q
func Midpoint(p, q Pixel) Pixel {
	return Pixel{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}
