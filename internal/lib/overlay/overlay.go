package overlay

import (
	"errors"
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"

	"github.com/dpup/trimap/internal/lib/distance"
	"github.com/dpup/trimap/internal/lib/geo"
	"github.com/dpup/trimap/internal/lib/projection"
)

// ErrIncompleteTriangle is returned when an overlay is requested without three points and three edges
var ErrIncompleteTriangle = errors.New("overlay requires 3 points and 3 edge distances")

// ErrDegenerateTriangle is returned when the vertices are collinear and do not enclose an area
var ErrDegenerateTriangle = errors.New("triangle is degenerate")

// degenerateArea is the pixel area under which a triangle is treated as a line
const degenerateArea = 1e-9

// EdgeLabel is a distance label placed at the middle of a triangle edge
type EdgeLabel struct {
	Edge     distance.EdgeDistance `json:"edge"`
	Position projection.Pixel      `json:"position"`
	Text     string                `json:"text"`
}

// Overlay is everything a renderer needs to draw the triangle: vertex pixels in selection
// order and one label per edge.
type Overlay struct {
	Vertices []projection.Pixel `json:"vertices"`
	Labels   []EdgeLabel        `json:"labels"`
}

// Build projects the triangle into the viewport and places edge labels at edge midpoints
func Build(points []geo.Point, edges []distance.EdgeDistance, size projection.Size, region geo.Region, projector projection.Projector) (*Overlay, error) {
	if len(points) != distance.CycleLength || len(edges) != distance.CycleLength {
		return nil, fmt.Errorf("%w: got %d points, %d edges", ErrIncompleteTriangle, len(points), len(edges))
	}

	o := &Overlay{
		Vertices: make([]projection.Pixel, len(points)),
		Labels:   make([]EdgeLabel, len(edges)),
	}

	for i, p := range points {
		px, err := projector.GeoToScreen(p, size, region)
		if err != nil {
			return nil, fmt.Errorf("failed to project vertex %d: %w", i, err)
		}
		o.Vertices[i] = px
	}

	for i, e := range edges {
		if e.FromIndex < 0 || e.FromIndex >= len(points) || e.ToIndex < 0 || e.ToIndex >= len(points) {
			return nil, fmt.Errorf("%w: edge %d references %d->%d", ErrIncompleteTriangle, i, e.FromIndex, e.ToIndex)
		}
		o.Labels[i] = EdgeLabel{
			Edge:     e,
			Position: projection.Midpoint(o.Vertices[e.FromIndex], o.Vertices[e.ToIndex]),
			Text:     e.Label(),
		}
	}

	return o, nil
}

// Polygon returns the closed triangle ring in pixel space. Collinear vertices do not form a
// valid polygon and yield an error.
func (o *Overlay) Polygon() (geom.Polygon, error) {
	return pixelRing(o.Vertices)
}

// Area returns the triangle's area in square pixels, or 0 when it is degenerate
func (o *Overlay) Area() float64 {
	if o.Degenerate() {
		return 0
	}
	poly, err := o.Polygon()
	if err != nil {
		return 0
	}
	return poly.Area()
}

// Degenerate reports whether the vertices are collinear (or coincide) on screen
func (o *Overlay) Degenerate() bool {
	if len(o.Vertices) < 3 {
		return true
	}
	a, b, c := o.Vertices[0], o.Vertices[1], o.Vertices[2]
	twiceArea := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
	return math.Abs(twiceArea)/2 < degenerateArea
}

// Centroid returns the pixel at the triangle's centroid
func (o *Overlay) Centroid() projection.Pixel {
	var c projection.Pixel
	for _, v := range o.Vertices {
		c.X += v.X
		c.Y += v.Y
	}
	n := float64(len(o.Vertices))
	if n == 0 {
		return c
	}
	return projection.Pixel{X: c.X / n, Y: c.Y / n}
}

func pixelRing(vertices []projection.Pixel) (geom.Polygon, error) {
	if len(vertices) == 0 {
		return geom.Polygon{}, nil
	}
	coords := make([]float64, 0, (len(vertices)+1)*2)
	for _, v := range vertices {
		coords = append(coords, v.X, v.Y)
	}
	coords = append(coords, vertices[0].X, vertices[0].Y)

	return newPolygon(coords)
}

// newPolygon builds a single-ring polygon from closed XY coordinates
func newPolygon(coords []float64) (geom.Polygon, error) {
	ring, err := geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("failed to build ring: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ring})
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("%w: %v", ErrDegenerateTriangle, err)
	}
	return poly, nil
}
