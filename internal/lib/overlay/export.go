package overlay

import (
	"fmt"
	"io"
	"strings"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/twpayne/go-kml/v2"

	"github.com/dpup/trimap/internal/lib/distance"
	"github.com/dpup/trimap/internal/lib/geo"
	"github.com/dpup/trimap/internal/lib/route"
)

// GeoPolygon returns the closed selection ring in lon/lat order
func GeoPolygon(points []geo.Point) (geom.Polygon, error) {
	if len(points) != distance.CycleLength {
		return geom.Polygon{}, fmt.Errorf("%w: got %d points", ErrIncompleteTriangle, len(points))
	}

	coords := make([]float64, 0, (len(points)+1)*2)
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return geom.Polygon{}, fmt.Errorf("point %d: %w", i, err)
		}
		coords = append(coords, p.Longitude, p.Latitude)
	}
	coords = append(coords, points[0].Longitude, points[0].Latitude)

	return newPolygon(coords)
}

// GeoPolygonWKT renders the selection ring as WKT
func GeoPolygonWKT(points []geo.Point) (string, error) {
	poly, err := GeoPolygon(points)
	if err != nil {
		return "", err
	}
	return poly.AsText(), nil
}

// EncodePolyline encodes the closed A -> B -> C -> A ring as a Google polyline
func EncodePolyline(points []geo.Point) (string, error) {
	if len(points) != distance.CycleLength {
		return "", fmt.Errorf("%w: got %d points", ErrIncompleteTriangle, len(points))
	}
	ring := append(append([]geo.Point(nil), points...), points[0])
	return geo.NewGeoUtils().EncodePolyline(ring)
}

// WriteKML writes a KML document with a placemark per vertex and one for the triangle
func WriteKML(w io.Writer, points []geo.Point, edges []distance.EdgeDistance) error {
	if len(points) != distance.CycleLength || len(edges) != distance.CycleLength {
		return fmt.Errorf("%w: got %d points, %d edges", ErrIncompleteTriangle, len(points), len(edges))
	}

	labels := route.CycleLabels(len(points))
	var children []kml.Element
	children = append(children, kml.Name("Selected triangle"))

	ring := make([]kml.Coordinate, 0, len(points)+1)
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		coord := kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude}
		ring = append(ring, coord)
		children = append(children, kml.Placemark(
			kml.Name(labels[i]),
			kml.Point(kml.Coordinates(coord)),
		))
	}
	ring = append(ring, ring[0])

	var desc strings.Builder
	for _, e := range edges {
		if e.FromIndex < 0 || e.FromIndex >= len(points) || e.ToIndex < 0 || e.ToIndex >= len(points) {
			return fmt.Errorf("%w: edge references %d->%d", ErrIncompleteTriangle, e.FromIndex, e.ToIndex)
		}
		fmt.Fprintf(&desc, "%s → %s: %s\n", labels[e.FromIndex], labels[e.ToIndex], e.Label())
	}
	fmt.Fprintf(&desc, "Perimeter: %s", distance.FormatKilometers(distance.Perimeter(edges)))

	children = append(children, kml.Placemark(
		kml.Name(strings.Join(labels, " → ")),
		kml.Description(desc.String()),
		kml.Polygon(
			kml.OuterBoundaryIs(
				kml.LinearRing(kml.Coordinates(ring...)),
			),
		),
	))

	if err := kml.KML(kml.Document(children...)).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("failed to write KML: %w", err)
	}
	return nil
}
