package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/twpayne/go-polyline"
)

// ErrOutOfRange is returned when a coordinate falls outside latitude [-90, 90] or longitude [-180, 180]
var ErrOutOfRange = errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")

// geoUtils implements the GeoUtils interface
type geoUtils struct{}

// NewGeoUtils creates a new GeoUtils implementation
func NewGeoUtils() GeoUtils {
	return &geoUtils{}
}

// PointToPoint calculates great-circle distance between two points using Haversine formula
func (g *geoUtils) PointToPoint(p1, p2 Point) (float64, error) {
	if err := p1.Validate(); err != nil {
		return 0, err
	}
	if err := p2.Validate(); err != nil {
		return 0, err
	}

	if p1 == p2 {
		return 0, nil
	}

	lat1 := toRadians(p1.Latitude)
	lat2 := toRadians(p2.Latitude)
	dlat := lat2 - lat1
	dlon := toRadians(p2.Longitude - p1.Longitude)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c, nil
}

// FirstWithin returns the index of the first point, in slice order, whose distance to target is
// strictly less than thresholdMeters. It returns -1 when no point qualifies.
func (g *geoUtils) FirstWithin(points []Point, target Point, thresholdMeters float64) (int, error) {
	if err := target.Validate(); err != nil {
		return -1, err
	}

	for i, p := range points {
		distance, err := g.PointToPoint(p, target)
		if err != nil {
			return -1, fmt.Errorf("point %d: %w", i, err)
		}
		if distance < thresholdMeters {
			return i, nil
		}
	}

	return -1, nil
}

// EncodePolyline encodes a point sequence using the Google polyline algorithm
func (g *geoUtils) EncodePolyline(points []Point) (string, error) {
	if len(points) == 0 {
		return "", errors.New("no points to encode")
	}

	coords := make([][]float64, len(points))
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return "", fmt.Errorf("point %d: %w", i, err)
		}
		coords[i] = []float64{p.Latitude, p.Longitude}
	}

	return string(polyline.EncodeCoords(coords)), nil
}

// DecodePolyline decodes Google polyline string to point sequence
func (g *geoUtils) DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{Latitude: coord[0], Longitude: coord[1]}
		if err := points[i].Validate(); err != nil {
			return nil, fmt.Errorf("decoded polyline point %d: %w", i, err)
		}
	}

	return points, nil
}

// NewPoint creates a Point from latitude and longitude values with validation
func NewPoint(latitude, longitude float64) (Point, error) {
	point := Point{Latitude: latitude, Longitude: longitude}
	if err := point.Validate(); err != nil {
		return Point{}, err
	}
	return point, nil
}

// Validate reports ErrOutOfRange for coordinates outside the WGS84 bounds. NaN is rejected.
func (p Point) Validate() error {
	if !(p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180) {
		return fmt.Errorf("%w: got (%g, %g)", ErrOutOfRange, p.Latitude, p.Longitude)
	}
	return nil
}

// String formats the point as "lat,lng" with six decimals
func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}

// Contains reports whether p lies inside the region's window. Windows may cross the antimeridian.
func (r Region) Contains(p Point) bool {
	return math.Abs(p.Latitude-r.Center.Latitude) <= r.LatitudeSpan/2 &&
		math.Abs(NormalizeLongitude(p.Longitude-r.Center.Longitude)) <= r.LongitudeSpan/2
}

// NormalizeLongitude wraps lon into [-180, 180]. NaN and infinities come back as NaN.
func NormalizeLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
