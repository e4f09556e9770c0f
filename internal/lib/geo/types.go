package geo

// EarthRadiusMeters is the mean Earth radius used for every great-circle distance
const EarthRadiusMeters = 6371000

// Point represents a geographic coordinate
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Region represents the geographic window visible in a map viewport
type Region struct {
	Center        Point   `json:"center"`
	LatitudeSpan  float64 `json:"latitude_span"`
	LongitudeSpan float64 `json:"longitude_span"`
}

// GeoUtils interface defines geographic calculation utilities
type GeoUtils interface {
	// Calculate great-circle distance between two points in meters
	PointToPoint(p1, p2 Point) (float64, error)

	// Index of the first point strictly closer than thresholdMeters to target, or -1
	FirstWithin(points []Point, target Point, thresholdMeters float64) (int, error)

	// Encode point sequence as a Google polyline string
	EncodePolyline(points []Point) (string, error)

	// Decode Google polyline string to point sequence
	DecodePolyline(encoded string) ([]Point, error)
}

// NewGeoUtils is implemented in geo.go
