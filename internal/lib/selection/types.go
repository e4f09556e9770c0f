package selection

import (
	"github.com/google/uuid"

	"github.com/dpup/trimap/internal/lib/geo"
)

// MaxPoints is the capacity of a point set: the three vertices of the triangle
const MaxPoints = 3

// DefaultProximityThreshold is the distance in meters under which a tap selects an existing point
const DefaultProximityThreshold = 500.0

// Action describes what a tap did to the point set
type Action string

const (
	Added   Action = "added"
	Removed Action = "removed"
	Ignored Action = "ignored" // set full and tap not near any point
)

// SelectedPoint is a point held by a GeoPointSet
type SelectedPoint struct {
	ID         uuid.UUID `json:"id"`
	Coordinate geo.Point `json:"coordinate"`
}

// Result reports the outcome of ToggleOrAdd
type Result struct {
	Action Action        `json:"action"`
	Index  int           `json:"index"` // -1 when ignored
	Point  SelectedPoint `json:"point"` // point that was added or removed; zero when ignored
}
