package route

import (
	"context"
	"time"

	"github.com/dpup/trimap/internal/lib/geo"
)

// Request records a "show route" action for the selected vertices
type Request struct {
	Labels      []string    `json:"labels"` // vertex labels in visiting order, closing on the first
	Points      []geo.Point `json:"points"`
	RequestedAt time.Time   `json:"requested_at"`
}

// Listener is notified of every route request
type Listener func(Request)

// Generator is the extension point for turning a selection into a route.
// The only implementation records and logs the request; no routing is performed.
type Generator interface {
	GenerateRoute(ctx context.Context, points []geo.Point) (Request, error)

	// Register a listener for subsequent requests
	OnRequest(listener Listener)
}

// NewGenerator is implemented in stub.go
