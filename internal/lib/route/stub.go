package route

import (
	"context"
	"strings"
	"time"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/trimap/internal/lib/geo"
)

type stubGenerator struct {
	listeners []Listener
	now       func() time.Time
}

// NewGenerator creates the placeholder route generator
func NewGenerator() Generator {
	return &stubGenerator{now: time.Now}
}

func (s *stubGenerator) OnRequest(listener Listener) {
	s.listeners = append(s.listeners, listener)
}

// GenerateRoute logs the requested cycle, e.g. "A → B → C → A", and notifies listeners.
// An empty selection is still logged and yields a request without labels.
func (s *stubGenerator) GenerateRoute(ctx context.Context, points []geo.Point) (Request, error) {
	req := Request{
		Labels:      CycleLabels(len(points)),
		Points:      append([]geo.Point(nil), points...),
		RequestedAt: s.now(),
	}

	logging.Infow(ctx, req.LogMessage(), "points", len(points))

	for _, l := range s.listeners {
		l(req)
	}
	return req, nil
}

// LogMessage is the line logged for the request
func (r Request) LogMessage() string {
	if len(r.Labels) == 0 {
		return "Generating route with no points selected"
	}
	return "Generating route " + strings.Join(r.Labels, " → ")
}

// CycleLabels returns vertex letters for n points followed by the first letter again
func CycleLabels(n int) []string {
	if n <= 0 {
		return nil
	}
	labels := make([]string, 0, n+1)
	for i := 0; i < n; i++ {
		labels = append(labels, VertexLabel(i))
	}
	return append(labels, labels[0])
}

// VertexLabel returns "A" for 0, "B" for 1, ... wrapping to "AA" after "Z"
func VertexLabel(i int) string {
	label := ""
	for i >= 0 {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
	}
	return label
}
