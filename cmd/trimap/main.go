package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dpup/prefab/logging"

	"github.com/dpup/trimap/internal/config"
	"github.com/dpup/trimap/internal/lib/distance"
	"github.com/dpup/trimap/internal/lib/geo"
	"github.com/dpup/trimap/internal/lib/overlay"
	"github.com/dpup/trimap/internal/lib/projection"
	"github.com/dpup/trimap/internal/lib/route"
	"github.com/dpup/trimap/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "tap":
		handleTap(args)
	case "distance":
		handleDistance(args)
	case "project":
		handleProject(args)
	case "unproject":
		handleUnproject(args)
	case "export":
		handleExport(args)
	case "route":
		handleRoute(args)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads configuration and attaches a logger to the returned context
func setup(configPath string) (context.Context, *config.Config) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewProdLogger()
	if cfg.Log.Development {
		logger = logging.NewDevLogger()
	}
	return logging.With(context.Background(), logger), cfg
}

func handleTap(args []string) {
	fs := flag.NewFlagSet("tap", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML configuration")
	taps := fs.String("taps", "", "Tap positions in pixels, \"x,y;x,y;...\"")
	asJSON := fs.Bool("json", false, "Print the final snapshot as JSON")
	fs.Parse(args)

	if *taps == "" {
		fmt.Println("Example usage:")
		fmt.Println("  trimap tap --taps \"150,150;150,105;210,150\"")
		fmt.Println("  (Select three points around Toronto in a 300x300 viewport)")
		os.Exit(1)
	}

	ctx, cfg := setup(*configPath)

	pixels, err := parsePairs(*taps)
	if err != nil {
		log.Fatalf("Error parsing taps: %v", err)
	}

	s, err := session.New(cfg.Map, nil)
	if err != nil {
		log.Fatalf("Error creating session: %v", err)
	}

	for _, p := range pixels {
		px := projection.Pixel{X: p[0], Y: p[1]}
		res, err := s.Tap(ctx, px)
		if err != nil {
			log.Fatalf("Error handling tap (%.1f, %.1f): %v", px.X, px.Y, err)
		}
		if res.Index >= 0 {
			fmt.Printf("Tap (%.1f, %.1f) -> %s: %s at index %d\n", px.X, px.Y, res.Coordinate, res.Action, res.Index)
		} else {
			fmt.Printf("Tap (%.1f, %.1f) -> %s: %s\n", px.X, px.Y, res.Coordinate, res.Action)
		}
	}

	snap, err := s.Snapshot()
	if err != nil {
		log.Fatalf("Error building overlay: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			log.Fatalf("Error encoding snapshot: %v", err)
		}
		return
	}

	fmt.Printf("\nSelected points: %d\n", len(snap.Points))
	for i, p := range snap.Points {
		note := ""
		if !snap.Region.Contains(p.Coordinate) {
			note = " (outside the visible region)"
		}
		fmt.Printf("  %s: (%.6f, %.6f)%s\n", route.VertexLabel(i), p.Coordinate.Latitude, p.Coordinate.Longitude, note)
	}
	if snap.Overlay != nil {
		printOverlay(snap.Overlay)
	}
}

func handleDistance(args []string) {
	fs := flag.NewFlagSet("distance", flag.ExitOnError)
	points := pointsFlags(fs)
	fs.Parse(args)

	coords := points.parse("trimap distance --points \"43.70,-79.40;44.00,-79.40;43.70,-79.00\"")

	edges, err := distance.NewCalculator().ComputeCycleDistances(coords)
	if err != nil {
		log.Fatalf("Error calculating distances: %v", err)
	}

	labels := route.CycleLabels(len(coords))
	fmt.Printf("Cycle distances:\n")
	for _, e := range edges {
		fmt.Printf("  %s -> %s: %.2f meters (%s, %.2f miles)\n",
			labels[e.FromIndex], labels[e.ToIndex], e.Meters, e.Label(), e.Meters*0.000621371)
	}
	fmt.Printf("  Perimeter: %s\n", distance.FormatKilometers(distance.Perimeter(edges)))
}

func handleProject(args []string) {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML configuration")
	lat := fs.Float64("lat", 0, "Latitude of point")
	lng := fs.Float64("lng", 0, "Longitude of point")
	fs.Parse(args)

	if !flagsSet(fs, "lat", "lng") {
		fmt.Println("Example usage:")
		fmt.Println("  trimap project --lat 44.2 --lng -78.9")
		os.Exit(1)
	}

	_, cfg := setup(*configPath)

	projector, err := projection.New(projection.Kind(cfg.Map.Projection))
	if err != nil {
		log.Fatalf("Error creating projector: %v", err)
	}

	point := geo.Point{Latitude: *lat, Longitude: *lng}
	px, err := projector.GeoToScreen(point, cfg.Map.Size(), cfg.Map.Region())
	if err != nil {
		log.Fatalf("Error projecting point: %v", err)
	}

	fmt.Printf("Point (%.6f, %.6f) -> pixel (%.2f, %.2f) [%s, %.0fx%.0f]\n",
		point.Latitude, point.Longitude, px.X, px.Y, cfg.Map.Projection, cfg.Map.Viewport.Width, cfg.Map.Viewport.Height)
}

func handleUnproject(args []string) {
	fs := flag.NewFlagSet("unproject", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML configuration")
	x := fs.Float64("x", 0, "Pixel x")
	y := fs.Float64("y", 0, "Pixel y")
	fs.Parse(args)

	if !flagsSet(fs, "x", "y") {
		fmt.Println("Example usage:")
		fmt.Println("  trimap unproject --x 225 --y 75")
		os.Exit(1)
	}

	_, cfg := setup(*configPath)

	projector, err := projection.New(projection.Kind(cfg.Map.Projection))
	if err != nil {
		log.Fatalf("Error creating projector: %v", err)
	}

	point, err := projector.ScreenToGeo(projection.Pixel{X: *x, Y: *y}, cfg.Map.Size(), cfg.Map.Region())
	if err != nil {
		log.Fatalf("Error converting pixel: %v", err)
	}

	fmt.Printf("Pixel (%.2f, %.2f) -> point (%.6f, %.6f)\n", *x, *y, point.Latitude, point.Longitude)
}

func handleExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	points := pointsFlags(fs)
	format := fs.String("format", "kml", "Output format: kml, wkt or polyline")
	fs.Parse(args)

	coords := points.parse("trimap export --points \"43.70,-79.40;44.00,-79.40;43.70,-79.00\" --format kml")

	switch *format {
	case "kml":
		edges, err := distance.NewCalculator().ComputeCycleDistances(coords)
		if err != nil {
			log.Fatalf("Error calculating distances: %v", err)
		}
		if err := overlay.WriteKML(os.Stdout, coords, edges); err != nil {
			log.Fatalf("Error writing KML: %v", err)
		}
		fmt.Println()
	case "wkt":
		wkt, err := overlay.GeoPolygonWKT(coords)
		if err != nil {
			log.Fatalf("Error building WKT: %v", err)
		}
		fmt.Println(wkt)
	case "polyline":
		encoded, err := overlay.EncodePolyline(coords)
		if err != nil {
			log.Fatalf("Error encoding polyline: %v", err)
		}
		fmt.Println(encoded)
	default:
		log.Fatalf("Unknown format: %s", *format)
	}
}

func handleRoute(args []string) {
	fs := flag.NewFlagSet("route", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML configuration")
	points := pointsFlags(fs)
	fs.Parse(args)

	coords := points.parse("trimap route --points \"43.70,-79.40;44.00,-79.40;43.70,-79.00\"")

	ctx, _ := setup(*configPath)

	req, err := route.NewGenerator().GenerateRoute(ctx, coords)
	if err != nil {
		log.Fatalf("Error requesting route: %v", err)
	}
	fmt.Printf("Route requested: %s (routing is not implemented)\n", strings.Join(req.Labels, " → "))
}

func printOverlay(o *overlay.Overlay) {
	fmt.Printf("\nTriangle overlay:\n")
	for i, v := range o.Vertices {
		fmt.Printf("  Vertex %s: (%.2f, %.2f)\n", route.VertexLabel(i), v.X, v.Y)
	}
	for _, l := range o.Labels {
		fmt.Printf("  Label %s-%s: %q at (%.2f, %.2f)\n",
			route.VertexLabel(l.Edge.FromIndex), route.VertexLabel(l.Edge.ToIndex), l.Text, l.Position.X, l.Position.Y)
	}
	c := o.Centroid()
	fmt.Printf("  Centroid: (%.2f, %.2f)\n", c.X, c.Y)
	fmt.Printf("  Area: %.1f px²\n", o.Area())
	if o.Degenerate() {
		fmt.Printf("  Warning: points are collinear on screen\n")
	}
}

// flagsSet reports whether every named flag was given on the command line
func flagsSet(fs *flag.FlagSet, names ...string) bool {
	seen := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	for _, name := range names {
		if !seen[name] {
			return false
		}
	}
	return true
}

// pointInput accepts points either as "lat,lng;..." pairs or as an encoded polyline
type pointInput struct {
	pairs    *string
	polyline *string
}

func pointsFlags(fs *flag.FlagSet) pointInput {
	return pointInput{
		pairs:    fs.String("points", "", "Coordinate pairs, \"lat,lng;lat,lng;lat,lng\""),
		polyline: fs.String("polyline", "", "Encoded polyline of the points"),
	}
}

func (in pointInput) parse(example string) []geo.Point {
	switch {
	case *in.polyline != "":
		points, err := geo.NewGeoUtils().DecodePolyline(*in.polyline)
		if err != nil {
			log.Fatalf("Error decoding polyline: %v", err)
		}
		return points
	case *in.pairs != "":
		pairs, err := parsePairs(*in.pairs)
		if err != nil {
			log.Fatalf("Error parsing points: %v", err)
		}
		points := make([]geo.Point, len(pairs))
		for i, p := range pairs {
			points[i], err = geo.NewPoint(p[0], p[1])
			if err != nil {
				log.Fatalf("Error parsing point %d: %v", i+1, err)
			}
		}
		return points
	default:
		fmt.Println("Example usage:")
		fmt.Println("  " + example)
		os.Exit(1)
		return nil
	}
}

// parsePairs parses "a,b;a,b" into float pairs
func parsePairs(s string) ([][2]float64, error) {
	if s == "" {
		return nil, fmt.Errorf("empty coordinate string")
	}

	pairs := strings.Split(s, ";")
	out := make([][2]float64, 0, len(pairs))

	for _, pair := range pairs {
		parts := strings.Split(strings.TrimSpace(pair), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid coordinate pair: %s", pair)
		}

		a, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %s", parts[0])
		}

		b, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %s", parts[1])
		}

		out = append(out, [2]float64{a, b})
	}

	return out, nil
}

func printUsage() {
	fmt.Printf(`trimap - Select a triangle on a map and measure its edges

USAGE:
    trimap <command> [options]

COMMANDS:
    tap         Replay viewport taps and print the selection and triangle overlay
    distance    Calculate the A -> B -> C -> A edge distances of three points
    project     Convert a coordinate to a viewport pixel
    unproject   Convert a viewport pixel to a coordinate
    export      Export three points as KML, WKT or an encoded polyline
    route       Request a route through the points (placeholder)
    help        Show this help message

EXAMPLES:
    # Three taps in the default 300x300 viewport centered on Toronto
    trimap tap --taps "150,150;150,105;210,150"

    # Edge distances between three points
    trimap distance --points "43.70,-79.40;44.00,-79.40;43.70,-79.00"

    # Pixel under a coordinate using a config file
    trimap project --config trimap.yaml --lat 44.2 --lng -78.9

    # Triangle as KML
    trimap export --points "43.70,-79.40;44.00,-79.40;43.70,-79.00" --format kml

Configuration is read from --config and TRIMAP__ environment variables,
e.g. TRIMAP__MAP__PROJECTION=mercator.
`)
}
