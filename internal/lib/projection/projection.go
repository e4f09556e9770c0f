package projection

import (
	"fmt"
	"math"

	"github.com/wroge/wgs84"

	"github.com/dpup/trimap/internal/lib/geo"
)

// mercatorMaxLatitude is the latitude at which EPSG:3857 becomes square
const mercatorMaxLatitude = 85.05112878

// New returns the projector for kind. An empty kind selects Linear.
func New(kind Kind) (Projector, error) {
	switch kind {
	case Linear, "":
		return NewLinearProjector(), nil
	case Mercator:
		return NewMercatorProjector(), nil
	default:
		return nil, fmt.Errorf("unknown projection %q", kind)
	}
}

// linearProjector spreads the region's degree span evenly across the viewport
type linearProjector struct{}

// NewLinearProjector creates an equirectangular Projector
func NewLinearProjector() Projector {
	return &linearProjector{}
}

func (p *linearProjector) ScreenToGeo(pixel Pixel, size Size, region geo.Region) (geo.Point, error) {
	if err := validate(size, region); err != nil {
		return geo.Point{}, err
	}

	c := size.Center()
	point := geo.Point{
		Latitude:  region.Center.Latitude - (pixel.Y-c.Y)*region.LatitudeSpan/size.Height,
		Longitude: geo.NormalizeLongitude(region.Center.Longitude + (pixel.X-c.X)*region.LongitudeSpan/size.Width),
	}
	if err := point.Validate(); err != nil {
		return geo.Point{}, fmt.Errorf("pixel (%g, %g) maps off the globe: %w", pixel.X, pixel.Y, err)
	}
	return point, nil
}

func (p *linearProjector) GeoToScreen(point geo.Point, size Size, region geo.Region) (Pixel, error) {
	if err := validate(size, region); err != nil {
		return Pixel{}, err
	}
	if err := point.Validate(); err != nil {
		return Pixel{}, err
	}

	c := size.Center()
	dLon := geo.NormalizeLongitude(point.Longitude - region.Center.Longitude)
	return Pixel{
		X: c.X + size.Width*dLon/region.LongitudeSpan,
		Y: c.Y + size.Height*(region.Center.Latitude-point.Latitude)/region.LatitudeSpan,
	}, nil
}

// mercatorProjector measures the region in EPSG:3857 meters, the way tiled web maps render it
type mercatorProjector struct {
	forward func(a, b, c float64) (float64, float64, float64)
	inverse func(a, b, c float64) (float64, float64, float64)
}

// NewMercatorProjector creates a Web Mercator Projector
func NewMercatorProjector() Projector {
	epsg := wgs84.EPSG()
	return &mercatorProjector{
		forward: epsg.Transform(4326, 3857),
		inverse: epsg.Transform(3857, 4326),
	}
}

// frame returns the region center and extent in projected meters
func (p *mercatorProjector) frame(region geo.Region) (cx, cy, width, height float64, err error) {
	if math.Abs(region.Center.Latitude) >= mercatorMaxLatitude {
		return 0, 0, 0, 0, fmt.Errorf("%w: center latitude %g outside web mercator bounds", ErrInvalidViewport, region.Center.Latitude)
	}

	cx, cy, _ = p.forward(region.Center.Longitude, region.Center.Latitude, 0)

	top := math.Min(region.Center.Latitude+region.LatitudeSpan/2, mercatorMaxLatitude)
	bottom := math.Max(region.Center.Latitude-region.LatitudeSpan/2, -mercatorMaxLatitude)
	west, _, _ := p.forward(region.Center.Longitude-region.LongitudeSpan/2, region.Center.Latitude, 0)
	east, _, _ := p.forward(region.Center.Longitude+region.LongitudeSpan/2, region.Center.Latitude, 0)
	_, north, _ := p.forward(region.Center.Longitude, top, 0)
	_, south, _ := p.forward(region.Center.Longitude, bottom, 0)

	return cx, cy, east - west, north - south, nil
}

func (p *mercatorProjector) ScreenToGeo(pixel Pixel, size Size, region geo.Region) (geo.Point, error) {
	if err := validate(size, region); err != nil {
		return geo.Point{}, err
	}
	cx, cy, width, height, err := p.frame(region)
	if err != nil {
		return geo.Point{}, err
	}

	c := size.Center()
	mx := cx + (pixel.X-c.X)*width/size.Width
	my := cy - (pixel.Y-c.Y)*height/size.Height
	lon, lat, _ := p.inverse(mx, my, 0)

	point := geo.Point{Latitude: lat, Longitude: geo.NormalizeLongitude(lon)}
	if err := point.Validate(); err != nil {
		return geo.Point{}, fmt.Errorf("pixel (%g, %g) maps off the globe: %w", pixel.X, pixel.Y, err)
	}
	return point, nil
}

func (p *mercatorProjector) GeoToScreen(point geo.Point, size Size, region geo.Region) (Pixel, error) {
	if err := validate(size, region); err != nil {
		return Pixel{}, err
	}
	if err := point.Validate(); err != nil {
		return Pixel{}, err
	}
	cx, cy, width, height, err := p.frame(region)
	if err != nil {
		return Pixel{}, err
	}

	// unwrap so points across the antimeridian land beside the center
	lon := region.Center.Longitude + geo.NormalizeLongitude(point.Longitude-region.Center.Longitude)
	mx, my, _ := p.forward(lon, point.Latitude, 0)
	c := size.Center()
	return Pixel{
		X: c.X + size.Width*(mx-cx)/width,
		Y: c.Y + size.Height*(cy-my)/height,
	}, nil
}

func validate(size Size, region geo.Region) error {
	if !(size.Width > 0 && size.Height > 0) || math.IsInf(size.Width, 0) || math.IsInf(size.Height, 0) {
		return fmt.Errorf("%w: size %gx%g", ErrInvalidViewport, size.Width, size.Height)
	}
	if !(region.LatitudeSpan > 0 && region.LongitudeSpan > 0) {
		return fmt.Errorf("%w: span %gx%g", ErrInvalidViewport, region.LatitudeSpan, region.LongitudeSpan)
	}
	if err := region.Center.Validate(); err != nil {
		return fmt.Errorf("%w: center: %v", ErrInvalidViewport, err)
	}
	return nil
}
