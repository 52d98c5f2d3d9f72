package geo

import (
	"fmt"
	"math"
	"net/url"

	"medstock/m/domain"
)

const (
	earthRadiusKm = 6371.0
	kmPerDegree   = 111.0

	defaultZoom = 15
	maxZoom     = 20
)

// Box is a latitude/longitude range.
type Box struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p domain.Point) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}

// Haversine returns the great-circle distance between a and b in kilometers.
// A nil point yields 0.
func Haversine(a, b *domain.Point) float64 {
	if a == nil || b == nil {
		return 0
	}
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BoundingBox approximates the box around center covering radiusKm, using 111 km per degree
// and shrinking longitude degrees by cos(latitude). Good enough to pre-filter before Haversine.
func BoundingBox(center domain.Point, radiusKm float64) Box {
	latDelta := radiusKm / kmPerDegree
	lonDelta := radiusKm / (kmPerDegree * math.Cos(toRadians(center.Latitude)))
	return Box{
		MinLat: center.Latitude - latDelta,
		MaxLat: center.Latitude + latDelta,
		MinLon: center.Longitude - lonDelta,
		MaxLon: center.Longitude + lonDelta,
	}
}

// StaticMapURL renders the embeddable map URL centered on center. Zoom 0 means the default.
func StaticMapURL(center domain.Point, zoom int) string {
	switch {
	case zoom == 0:
		zoom = defaultZoom
	case zoom < 1:
		zoom = 1
	case zoom > maxZoom:
		zoom = maxZoom
	}
	q := url.Values{}
	q.Set("q", fmt.Sprintf("%f,%f", center.Latitude, center.Longitude))
	q.Set("z", fmt.Sprint(zoom))
	q.Set("output", "embed")
	return "https://maps.google.com/maps?" + q.Encode()
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
