package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"medstock/m/domain"
)

var (
	ErrLocationNotFound = errors.New("location not found")
	ErrRateLimited      = errors.New("geocoder rate limit exceeded")
	ErrUpstream         = errors.New("geocoder unavailable")
)

// GeocodeResult is the first candidate returned for an address lookup.
type GeocodeResult struct {
	domain.Point
	DisplayName string `json:"display_name"`
}

type nominatimMatch struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocoder resolves free-text addresses against an OSM Nominatim compatible endpoint.
type Geocoder struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewGeocoder creates a geocoder. Lookups are not retried.
func NewGeocoder(baseURL, userAgent string, timeout time.Duration, logger *zap.Logger) *Geocoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", userAgent)

	return &Geocoder{httpClient: client, logger: logger}
}

// Search returns the first match for address.
func (g *Geocoder) Search(ctx context.Context, address string) (*GeocodeResult, error) {
	const op = "geo.Geocoder.Search"

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrLocationNotFound)
	}

	var matches []nominatimMatch
	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      address,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&matches).
		Get("/search")
	if err != nil {
		g.logger.Error("geocoder request failed", zap.String("address", address), zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%s: %w", op, ErrRateLimited)
	default:
		g.logger.Error("geocoder returned error status",
			zap.String("address", address),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("%s: %w: status %d", op, ErrUpstream, resp.StatusCode())
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrLocationNotFound, address)
	}

	first := matches[0]
	lat, err := strconv.ParseFloat(first.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: bad latitude %q", op, ErrUpstream, first.Lat)
	}
	lon, err := strconv.ParseFloat(first.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: bad longitude %q", op, ErrUpstream, first.Lon)
	}

	return &GeocodeResult{
		Point:       domain.Point{Latitude: lat, Longitude: lon},
		DisplayName: first.DisplayName,
	}, nil
}
