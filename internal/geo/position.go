package geo

import "medstock/m/domain"

// PositionErrorCode mirrors the browser geolocation error codes.
type PositionErrorCode int

const (
	PermissionDenied    PositionErrorCode = 1
	PositionUnavailable PositionErrorCode = 2
	Timeout             PositionErrorCode = 3
)

// PositionOptions are forwarded to the client's geolocation request.
type PositionOptions struct {
	EnableHighAccuracy bool  `json:"enable_high_accuracy"`
	TimeoutMs          int64 `json:"timeout"`
	MaximumAgeMs       int64 `json:"maximum_age"`
}

// DefaultPositionOptions matches the location picker.
func DefaultPositionOptions() PositionOptions {
	return PositionOptions{EnableHighAccuracy: true, TimeoutMs: 10000, MaximumAgeMs: 0}
}

// Position is a successful geolocation fix.
type Position struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy"`
}

func (p Position) Point() domain.Point {
	return domain.Point{Latitude: p.Lat, Longitude: p.Lng}
}

// PositionError is a failed geolocation request reported by a client.
type PositionError struct {
	Code PositionErrorCode
}

func (e PositionError) Error() string { return e.Message() }

// Message is the user-facing text for the error. These errors are never retried.
func (e PositionError) Message() string {
	switch e.Code {
	case PermissionDenied:
		return "Location access denied. Please enable location permissions."
	case PositionUnavailable:
		return "Location information is unavailable."
	case Timeout:
		return "Location request timed out."
	default:
		return "An unknown error occurred while getting location."
	}
}
