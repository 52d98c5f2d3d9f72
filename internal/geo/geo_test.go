package geo

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medstock/m/domain"
)

var (
	ikeja = domain.Point{Latitude: 6.6018, Longitude: 3.3515}
	abuja = domain.Point{Latitude: 9.0765, Longitude: 7.4689}
)

func TestHaversine(t *testing.T) {
	t.Parallel()

	t.Run("same point is zero", func(t *testing.T) {
		t.Parallel()
		p := ikeja
		assert.InDelta(t, 0, Haversine(&p, &p), 1e-9)
	})

	t.Run("nil point is zero", func(t *testing.T) {
		t.Parallel()
		assert.Zero(t, Haversine(nil, &ikeja))
		assert.Zero(t, Haversine(&ikeja, nil))
	})

	t.Run("lagos to abuja", func(t *testing.T) {
		t.Parallel()
		a, b := ikeja, abuja
		assert.InDelta(t, 525, Haversine(&a, &b), 15)
	})

	t.Run("symmetric", func(t *testing.T) {
		t.Parallel()
		for range 20 {
			a := domain.Point{Latitude: gofakeit.Latitude(), Longitude: gofakeit.Longitude()}
			b := domain.Point{Latitude: gofakeit.Latitude(), Longitude: gofakeit.Longitude()}
			assert.InDelta(t, Haversine(&a, &b), Haversine(&b, &a), 1e-6)
			assert.GreaterOrEqual(t, Haversine(&a, &b), 0.0)
		}
	})
}

func TestBoundingBox(t *testing.T) {
	t.Parallel()

	box := BoundingBox(ikeja, 10)
	assert.True(t, box.Contains(ikeja))
	assert.InDelta(t, 10.0/111.0, box.MaxLat-ikeja.Latitude, 1e-9)
	assert.Greater(t, box.MaxLon-ikeja.Longitude, box.MaxLat-ikeja.Latitude)
	assert.False(t, box.Contains(abuja))

	// Every point within the radius must survive the pre-filter.
	near := domain.Point{Latitude: ikeja.Latitude + 0.05, Longitude: ikeja.Longitude - 0.05}
	c := ikeja
	require.Less(t, Haversine(&c, &near), 10.0)
	assert.True(t, box.Contains(near))
}

func TestStaticMapURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		zoom int
		want string
	}{
		{name: "default zoom", zoom: 0, want: "15"},
		{name: "explicit zoom", zoom: 12, want: "12"},
		{name: "clamped low", zoom: -3, want: "1"},
		{name: "clamped high", zoom: 40, want: "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			raw := StaticMapURL(domain.Point{Latitude: 6.5, Longitude: 3.25}, tt.zoom)
			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, "maps.google.com", u.Host)
			assert.Equal(t, "/maps", u.Path)
			assert.Equal(t, "6.500000,3.250000", u.Query().Get("q"))
			assert.Equal(t, tt.want, u.Query().Get("z"))
			assert.Equal(t, "embed", u.Query().Get("output"))
		})
	}
}

func TestPositionErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Contains(t, PositionError{Code: PermissionDenied}.Message(), "denied")
	assert.Contains(t, PositionError{Code: PositionUnavailable}.Message(), "unavailable")
	assert.Contains(t, PositionError{Code: Timeout}.Message(), "timed out")
	assert.Contains(t, PositionError{Code: 9}.Error(), "unknown")

	opts := DefaultPositionOptions()
	assert.True(t, opts.EnableHighAccuracy)
	assert.EqualValues(t, 10000, opts.TimeoutMs)
	assert.Equal(t, domain.Point{Latitude: 1, Longitude: 2}, Position{Lat: 1, Lng: 2}.Point())
}

func TestGeocodeResultJSONIsFlat(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(GeocodeResult{Point: ikeja, DisplayName: "Allen Avenue, Ikeja"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"latitude":6.6018,"longitude":3.3515,"display_name":"Allen Avenue, Ikeja"}`, string(raw))
}
