// Package directory serves the consumer pharmacy search.
package directory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"medstock/m/domain"
	"medstock/m/internal/geo"
	"medstock/m/internal/latency"
	"medstock/m/internal/state"
)

// Query selects public pharmacies. Zero values disable a criterion.
type Query struct {
	Drug      string
	Near      *domain.Point
	RadiusKm  float64
	OpenNow   bool
	Amenities domain.Amenities
}

// Result is a listing with its distance from Query.Near, zero when no origin
// was given.
type Result struct {
	domain.PublicPharmacy
	DistanceKm float64 `json:"distance_km"`
}

type Service struct {
	st      *state.State
	latency *latency.Simulator
	logger  *zap.Logger
}

func NewService(st *state.State, lat *latency.Simulator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{st: st, latency: lat, logger: logger}
}

func (s *Service) Search(ctx context.Context, q Query) ([]Result, error) {
	const op = "directory.Service.Search"

	if q.RadiusKm < 0 {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrValidation)
	}
	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}

	var box *geo.Box
	if q.Near != nil && q.RadiusKm > 0 {
		b := geo.BoundingBox(*q.Near, q.RadiusKm)
		box = &b
	}
	drug := strings.ToLower(strings.TrimSpace(q.Drug))

	var out []Result
	for _, p := range s.st.PublicPharmacies() {
		if q.OpenNow && !p.IsOpen {
			continue
		}
		if !p.Amenities.Covers(q.Amenities) {
			continue
		}
		if drug != "" && !lo.SomeBy(p.AvailableDrugs.Sorted(), func(name string) bool {
			return strings.Contains(strings.ToLower(name), drug)
		}) {
			continue
		}

		r := Result{PublicPharmacy: p}
		if q.Near != nil {
			if box != nil && !box.Contains(p.Location) {
				continue
			}
			loc := p.Location
			r.DistanceKm = geo.Haversine(q.Near, &loc)
			if q.RadiusKm > 0 && r.DistanceKm > q.RadiusKm {
				continue
			}
		}
		out = append(out, r)
	}

	if q.Near != nil {
		sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	}

	s.logger.Debug("directory search",
		zap.String("drug", q.Drug),
		zap.Bool("near", q.Near != nil),
		zap.Int("results", len(out)),
	)
	return out, nil
}

// Drugs searches the master list by name or keyword.
func (s *Service) Drugs(ctx context.Context, query string) ([]domain.Drug, error) {
	if err := s.latency.Wait(ctx); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.st.Catalog().Drugs(), nil
	}
	return s.st.Catalog().Search(query), nil
}
