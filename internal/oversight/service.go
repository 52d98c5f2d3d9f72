// Package oversight aggregates facility records for the supervisory dashboard.
package oversight

import (
	"context"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medstock/m/domain"
	"medstock/m/internal/seed"
	"medstock/m/internal/state"
)

type Service struct {
	st     *state.State
	logger *zap.Logger
}

func NewService(st *state.State, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{st: st, logger: logger}
}

// Filter narrows the facility list. Empty fields match everything; text fields
// compare case-insensitively.
type Filter struct {
	State       string
	LGA         string
	Status      domain.FacilityStatus
	StockStatus domain.StockStatus
}

func (f Filter) match(fac domain.OversightFacility) bool {
	return (f.State == "" || strings.EqualFold(f.State, fac.State)) &&
		(f.LGA == "" || strings.EqualFold(f.LGA, fac.LGA)) &&
		(f.Status == "" || f.Status == fac.Status) &&
		(f.StockStatus == "" || f.StockStatus == fac.StockStatus)
}

// ClassifyStock derives a facility stock status from its inventory.
// No items is Unknown; any line at or below zero, or at least half the lines
// low, is Critical; any low line is Low; otherwise Healthy.
func ClassifyStock(items []domain.PHCItem) domain.StockStatus {
	if len(items) == 0 {
		return domain.StockUnknown
	}
	low := 0
	for _, it := range items {
		if it.Quantity <= 0 {
			return domain.StockCritical
		}
		if it.LowStockAlert {
			low++
		}
	}
	switch {
	case low*2 >= len(items):
		return domain.StockCritical
	case low > 0:
		return domain.StockLow
	default:
		return domain.StockHealthy
	}
}

// Facilities returns the facility records. Our own PHC reports live figures
// from the shared state.
func (s *Service) Facilities(ctx context.Context, f Filter) ([]domain.OversightFacility, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	facilities := s.st.Facilities()
	for i := range facilities {
		if facilities[i].ID == seed.OwnPHCOwnerID {
			s.applyLive(&facilities[i])
		}
	}
	return lo.Filter(facilities, func(fac domain.OversightFacility, _ int) bool {
		return f.match(fac)
	}), nil
}

func (s *Service) applyLive(fac *domain.OversightFacility) {
	fac.StockStatus = ClassifyStock(s.st.PHCStore().List())
	fac.PatientsServed = len(s.st.Patients())
	fac.StaffCount = len(s.st.Staff())
	if last := lo.Filter(s.st.History(), func(p domain.Purchase, _ int) bool {
		return p.OwnerType == domain.OwnerPHC
	}); len(last) > 0 && last[0].CreatedAt.After(fac.LastReportAt) {
		fac.LastReportAt = last[0].CreatedAt
	}
}

type Summary struct {
	Facilities     int                        `json:"facilities"`
	Active         int                        `json:"active"`
	Staff          int                        `json:"staff"`
	PatientsServed int                        `json:"patients_served"`
	InventoryValue decimal.Decimal            `json:"inventory_value"`
	ByStockStatus  map[domain.StockStatus]int `json:"by_stock_status"`
}

// Summary aggregates the dashboard counters over every facility.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	facilities, err := s.Facilities(ctx, Filter{})
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		InventoryValue: decimal.Zero,
		ByStockStatus: map[domain.StockStatus]int{
			domain.StockHealthy:  0,
			domain.StockLow:      0,
			domain.StockCritical: 0,
			domain.StockUnknown:  0,
		},
	}
	for _, f := range facilities {
		out.Facilities++
		if f.Status == domain.FacilityActive {
			out.Active++
		}
		out.Staff += f.StaffCount
		out.PatientsServed += f.PatientsServed
		out.InventoryValue = out.InventoryValue.Add(f.InventoryValue)
		out.ByStockStatus[f.StockStatus]++
	}
	return out, nil
}
