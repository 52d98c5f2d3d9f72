// Package pharmacy is the point-of-sale service of our retail pharmacy.
package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"medstock/m/domain"
	"medstock/m/internal/format"
	"medstock/m/internal/inventory"
	"medstock/m/internal/state"
)

type Service struct {
	st     *state.State
	logger *zap.Logger
	newID  func() string
}

func NewService(st *state.State, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{st: st, logger: logger, newID: uuid.NewString}
}

// Inventory lists the pharmacy stock with drug details.
func (s *Service) Inventory(ctx context.Context) ([]inventory.Detail[domain.PharmacyItem], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Collect(s.st.PharmacyStore().WithDetails()), nil
}

type AddStockInput struct {
	DrugID    string `json:"drug_id"`
	Quantity  int64  `json:"quantity"`
	Threshold *int64 `json:"low_stock_threshold,omitempty"`
}

// AddStock sets the stock level of a drug, creating the line when needed.
func (s *Service) AddStock(ctx context.Context, in AddStockInput) (domain.PharmacyItem, error) {
	const op = "pharmacy.Service.AddStock"
	if err := ctx.Err(); err != nil {
		return domain.PharmacyItem{}, err
	}

	in.DrugID = strings.TrimSpace(in.DrugID)
	if in.DrugID == "" || in.Quantity <= 0 {
		return domain.PharmacyItem{}, errors.Join(domain.ErrValidation, errors.New("drug_id and a positive quantity are required"))
	}
	if in.Threshold != nil && *in.Threshold < 0 {
		return domain.PharmacyItem{}, errors.Join(domain.ErrValidation, errors.New("low_stock_threshold must not be negative"))
	}
	if _, ok := s.st.Catalog().Drug(in.DrugID); !ok {
		return domain.PharmacyItem{}, fmt.Errorf("%s: %w: drug %s", op, domain.ErrNotFound, in.DrugID)
	}

	var opts []inventory.AddOption
	if in.Threshold != nil {
		opts = append(opts, inventory.WithThreshold(*in.Threshold))
	}
	return s.st.StockPharmacy(in.DrugID, in.Quantity, opts...), nil
}

// AdjustStock applies delta to a stock line. Stock may go negative here; the
// negative figure is kept for reconciliation.
func (s *Service) AdjustStock(ctx context.Context, inventoryID string, delta int64) (domain.PharmacyItem, error) {
	const op = "pharmacy.Service.AdjustStock"
	if err := ctx.Err(); err != nil {
		return domain.PharmacyItem{}, err
	}
	if delta == 0 {
		return domain.PharmacyItem{}, errors.Join(domain.ErrValidation, errors.New("delta must be non-zero"))
	}
	item, ok := s.st.UpdatePharmacyStock(inventoryID, delta)
	if !ok {
		return domain.PharmacyItem{}, fmt.Errorf("%s: %w: inventory %s", op, domain.ErrNotFound, inventoryID)
	}
	return item, nil
}

type SaleLineInput struct {
	InventoryID string          `json:"inventory_id"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type SaleInput struct {
	CustomerPhone string          `json:"customer_phone"`
	Items         []SaleLineInput `json:"items"`
}

// RecordSale sells the requested lines. It fails with ErrInsufficientStock
// without touching stock when any line cannot be covered.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (domain.Purchase, error) {
	const op = "pharmacy.Service.RecordSale"
	if err := ctx.Err(); err != nil {
		return domain.Purchase{}, err
	}

	if len(in.Items) == 0 {
		return domain.Purchase{}, errors.Join(domain.ErrValidation, errors.New("at least one item is required"))
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.InventoryID) == "" || it.Quantity <= 0 {
			return domain.Purchase{}, errors.Join(domain.ErrValidation, errors.New("inventory_id and a positive quantity are required for each item"))
		}
		if it.Price.IsNegative() {
			return domain.Purchase{}, errors.Join(domain.ErrValidation, errors.New("price must not be negative"))
		}
	}

	phone := ""
	if strings.TrimSpace(in.CustomerPhone) != "" {
		phone = format.Phone(in.CustomerPhone)
	}

	lines := lo.Map(in.Items, func(it SaleLineInput, _ int) state.SaleLine {
		return state.SaleLine{InventoryID: strings.TrimSpace(it.InventoryID), Quantity: it.Quantity, Price: it.Price}
	})

	purchase, err := s.st.RecordPharmacySale(s.newID(), phone, lines)
	if err != nil {
		s.logger.Warn("sale rejected", zap.Error(err))
		return domain.Purchase{}, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Info("sale recorded",
		zap.String("purchase_id", purchase.ID),
		zap.String("trace_id", purchase.TraceID),
		zap.Int64("total_items", purchase.TotalItems),
		zap.String("total_amount", purchase.TotalAmount.String()),
	)
	return purchase, nil
}

// Purchases lists pharmacy sales, newest first.
func (s *Service) Purchases(ctx context.Context) ([]domain.Purchase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return lo.Filter(s.st.History(), func(p domain.Purchase, _ int) bool {
		return p.OwnerType == domain.OwnerPharmacy
	}), nil
}

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
)

type SalesSummary struct {
	Period    Period          `json:"period"`
	Revenue   decimal.Decimal `json:"revenue"`
	Display   string          `json:"revenue_display"`
	SaleCount int             `json:"sales_count"`
	ItemsSold int64           `json:"items_sold"`
}

// SalesSummary totals pharmacy sales for the current day or month.
func (s *Service) SalesSummary(ctx context.Context, period Period) (SalesSummary, error) {
	purchases, err := s.Purchases(ctx)
	if err != nil {
		return SalesSummary{}, err
	}

	now := s.st.Now()
	var inPeriod func(time.Time) bool
	switch period {
	case PeriodDaily:
		y, m, d := now.Date()
		inPeriod = func(t time.Time) bool {
			ty, tm, td := t.In(now.Location()).Date()
			return ty == y && tm == m && td == d
		}
	case PeriodMonthly:
		y, m, _ := now.Date()
		inPeriod = func(t time.Time) bool {
			ty, tm, _ := t.In(now.Location()).Date()
			return ty == y && tm == m
		}
	default:
		return SalesSummary{}, errors.Join(domain.ErrValidation, fmt.Errorf("unknown period %q", period))
	}

	out := SalesSummary{Period: period, Revenue: decimal.Zero}
	for _, p := range purchases {
		if !inPeriod(p.CreatedAt) {
			continue
		}
		out.Revenue = out.Revenue.Add(p.TotalAmount)
		out.SaleCount++
		out.ItemsSold += p.TotalItems
	}
	out.Display = format.Currency(out.Revenue)
	return out, nil
}
