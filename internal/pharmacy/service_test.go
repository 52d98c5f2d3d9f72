package pharmacy

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medstock/m/domain"
	"medstock/m/internal/seed"
	"medstock/m/internal/state"
)

var fixedNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *state.State) {
	t.Helper()
	data, err := seed.Load(fixedNow, zap.NewNop())
	require.NoError(t, err)
	st := state.New(data, state.WithClock(func() time.Time { return fixedNow }))
	return NewService(st, nil), st
}

func ptr[T any](v T) *T { return &v }

func TestInventory(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	items, err := svc.Inventory(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 7)
	assert.Equal(t, "Paracetamol", items[0].DrugName)
	assert.Equal(t, "500mg", items[0].Strength)
}

func TestAddStock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      AddStockInput
		wantErr error
		assert  func(t *testing.T, item domain.PharmacyItem, st *state.State)
	}{
		{
			name: "new line with threshold",
			in:   AddStockInput{DrugID: "omeprazole_20mg", Quantity: 24, Threshold: ptr(int64(6))},
			assert: func(t *testing.T, item domain.PharmacyItem, st *state.State) {
				assert.Equal(t, "drugMasterList/omeprazole_20mg", item.DrugRef)
				assert.Equal(t, int64(6), item.LowStockThreshold)
				p, _ := st.PublicPharmacy(domain.PublicPharmacyID)
				assert.True(t, p.AvailableDrugs.Has("Omeprazole"))
			},
		},
		{
			name: "existing line is overwritten",
			in:   AddStockInput{DrugID: "amoxicillin_500mg", Quantity: 50},
			assert: func(t *testing.T, item domain.PharmacyItem, st *state.State) {
				assert.Equal(t, int64(50), item.Quantity)
				assert.False(t, item.LowStockAlert)
			},
		},
		{name: "missing drug id", in: AddStockInput{Quantity: 5}, wantErr: domain.ErrValidation},
		{name: "zero quantity", in: AddStockInput{DrugID: "amoxicillin_500mg"}, wantErr: domain.ErrValidation},
		{
			name:    "negative threshold",
			in:      AddStockInput{DrugID: "amoxicillin_500mg", Quantity: 5, Threshold: ptr(int64(-1))},
			wantErr: domain.ErrValidation,
		},
		{name: "unknown drug", in: AddStockInput{DrugID: "insulin", Quantity: 5}, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, st := newService(t)
			item, err := svc.AddStock(context.Background(), tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.assert(t, item, st)
		})
	}
}

func TestAdjustStock(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	item, err := svc.AdjustStock(ctx, "paracetamol_500mg", -40)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), item.Quantity)
	assert.True(t, item.LowStockAlert)

	_, err = svc.AdjustStock(ctx, "paracetamol_500mg", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AdjustStock(ctx, gofakeit.UUID(), 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordSale(t *testing.T) {
	t.Parallel()

	t.Run("records and normalises phone", func(t *testing.T) {
		t.Parallel()
		svc, st := newService(t)
		svc.newID = func() string { return "sale-fixed" }

		p, err := svc.RecordSale(context.Background(), SaleInput{
			CustomerPhone: "0803 111 2222",
			Items: []SaleLineInput{
				{InventoryID: "ibuprofen_400mg", Quantity: 3, Price: decimal.NewFromInt(1200)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "sale-fixed", p.ID)
		assert.Equal(t, "+2348031112222", p.CustomerPhone)
		assert.Equal(t, domain.OwnerPharmacy, p.OwnerType)
		assert.True(t, decimal.NewFromInt(3600).Equal(p.TotalAmount))

		item, _ := st.PharmacyStore().Get("ibuprofen_400mg")
		assert.Equal(t, int64(57), item.Quantity)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		for _, in := range []SaleInput{
			{},
			{Items: []SaleLineInput{{InventoryID: "ibuprofen_400mg"}}},
			{Items: []SaleLineInput{{Quantity: 1}}},
			{Items: []SaleLineInput{{InventoryID: "ibuprofen_400mg", Quantity: 1, Price: decimal.NewFromInt(-1)}}},
		} {
			_, err := svc.RecordSale(context.Background(), in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		}
	})

	t.Run("insufficient stock", func(t *testing.T) {
		t.Parallel()
		svc, _ := newService(t)
		_, err := svc.RecordSale(context.Background(), SaleInput{
			Items: []SaleLineInput{{InventoryID: "amlodipine_5mg", Quantity: 6, Price: decimal.NewFromInt(300)}},
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	})
}

func TestSalesSummary(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, SaleInput{
		Items: []SaleLineInput{{InventoryID: "metformin_500mg", Quantity: 10, Price: decimal.NewFromInt(150)}},
	})
	require.NoError(t, err)

	daily, err := svc.SalesSummary(ctx, PeriodDaily)
	require.NoError(t, err)
	assert.Equal(t, 1, daily.SaleCount)
	assert.True(t, decimal.NewFromInt(1500).Equal(daily.Revenue))
	assert.Equal(t, "₦1,500", daily.Display)
	assert.Equal(t, int64(10), daily.ItemsSold)

	// The seeded sale from the previous day counts towards the month.
	monthly, err := svc.SalesSummary(ctx, PeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, 2, monthly.SaleCount)
	assert.Equal(t, "₦3,700", monthly.Display)

	_, err = svc.SalesSummary(ctx, Period("weekly"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPurchasesOnlyPharmacy(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	purchases, err := svc.Purchases(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, purchases)
	for _, p := range purchases {
		assert.Equal(t, domain.OwnerPharmacy, p.OwnerType)
	}
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Inventory(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
