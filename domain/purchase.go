package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type OwnerType string

const (
	OwnerPharmacy OwnerType = "pharmacy"
	OwnerPHC      OwnerType = "phc"
)

// LineItem is one dispensed or sold drug. Price is only set on pharmacy sales.
type LineItem struct {
	InventoryID string           `json:"inventory_id,omitempty"`
	DrugID      string           `json:"drug_id,omitempty"`
	Quantity    int64            `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// Purchase is an append-only sale or dispense record.
type Purchase struct {
	ID            string          `json:"id"`
	TraceID       string          `json:"trace_id"`
	OwnerType     OwnerType       `json:"owner_type"`
	OwnerID       string          `json:"owner_id"`
	PatientID     string          `json:"patient_id,omitempty"`
	CustomerPhone string          `json:"customer_phone"`
	Items         []LineItem      `json:"items"`
	TotalItems    int64           `json:"total_items"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SumQuantities returns the aggregate item count of lines.
func SumQuantities(lines []LineItem) int64 {
	var total int64
	for _, l := range lines {
		total += l.Quantity
	}
	return total
}

// Clone returns a copy whose line items and prices are not shared with p.
func (p Purchase) Clone() Purchase {
	p.Items = slices.Clone(p.Items)
	for i := range p.Items {
		if price := p.Items[i].Price; price != nil {
			v := *price
			p.Items[i].Price = &v
		}
	}
	return p
}
