package domain

import "time"

// DefaultLowStockThreshold is used when an item is stocked without an explicit threshold.
const DefaultLowStockThreshold int64 = 10

// InventoryBase holds the fields shared by every inventory variant.
// LowStockAlert must equal Quantity <= LowStockThreshold after every write.
type InventoryBase struct {
	InventoryID       string    `json:"inventory_id"`
	DrugRef           string    `json:"drug_ref"`
	Quantity          int64     `json:"quantity"`
	LowStockThreshold int64     `json:"low_stock_threshold"`
	LowStockAlert     bool      `json:"low_stock_alert"`
	LastUpdated       time.Time `json:"last_updated"`
}

// Stock gives generic code access to the shared base of a variant.
func (b *InventoryBase) Stock() *InventoryBase { return b }

// DrugID resolves the drug id regardless of the reference style.
func (b *InventoryBase) DrugID() string { return DrugIDFromRef(b.DrugRef) }

// SetQuantity writes the quantity and recomputes the derived alert.
func (b *InventoryBase) SetQuantity(quantity int64, at time.Time) {
	b.Quantity = quantity
	b.LastUpdated = at
	b.Refresh()
}

// Refresh recomputes LowStockAlert from the current quantity and threshold.
func (b *InventoryBase) Refresh() {
	b.LowStockAlert = IsLowStock(b.Quantity, b.LowStockThreshold)
}

func IsLowStock(quantity, threshold int64) bool {
	return quantity <= threshold
}

// PharmacyItem is a retail pharmacy stock line. It deliberately has no price:
// prices only live on purchase records.
type PharmacyItem struct {
	InventoryBase
}

// PHCItem is a primary health center stock line with batch tracking.
type PHCItem struct {
	InventoryBase
	BatchNumber string     `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`
}

// ExpiresWithin reports whether the item expires on or before now+window.
func (i PHCItem) ExpiresWithin(now time.Time, window time.Duration) bool {
	if i.ExpiryDate == nil {
		return false
	}
	return !i.ExpiryDate.After(now.Add(window))
}
