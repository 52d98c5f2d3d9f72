package domain

import (
	"slices"
	"time"
)

// Staff is a PHC staff member. The PIN hash never leaves the service.
type Staff struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	PINHash   []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings are the PHC facility settings.
type Settings struct {
	FacilityName             string `json:"facility_name"`
	DefaultLowStockThreshold int64  `json:"default_low_stock_threshold"`
	ReceiptFooter            string `json:"receipt_footer"`
}

func (s Staff) Clone() Staff {
	s.PINHash = slices.Clone(s.PINHash)
	return s
}
