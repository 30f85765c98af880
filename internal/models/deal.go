package models

import "gorm.io/gorm"

// Deal is a raw fill pushed in by an external trade copier through the
// webhook endpoint. Deals are stored as received and reviewed manually;
// they do not enter the trade ledger automatically.
type Deal struct {
	gorm.Model
	DealID string  `gorm:"uniqueIndex" json:"deal_id"`
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Volume float64 `json:"volume"`
	Price  float64 `json:"price"`
	Time   int64   `json:"time"` // unix milliseconds
}
