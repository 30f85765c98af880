package models

// Trade is one realized trade or cash event in the journal.
// Records are created once and never mutated; corrections are made by
// deleting the record and logging a new one.
type Trade struct {
	ID         string  `gorm:"primaryKey" json:"id"`
	Instrument string  `gorm:"index" json:"instrument"`
	Pnl        float64 `json:"pnl"`
	Notes      string  `json:"notes,omitempty"`
	Timestamp  int64   `gorm:"index" json:"timestamp"` // unix milliseconds, local wall clock
	RiskAmount float64 `json:"risk_amount,omitempty"`
	Tags       string  `json:"tags,omitempty"`
}
