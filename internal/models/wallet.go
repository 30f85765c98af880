package models

import "gorm.io/gorm"

// Wallet transaction types. Deposits add to net cashflow, withdrawals and
// fees subtract, corrections carry their own sign.
const (
	CashDeposit    = "deposit"
	CashWithdrawal = "withdrawal"
	CashFee        = "fee"
	CashCorrection = "correction"
)

// WalletTransaction is a cash movement outside the trade ledger.
type WalletTransaction struct {
	gorm.Model
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	Currency   string  `json:"currency"`
	OccurredAt int64   `gorm:"index" json:"occurred_at"` // unix milliseconds
	Note       string  `json:"note,omitempty"`
}
