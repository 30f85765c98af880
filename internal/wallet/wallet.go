// Package wallet tracks cash movements (deposits, withdrawals, fees,
// corrections) alongside the trade ledger.
package wallet

import (
	"errors"
	"fmt"
	"time"

	"scalper-journal-go/internal/models"
	"scalper-journal-go/internal/store"
)

// ErrInvalidAmount rejects non-positive transaction amounts. Corrections
// carry their sign in the type, not the amount.
var ErrInvalidAmount = errors.New("amount must be a positive number")

// ErrUnknownType rejects transaction types outside the fixed set.
var ErrUnknownType = errors.New("unknown transaction type")

// Book records and reads wallet transactions through the store.
type Book struct {
	store store.Store
}

func NewBook(st store.Store) *Book {
	return &Book{store: st}
}

// Add validates and records a transaction. A zero occurredAt defaults to now.
func (b *Book) Add(amount float64, txType, currency, note string, occurredAt time.Time) (models.WalletTransaction, error) {
	if amount <= 0 {
		return models.WalletTransaction{}, ErrInvalidAmount
	}
	switch txType {
	case models.CashDeposit, models.CashWithdrawal, models.CashFee, models.CashCorrection:
	default:
		return models.WalletTransaction{}, fmt.Errorf("%w: %q", ErrUnknownType, txType)
	}
	if currency == "" {
		currency = "USD"
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	tx := models.WalletTransaction{
		Amount:     amount,
		Type:       txType,
		Currency:   currency,
		OccurredAt: occurredAt.UnixMilli(),
		Note:       note,
	}
	if err := b.store.AddWalletTransaction(&tx); err != nil {
		return models.WalletTransaction{}, err
	}
	return tx, nil
}

// Transactions returns all recorded transactions, oldest first.
func (b *Book) Transactions() ([]models.WalletTransaction, error) {
	return b.store.WalletTransactions()
}

// NetCashflow sums the transactions: deposits add, withdrawals and fees
// subtract, corrections apply as-is.
func NetCashflow(txs []models.WalletTransaction) float64 {
	var net float64
	for _, tx := range txs {
		switch tx.Type {
		case models.CashDeposit, models.CashCorrection:
			net += tx.Amount
		case models.CashWithdrawal, models.CashFee:
			net -= tx.Amount
		}
	}
	return net
}
