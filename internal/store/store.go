// Package store is the persistence port for the journal. Every component
// reads and writes account state through the typed Store interface rather
// than reaching into shared storage directly, so the whole engine can run
// against the in-memory implementation in tests or when no database is
// available.
package store

import (
	"scalper-journal-go/internal/models"
)

// Store persists the trade ledger, session history, account settings, and
// the supporting cash/deal tables.
//
// Readers return records sorted ascending by timestamp; display order is the
// caller's concern. A missing or malformed value never fails a read: the
// documented default (empty slice, DefaultSettings) is returned instead.
type Store interface {
	Trades() ([]models.Trade, error)
	SaveTrade(t *models.Trade) error
	DeleteTrade(id string) error

	SessionHistory() ([]models.SessionStart, error)
	AddSessionStart(startedAt int64) error

	Settings() (models.Settings, error)
	SaveSettings(s models.Settings) error

	// ResetJournal wipes trades and session history and clears the current
	// session, unlocking the starting-capital field again.
	ResetJournal() error

	WalletTransactions() ([]models.WalletTransaction, error)
	AddWalletTransaction(tx *models.WalletTransaction) error

	SaveDeal(d *models.Deal) error
}
