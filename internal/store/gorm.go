package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"scalper-journal-go/internal/models"
)

// Gorm is the database-backed Store.
type Gorm struct {
	db *gorm.DB
}

var _ Store = (*Gorm)(nil)

// NewGorm wraps an open gorm connection.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) Trades() ([]models.Trade, error) {
	var trades []models.Trade
	if err := s.db.Order("timestamp asc").Find(&trades).Error; err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	return trades, nil
}

func (s *Gorm) SaveTrade(t *models.Trade) error {
	if err := s.db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to save trade: %w", err)
	}
	return nil
}

// DeleteTrade is idempotent: deleting an absent id is not an error.
func (s *Gorm) DeleteTrade(id string) error {
	if err := s.db.Delete(&models.Trade{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete trade: %w", err)
	}
	return nil
}

func (s *Gorm) SessionHistory() ([]models.SessionStart, error) {
	var starts []models.SessionStart
	if err := s.db.Order("started_at asc").Find(&starts).Error; err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}
	return starts, nil
}

func (s *Gorm) AddSessionStart(startedAt int64) error {
	start := models.SessionStart{StartedAt: startedAt}
	err := s.db.FirstOrCreate(&start, start).Error
	if err != nil {
		return fmt.Errorf("failed to record session start: %w", err)
	}
	return nil
}

func (s *Gorm) Settings() (models.Settings, error) {
	var settings models.Settings
	err := s.db.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultSettings()
		if err := s.db.Create(&settings).Error; err != nil {
			return models.DefaultSettings(), fmt.Errorf("failed to seed settings: %w", err)
		}
		return settings, nil
	}
	if err != nil {
		return models.DefaultSettings(), fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func (s *Gorm) SaveSettings(settings models.Settings) error {
	if err := s.db.Save(&settings).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *Gorm) ResetJournal() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Trade{}).Error; err != nil {
			return fmt.Errorf("failed to clear trades: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.SessionStart{}).Error; err != nil {
			return fmt.Errorf("failed to clear session history: %w", err)
		}
		var settings models.Settings
		if err := tx.First(&settings).Error; err == nil {
			settings.CurrentSession = 0
			if err := tx.Save(&settings).Error; err != nil {
				return fmt.Errorf("failed to clear current session: %w", err)
			}
		}
		return nil
	})
}

func (s *Gorm) WalletTransactions() ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	if err := s.db.Order("occurred_at asc").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to load wallet transactions: %w", err)
	}
	return txs, nil
}

func (s *Gorm) AddWalletTransaction(tx *models.WalletTransaction) error {
	if err := s.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to save wallet transaction: %w", err)
	}
	return nil
}

func (s *Gorm) SaveDeal(d *models.Deal) error {
	if err := s.db.Create(d).Error; err != nil {
		return fmt.Errorf("failed to save deal: %w", err)
	}
	return nil
}
