package store

import (
	"sort"
	"sync"

	"scalper-journal-go/internal/models"
)

// Memory is an in-memory Store. It backs tests and the degraded mode used
// when the database cannot be opened: the journal keeps working for the
// current run and state is lost on exit.
type Memory struct {
	mu       sync.Mutex
	trades   []models.Trade
	sessions map[int64]struct{}
	settings models.Settings
	wallet   []models.WalletTransaction
	deals    []models.Deal
	nextID   uint
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		sessions: make(map[int64]struct{}),
		settings: models.DefaultSettings(),
	}
}

func (s *Memory) Trades() ([]models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Trade, len(s.trades))
	copy(out, s.trades)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (s *Memory) SaveTrade(t *models.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, *t)
	return nil
}

func (s *Memory) DeleteTrade(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.trades[:0]
	for _, t := range s.trades {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.trades = kept
	return nil
}

func (s *Memory) SessionHistory() ([]models.SessionStart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SessionStart, 0, len(s.sessions))
	for at := range s.sessions {
		out = append(out, models.SessionStart{StartedAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt < out[j].StartedAt })
	return out, nil
}

func (s *Memory) AddSessionStart(startedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[startedAt] = struct{}{}
	return nil
}

func (s *Memory) Settings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Memory) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

func (s *Memory) ResetJournal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = nil
	s.sessions = make(map[int64]struct{})
	s.settings.CurrentSession = 0
	return nil
}

func (s *Memory) WalletTransactions() ([]models.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.WalletTransaction, len(s.wallet))
	copy(out, s.wallet)
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt < out[j].OccurredAt })
	return out, nil
}

func (s *Memory) AddWalletTransaction(tx *models.WalletTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	tx.ID = s.nextID
	s.wallet = append(s.wallet, *tx)
	return nil
}

func (s *Memory) SaveDeal(d *models.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	d.ID = s.nextID
	s.deals = append(s.deals, *d)
	return nil
}
