// Package journal owns the append-only trade ledger and partitions it into
// trading sessions. All derived metrics are recomputed from the records on
// demand; nothing is cached between requests.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scalper-journal-go/internal/discipline"
	"scalper-journal-go/internal/models"
	"scalper-journal-go/internal/sizing"
	"scalper-journal-go/internal/store"
)

// ErrTradingLocked is the rejected-entry outcome while the discipline guard
// is locked. It is informational, not a system failure.
var ErrTradingLocked = errors.New("trade entry is locked for today")

// ErrUnknownInstrument rejects entries against an instrument outside the
// known set.
var ErrUnknownInstrument = errors.New("unknown instrument")

// SessionRecorder receives closed-session summaries. Delivery is fire and
// forget: the local session rollover never waits on or rolls back for it.
type SessionRecorder interface {
	RecordClose(ctx context.Context, closed ClosedSession) error
}

// ClosedSession is the payload handed to the recorder when a session ends.
type ClosedSession struct {
	UserID          string    `json:"userId"`
	SessionPnl      float64   `json:"sessionPnl"`
	StartingCapital float64   `json:"startingCapital"`
	StartedAt       time.Time `json:"startedAt"`
	EndedAt         time.Time `json:"endedAt"`
}

// NewTrade is the caller-supplied part of a trade record; id and timestamp
// are assigned on entry.
type NewTrade struct {
	Instrument sizing.Instrument
	Pnl        float64
	Notes      string
	RiskAmount float64
	Tags       string
}

// Manager is the session manager. It owns the ledger through the store,
// gates the write path through the discipline guard, and derives account
// state on demand.
type Manager struct {
	log      *zap.Logger
	store    store.Store
	guard    *discipline.Guard
	recorder SessionRecorder
	clock    discipline.Clock
	userID   string
}

// NewManager wires the session manager. recorder may be nil when no remote
// leaderboard is configured.
func NewManager(log *zap.Logger, st store.Store, guard *discipline.Guard, recorder SessionRecorder, clock discipline.Clock, userID string) *Manager {
	return &Manager{
		log:      log,
		store:    st,
		guard:    guard,
		recorder: recorder,
		clock:    clock,
		userID:   userID,
	}
}

// AddTrade appends a record to the ledger. While the guard blocks entry it
// is a no-op returning ErrTradingLocked. After a successful append the guard
// is re-evaluated against today's realized pnl.
func (m *Manager) AddTrade(entry NewTrade) (models.Trade, error) {
	if m.guard.Blocked() {
		return models.Trade{}, ErrTradingLocked
	}
	if !entry.Instrument.Valid() {
		return models.Trade{}, fmt.Errorf("%w: %q", ErrUnknownInstrument, entry.Instrument)
	}

	trade := models.Trade{
		ID:         uuid.NewString(),
		Instrument: string(entry.Instrument),
		Pnl:        entry.Pnl,
		Notes:      entry.Notes,
		Timestamp:  m.clock.Now().UnixMilli(),
		RiskAmount: entry.RiskAmount,
		Tags:       entry.Tags,
	}
	if err := m.store.SaveTrade(&trade); err != nil {
		return models.Trade{}, err
	}
	m.log.Info("trade logged",
		zap.String("id", trade.ID),
		zap.String("instrument", trade.Instrument),
		zap.Float64("pnl", trade.Pnl))

	m.evaluateGuard()
	return trade, nil
}

// DeleteTrade removes a record by id. Absent ids are a no-op, so the call
// is idempotent.
func (m *Manager) DeleteTrade(id string) error {
	if err := m.store.DeleteTrade(id); err != nil {
		return err
	}
	m.evaluateGuard()
	return nil
}

// evaluateGuard is the evaluation tick: recompute today's pnl from the
// ledger and hand it to the guard.
func (m *Manager) evaluateGuard() {
	trades, err := m.store.Trades()
	if err != nil {
		m.log.Warn("could not load trades for guard evaluation", zap.Error(err))
		return
	}
	m.guard.Evaluate(TodayPnl(trades, m.clock.Now()))
}

// Trades returns the full ledger sorted ascending by timestamp.
func (m *Manager) Trades() ([]models.Trade, error) {
	return m.store.Trades()
}

// NewSession mints a fresh session id from the current instant, appends it
// to the session history, and makes it the active session. Safe with an
// empty ledger.
func (m *Manager) NewSession() (int64, error) {
	id := m.clock.Now().UnixMilli()
	if err := m.store.AddSessionStart(id); err != nil {
		return 0, err
	}
	settings, err := m.store.Settings()
	if err != nil {
		return 0, err
	}
	settings.CurrentSession = id
	if err := m.store.SaveSettings(settings); err != nil {
		return 0, err
	}
	m.log.Info("new session started", zap.Int64("session_id", id))
	return id, nil
}

// EndSession reports the closing session to the recorder and rolls over to
// a fresh one. Recorder failures are logged and do not stop the rollover.
func (m *Manager) EndSession(ctx context.Context) (int64, error) {
	settings, err := m.store.Settings()
	if err != nil {
		return 0, err
	}
	sessionTrades, err := m.SessionTrades()
	if err != nil {
		return 0, err
	}

	endedAt := m.clock.Now()
	startedAt := endedAt.Add(-time.Hour)
	if settings.CurrentSession != 0 {
		startedAt = time.UnixMilli(settings.CurrentSession)
	}

	if m.recorder != nil && m.userID != "" {
		closed := ClosedSession{
			UserID:          m.userID,
			SessionPnl:      TotalPnl(sessionTrades),
			StartingCapital: settings.StartingCapital,
			StartedAt:       startedAt,
			EndedAt:         endedAt,
		}
		if err := m.recorder.RecordClose(ctx, closed); err != nil {
			m.log.Warn("failed to record closed session", zap.Error(err))
		}
	}

	return m.NewSession()
}

// SessionTrades returns the records of the active session, or the whole
// ledger when no session has been started.
func (m *Manager) SessionTrades() ([]models.Trade, error) {
	trades, err := m.store.Trades()
	if err != nil {
		return nil, err
	}
	settings, err := m.store.Settings()
	if err != nil {
		return nil, err
	}
	if settings.CurrentSession == 0 {
		return trades, nil
	}
	scoped := trades[:0:0]
	for _, t := range trades {
		if t.Timestamp >= settings.CurrentSession {
			scoped = append(scoped, t)
		}
	}
	return scoped, nil
}

// SessionCount returns the number of distinct sessions ever opened.
func (m *Manager) SessionCount() (int, error) {
	history, err := m.store.SessionHistory()
	if err != nil {
		return 0, err
	}
	return len(history), nil
}

// Account is the derived account state.
type Account struct {
	StartingCapital float64 `json:"starting_capital"`
	RiskPercent     float64 `json:"risk_percent"`
	Equity          float64 `json:"equity"`
	RiskAmount      float64 `json:"risk_amount"`
	GrowthPercent   float64 `json:"growth_percent"`
	CapitalEditable bool    `json:"capital_editable"`
}

// Account recomputes equity, risk amount, and all-time growth from the
// ledger and settings.
func (m *Manager) Account() (Account, error) {
	settings, err := m.store.Settings()
	if err != nil {
		return Account{}, err
	}
	trades, err := m.store.Trades()
	if err != nil {
		return Account{}, err
	}
	equity := settings.StartingCapital + TotalPnl(trades)
	growth := 0.0
	if settings.StartingCapital != 0 {
		growth = (equity - settings.StartingCapital) / settings.StartingCapital * 100
	}
	return Account{
		StartingCapital: settings.StartingCapital,
		RiskPercent:     settings.RiskPercent,
		Equity:          equity,
		RiskAmount:      equity * settings.RiskPercent / 100,
		GrowthPercent:   growth,
		CapitalEditable: len(trades) == 0,
	}, nil
}

// CanEditStartingCapital reports whether the ledger is still empty. The
// entry form disables the capital field otherwise; the engine only exposes
// the precondition.
func (m *Manager) CanEditStartingCapital() (bool, error) {
	trades, err := m.store.Trades()
	if err != nil {
		return false, err
	}
	return len(trades) == 0, nil
}
