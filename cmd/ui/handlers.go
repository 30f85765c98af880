package main

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"scalper-journal-go/internal/badge"
	"scalper-journal-go/internal/discipline"
	"scalper-journal-go/internal/goals"
	"scalper-journal-go/internal/journal"
	"scalper-journal-go/internal/leaderboard"
	"scalper-journal-go/internal/models"
	"scalper-journal-go/internal/sizing"
	"scalper-journal-go/internal/store"
	"scalper-journal-go/internal/wallet"
)

// APIHandler holds dependencies for the API endpoints.
type APIHandler struct {
	log        *zap.Logger
	store      store.Store
	manager    *journal.Manager
	guard      *discipline.Guard
	book       *wallet.Book
	lb         *leaderboard.Client
	clock      discipline.Clock
	webhookKey string
}

// NewAPIHandler creates a new APIHandler. lb may be nil when no leaderboard
// service is configured.
func NewAPIHandler(log *zap.Logger, st store.Store, manager *journal.Manager, guard *discipline.Guard, book *wallet.Book, lb *leaderboard.Client, clock discipline.Clock, webhookKey string) *APIHandler {
	return &APIHandler{
		log:        log,
		store:      st,
		manager:    manager,
		guard:      guard,
		book:       book,
		lb:         lb,
		clock:      clock,
		webhookKey: webhookKey,
	}
}

// Register wires every endpoint onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", h.StatusHandler)
	mux.HandleFunc("GET /api/trades", h.TradesHandler)
	mux.HandleFunc("POST /api/trades", h.AddTradeHandler)
	mux.HandleFunc("DELETE /api/trades/{id}", h.DeleteTradeHandler)
	mux.HandleFunc("GET /api/stats", h.StatsHandler)
	mux.HandleFunc("GET /api/equity-curve", h.EquityCurveHandler)
	mux.HandleFunc("GET /api/sessions", h.SessionsHandler)
	mux.HandleFunc("POST /api/sessions/close", h.CloseSessionHandler)
	mux.HandleFunc("GET /api/sizing", h.SizingHandler)
	mux.HandleFunc("GET /api/reference", h.ReferenceHandler)
	mux.HandleFunc("GET /api/goals", h.GoalsHandler)
	mux.HandleFunc("POST /api/goals", h.SetGoalsHandler)
	mux.HandleFunc("GET /api/account", h.AccountHandler)
	mux.HandleFunc("POST /api/account", h.SetAccountHandler)
	mux.HandleFunc("POST /api/reset", h.ResetJournalHandler)
	mux.HandleFunc("GET /api/discipline", h.DisciplineHandler)
	mux.HandleFunc("POST /api/discipline", h.SetDisciplineHandler)
	mux.HandleFunc("POST /api/discipline/reset", h.ResetLockHandler)
	mux.HandleFunc("POST /api/discipline/override", h.OverrideLockHandler)
	mux.HandleFunc("GET /api/leaderboard", h.LeaderboardHandler)
	mux.HandleFunc("GET /api/export.csv", h.ExportHandler)
	mux.HandleFunc("GET /api/cash", h.CashHandler)
	mux.HandleFunc("POST /api/cash", h.AddCashHandler)
	mux.HandleFunc("POST /api/webhook", h.WebhookHandler)
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *APIHandler) serverError(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	http.Error(w, msg, http.StatusInternalServerError)
}

// StatusHandler returns the top-of-dashboard summary.
func (h *APIHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.manager.Account()
	if err != nil {
		h.serverError(w, "Failed to load account", err)
		return
	}
	sessions, err := h.manager.SessionCount()
	if err != nil {
		h.serverError(w, "Failed to load session history", err)
		return
	}
	trades, err := h.manager.Trades()
	if err != nil {
		h.serverError(w, "Failed to load trades", err)
		return
	}
	tier := badge.TierFor(sessions)

	resp := map[string]any{
		"state":       h.guard.State(),
		"account":     account,
		"sessions":    sessions,
		"badge":       tier.String(),
		"badge_title": tier.Title(),
		"today_pnl":   journal.TodayPnl(trades, h.clock.Now()),
	}
	if next, at, remaining, ok := badge.Next(sessions); ok {
		resp["next_badge"] = map[string]any{
			"tier":      next.String(),
			"at":        at,
			"remaining": remaining,
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// TradesHandler returns the full ledger, most recent first.
func (h *APIHandler) TradesHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.manager.Trades()
	if err != nil {
		h.serverError(w, "Failed to get trades", err)
		return
	}
	// display order concern only; canonical order stays by timestamp
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}
	h.writeJSON(w, http.StatusOK, trades)
}

type addTradeRequest struct {
	Instrument string  `json:"instrument"`
	Pnl        float64 `json:"pnl"`
	Notes      string  `json:"notes"`
	RiskAmount float64 `json:"risk_amount"`
	Tags       string  `json:"tags"`
}

// AddTradeHandler logs a trade. A guard rejection is reported as a normal
// outcome, not an error status.
func (h *APIHandler) AddTradeHandler(w http.ResponseWriter, r *http.Request) {
	var req addTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	trade, err := h.manager.AddTrade(journal.NewTrade{
		Instrument: sizing.Instrument(req.Instrument),
		Pnl:        req.Pnl,
		Notes:      req.Notes,
		RiskAmount: req.RiskAmount,
		Tags:       req.Tags,
	})
	if errors.Is(err, journal.ErrTradingLocked) {
		h.writeJSON(w, http.StatusOK, map[string]any{
			"blocked": true,
			"message": "Trading is locked for today (max loss hit).",
		})
		return
	}
	if errors.Is(err, journal.ErrUnknownInstrument) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.serverError(w, "Failed to save trade", err)
		return
	}
	h.writeJSON(w, http.StatusOK, trade)
}

// DeleteTradeHandler removes a trade by id; deleting twice is harmless.
func (h *APIHandler) DeleteTradeHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.DeleteTrade(r.PathValue("id")); err != nil {
		h.serverError(w, "Failed to delete trade", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// StatsHandler returns session-scoped and all-time aggregates.
func (h *APIHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	sessionTrades, err := h.manager.SessionTrades()
	if err != nil {
		h.serverError(w, "Failed to load session trades", err)
		return
	}
	allTrades, err := h.manager.Trades()
	if err != nil {
		h.serverError(w, "Failed to load trades", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"session":      journal.Summarize(sessionTrades),
		"all_time":     journal.Summarize(allTrades),
		"by_market":    journal.PnlByInstrument(allTrades),
		"by_strategy":  journal.PnlByStrategy(allTrades),
		"daily_totals": journal.DailyTotals(allTrades),
	})
}

// EquityCurveHandler returns the all-time equity series.
func (h *APIHandler) EquityCurveHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.manager.Account()
	if err != nil {
		h.serverError(w, "Failed to load account", err)
		return
	}
	trades, err := h.manager.Trades()
	if err != nil {
		h.serverError(w, "Failed to load trades", err)
		return
	}
	h.writeJSON(w, http.StatusOK, journal.EquityCurve(trades, account.StartingCapital))
}

// SessionsHandler returns the journal grouped into session buckets.
func (h *APIHandler) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.manager.Trades()
	if err != nil {
		h.serverError(w, "Failed to load trades", err)
		return
	}
	history, err := h.store.SessionHistory()
	if err != nil {
		h.serverError(w, "Failed to load session history", err)
		return
	}
	h.writeJSON(w, http.StatusOK, journal.GroupBySession(trades, history))
}

// CloseSessionHandler ends the active session and starts a new one.
func (h *APIHandler) CloseSessionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.manager.EndSession(r.Context())
	if err != nil {
		h.serverError(w, "Failed to roll over session", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"session_id": id})
}

// SizingHandler computes a lot size from query parameters. With no explicit
// risk amount the account's derived one is used.
func (h *APIHandler) SizingHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	instrument := sizing.Instrument(q.Get("instrument"))
	riskPips, _ := strconv.ParseFloat(q.Get("risk_pips"), 64)

	riskAmount, err := strconv.ParseFloat(q.Get("risk_amount"), 64)
	if err != nil {
		account, aerr := h.manager.Account()
		if aerr != nil {
			h.serverError(w, "Failed to load account", aerr)
			return
		}
		riskAmount = account.RiskAmount
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"instrument":  instrument,
		"risk_amount": riskAmount,
		"risk_pips":   riskPips,
		"lot":         sizing.LotSize(riskAmount, instrument, riskPips),
	})
}

// ReferenceHandler returns the fixed choices the entry form renders.
func (h *APIHandler) ReferenceHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"instruments": sizing.Selectable(),
		"strategies":  sizing.Strategies(),
	})
}

type goalProgress struct {
	Target   float64 `json:"target"`
	Progress float64 `json:"progress"`
	Percent  float64 `json:"percent"`
	Reached  bool    `json:"reached"`
}

// GoalsHandler returns weekly and monthly goal progress.
func (h *APIHandler) GoalsHandler(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings()
	if err != nil {
		h.serverError(w, "Failed to load settings", err)
		return
	}
	trades, err := h.manager.Trades()
	if err != nil {
		h.serverError(w, "Failed to load trades", err)
		return
	}
	now := h.clock.Now()
	weekly := goals.WeeklyProgress(trades, now)
	monthly := goals.MonthlyProgress(trades, now)

	h.writeJSON(w, http.StatusOK, map[string]goalProgress{
		"weekly": {
			Target:   settings.WeeklyTarget,
			Progress: weekly,
			Percent:  goals.ProgressPercent(weekly, settings.WeeklyTarget),
			Reached:  goals.Reached(weekly, settings.WeeklyTarget),
		},
		"monthly": {
			Target:   settings.MonthlyTarget,
			Progress: monthly,
			Percent:  goals.ProgressPercent(monthly, settings.MonthlyTarget),
			Reached:  goals.Reached(monthly, settings.MonthlyTarget),
		},
	})
}

type setGoalsRequest struct {
	WeeklyTarget  *float64 `json:"weekly_target"`
	MonthlyTarget *float64 `json:"monthly_target"`
}

// SetGoalsHandler updates goal targets. Negative targets are normalized to 0.
func (h *APIHandler) SetGoalsHandler(w http.ResponseWriter, r *http.Request) {
	var req setGoalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	settings, err := h.store.Settings()
	if err != nil {
		h.serverError(w, "Failed to load settings", err)
		return
	}
	if req.WeeklyTarget != nil {
		settings.WeeklyTarget = clampNonNegative(*req.WeeklyTarget)
	}
	if req.MonthlyTarget != nil {
		settings.MonthlyTarget = clampNonNegative(*req.MonthlyTarget)
	}
	if err := h.store.SaveSettings(settings); err != nil {
		h.serverError(w, "Failed to save settings", err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

// AccountHandler returns the derived account state.
func (h *APIHandler) AccountHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.manager.Account()
	if err != nil {
		h.serverError(w, "Failed to load account", err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

type setAccountRequest struct {
	StartingCapital *float64 `json:"starting_capital"`
	RiskPercent     *float64 `json:"risk_percent"`
}

// SetAccountHandler updates the account scalars. Starting capital is
// refused once the ledger holds any trade.
func (h *APIHandler) SetAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req setAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	settings, err := h.store.Settings()
	if err != nil {
		h.serverError(w, "Failed to load settings", err)
		return
	}
	if req.StartingCapital != nil {
		editable, err := h.manager.CanEditStartingCapital()
		if err != nil {
			h.serverError(w, "Failed to check ledger", err)
			return
		}
		if !editable {
			http.Error(w, "Starting capital is locked after the first trade", http.StatusConflict)
			return
		}
		settings.StartingCapital = clampNonNegative(*req.StartingCapital)
	}
	if req.RiskPercent != nil {
		settings.RiskPercent = clampNonNegative(*req.RiskPercent)
	}
	if err := h.store.SaveSettings(settings); err != nil {
		h.serverError(w, "Failed to save settings", err)
		return
	}
	h.writeJSON(w, http.StatusOK, settings)
}

// ResetJournalHandler wipes trades and sessions, unlocking starting capital.
func (h *APIHandler) ResetJournalHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetJournal(); err != nil {
		h.serverError(w, "Failed to reset journal", err)
		return
	}
	h.log.Info("journal reset")
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// DisciplineHandler returns the breaker configuration and state.
func (h *APIHandler) DisciplineHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.manager.Trades()
	if err != nil {
		h.serverError(w, "Failed to load trades", err)
		return
	}
	snap := h.guard.Snapshot()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"daily_max_loss": snap.DailyMaxLoss,
		"lock_on_hit":    snap.LockOnHit,
		"locked":         snap.Locked,
		"state":          h.guard.State(),
		"today_pnl":      journal.TodayPnl(trades, h.clock.Now()),
	})
}

type setDisciplineRequest struct {
	DailyMaxLoss *float64 `json:"daily_max_loss"`
	LockOnHit    *bool    `json:"lock_on_hit"`
}

// SetDisciplineHandler updates the breaker configuration and immediately
// re-evaluates it against today's pnl.
func (h *APIHandler) SetDisciplineHandler(w http.ResponseWriter, r *http.Request) {
	var req setDisciplineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.DailyMaxLoss != nil {
		h.guard.SetDailyMaxLoss(*req.DailyMaxLoss)
	}
	if req.LockOnHit != nil {
		h.guard.SetLockOnHit(*req.LockOnHit)
	}

	trades, err := h.manager.Trades()
	if err != nil {
		h.serverError(w, "Failed to load trades", err)
		return
	}
	h.guard.Evaluate(journal.TodayPnl(trades, h.clock.Now()))

	if err := h.persistGuard(); err != nil {
		h.serverError(w, "Failed to save settings", err)
		return
	}
	h.DisciplineHandler(w, r)
}

// ResetLockHandler clears the lock immediately.
func (h *APIHandler) ResetLockHandler(w http.ResponseWriter, r *http.Request) {
	h.guard.ResetDailyLock()
	if err := h.persistGuard(); err != nil {
		h.serverError(w, "Failed to save settings", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"state": h.guard.State()})
}

// OverrideLockHandler disables enforcement for the day without clearing the
// locked flag.
func (h *APIHandler) OverrideLockHandler(w http.ResponseWriter, r *http.Request) {
	h.guard.SetLockOnHit(false)
	if err := h.persistGuard(); err != nil {
		h.serverError(w, "Failed to save settings", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"state": h.guard.State()})
}

func (h *APIHandler) persistGuard() error {
	settings, err := h.store.Settings()
	if err != nil {
		return err
	}
	snap := h.guard.Snapshot()
	settings.DailyMaxLoss = snap.DailyMaxLoss
	settings.LockOnHit = snap.LockOnHit
	settings.Locked = snap.Locked
	return h.store.SaveSettings(settings)
}

type leaderboardEntry struct {
	Rank int `json:"rank"`
	leaderboard.Row
	Badge      string `json:"badge"`
	BadgeTitle string `json:"badge_title"`
}

// LeaderboardHandler fetches, ranks, and decorates the leaderboard rows.
func (h *APIHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	if h.lb == nil {
		http.Error(w, "Leaderboard is not configured", http.StatusServiceUnavailable)
		return
	}
	rows, err := h.lb.Fetch(r.Context())
	if err != nil {
		h.log.Warn("Failed to fetch leaderboard", zap.Error(err))
		http.Error(w, "Leaderboard is unavailable", http.StatusBadGateway)
		return
	}
	ranked := leaderboard.Rank(rows)
	entries := make([]leaderboardEntry, len(ranked))
	for i, row := range ranked {
		tier := row.Badge()
		entries[i] = leaderboardEntry{
			Rank:       i + 1,
			Row:        row,
			Badge:      tier.String(),
			BadgeTitle: tier.Title(),
		}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// ExportHandler streams the journal as CSV.
func (h *APIHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	trades, err := h.manager.Trades()
	if err != nil {
		h.serverError(w, "Failed to load trades", err)
		return
	}
	filename := "scalper-trades-" + h.clock.Now().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := journal.WriteCSV(w, trades); err != nil {
		h.log.Error("Failed to write csv export", zap.Error(err))
	}
}

// CashHandler lists wallet transactions with the running net cashflow.
func (h *APIHandler) CashHandler(w http.ResponseWriter, r *http.Request) {
	txs, err := h.book.Transactions()
	if err != nil {
		h.serverError(w, "Failed to load wallet transactions", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txs,
		"net_cashflow": wallet.NetCashflow(txs),
	})
}

type addCashRequest struct {
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	Currency   string  `json:"currency"`
	OccurredAt string  `json:"occurred_at"` // ISO instant, optional
	Note       string  `json:"note"`
}

// AddCashHandler records a wallet transaction.
func (h *APIHandler) AddCashHandler(w http.ResponseWriter, r *http.Request) {
	var req addCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	occurredAt := time.Time{}
	if req.OccurredAt != "" {
		t, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			http.Error(w, "Invalid occurred_at", http.StatusBadRequest)
			return
		}
		occurredAt = t
	}
	tx, err := h.book.Add(req.Amount, req.Type, req.Currency, req.Note, occurredAt)
	if errors.Is(err, wallet.ErrInvalidAmount) || errors.Is(err, wallet.ErrUnknownType) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.serverError(w, "Failed to save wallet transaction", err)
		return
	}
	h.writeJSON(w, http.StatusOK, tx)
}

type webhookRequest struct {
	ApiKey string   `json:"api_key"`
	DealID string   `json:"deal_id"`
	Symbol string   `json:"symbol"`
	Side   string   `json:"side"`
	Volume *float64 `json:"volume"`
	Price  *float64 `json:"price"`
	Time   string   `json:"time"`
}

// WebhookHandler ingests fills pushed by an external trade copier.
func (h *APIHandler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid body"})
		return
	}
	if req.ApiKey == "" || req.DealID == "" || req.Symbol == "" || req.Side == "" ||
		req.Volume == nil || req.Price == nil || req.Time == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing fields"})
		return
	}
	if h.webhookKey == "" || req.ApiKey != h.webhookKey {
		h.writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "unauthorized"})
		return
	}
	ts, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid time"})
		return
	}

	deal := models.Deal{
		DealID: req.DealID,
		Symbol: req.Symbol,
		Side:   req.Side,
		Volume: *req.Volume,
		Price:  *req.Price,
		Time:   ts.UnixMilli(),
	}
	if err := h.store.SaveDeal(&deal); err != nil {
		h.log.Error("Failed to save deal", zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "storage failure"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func clampNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
