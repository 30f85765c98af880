package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"scalper-journal-go/internal/discipline"
	"scalper-journal-go/internal/journal"
	"scalper-journal-go/internal/notify"
	"scalper-journal-go/internal/store"
	"scalper-journal-go/internal/wallet"
)

func setupTestAPI(t *testing.T, guardCfg discipline.Config) (*http.ServeMux, *store.Memory) {
	t.Helper()
	log := zap.NewNop()
	st := store.NewMemory()
	clock := discipline.SystemClock()
	guard := discipline.NewGuard(clock, notify.Noop{}, log, guardCfg)
	t.Cleanup(guard.Close)
	manager := journal.NewManager(log, st, guard, nil, clock, "trader-1")
	book := wallet.NewBook(st)

	mux := http.NewServeMux()
	NewAPIHandler(log, st, manager, guard, book, nil, clock, "hook-key").Register(mux)
	return mux, st
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	assert.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestAddTradeEndpoint(t *testing.T) {
	mux, _ := setupTestAPI(t, discipline.Config{})

	w := postJSON(t, mux, "/api/trades", map[string]any{
		"instrument": "Step Index",
		"pnl":        25.5,
		"notes":      "Ultimate M1 Trend setup",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var trade map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &trade))
	assert.NotEmpty(t, trade["id"])

	w = get(mux, "/api/trades")
	assert.Equal(t, http.StatusOK, w.Code)
	var trades []map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &trades))
	assert.Len(t, trades, 1)
}

func TestAddTradeEndpointRejectsUnknownInstrument(t *testing.T) {
	mux, _ := setupTestAPI(t, discipline.Config{})

	w := postJSON(t, mux, "/api/trades", map[string]any{"instrument": "Boom 1000", "pnl": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddTradeEndpointReportsLockAsOutcome(t *testing.T) {
	mux, _ := setupTestAPI(t, discipline.Config{DailyMaxLoss: 100, LockOnHit: true})

	w := postJSON(t, mux, "/api/trades", map[string]any{"instrument": "Step Index", "pnl": -150})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, mux, "/api/trades", map[string]any{"instrument": "Step Index", "pnl": 10})
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["blocked"])
}

func TestDeleteTradeEndpoint(t *testing.T) {
	mux, _ := setupTestAPI(t, discipline.Config{})

	w := postJSON(t, mux, "/api/trades", map[string]any{"instrument": "Step Index", "pnl": 5})
	var trade map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &trade))

	req := httptest.NewRequest(http.MethodDelete, "/api/trades/"+trade["id"].(string), nil)
	w2 := httptest.NewRecorder()
	mux.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	// deleting again is still fine
	w3 := httptest.NewRecorder()
	mux.ServeHTTP(w3, httptest.NewRequest(http.MethodDelete, "/api/trades/"+trade["id"].(string), nil))
	assert.Equal(t, http.StatusOK, w3.Code)
}

func TestSetAccountLocksStartingCapitalAfterFirstTrade(t *testing.T) {
	mux, _ := setupTestAPI(t, discipline.Config{})

	w := postJSON(t, mux, "/api/account", map[string]any{"starting_capital": 2500})
	assert.Equal(t, http.StatusOK, w.Code)

	postJSON(t, mux, "/api/trades", map[string]any{"instrument": "Step Index", "pnl": 5})

	w = postJSON(t, mux, "/api/account", map[string]any{"starting_capital": 9999})
	assert.Equal(t, http.StatusConflict, w.Code)

	// risk percent stays editable
	w = postJSON(t, mux, "/api/account", map[string]any{"risk_percent": 2})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSizingEndpoint(t *testing.T) {
	mux, _ := setupTestAPI(t, discipline.Config{})

	w := get(mux, "/api/sizing?instrument=Volatility+75+(1s)&risk_amount=500&risk_pips=50")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1000.0, resp["lot"])
}

func TestDisciplineEndpoints(t *testing.T) {
	mux, st := setupTestAPI(t, discipline.Config{})

	w := postJSON(t, mux, "/api/discipline", map[string]any{"daily_max_loss": 100, "lock_on_hit": true})
	assert.Equal(t, http.StatusOK, w.Code)

	settings, err := st.Settings()
	assert.NoError(t, err)
	assert.Equal(t, 100.0, settings.DailyMaxLoss)
	assert.True(t, settings.LockOnHit)

	postJSON(t, mux, "/api/trades", map[string]any{"instrument": "Step Index", "pnl": -150})

	w = get(mux, "/api/discipline")
	var state map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, "Locked", state["state"])

	w = postJSON(t, mux, "/api/discipline/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var reset map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &reset))
	assert.Equal(t, "Active", reset["state"])
}

func TestExportEndpoint(t *testing.T) {
	mux, _ := setupTestAPI(t, discipline.Config{})
	postJSON(t, mux, "/api/trades", map[string]any{"instrument": "Step Index", "pnl": 12.5})

	w := get(mux, "/api/export.csv")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "scalper-trades-")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.Equal(t, "time,market,strategy,pnl", lines[0])
	assert.Len(t, lines, 2)
}

func TestLeaderboardEndpointUnconfigured(t *testing.T) {
	mux, _ := setupTestAPI(t, discipline.Config{})

	w := get(mux, "/api/leaderboard")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWebhookEndpoint(t *testing.T) {
	fill := map[string]any{
		"api_key": "hook-key",
		"deal_id": "d-1",
		"symbol":  "Volatility 75 (1s)",
		"side":    "buy",
		"volume":  0.5,
		"price":   123456.78,
		"time":    "2024-05-15T10:00:00Z",
	}

	t.Run("Accepted", func(t *testing.T) {
		mux, _ := setupTestAPI(t, discipline.Config{})
		w := postJSON(t, mux, "/api/webhook", fill)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("WrongKey", func(t *testing.T) {
		mux, _ := setupTestAPI(t, discipline.Config{})
		bad := map[string]any{}
		for k, v := range fill {
			bad[k] = v
		}
		bad["api_key"] = "nope"
		w := postJSON(t, mux, "/api/webhook", bad)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MissingFields", func(t *testing.T) {
		mux, _ := setupTestAPI(t, discipline.Config{})
		w := postJSON(t, mux, "/api/webhook", map[string]any{"api_key": "hook-key"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCashEndpoints(t *testing.T) {
	mux, _ := setupTestAPI(t, discipline.Config{})

	w := postJSON(t, mux, "/api/cash", map[string]any{"amount": 500, "type": "deposit"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, mux, "/api/cash", map[string]any{"amount": -5, "type": "deposit"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(mux, "/api/cash")
	var resp struct {
		NetCashflow float64 `json:"net_cashflow"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 500.0, resp.NetCashflow)
}
