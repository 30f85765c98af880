package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scalper-journal-go/internal/models"
)

func TestSummarize(t *testing.T) {
	trades := []models.Trade{
		{Pnl: 50}, {Pnl: -20}, {Pnl: 0}, {Pnl: 30}, {Pnl: -10},
	}
	s := Summarize(trades)

	assert.Equal(t, 5, s.Closed)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 2, s.Losses)
	assert.Equal(t, 1, s.Breakevens)
	assert.InDelta(t, 40.0, s.WinRate, 1e-9)
	assert.InDelta(t, 50.0, s.TotalPnl, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Closed)
	assert.Equal(t, 0.0, s.WinRate)
	assert.Equal(t, 0.0, s.TotalPnl)
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(nil))
	assert.InDelta(t, 50.0, WinRate([]models.Trade{{Pnl: 10}, {Pnl: -10}}), 1e-9)
	// breakevens count against the rate
	assert.InDelta(t, 100.0/3, WinRate([]models.Trade{{Pnl: 10}, {Pnl: 0}, {Pnl: -5}}), 1e-9)
}

func TestEquityCurve(t *testing.T) {
	base := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		{Timestamp: base.Add(time.Hour).UnixMilli(), Pnl: -20},
		{Timestamp: base.UnixMilli(), Pnl: 50}, // out of order on purpose
	}

	points := EquityCurve(trades, 1000)

	assert.Len(t, points, 3)
	assert.Equal(t, 1000.0, points[0].Equity) // synthetic starting point
	assert.Equal(t, 1050.0, points[1].Equity)
	assert.Equal(t, 1030.0, points[2].Equity)
	assert.Equal(t, points[0].Label, points[1].Label) // anchored at the first trade
}

func TestEquityCurveEmpty(t *testing.T) {
	points := EquityCurve(nil, 500)
	assert.Len(t, points, 1)
	assert.Equal(t, "Start", points[0].Label)
	assert.Equal(t, 500.0, points[0].Equity)
}

func TestGroupBySession(t *testing.T) {
	s1 := time.Date(2024, 5, 14, 8, 0, 0, 0, time.Local).UnixMilli()
	s2 := time.Date(2024, 5, 15, 8, 0, 0, 0, time.Local).UnixMilli()
	history := []models.SessionStart{{StartedAt: s2}, {StartedAt: s1}}

	trades := []models.Trade{
		{ID: "before", Timestamp: s1 - 60_000, Pnl: 1},
		{ID: "a", Timestamp: s1 + 1, Pnl: 10},
		{ID: "b", Timestamp: s2 - 1, Pnl: 20},
		{ID: "c", Timestamp: s2 + 1, Pnl: -5},
	}

	buckets := GroupBySession(trades, history)

	assert.Len(t, buckets, 3)

	// newest session first
	assert.Equal(t, s2, buckets[0].StartAt)
	assert.Equal(t, "Session 2 ("+time.UnixMilli(s2).Format("Mon, Jan 2, 2006")+")", buckets[0].Title)
	assert.Len(t, buckets[0].Trades, 1)
	assert.Equal(t, "c", buckets[0].Trades[0].ID)
	assert.InDelta(t, -5.0, buckets[0].TotalPnl, 1e-9)

	assert.Equal(t, s1, buckets[1].StartAt)
	assert.Len(t, buckets[1].Trades, 2)
	// rows inside a bucket are most recent first
	assert.Equal(t, "b", buckets[1].Trades[0].ID)
	assert.Equal(t, "a", buckets[1].Trades[1].ID)
	assert.InDelta(t, 30.0, buckets[1].TotalPnl, 1e-9)

	assert.Equal(t, "All Trades", buckets[2].Title)
	assert.Equal(t, "before", buckets[2].Trades[0].ID)
}

func TestGroupBySessionDropsEmptyBuckets(t *testing.T) {
	s1 := int64(1_700_000_000_000)
	s2 := s1 + 3_600_000
	history := []models.SessionStart{{StartedAt: s1}, {StartedAt: s2}}
	trades := []models.Trade{{ID: "only", Timestamp: s2 + 1, Pnl: 5}}

	buckets := GroupBySession(trades, history)

	assert.Len(t, buckets, 1)
	assert.Equal(t, s2, buckets[0].StartAt)
}

func TestGroupBySessionNoHistory(t *testing.T) {
	trades := []models.Trade{
		{ID: "a", Timestamp: 1, Pnl: 10},
		{ID: "b", Timestamp: 2, Pnl: -4},
	}

	buckets := GroupBySession(trades, nil)

	assert.Len(t, buckets, 1)
	assert.Equal(t, "All Trades", buckets[0].Title)
	assert.Equal(t, "b", buckets[0].Trades[0].ID)
	assert.InDelta(t, 6.0, buckets[0].TotalPnl, 1e-9)

	assert.Nil(t, GroupBySession(nil, nil))
}

func TestTodayPnl(t *testing.T) {
	now := time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC)
	trades := []models.Trade{
		{Timestamp: time.Date(2024, 5, 15, 0, 0, 1, 0, time.UTC).UnixMilli(), Pnl: 10},
		{Timestamp: time.Date(2024, 5, 15, 23, 59, 0, 0, time.UTC).UnixMilli(), Pnl: -4},
		{Timestamp: time.Date(2024, 5, 14, 23, 59, 0, 0, time.UTC).UnixMilli(), Pnl: -99},
	}
	assert.InDelta(t, 6.0, TodayPnl(trades, now), 1e-9)
}

func TestDailyTotals(t *testing.T) {
	day := time.Date(2024, 5, 15, 9, 0, 0, 0, time.Local)
	trades := []models.Trade{
		{Timestamp: day.UnixMilli(), Pnl: 10},
		{Timestamp: day.Add(2 * time.Hour).UnixMilli(), Pnl: 5},
		{Timestamp: day.AddDate(0, 0, -1).UnixMilli(), Pnl: -3},
	}

	totals := DailyTotals(trades)

	assert.InDelta(t, 15.0, totals["2024-05-15"], 1e-9)
	assert.InDelta(t, -3.0, totals["2024-05-14"], 1e-9)
}

func TestPnlBreakdowns(t *testing.T) {
	trades := []models.Trade{
		{Instrument: "Step Index", Notes: "Ultimate M1 Trend setup", Pnl: 10},
		{Instrument: "Step Index", Notes: "Ultimate M1 Range setup", Pnl: -4},
		{Instrument: "Volatility 75 (1s)", Notes: "Ultimate M1 Trend setup", Pnl: 7},
	}

	byMarket := PnlByInstrument(trades)
	assert.InDelta(t, 6.0, byMarket["Step Index"], 1e-9)
	assert.InDelta(t, 7.0, byMarket["Volatility 75 (1s)"], 1e-9)

	byStrategy := PnlByStrategy(trades)
	assert.InDelta(t, 17.0, byStrategy["Ultimate M1 Trend setup"], 1e-9)
	assert.InDelta(t, -4.0, byStrategy["Ultimate M1 Range setup"], 1e-9)
}
