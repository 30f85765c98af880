// Package goals derives weekly and monthly profit-goal progress from the
// trade ledger. Progress is always recomputed from the records, never stored.
package goals

import (
	"math"
	"time"

	"scalper-journal-go/internal/models"
)

// mondayOf returns local midnight of the Monday on or before t.
func mondayOf(t time.Time) time.Time {
	days := (int(t.Weekday()) + 6) % 7 // Monday = 0
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -days)
}

// WeeklyProgress sums pnl over trades in the same Monday-starting week as now.
func WeeklyProgress(trades []models.Trade, now time.Time) float64 {
	week := mondayOf(now)
	var sum float64
	for _, t := range trades {
		ts := time.UnixMilli(t.Timestamp).In(now.Location())
		if mondayOf(ts).Equal(week) {
			sum += t.Pnl
		}
	}
	return sum
}

// MonthlyProgress sums pnl over trades in the same calendar month as now.
func MonthlyProgress(trades []models.Trade, now time.Time) float64 {
	var sum float64
	for _, t := range trades {
		ts := time.UnixMilli(t.Timestamp).In(now.Location())
		if ts.Year() == now.Year() && ts.Month() == now.Month() {
			sum += t.Pnl
		}
	}
	return sum
}

// ProgressPercent returns progress toward target clamped to [0, 100].
// A zero, negative, or non-finite target yields 0.
func ProgressPercent(progress, target float64) float64 {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return 0
	}
	pct := progress / target * 100
	return math.Min(100, math.Max(0, pct))
}

// Reached reports whether the target is set and met.
func Reached(progress, target float64) bool {
	return target > 0 && progress >= target
}
