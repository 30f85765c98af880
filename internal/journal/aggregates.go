package journal

import (
	"fmt"
	"math"
	"sort"
	"time"

	"scalper-journal-go/internal/models"
)

// Stats summarizes a set of trade records.
type Stats struct {
	Closed     int     `json:"closed"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Breakevens int     `json:"breakevens"`
	WinRate    float64 `json:"win_rate"` // percent
	TotalPnl   float64 `json:"total_pnl"`
}

// TotalPnl sums realized pnl over the records.
func TotalPnl(trades []models.Trade) float64 {
	var sum float64
	for _, t := range trades {
		sum += t.Pnl
	}
	return sum
}

// WinRate returns the share of winning trades as a percentage, 0 for an
// empty set.
func WinRate(trades []models.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.Pnl > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades)) * 100
}

// Summarize computes win/loss/breakeven counts, win rate, and total pnl in
// one pass.
func Summarize(trades []models.Trade) Stats {
	s := Stats{Closed: len(trades)}
	for _, t := range trades {
		switch {
		case t.Pnl > 0:
			s.Wins++
		case t.Pnl < 0:
			s.Losses++
		default:
			s.Breakevens++
		}
		s.TotalPnl += t.Pnl
	}
	if s.Closed > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Closed) * 100
	}
	return s
}

// EquityPoint is one sample on the all-time equity curve.
type EquityPoint struct {
	Label  string  `json:"t"`
	Equity float64 `json:"equity"`
}

// EquityCurve builds the running equity series from startingCapital over the
// records sorted ascending by timestamp. The series leads with a synthetic
// point at the starting balance; with no trades it is a single "Start" point.
func EquityCurve(trades []models.Trade, startingCapital float64) []EquityPoint {
	sorted := sortedByTime(trades)
	running := startingCapital
	points := make([]EquityPoint, 0, len(sorted)+1)
	if len(sorted) > 0 {
		points = append(points, EquityPoint{Label: timeLabel(sorted[0].Timestamp), Equity: running})
	}
	for _, t := range sorted {
		running += t.Pnl
		points = append(points, EquityPoint{Label: timeLabel(t.Timestamp), Equity: round2(running)})
	}
	if len(points) == 0 {
		points = append(points, EquityPoint{Label: "Start", Equity: startingCapital})
	}
	return points
}

// SessionBucket is one labeled, chronological group of trades for display.
// Trades inside a bucket are most-recent-first.
type SessionBucket struct {
	Title    string         `json:"title"`
	StartAt  int64          `json:"start_at"` // 0 for the implicit all-trades bucket
	Trades   []models.Trade `json:"trades"`
	TotalPnl float64        `json:"total_pnl"`
}

// GroupBySession partitions the records into session buckets: a trade
// belongs to the session with the greatest start not after its timestamp.
// Trades before the first recorded start, or all trades when there is no
// history, land in an "All Trades" bucket. Buckets come back newest-first
// and empty buckets are dropped.
func GroupBySession(trades []models.Trade, history []models.SessionStart) []SessionBucket {
	sorted := sortedByTime(trades)
	starts := make([]int64, 0, len(history))
	for _, s := range history {
		starts = append(starts, s.StartedAt)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	if len(starts) == 0 {
		if len(sorted) == 0 {
			return nil
		}
		return []SessionBucket{{
			Title:    "All Trades",
			Trades:   newestFirst(sorted),
			TotalPnl: TotalPnl(sorted),
		}}
	}

	grouped := make([][]models.Trade, len(starts)+1) // index 0: before first start
	for _, t := range sorted {
		i := sessionIndexFor(starts, t.Timestamp) + 1
		grouped[i] = append(grouped[i], t)
	}

	var buckets []SessionBucket
	for i := len(starts) - 1; i >= 0; i-- {
		rows := grouped[i+1]
		if len(rows) == 0 {
			continue
		}
		buckets = append(buckets, SessionBucket{
			Title:    sessionTitle(starts[i], i),
			StartAt:  starts[i],
			Trades:   newestFirst(rows),
			TotalPnl: TotalPnl(rows),
		})
	}
	if rows := grouped[0]; len(rows) > 0 {
		buckets = append(buckets, SessionBucket{
			Title:    "All Trades",
			Trades:   newestFirst(rows),
			TotalPnl: TotalPnl(rows),
		})
	}
	return buckets
}

// sessionIndexFor returns the index of the greatest start <= ts, or -1 when
// ts precedes every start. starts must be sorted ascending.
func sessionIndexFor(starts []int64, ts int64) int {
	// first index whose start is strictly after ts
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > ts })
	return i - 1
}

// TodayPnl sums pnl over records whose local calendar date matches now.
func TodayPnl(trades []models.Trade, now time.Time) float64 {
	y, m, d := now.Date()
	var sum float64
	for _, t := range trades {
		ty, tm, td := time.UnixMilli(t.Timestamp).In(now.Location()).Date()
		if ty == y && tm == m && td == d {
			sum += t.Pnl
		}
	}
	return sum
}

// DailyTotals sums pnl per local calendar day, keyed yyyy-mm-dd, for the
// calendar view.
func DailyTotals(trades []models.Trade) map[string]float64 {
	totals := make(map[string]float64)
	for _, t := range trades {
		key := time.UnixMilli(t.Timestamp).Format("2006-01-02")
		totals[key] += t.Pnl
	}
	return totals
}

// PnlByInstrument sums all-time pnl per instrument for analytics.
func PnlByInstrument(trades []models.Trade) map[string]float64 {
	totals := make(map[string]float64)
	for _, t := range trades {
		totals[t.Instrument] += t.Pnl
	}
	return totals
}

// PnlByStrategy sums all-time pnl per strategy label (the notes field).
func PnlByStrategy(trades []models.Trade) map[string]float64 {
	totals := make(map[string]float64)
	for _, t := range trades {
		totals[t.Notes] += t.Pnl
	}
	return totals
}

func sessionTitle(startedAt int64, idx int) string {
	return fmt.Sprintf("Session %d (%s)", idx+1,
		time.UnixMilli(startedAt).Format("Mon, Jan 2, 2006"))
}

func sortedByTime(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func newestFirst(trades []models.Trade) []models.Trade {
	out := make([]models.Trade, len(trades))
	for i, t := range trades {
		out[len(trades)-1-i] = t
	}
	return out
}

func timeLabel(ts int64) string {
	return time.UnixMilli(ts).Format("Jan 2 15:04")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
