package leaderboard

import (
	"sort"
	"time"

	"scalper-journal-go/internal/badge"
)

// Badge returns the achievement tier for the row's session count, using the
// same ladder as the trader's own dashboard.
func (r Row) Badge() badge.Tier {
	return badge.TierFor(r.Sessions)
}

// Rank sorts a copy of rows into display order: equity descending, ties
// broken by session count descending, then by last-session recency.
// This is the single ordering for every leaderboard view.
func Rank(rows []Row) []Row {
	ranked := make([]Row, len(rows))
	copy(ranked, rows)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Equity != b.Equity {
			return a.Equity > b.Equity
		}
		if a.Sessions != b.Sessions {
			return a.Sessions > b.Sessions
		}
		return lastActive(a) > lastActive(b)
	})
	return ranked
}

// lastActive parses the recency field, treating absent or malformed values
// as the epoch so they sort last.
func lastActive(r Row) int64 {
	if r.LastSessionAt == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, r.LastSessionAt)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
