// Package badge maps lifetime session counts to achievement tiers. The same
// ladder is used for the trader's own dashboard and for leaderboard rows, so
// equal session counts always carry the same badge.
package badge

// Tier is a rung on the achievement ladder.
type Tier int

const (
	Starter Tier = iota
	Silver
	Gold
	Platinum
	Diamond
	Elite
	Legendary
)

// tier thresholds and display strings, lowest first.
var ladder = []struct {
	tier     Tier
	sessions int
	title    string
}{
	{Silver, 5, "Silver • 5 Sessions Survived"},
	{Gold, 10, "Gold • 10 Sessions Conquered"},
	{Platinum, 15, "Platinum • 15 Sessions Dominated"},
	{Diamond, 20, "Diamond • 20 Sessions Mastered"},
	{Elite, 25, "Elite • 25 Sessions Mastered"},
	{Legendary, 30, "Legendary • 30 Sessions Untouchable"},
}

// TierFor returns the highest tier reached at the given lifetime session
// count. Below 5 sessions is Starter.
func TierFor(sessions int) Tier {
	t := Starter
	for _, rung := range ladder {
		if sessions >= rung.sessions {
			t = rung.tier
		}
	}
	return t
}

// String returns the short tier name.
func (t Tier) String() string {
	switch t {
	case Silver:
		return "Silver"
	case Gold:
		return "Gold"
	case Platinum:
		return "Platinum"
	case Diamond:
		return "Diamond"
	case Elite:
		return "Elite"
	case Legendary:
		return "Legendary"
	default:
		return "Starter"
	}
}

// Title returns the full display name of the tier, e.g.
// "Gold • 10 Sessions Conquered". Starter has no earned title.
func (t Tier) Title() string {
	for _, rung := range ladder {
		if rung.tier == t {
			return rung.title
		}
	}
	return "Starter"
}

// Next returns the next tier above the given session count, the session
// count it unlocks at, and how many more sessions are needed. ok is false
// once the top tier is reached.
func Next(sessions int) (next Tier, at int, remaining int, ok bool) {
	for _, rung := range ladder {
		if sessions < rung.sessions {
			return rung.tier, rung.sessions, rung.sessions - sessions, true
		}
	}
	return Legendary, 0, 0, false
}
