package badge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	testCases := []struct {
		sessions int
		expected Tier
	}{
		{0, Starter},
		{4, Starter},
		{5, Silver},
		{9, Silver},
		{10, Gold},
		{14, Gold},
		{15, Platinum},
		{20, Diamond},
		{25, Elite},
		{29, Elite},
		{30, Legendary},
		{100, Legendary},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, TierFor(tc.sessions), "sessions=%d", tc.sessions)
	}
}

func TestTierForNeverDecreases(t *testing.T) {
	prev := TierFor(0)
	for sessions := 1; sessions <= 40; sessions++ {
		cur := TierFor(sessions)
		assert.GreaterOrEqual(t, cur, prev, "sessions=%d", sessions)
		prev = cur
	}
}

func TestTierTitles(t *testing.T) {
	assert.Equal(t, "Silver • 5 Sessions Survived", Silver.Title())
	assert.Equal(t, "Gold • 10 Sessions Conquered", Gold.Title())
	assert.Equal(t, "Platinum • 15 Sessions Dominated", Platinum.Title())
	assert.Equal(t, "Diamond • 20 Sessions Mastered", Diamond.Title())
	assert.Equal(t, "Elite • 25 Sessions Mastered", Elite.Title())
	assert.Equal(t, "Legendary • 30 Sessions Untouchable", Legendary.Title())
	assert.Equal(t, "Starter", Starter.Title())
}

func TestNext(t *testing.T) {
	next, at, remaining, ok := Next(0)
	assert.True(t, ok)
	assert.Equal(t, Silver, next)
	assert.Equal(t, 5, at)
	assert.Equal(t, 5, remaining)

	next, at, remaining, ok = Next(27)
	assert.True(t, ok)
	assert.Equal(t, Legendary, next)
	assert.Equal(t, 30, at)
	assert.Equal(t, 3, remaining)

	_, _, _, ok = Next(30)
	assert.False(t, ok)
}
