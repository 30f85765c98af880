package models

import "time"

// SessionStart marks the opening instant of a trading session. The instant
// itself is the session id: a trade belongs to the session with the greatest
// start not after the trade's timestamp. There is no explicit "closed" state;
// a session is closed by the existence of a newer start.
type SessionStart struct {
	StartedAt int64 `gorm:"primaryKey" json:"started_at"` // unix milliseconds
}

// Time returns the start instant as a time.Time in the local zone.
func (s SessionStart) Time() time.Time {
	return time.UnixMilli(s.StartedAt)
}
