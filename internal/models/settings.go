package models

// Settings is the per-account scalar configuration. There is exactly one row;
// missing values fall back to the defaults below.
type Settings struct {
	ID              uint    `gorm:"primaryKey" json:"-"`
	StartingCapital float64 `json:"starting_capital"`
	RiskPercent     float64 `json:"risk_percent"`
	DailyMaxLoss    float64 `json:"daily_max_loss"` // 0 disables the breaker
	LockOnHit       bool    `json:"lock_on_hit"`
	Locked          bool    `json:"locked"`
	WeeklyTarget    float64 `json:"weekly_target"`
	MonthlyTarget   float64 `json:"monthly_target"`
	CurrentSession  int64   `json:"current_session"` // session id, 0 = none
}

// DefaultSettings mirror the values a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		StartingCapital: 1000,
		RiskPercent:     5,
		LockOnHit:       true,
	}
}
