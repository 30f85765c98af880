// Package discipline implements the daily-loss circuit breaker. The guard
// watches today's realized PnL against a configured threshold, locks trade
// entry when it is breached, and unlocks automatically at the next local
// midnight.
package discipline

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"scalper-journal-go/internal/notify"
)

// minUnlockDelay keeps a restart right at midnight from scheduling an
// immediate-fire loop.
const minUnlockDelay = 100 * time.Millisecond

// Config is the persisted breaker configuration.
type Config struct {
	DailyMaxLoss float64 // 0 disables the breaker
	LockOnHit    bool    // false: threshold evaluated but never blocks
	Locked       bool    // restored breaker state
}

// Guard is the stateful breaker. All methods are safe for concurrent use,
// though in practice every mutation arrives from one request loop.
type Guard struct {
	mu       sync.Mutex
	clock    Clock
	notifier notify.Notifier
	log      *zap.Logger

	maxLoss   float64
	lockOnHit bool
	locked    bool

	unlockTimer Timer
	// onChange is invoked after every locked-state change so the caller can
	// persist it. May be nil.
	onChange func(locked bool)
}

// NewGuard restores a guard from persisted configuration. If the guard comes
// back locked (process restarted mid-day) the midnight unlock is re-armed
// from the current time.
func NewGuard(clock Clock, notifier notify.Notifier, log *zap.Logger, cfg Config) *Guard {
	g := &Guard{
		clock:     clock,
		notifier:  notifier,
		log:       log,
		maxLoss:   sanitize(cfg.DailyMaxLoss),
		lockOnHit: cfg.LockOnHit,
		locked:    cfg.Locked,
	}
	if g.locked {
		g.mu.Lock()
		g.armUnlock()
		g.mu.Unlock()
	}
	return g
}

// OnChange registers a callback fired after every locked-state transition,
// including the timer-driven midnight unlock.
func (g *Guard) OnChange(fn func(locked bool)) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

// sanitize normalizes invalid threshold input to "disabled" rather than
// rejecting it.
func sanitize(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Evaluate is the external evaluation tick: called whenever today's realized
// PnL or the configuration changes. It locks the guard, once, when the
// threshold is breached.
func (g *Guard) Evaluate(todayPnl float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.lockOnHit || g.maxLoss <= 0 || g.locked {
		return
	}
	if todayPnl > -math.Abs(g.maxLoss) {
		return
	}

	g.locked = true
	g.armUnlock()
	g.log.Warn("daily max loss hit, locking trade entry",
		zap.Float64("today_pnl", todayPnl),
		zap.Float64("max_loss", g.maxLoss))
	g.notifier.Notify("Trading locked for today",
		fmt.Sprintf("Daily max loss ($%.2f) reached.", g.maxLoss))
	g.fireOnChange()
}

// Blocked reports whether trade entry is currently suppressed.
func (g *Guard) Blocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked && g.lockOnHit
}

// Locked reports the raw breaker state, independent of lock enforcement.
func (g *Guard) Locked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked
}

// State returns "Locked" or "Active" for display.
func (g *Guard) State() string {
	if g.Blocked() {
		return "Locked"
	}
	return "Active"
}

// ResetDailyLock unlocks immediately, independent of the scheduled timer.
func (g *Guard) ResetDailyLock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelUnlock()
	if g.locked {
		g.locked = false
		g.fireOnChange()
	}
	g.notifier.Notify("Lock reset", "Trading unlocked for today.")
}

// SetLockOnHit toggles enforcement. Disabling it does not clear the locked
// flag, but entry is gated on both, so disabling unblocks immediately.
func (g *Guard) SetLockOnHit(enabled bool) {
	g.mu.Lock()
	wasBlocked := g.locked && g.lockOnHit
	g.lockOnHit = enabled
	g.mu.Unlock()
	if wasBlocked && !enabled {
		g.notifier.Notify("Override", "Lock disabled for today.")
	}
}

// SetDailyMaxLoss updates the threshold. Negative or non-finite input
// disables the breaker. The pending unlock, if any, is re-armed.
func (g *Guard) SetDailyMaxLoss(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.maxLoss = sanitize(v)
	if g.locked {
		g.armUnlock()
	}
}

// Snapshot returns the current configuration and state.
func (g *Guard) Snapshot() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Config{DailyMaxLoss: g.maxLoss, LockOnHit: g.lockOnHit, Locked: g.locked}
}

// Close cancels any pending unlock timer. Must be called on teardown so a
// stale timer cannot fire against a replaced guard.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelUnlock()
}

// armUnlock schedules the one-shot midnight reset, replacing any pending
// timer. Caller holds g.mu.
func (g *Guard) armUnlock() {
	g.cancelUnlock()
	now := g.clock.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	d := midnight.Sub(now)
	if d < minUnlockDelay {
		d = minUnlockDelay
	}
	g.unlockTimer = g.clock.AfterFunc(d, g.autoUnlock)
}

// cancelUnlock stops any pending timer. Caller holds g.mu.
func (g *Guard) cancelUnlock() {
	if g.unlockTimer != nil {
		g.unlockTimer.Stop()
		g.unlockTimer = nil
	}
}

func (g *Guard) autoUnlock() {
	g.mu.Lock()
	g.unlockTimer = nil
	if !g.locked {
		g.mu.Unlock()
		return
	}
	g.locked = false
	g.log.Info("new trading day, lock cleared")
	g.fireOnChange()
	g.mu.Unlock()
	g.notifier.Notify("New day", "Trading unlocked.")
}

// fireOnChange invokes the persistence hook. Caller holds g.mu; the hook
// must not call back into the guard.
func (g *Guard) fireOnChange() {
	if g.onChange != nil {
		g.onChange(g.locked)
	}
}
