// Package notify delivers transient user-facing banners. Failures never
// reach the caller; a notification that cannot be delivered is dropped.
package notify

import "go.uber.org/zap"

// Notifier pushes a short titled message to the user.
type Notifier interface {
	Notify(title, detail string)
}

// LogNotifier writes notifications to the application log. It is the default
// sink when no richer UI channel is wired up.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(title, detail string) {
	n.log.Info("notification", zap.String("title", title), zap.String("detail", detail))
}

// Noop discards notifications. Used in tests and headless runs.
type Noop struct{}

func (Noop) Notify(string, string) {}
