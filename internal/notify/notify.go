// Package notify delivers timer notifications to the user: toasts, desktop
// notifications and audio cues.
package notify

import (
	"log/slog"
	"time"
)

// Kind identifies a notification.
type Kind string

const (
	KindAutoPaused Kind = "auto_paused"
	KindReminder   Kind = "reminder"
)

const (
	MessageAutoPaused = "Timer disabled due to inactivity"
	MessageReminder   = "Don't forget to turn the timer back on!"
)

// Notification is a single user-facing message.
type Notification struct {
	Kind    Kind
	Title   string
	Message string
	At      time.Time
}

// AutoPaused builds the inactivity auto-pause notification.
func AutoPaused(project string) Notification {
	return Notification{Kind: KindAutoPaused, Title: project, Message: MessageAutoPaused, At: time.Now()}
}

// Reminder builds the "turn the timer back on" notification.
func Reminder(project string) Notification {
	return Notification{Kind: KindReminder, Title: project, Message: MessageReminder, At: time.Now()}
}

// Notifier receives notifications. Implementations must be safe to call from
// timer goroutines.
type Notifier interface {
	Notify(Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

func (fn Func) Notify(notification Notification) {
	fn(notification)
}

// Multi fans a notification out to every notifier.
type Multi []Notifier

func (multi Multi) Notify(notification Notification) {
	for _, notifier := range multi {
		if notifier != nil {
			notifier.Notify(notification)
		}
	}
}

// Log records notifications.
type Log struct {
	Logger *slog.Logger
}

func (log Log) Notify(notification Notification) {
	logger := log.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification",
		slog.String("kind", string(notification.Kind)),
		slog.String("project", notification.Title),
		slog.String("message", notification.Message),
	)
}
