package notify

import (
	"time"

	"github.com/thand-io/reader/internal/models"
)

// Notifier delivers a transient message to the user. Delivery is fire and
// forget: implementations must not block the caller on slow sinks.
type Notifier interface {
	Notify(models.Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(models.Notification)

func (f NotifierFunc) Notify(n models.Notification) {
	f(n)
}

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(models.Notification) {})

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(n models.Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

func Error(n Notifier, title string, detail string) {
	send(n, models.NotificationError, title, detail)
}

func Info(n Notifier, title string, detail string) {
	send(n, models.NotificationInfo, title, detail)
}

func send(n Notifier, kind models.NotificationKind, title string, detail string) {
	if n == nil {
		return
	}
	n.Notify(models.Notification{
		Kind:   kind,
		Title:  title,
		Detail: detail,
		Time:   time.Now().UTC(),
	})
}
