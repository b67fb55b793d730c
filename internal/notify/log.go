package notify

import (
	"github.com/sirupsen/logrus"
	"github.com/thand-io/reader/internal/models"
)

// LogNotifier records notifications in the log. They are shown to the
// user elsewhere, so errors go to info and the rest to debug.
type LogNotifier struct {
	Logger logrus.FieldLogger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{Logger: logrus.StandardLogger()}
}

func (l *LogNotifier) Notify(n models.Notification) {
	entry := l.Logger.WithFields(logrus.Fields{
		"kind":   n.Kind,
		"detail": n.Detail,
	})

	if n.Kind == models.NotificationError {
		entry.Infoln(n.Title)
		return
	}
	entry.Debugln(n.Title)
}
