package models

import "time"

type NotificationKind string

const (
	NotificationError NotificationKind = "error"
	NotificationInfo  NotificationKind = "info"
)

// Notification is a transient, user-facing message.
type Notification struct {
	Kind   NotificationKind `json:"kind"`
	Title  string           `json:"title"`
	Detail string           `json:"detail,omitempty"`
	Time   time.Time        `json:"time"`
}
