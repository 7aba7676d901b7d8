package types

import "strconv"

// EventName identifies a named Server-Sent Event on the notification stream.
// The server delivers notification, ping and connection as named events;
// notification_read and all_notifications_read arrive as payload types on the
// notification-shaped channel. Raw marks an unparseable fallback message.
type EventName string

const (
	EventNotification         EventName = "notification"
	EventPing                 EventName = "ping"
	EventConnection           EventName = "connection"
	EventNotificationRead     EventName = "notification_read"
	EventAllNotificationsRead EventName = "all_notifications_read"
	EventRaw                  EventName = "raw"
)

// String returns the string representation of the event name
func (e EventName) String() string {
	return string(e)
}

// NotificationID is the server-assigned numeric notification identifier
type NotificationID int64

// String returns the decimal representation of the notification ID
func (id NotificationID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Int64 returns the notification ID as an int64
func (id NotificationID) Int64() int64 {
	return int64(id)
}
