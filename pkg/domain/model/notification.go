package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/types"
)

// Notification is a single feed entry delivered either by the paginated REST
// list or by a live push on the stream. The client only ever flips the read
// flag; nothing is deleted client-side.
type Notification struct {
	NotificationID     types.NotificationID   `json:"notificationId"`
	Type               types.NotificationType `json:"type"`
	Title              string                 `json:"title"`
	Message            string                 `json:"message"`
	IsRead             bool                   `json:"isRead"`
	CreatedAt          time.Time              `json:"createdAt"`
	RelatedID          int64                  `json:"relatedId,omitempty"`
	RelatedType        string                 `json:"relatedType,omitempty"`
	ActionURL          string                 `json:"actionUrl,omitempty"`
	RelatedProjectName string                 `json:"relatedProjectName,omitempty"`
}

// Validate checks the minimum shape a pushed notification must have
func (n *Notification) Validate() error {
	if n.NotificationID == 0 {
		return goerr.New("notification ID is required")
	}
	if n.Title == "" && n.Message == "" {
		return goerr.New("notification has neither title nor message",
			goerr.V("id", n.NotificationID))
	}
	return nil
}

// Tag returns the deduplication tag used for desktop notifications
func (n *Notification) Tag() string {
	return "notification-" + n.NotificationID.String()
}

// NotificationPage is one page of the paginated notification list. The first
// page carries a server-reported unread count alongside the entries.
type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	HasNext       bool           `json:"hasNext"`
	CurrentPage   int            `json:"currentPage"`
	UnreadCount   int            `json:"unreadCount"`
}
