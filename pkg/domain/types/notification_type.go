package types

import "fmt"

// NotificationType represents the kind of event a notification describes
type NotificationType string

const (
	NotificationChatMessage       NotificationType = "CHAT_MESSAGE"
	NotificationIssueAssigned     NotificationType = "ISSUE_ASSIGNED"
	NotificationIssueComment      NotificationType = "ISSUE_COMMENT"
	NotificationIssueCommentReply NotificationType = "ISSUE_COMMENT_REPLY"
	NotificationPostComment       NotificationType = "POST_COMMENT"
	NotificationPostCommentReply  NotificationType = "POST_COMMENT_REPLY"
	NotificationMemberJoined      NotificationType = "MEMBER_JOINED"
)

// AllNotificationTypes returns all valid notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		NotificationChatMessage,
		NotificationIssueAssigned,
		NotificationIssueComment,
		NotificationIssueCommentReply,
		NotificationPostComment,
		NotificationPostCommentReply,
		NotificationMemberJoined,
	}
}

// IsValid checks if the notification type is valid
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationChatMessage,
		NotificationIssueAssigned,
		NotificationIssueComment,
		NotificationIssueCommentReply,
		NotificationPostComment,
		NotificationPostCommentReply,
		NotificationMemberJoined:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notification type
func (t NotificationType) String() string {
	return string(t)
}

// ParseNotificationType parses a string into a NotificationType
func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid notification type: %s", s)
	}
	return t, nil
}
