package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/types"
)

func TestNotificationTypeIsValid(t *testing.T) {
	for _, nt := range types.AllNotificationTypes() {
		t.Run(nt.String(), func(t *testing.T) {
			gt.B(t, nt.IsValid()).True()
		})
	}

	gt.B(t, types.NotificationType("UNKNOWN").IsValid()).False()
	gt.B(t, types.NotificationType("").IsValid()).False()
	gt.B(t, types.NotificationType("chat_message").IsValid()).False()
}

func TestParseNotificationType(t *testing.T) {
	nt, err := types.ParseNotificationType("ISSUE_ASSIGNED")
	gt.NoError(t, err)
	gt.Value(t, nt).Equal(types.NotificationIssueAssigned)

	_, err = types.ParseNotificationType("nope")
	gt.Error(t, err)
}

func TestNotificationID(t *testing.T) {
	id := types.NotificationID(42)
	gt.Value(t, id.String()).Equal("42")
	gt.Value(t, id.Int64()).Equal(int64(42))
}
