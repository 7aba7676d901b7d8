package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/types"
)

func TestDecodeStreamEvent(t *testing.T) {
	t.Run("heartbeat stays raw", func(t *testing.T) {
		ev, err := model.DecodeStreamEvent(types.EventPing, "ping")
		gt.NoError(t, err)
		gt.Value(t, ev.Type).Equal(types.EventPing)
		gt.Value(t, ev.Raw).Equal("ping")
		gt.Value(t, ev.Notification).Nil()
	})

	t.Run("connection ack stays raw", func(t *testing.T) {
		ev, err := model.DecodeStreamEvent(types.EventConnection, "SSE connection established")
		gt.NoError(t, err)
		gt.Value(t, ev.Type).Equal(types.EventConnection)
		gt.Value(t, ev.Raw).Equal("SSE connection established")
	})

	t.Run("enveloped notification", func(t *testing.T) {
		data := `{"type":"notification","data":{"notificationId":12,"type":"ISSUE_COMMENT","title":"new comment","message":"on your issue","isRead":false}}`
		ev, err := model.DecodeStreamEvent(types.EventNotification, data)
		gt.NoError(t, err)
		gt.Value(t, ev.Type).Equal(types.EventNotification)
		gt.Value(t, ev.Notification).NotNil()
		gt.Value(t, ev.Notification.NotificationID).Equal(types.NotificationID(12))
		gt.Value(t, ev.Notification.Type).Equal(types.NotificationIssueComment)
		gt.Value(t, ev.Notification.Title).Equal("new comment")
	})

	t.Run("bare notification object", func(t *testing.T) {
		data := `{"notificationId":8,"title":"direct","message":"no envelope"}`
		ev, err := model.DecodeStreamEvent(types.EventNotification, data)
		gt.NoError(t, err)
		gt.Value(t, ev.Type).Equal(types.EventNotification)
		gt.Value(t, ev.Notification).NotNil()
		gt.Value(t, ev.Notification.NotificationID).Equal(types.NotificationID(8))
	})

	t.Run("read fan-out has no payload", func(t *testing.T) {
		ev, err := model.DecodeStreamEvent(types.EventNotification, `{"type":"all_notifications_read","data":null}`)
		gt.NoError(t, err)
		gt.Value(t, ev.Type).Equal(types.EventAllNotificationsRead)
		gt.Value(t, ev.Notification).Nil()
	})

	t.Run("broken notification payload is an error", func(t *testing.T) {
		_, err := model.DecodeStreamEvent(types.EventNotification, `{"type":"notification","data":{"notificationId":"oops"}}`)
		gt.Error(t, err)
	})

	t.Run("unparseable message falls back to raw", func(t *testing.T) {
		ev, err := model.DecodeStreamEvent(types.EventNotification, "not json at all")
		gt.NoError(t, err)
		gt.Value(t, ev.Type).Equal(types.EventRaw)
		gt.Value(t, ev.Raw).Equal("not json at all")
	})
}

func TestNotificationValidate(t *testing.T) {
	valid := &model.Notification{NotificationID: 1, Title: "t"}
	gt.NoError(t, valid.Validate())

	messageOnly := &model.Notification{NotificationID: 2, Message: "m"}
	gt.NoError(t, messageOnly.Validate())

	gt.Error(t, (&model.Notification{Title: "no id"}).Validate())
	gt.Error(t, (&model.Notification{NotificationID: 3}).Validate())
}

func TestNotificationTag(t *testing.T) {
	n := &model.Notification{NotificationID: 17}
	gt.Value(t, n.Tag()).Equal("notification-17")
}
