package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/types"
)

// StreamEvent is a decoded application-level event from the notification
// stream. Exactly one of Notification or Raw carries the payload depending on
// the event type.
type StreamEvent struct {
	Type         types.EventName
	Notification *Notification
	Raw          string
}

// streamEnvelope is the JSON shape the server pushes for typed events
type streamEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// DecodeStreamEvent decodes a named event payload from the stream. Heartbeat
// and connection acks are plain strings; everything else is expected to be a
// JSON envelope. An unparseable message is wrapped as a raw event rather than
// rejected, matching the stream's best-effort contract.
func DecodeStreamEvent(name types.EventName, data string) (*StreamEvent, error) {
	switch name {
	case types.EventPing, types.EventConnection:
		return &StreamEvent{Type: name, Raw: data}, nil
	}

	var env streamEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil || env.Type == "" {
		// Not an envelope. Named notification events may also carry the
		// notification object directly.
		if name == types.EventNotification {
			var n Notification
			if err := json.Unmarshal([]byte(data), &n); err == nil && n.NotificationID != 0 {
				return &StreamEvent{Type: name, Notification: &n}, nil
			}
		}
		return &StreamEvent{Type: types.EventRaw, Raw: data}, nil
	}

	ev := &StreamEvent{Type: types.EventName(env.Type)}
	switch ev.Type {
	case types.EventNotification:
		var n Notification
		if err := json.Unmarshal(env.Data, &n); err != nil {
			return nil, goerr.Wrap(err, "failed to decode notification payload",
				goerr.V("data", data))
		}
		ev.Notification = &n
	case types.EventNotificationRead, types.EventAllNotificationsRead:
		// Read-state fan-out from another session. No payload needed.
	default:
		ev.Raw = string(env.Data)
	}

	return ev, nil
}
