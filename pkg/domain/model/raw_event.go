package model

// RawEvent is a single Server-Sent-Events frame as read off the wire, before
// any application-level decoding.
type RawEvent struct {
	// Name is the event type from the "event:" field. Defaults to "message".
	Name string

	// Data is the payload from the "data:" fields, joined with newlines.
	Data string

	// ID is the optional event ID from the "id:" field.
	ID string
}
