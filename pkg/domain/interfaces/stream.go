package interfaces

import (
	"context"

	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
)

// EventStream is an open Server-Sent-Events connection. Events delivers
// decoded wire frames and is closed when the stream ends, whether by error or
// by Close. Err reports the terminal error after Events is closed, nil on a
// clean close.
type EventStream interface {
	Events() <-chan model.RawEvent
	Err() error
	Close() error
}

// StreamDialer opens an EventStream against a URL. The reconnect manager
// depends on this rather than a concrete HTTP stream so its state machine can
// be driven by a fake in tests.
type StreamDialer interface {
	Dial(ctx context.Context, url string) (EventStream, error)
}
