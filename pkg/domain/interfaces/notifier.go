package interfaces

import (
	"context"

	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
)

// Notifier surfaces a notification outside the feed, e.g. as a desktop alert
// or a terminal bell. Show must deduplicate by the notification's Tag: a
// second call with the same tag replaces rather than stacks.
type Notifier interface {
	Show(ctx context.Context, n *model.Notification) error
}

// LoadingSink receives the global loading indicator signals emitted by the
// request pipeline. Implementations must tolerate Stop without a matching
// Start.
type LoadingSink interface {
	Start()
	Stop()
}
