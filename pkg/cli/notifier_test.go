package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/types"
)

func TestTerminalNotifierDeduplicates(t *testing.T) {
	var buf bytes.Buffer
	notifier := newTerminalNotifier(&buf)
	ctx := context.Background()

	n := &model.Notification{NotificationID: 3, Title: "hello", Message: "world"}
	gt.NoError(t, notifier.Show(ctx, n))
	gt.NoError(t, notifier.Show(ctx, n))

	// the stream can deliver the same notification twice across reconnects;
	// only the first delivery rings through
	gt.Value(t, strings.Count(buf.String(), "world")).Equal(1)

	other := &model.Notification{NotificationID: 4, Title: "second", Message: "ping"}
	gt.NoError(t, notifier.Show(ctx, other))
	gt.S(t, buf.String()).Contains("ping")
}

func TestTerminalNotifierDedupWindowIsBounded(t *testing.T) {
	var buf bytes.Buffer
	notifier := newTerminalNotifier(&buf)
	ctx := context.Background()

	first := &model.Notification{NotificationID: 1, Title: "t", Message: "earliest"}
	gt.NoError(t, notifier.Show(ctx, first))

	// push the first tag out of the window
	for i := 2; i <= notifierSeenLimit+1; i++ {
		n := &model.Notification{
			NotificationID: types.NotificationID(i),
			Title:          "t",
			Message:        "filler",
		}
		gt.NoError(t, notifier.Show(ctx, n))
	}

	gt.NoError(t, notifier.Show(ctx, first))
	gt.Value(t, strings.Count(buf.String(), "earliest")).Equal(2)

	// a tag still inside the window stays deduplicated
	last := &model.Notification{NotificationID: types.NotificationID(notifierSeenLimit + 1), Title: "t", Message: "filler"}
	gt.NoError(t, notifier.Show(ctx, last))
	gt.Value(t, strings.Count(buf.String(), "filler")).Equal(notifierSeenLimit)
}
