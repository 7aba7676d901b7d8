package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/apiclient"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/interfaces"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/types"
	"github.com/ourhour-lab/ourhour-go/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const defaultPageSize = 20

// Feed maintains the incrementally-loaded notification feed: an append-only
// accumulation of fetched pages merged newest-first, two reconciled unread
// counters, and a non-fatal stream health indicator. REST pagination keeps
// working regardless of stream state.
type Feed struct {
	api      *apiclient.NotificationAPI
	notifier interfaces.Notifier
	pageSize int

	mu        sync.Mutex
	pages     []*model.NotificationPage
	badge     *int
	fetching  chan struct{}
	streamErr string
}

// FeedOption configures a Feed
type FeedOption func(*Feed)

// WithNotifier attaches a desktop-style notifier for pushed notifications
func WithNotifier(n interfaces.Notifier) FeedOption {
	return func(f *Feed) { f.notifier = n }
}

// WithPageSize overrides the feed page size (default 20)
func WithPageSize(size int) FeedOption {
	return func(f *Feed) { f.pageSize = size }
}

// NewFeed creates a Feed backed by the given client
func NewFeed(client *apiclient.Client, opts ...FeedOption) *Feed {
	f := &Feed{
		api:      client.Notifications,
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Notifications returns all loaded entries as one flat sequence, in server
// order (newest first).
func (f *Feed) Notifications() []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []model.Notification
	for _, page := range f.pages {
		all = append(all, page.Notifications...)
	}
	return all
}

// UnreadCount returns the badge value. The dedicated counter endpoint wins
// when it has been fetched; otherwise the first page's embedded count is
// used.
func (f *Feed) UnreadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.badge != nil {
		return *f.badge
	}
	if len(f.pages) > 0 {
		return f.pages[0].UnreadCount
	}
	return 0
}

// HasNext reports whether another page is known to exist
func (f *Feed) HasNext() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasNextLocked()
}

func (f *Feed) hasNextLocked() bool {
	if len(f.pages) == 0 {
		return true
	}
	return f.pages[len(f.pages)-1].HasNext
}

// StreamError returns the current live-updates degradation message, empty
// when the stream is healthy.
func (f *Feed) StreamError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streamErr
}

// LoadMore fetches the next page. It is an idempotent no-op when no next
// page is known to exist or a fetch is already in flight.
func (f *Feed) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.fetching != nil || !f.hasNextLocked() {
		f.mu.Unlock()
		return nil
	}
	f.fetching = make(chan struct{})
	next := len(f.pages) + 1
	f.mu.Unlock()
	defer f.endFetch()

	page, err := f.api.List(ctx, next, f.pageSize)

	f.mu.Lock()
	if err == nil {
		f.pages = append(f.pages, page)
	}
	f.mu.Unlock()

	if err != nil {
		return goerr.Wrap(err, "failed to load next page", goerr.V("page", next))
	}
	return nil
}

// beginFetch claims the single fetch slot, waiting out any fetch already
// in flight rather than skipping. A caller that gets the slot therefore
// always observes state at or after its own call.
func (f *Feed) beginFetch(ctx context.Context) error {
	for {
		f.mu.Lock()
		if f.fetching == nil {
			f.fetching = make(chan struct{})
			f.mu.Unlock()
			return nil
		}
		inflight := f.fetching
		f.mu.Unlock()

		select {
		case <-inflight:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *Feed) endFetch() {
	f.mu.Lock()
	close(f.fetching)
	f.fetching = nil
	f.mu.Unlock()
}

// Refresh refetches every loaded page and the dedicated unread counter in
// parallel, replacing the accumulated state. With nothing loaded yet it
// fetches the first page. A call made while another fetch is in flight
// waits for it to finish and then refetches, so mutations that settled
// during the old fetch are never missed.
func (f *Feed) Refresh(ctx context.Context) error {
	if err := f.beginFetch(ctx); err != nil {
		return goerr.Wrap(err, "failed to refresh notification feed")
	}
	defer f.endFetch()

	f.mu.Lock()
	loaded := len(f.pages)
	f.mu.Unlock()
	if loaded == 0 {
		loaded = 1
	}

	var pages []*model.NotificationPage
	var badge int

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		for i := 1; i <= loaded; i++ {
			page, err := f.api.List(egCtx, i, f.pageSize)
			if err != nil {
				return err
			}
			pages = append(pages, page)
			if !page.HasNext {
				break
			}
		}
		return nil
	})
	eg.Go(func() error {
		count, err := f.api.UnreadCount(egCtx)
		if err != nil {
			return err
		}
		badge = count
		return nil
	})

	err := eg.Wait()

	f.mu.Lock()
	if err == nil {
		f.pages = pages
		f.badge = &badge
	}
	f.mu.Unlock()

	if err != nil {
		return goerr.Wrap(err, "failed to refresh notification feed")
	}
	return nil
}

// MarkRead flips one notification to read. Whether the mutation succeeds or
// fails, both the feed and the unread counter are refetched once before
// returning; consistency is favored over optimistic updates.
func (f *Feed) MarkRead(ctx context.Context, id types.NotificationID) error {
	mutErr := f.api.MarkRead(ctx, id)
	if err := f.Refresh(ctx); err != nil {
		logging.From(ctx).Warn("settle refetch failed", "error", err)
	}
	return mutErr
}

// MarkAllRead flips every notification to read, with the same
// settle-then-refetch discipline as MarkRead.
func (f *Feed) MarkAllRead(ctx context.Context) error {
	_, mutErr := f.api.MarkAllRead(ctx)
	if err := f.Refresh(ctx); err != nil {
		logging.From(ctx).Warn("settle refetch failed", "error", err)
	}
	return mutErr
}

// HandleEvent consumes one decoded stream event. Pushed notifications are
// surfaced through the notifier (when configured) and trigger a refetch;
// read-state fan-out from other sessions triggers a refetch without a
// notifier call; heartbeats clear the degradation state. Processing failures
// are recorded on the feed, never propagated into the stream.
func (f *Feed) HandleEvent(ctx context.Context, ev *model.StreamEvent) {
	switch ev.Type {
	case types.EventNotification:
		if f.notifier != nil && ev.Notification != nil {
			if err := f.notifier.Show(ctx, ev.Notification); err != nil {
				logging.From(ctx).Warn("failed to show notification",
					"id", ev.Notification.NotificationID, "error", err)
			}
		}
		f.settleRefetch(ctx)

	case types.EventNotificationRead, types.EventAllNotificationsRead:
		f.settleRefetch(ctx)

	case types.EventConnection, types.EventPing:
		f.setStreamError("")

	case types.EventRaw:
		logging.From(ctx).Debug("unrecognized stream message", "data", ev.Raw)
	}
}

// HandleOpen clears the degradation state when the stream (re)connects
func (f *Feed) HandleOpen(ctx context.Context) {
	f.setStreamError("")
}

// HandleStreamError records stream trouble as a passive indicator. The feed
// itself keeps working over REST.
func (f *Feed) HandleStreamError(ctx context.Context, err error) {
	logging.From(ctx).Warn("notification stream degraded", "error", err)
	f.setStreamError("live updates unavailable: " + err.Error())
}

func (f *Feed) settleRefetch(ctx context.Context) {
	if err := f.Refresh(ctx); err != nil {
		f.setStreamError("notification refresh failed: " + err.Error())
	}
}

func (f *Feed) setStreamError(msg string) {
	f.mu.Lock()
	f.streamErr = msg
	f.mu.Unlock()
}
