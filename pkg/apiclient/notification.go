package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/types"
)

// NotificationAPI groups the notification feed endpoints
type NotificationAPI struct {
	client *Client
}

// List fetches one page of the notification feed, newest first. Page numbers
// start at 1. The first page carries the feed's unread count.
func (n *NotificationAPI) List(ctx context.Context, page, size int) (*model.NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	query := url.Values{
		"page": []string{strconv.Itoa(page)},
		"size": []string{strconv.Itoa(size)},
	}

	var result model.NotificationPage
	if err := n.client.get(ctx, "/api/notifications", query, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V("page", page))
	}
	return &result, nil
}

// UnreadCount fetches the dedicated unread counter used for the badge
func (n *NotificationAPI) UnreadCount(ctx context.Context) (int, error) {
	var count int
	if err := n.client.get(ctx, "/api/notifications/unread-count", nil, &count, SkipLoading()); err != nil {
		return 0, goerr.Wrap(err, "failed to fetch unread count")
	}
	return count, nil
}

// MarkRead flips a single notification to read
func (n *NotificationAPI) MarkRead(ctx context.Context, id types.NotificationID) error {
	path := "/api/notifications/" + id.String() + "/read"
	if err := n.client.put(ctx, path, nil, nil); err != nil {
		return goerr.Wrap(err, "failed to mark notification as read", goerr.V("id", id))
	}
	return nil
}

// MarkAllRead flips every notification to read and returns how many changed
func (n *NotificationAPI) MarkAllRead(ctx context.Context) (int, error) {
	var changed int
	if err := n.client.put(ctx, "/api/notifications/read-all", nil, &changed); err != nil {
		return 0, goerr.Wrap(err, "failed to mark all notifications as read")
	}
	return changed, nil
}

// ConnectionStatus reports whether the server sees an active stream
// connection for this user
func (n *NotificationAPI) ConnectionStatus(ctx context.Context) (bool, error) {
	var connected bool
	if err := n.client.get(ctx, "/api/notifications/connection-status", nil, &connected, SkipLoading()); err != nil {
		return false, goerr.Wrap(err, "failed to fetch connection status")
	}
	return connected, nil
}
