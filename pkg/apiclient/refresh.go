package apiclient

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/utils/logging"
)

// refreshResult is the settled outcome of one refresh call, fanned out to
// every request that 401ed during the refresh window.
type refreshResult struct {
	token string
	err   error
}

// refreshCoordinator serializes token refreshes. It has two states, idle and
// refreshing, global to the pipeline. The first 401 of a failure wave starts
// the refresh; any request that 401s while it is in flight joins the waiter
// queue instead of issuing its own call. When the refresh settles, the queue
// is drained in a single iterate-and-clear step so re-entrant arrivals during
// the drain start a fresh wave rather than joining a settled one.
type refreshCoordinator struct {
	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult

	session   *Session
	refreshFn func(ctx context.Context) (string, error)
	onExpired func()
}

func newRefreshCoordinator(session *Session, refreshFn func(ctx context.Context) (string, error), onExpired func()) *refreshCoordinator {
	return &refreshCoordinator{
		session:   session,
		refreshFn: refreshFn,
		onExpired: onExpired,
	}
}

// Refresh obtains a fresh access token, coalescing concurrent callers into a
// single refresh HTTP call. On success the session holds the new token and
// every caller receives it; on failure the session is torn down, the expiry
// hook fires once, and every caller receives the error.
func (r *refreshCoordinator) Refresh(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.refreshing {
		ch := make(chan refreshResult, 1)
		r.waiters = append(r.waiters, ch)
		r.mu.Unlock()

		select {
		case res := <-ch:
			return res.token, res.err
		case <-ctx.Done():
			return "", goerr.Wrap(ctx.Err(), "canceled while waiting for token refresh")
		}
	}
	r.refreshing = true
	r.mu.Unlock()

	// The refresh call runs to completion once started; canceling a queued
	// request must not abort the refresh other requests are waiting on.
	token, err := r.refreshFn(context.WithoutCancel(ctx))
	if err == nil && token == "" {
		err = goerr.Wrap(ErrNoAccessToken, "refresh response missing access token")
	}

	if err != nil {
		logging.From(ctx).Warn("token refresh failed, tearing down session", "error", err)
		r.session.Clear()
		if r.onExpired != nil {
			r.onExpired()
		}
		err = goerr.Wrap(errors.Join(ErrRefreshFailed, err), "session torn down")
	} else {
		r.session.SetToken(token)
	}

	r.mu.Lock()
	r.refreshing = false
	waiters := r.waiters
	r.waiters = nil
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{token: token, err: err}
	}

	return token, err
}
