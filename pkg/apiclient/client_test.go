package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/gt"
)

type countSink struct {
	starts int32
	stops  int32
}

func (s *countSink) Start() { atomic.AddInt32(&s.starts, 1) }
func (s *countSink) Stop()  { atomic.AddInt32(&s.stops, 1) }

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "ok",
		"data":    data,
	})
}

func newClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	client, err := New(baseURL, opts...)
	gt.NoError(t, err)
	return client
}

func TestRefreshAndReplay(t *testing.T) {
	var refreshCalls int32

	r := chi.NewRouter()
	r.Post("/api/auth/token", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"new-token"}`))
	})
	r.Get("/api/notifications/unread-count", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer new-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEnvelope(w, 7)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := newClient(t, srv.URL)
	client.Session().SetToken("stale-token")

	count, err := client.Notifications.UnreadCount(context.Background())
	gt.NoError(t, err)
	gt.Value(t, count).Equal(7)
	gt.Value(t, atomic.LoadInt32(&refreshCalls)).Equal(int32(1))
	gt.Value(t, client.Session().Token()).Equal("new-token")
}

func TestRefreshFailureTearsDownSession(t *testing.T) {
	var expired int32

	r := chi.NewRouter()
	r.Post("/api/auth/token", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	r.Get("/api/notifications/unread-count", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := newClient(t, srv.URL, WithSessionExpiredHook(func() {
		atomic.AddInt32(&expired, 1)
	}))
	client.Session().SetToken("stale-token")

	_, err := client.Notifications.UnreadCount(context.Background())
	gt.Error(t, err)
	gt.B(t, errors.Is(err, ErrRefreshFailed)).True()
	gt.Value(t, client.Session().Token()).Equal("")
	gt.Value(t, atomic.LoadInt32(&expired)).Equal(int32(1))
}

func TestRefreshMissingTokenIsFailure(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/token", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	r.Get("/api/notifications/unread-count", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := newClient(t, srv.URL)
	client.Session().SetToken("stale-token")

	_, err := client.Notifications.UnreadCount(context.Background())
	gt.Error(t, err)
	gt.B(t, errors.Is(err, ErrNoAccessToken)).True()
	gt.Value(t, client.Session().Token()).Equal("")
}

func TestSingleFlightRefresh(t *testing.T) {
	const workers = 5

	var refreshCalls, stale401s int32
	release := make(chan struct{})

	r := chi.NewRouter()
	r.Post("/api/auth/token", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		<-release // hold the refresh so every worker queues behind it
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"new-token"}`))
	})
	r.Get("/api/notifications/unread-count", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer new-token" {
			atomic.AddInt32(&stale401s, 1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEnvelope(w, 3)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := newClient(t, srv.URL)
	client.Session().SetToken("stale-token")

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Notifications.UnreadCount(context.Background())
			results <- err
		}()
	}

	// Wait until every worker has seen its 401 and had time to join the
	// in-flight refresh before letting the refresh complete.
	for atomic.LoadInt32(&stale401s) < workers {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for err := range results {
		gt.NoError(t, err)
	}
	gt.Value(t, atomic.LoadInt32(&refreshCalls)).Equal(int32(1))
}

func TestNoSecondRefreshAfterRetry(t *testing.T) {
	var refreshCalls, requests int32

	r := chi.NewRouter()
	r.Post("/api/auth/token", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"fresh-but-useless"}`))
	})
	r.Get("/api/notifications/unread-count", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := newClient(t, srv.URL)
	client.Session().SetToken("stale-token")

	_, err := client.Notifications.UnreadCount(context.Background())
	gt.Error(t, err)
	gt.B(t, IsStatus(err, http.StatusUnauthorized)).True()

	// one original attempt, one replay, no third try
	gt.Value(t, atomic.LoadInt32(&requests)).Equal(int32(2))
	gt.Value(t, atomic.LoadInt32(&refreshCalls)).Equal(int32(1))
}

func TestPublicPathIsolation(t *testing.T) {
	var refreshCalls int32
	var sawAuth atomic.Bool

	r := chi.NewRouter()
	r.Post("/api/auth/token", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"new-token"}`))
	})
	r.Get("/api/auth/check-email", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "" {
			sawAuth.Store(true)
		}
		w.WriteHeader(http.StatusUnauthorized)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := newClient(t, srv.URL)
	client.Session().SetToken("some-token")

	_, err := client.Auth.CheckEmail(context.Background(), "x@example.com")
	gt.Error(t, err)
	gt.B(t, IsStatus(err, http.StatusUnauthorized)).True()
	gt.B(t, sawAuth.Load()).False()
	gt.Value(t, atomic.LoadInt32(&refreshCalls)).Equal(int32(0))
	gt.Value(t, client.Session().Token()).Equal("some-token")
}

func TestLoadingSignalBalance(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/auth/token", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"new-token"}`))
	})
	r.Get("/api/notifications", func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Bearer new-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeEnvelope(w, map[string]any{
			"notifications": []any{},
			"hasNext":       false,
			"currentPage":   1,
			"unreadCount":   0,
		})
	})
	r.Put("/api/notifications/read-all", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	sink := &countSink{}
	client := newClient(t, srv.URL, WithLoadingSink(sink))
	client.Session().SetToken("stale-token")

	// success path with one refresh-and-replay hop
	_, err := client.Notifications.List(context.Background(), 1, 20)
	gt.NoError(t, err)

	// error path
	_, err = client.Notifications.MarkAllRead(context.Background())
	gt.Error(t, err)

	gt.Value(t, atomic.LoadInt32(&sink.starts)).Equal(atomic.LoadInt32(&sink.stops))
	gt.B(t, atomic.LoadInt32(&sink.starts) > 0).True()
}

func TestTokenReadAtSendTime(t *testing.T) {
	var gotAuth string

	r := chi.NewRouter()
	r.Get("/api/notifications/unread-count", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		writeEnvelope(w, 0)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := newClient(t, srv.URL)
	client.Session().SetToken("current-token")

	_, err := client.Notifications.UnreadCount(context.Background())
	gt.NoError(t, err)
	gt.Value(t, gotAuth).Equal("Bearer current-token")
}

func TestNoTokenSendsWithoutHeader(t *testing.T) {
	var gotAuth string
	var refreshCalls int32

	r := chi.NewRouter()
	r.Post("/api/auth/token", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	r.Get("/api/notifications/unread-count", func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		writeEnvelope(w, 2)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	client := newClient(t, srv.URL)

	count, err := client.Notifications.UnreadCount(context.Background())
	gt.NoError(t, err)
	gt.Value(t, count).Equal(2)
	gt.Value(t, gotAuth).Equal("")
	gt.Value(t, atomic.LoadInt32(&refreshCalls)).Equal(int32(0))
}
