package sse

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/interfaces"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
)

const (
	// maxLineSize is the maximum size of a single SSE line. Lines exceeding
	// this close the connection.
	maxLineSize = 64 * 1024

	// maxEventSize is the maximum total payload of one event. Oversized
	// events are discarded, not fatal.
	maxEventSize = 1024 * 1024
)

// Dialer opens Server-Sent-Events streams over HTTP. The stream credential
// is carried by cookies, so the jar must be shared with the API client that
// performed the token exchange.
type Dialer struct {
	httpc *http.Client
}

// NewDialer creates a Dialer using the given cookie jar. The underlying
// client has no timeout since streams stay open indefinitely.
func NewDialer(jar http.CookieJar) *Dialer {
	return &Dialer{
		httpc: &http.Client{Jar: jar},
	}
}

// Dial opens the stream and starts the reader goroutine. The returned
// stream's Events channel closes when the connection ends.
func (d *Dialer) Dial(ctx context.Context, url string) (interfaces.EventStream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build stream request", goerr.V("url", url))
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := d.httpc.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect stream", goerr.V("url", url))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, goerr.New("stream endpoint rejected the request",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)),
		)
	}

	s := &httpStream{
		body:   resp.Body,
		events: make(chan model.RawEvent, 16),
	}
	go s.read()

	return s, nil
}

// httpStream reads SSE frames off an open response body
type httpStream struct {
	body   io.ReadCloser
	events chan model.RawEvent

	mu     sync.Mutex
	err    error
	closed bool
}

func (s *httpStream) Events() <-chan model.RawEvent {
	return s.events
}

func (s *httpStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close shuts the stream down. Safe to call more than once; the reader
// goroutine exits when the body read fails.
func (s *httpStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

func (s *httpStream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil && !s.closed {
		s.err = err
	}
}

func (s *httpStream) read() {
	defer close(s.events)
	defer func() { _ = s.body.Close() }()

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)

	var event model.RawEvent
	var dataLines []string
	var eventSize int
	var oversized bool

	for scanner.Scan() {
		line := scanner.Text()

		// Empty line terminates one event
		if line == "" {
			if len(dataLines) > 0 && !oversized {
				event.Data = strings.Join(dataLines, "\n")
				if event.Name == "" {
					event.Name = "message"
				}
				s.events <- event
			}
			event = model.RawEvent{}
			dataLines = nil
			eventSize = 0
			oversized = false
			continue
		}

		// Comment lines (": ping" keepalives) are ignored
		if strings.HasPrefix(line, ":") {
			continue
		}

		colon := strings.Index(line, ":")
		if colon == -1 {
			continue
		}
		field := line[:colon]
		value := strings.TrimPrefix(line[colon+1:], " ")

		switch field {
		case "event":
			event.Name = value
		case "data":
			if oversized {
				continue
			}
			newSize := eventSize + len(value)
			if eventSize > 0 {
				newSize++
			}
			if newSize > maxEventSize {
				oversized = true
				dataLines = nil
				continue
			}
			dataLines = append(dataLines, value)
			eventSize = newSize
		case "id":
			event.ID = value
		}
	}

	if err := scanner.Err(); err != nil {
		s.setErr(goerr.Wrap(err, "stream read failed"))
	}
}
