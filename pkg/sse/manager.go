package sse

import (
	"context"
	"sync"
	"time"

	"github.com/ourhour-lab/ourhour-go/pkg/domain/interfaces"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/types"
	"github.com/ourhour-lab/ourhour-go/pkg/utils/logging"
)

// Config wires a Manager to its collaborators. ExchangeToken is called before
// every connection attempt to obtain the short-lived stream credential;
// HasToken gates connecting on access-token availability.
type Config struct {
	URL           string
	HasToken      func() bool
	ExchangeToken func(ctx context.Context) error
	Dialer        interfaces.StreamDialer

	OnEvent func(ctx context.Context, ev *model.StreamEvent)
	OnOpen  func(ctx context.Context)
	OnError func(ctx context.Context, err error)
}

// Tuning holds the retry/backoff parameters. Production uses DefaultTuning;
// tests shrink the delays.
type Tuning struct {
	// MaxRetries bounds consecutive reconnect attempts, for both the
	// connecting-phase and post-connection error paths.
	MaxRetries int

	// BaseRetryDelay is the first post-connection backoff delay; it doubles
	// per attempt up to RetryDelayCeiling.
	BaseRetryDelay    time.Duration
	RetryDelayCeiling time.Duration

	// ConnectingRetryDelay is the fixed delay after an error during the
	// connecting phase (token exchange or dial).
	ConnectingRetryDelay time.Duration

	// SettleDelay is the pause between the token exchange and opening the
	// stream, letting the server-side cookie state land.
	SettleDelay time.Duration

	// Cooldown is the long pause after MaxRetries consecutive failures.
	// After it elapses the counters reset and connecting resumes; the
	// manager never gives up permanently.
	Cooldown time.Duration

	// Token availability polling: base delay doubling up to the ceiling,
	// at most TokenPollMax attempts before settling into disconnected.
	TokenPollBase    time.Duration
	TokenPollCeiling time.Duration
	TokenPollMax     int
}

// DefaultTuning returns the production retry parameters
func DefaultTuning() Tuning {
	return Tuning{
		MaxRetries:           5,
		BaseRetryDelay:       time.Second,
		RetryDelayCeiling:    10 * time.Second,
		ConnectingRetryDelay: time.Second,
		SettleDelay:          300 * time.Millisecond,
		Cooldown:             time.Minute,
		TokenPollBase:        500 * time.Millisecond,
		TokenPollCeiling:     8 * time.Second,
		TokenPollMax:         10,
	}
}

// Manager owns the live notification stream: it exchanges the stream token,
// opens the connection, dispatches decoded events, and reconnects with
// tiered backoff. All state transitions happen on its single run goroutine;
// Disconnect is safe from any goroutine and idempotent.
type Manager struct {
	cfg Config
	tun Tuning

	mu      sync.Mutex
	state   types.ConnState
	enabled bool
	running bool
	cancel  context.CancelFunc
	stream  interfaces.EventStream

	retryCount int
}

// Option configures a Manager
type Option func(*Manager)

// WithTuning overrides the retry/backoff parameters
func WithTuning(tun Tuning) Option {
	return func(m *Manager) { m.tun = tun }
}

// NewManager creates a Manager in the disconnected state
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:   cfg,
		tun:   DefaultTuning(),
		state: types.ConnDisconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current connection state
func (m *Manager) State() types.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsConnected reports whether the stream is currently open
func (m *Manager) IsConnected() bool {
	return m.State() == types.ConnConnected
}

// Connect enables the manager and starts the connect sequence if it is not
// already running. Non-blocking.
func (m *Manager) Connect(ctx context.Context) {
	m.mu.Lock()
	m.enabled = true
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runCtx = logging.With(runCtx, logging.From(ctx))
	m.cancel = cancel
	m.mu.Unlock()

	go m.run(runCtx)
}

// Disconnect tears the stream down: it cancels any pending retry timer,
// closes the open stream, and settles into disconnected. Safe to call
// repeatedly or when already disconnected.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.enabled = false
	cancel := m.cancel
	stream := m.stream
	m.cancel = nil
	m.stream = nil
	m.state = types.ConnDisconnected
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if stream != nil {
		_ = stream.Close()
	}
}

// SetEnabled toggles the stream lifecycle: true starts a fresh connect
// sequence, false triggers teardown.
func (m *Manager) SetEnabled(ctx context.Context, enabled bool) {
	if enabled {
		m.Connect(ctx)
	} else {
		m.Disconnect()
	}
}

func (m *Manager) run(ctx context.Context) {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.state = types.ConnDisconnected
		// A Connect that raced with this teardown found running still true
		// and did nothing; pick its request up here.
		restart := m.enabled && ctx.Err() != nil
		m.mu.Unlock()

		if restart {
			m.Connect(context.Background())
		}
	}()

	for m.active(ctx) {
		if !m.waitForToken(ctx) {
			return
		}

		m.setState(types.ConnConnecting)

		if err := m.cfg.ExchangeToken(ctx); err != nil {
			if !m.connectingFailed(ctx, err) {
				return
			}
			continue
		}

		if !m.sleep(ctx, m.tun.SettleDelay) {
			return
		}

		stream, err := m.cfg.Dialer.Dial(ctx, m.cfg.URL)
		if err != nil {
			if !m.connectingFailed(ctx, err) {
				return
			}
			continue
		}

		m.mu.Lock()
		if !m.enabled {
			m.mu.Unlock()
			_ = stream.Close()
			return
		}
		m.stream = stream
		m.state = types.ConnConnected
		m.mu.Unlock()

		if m.cfg.OnOpen != nil {
			m.cfg.OnOpen(ctx)
		}

		// The retry counters reset on the first delivered event, not on dial
		// success. The server acks every healthy subscription immediately, so
		// a connection that opens but dies silently still escalates the
		// backoff instead of hammering the server at the base delay.
		first := true
		for ev := range stream.Events() {
			if first {
				first = false
				m.mu.Lock()
				m.retryCount = 0
				m.mu.Unlock()
			}
			m.dispatch(ctx, ev)
		}

		streamErr := stream.Err()
		m.mu.Lock()
		m.stream = nil
		m.state = types.ConnDisconnected
		m.mu.Unlock()

		if streamErr != nil && m.cfg.OnError != nil {
			m.cfg.OnError(ctx, streamErr)
		}

		if !m.streamDropped(ctx) {
			return
		}
	}
}

// connectingFailed handles an error in the connecting phase: fixed short
// delay per attempt, bounded by MaxRetries, then the long cooldown. Returns
// false when the manager should stop.
func (m *Manager) connectingFailed(ctx context.Context, err error) bool {
	m.setState(types.ConnDisconnected)
	if m.cfg.OnError != nil {
		m.cfg.OnError(ctx, err)
	}

	m.mu.Lock()
	m.retryCount++
	count := m.retryCount
	m.mu.Unlock()

	if count > m.tun.MaxRetries {
		return m.cooldown(ctx)
	}
	logging.From(ctx).Debug("stream connect failed, retrying",
		"attempt", count, "error", err)
	return m.sleep(ctx, m.tun.ConnectingRetryDelay)
}

// streamDropped handles the end of an established stream: exponential
// backoff doubling per attempt up to the ceiling, bounded by MaxRetries,
// then the long cooldown. Returns false when the manager should stop.
func (m *Manager) streamDropped(ctx context.Context) bool {
	m.mu.Lock()
	m.retryCount++
	count := m.retryCount
	m.mu.Unlock()

	if count > m.tun.MaxRetries {
		return m.cooldown(ctx)
	}

	delay := m.tun.BaseRetryDelay << (count - 1)
	if delay > m.tun.RetryDelayCeiling {
		delay = m.tun.RetryDelayCeiling
	}
	logging.From(ctx).Debug("stream dropped, backing off",
		"attempt", count, "delay", delay)
	return m.sleep(ctx, delay)
}

// cooldown waits out the long recovery pause and resets the retry counters
func (m *Manager) cooldown(ctx context.Context) bool {
	logging.From(ctx).Warn("stream retries exhausted, entering cooldown",
		"cooldown", m.tun.Cooldown)
	if !m.sleep(ctx, m.tun.Cooldown) {
		return false
	}
	m.mu.Lock()
	m.retryCount = 0
	m.mu.Unlock()
	return true
}

// waitForToken polls access-token availability with capped exponential
// backoff. Returns false if the token never appears within the bounded
// attempts or the manager is torn down meanwhile.
func (m *Manager) waitForToken(ctx context.Context) bool {
	if m.cfg.HasToken == nil || m.cfg.HasToken() {
		return true
	}

	delay := m.tun.TokenPollBase
	for attempt := 0; attempt < m.tun.TokenPollMax; attempt++ {
		if !m.sleep(ctx, delay) {
			return false
		}
		if m.cfg.HasToken() {
			return true
		}
		delay *= 2
		if delay > m.tun.TokenPollCeiling {
			delay = m.tun.TokenPollCeiling
		}
	}

	logging.From(ctx).Warn("no access token available, stream disabled")
	return false
}

func (m *Manager) dispatch(ctx context.Context, raw model.RawEvent) {
	ev, err := model.DecodeStreamEvent(types.EventName(raw.Name), raw.Data)
	if err != nil {
		if m.cfg.OnError != nil {
			m.cfg.OnError(ctx, err)
		}
		return
	}
	if m.cfg.OnEvent != nil {
		m.cfg.OnEvent(ctx, ev)
	}
}

func (m *Manager) setState(state types.ConnState) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

func (m *Manager) active(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// sleep waits for d or until teardown. Returns false on teardown so callers
// can unwind without firing their retry.
func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return m.active(ctx)
	}
}
