package apiclient

import (
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
)

// Session holds the current access token. It is the single source of truth
// consulted by the request pipeline and the stream manager; replacing the
// token atomically affects all future requests. The token lives only in
// memory and is never persisted.
type Session struct {
	mu    sync.RWMutex
	token string
	subs  []func(token string)
}

// NewSession creates an empty (logged out) session
func NewSession() *Session {
	return &Session{}
}

// Token returns the current access token, or an empty string when logged out
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the current access token and notifies subscribers
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	subs := make([]func(string), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(token)
	}
}

// Clear drops the token. This is the canonical logged-out state.
func (s *Session) Clear() {
	s.SetToken("")
}

// Authenticated reports whether a token is currently held
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Subscribe registers a callback invoked on every token change, including
// Clear. Subscriptions cannot be removed; subscribers are expected to live as
// long as the session.
func (s *Session) Subscribe(fn func(token string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Claims parses the held token without signature verification and returns
// its embedded claims. The result is for display only; the server remains
// the authority on token validity.
func (s *Session) Claims() (*model.TokenClaims, error) {
	token := s.Token()
	if token == "" {
		return nil, goerr.New("no session token")
	}

	parsed, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse access token")
	}

	claims := &model.TokenClaims{
		Subject:   parsed.Subject(),
		ExpiresAt: parsed.Expiration(),
		IssuedAt:  parsed.IssuedAt(),
	}
	if v, ok := parsed.Get("email"); ok {
		if email, ok := v.(string); ok {
			claims.Email = email
		}
	}
	return claims, nil
}

// Expired reports whether the held token's embedded expiry has passed. A
// missing or unparseable token counts as expired.
func (s *Session) Expired(now time.Time) bool {
	claims, err := s.Claims()
	if err != nil {
		return true
	}
	return claims.Expired(now)
}
