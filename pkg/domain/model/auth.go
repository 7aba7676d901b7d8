package model

import (
	"time"
)

// SignInRequest is the credential payload for the signin endpoint
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse is the token pair returned on successful signin. The refresh
// token is typically nil because the server carries it in an HTTP-only cookie.
type SignInResponse struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken *string `json:"refreshToken"`
}

// SignUpRequest is the payload for account creation
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshResponse is the body of the token refresh endpoint. A 200 with an
// empty AccessToken is still treated as a refresh failure.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// TokenClaims is the client-side view of the access token's embedded claims.
// The token is parsed leniently for display purposes only; nothing here is
// cryptographically verified.
type TokenClaims struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Expired reports whether the embedded expiry has passed. A zero expiry is
// treated as not expired since the claim is informational only.
func (c *TokenClaims) Expired(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return now.After(c.ExpiresAt)
}
