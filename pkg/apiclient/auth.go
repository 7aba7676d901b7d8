package apiclient

import (
	"context"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ourhour-lab/ourhour-go/pkg/domain/model"
)

// AuthAPI groups the authentication endpoints
type AuthAPI struct {
	client *Client
}

// SignIn authenticates with email and password. On success the returned
// access token is stored in the session so subsequent requests carry it.
// Signin is a public endpoint: the enveloped response is decoded here rather
// than unwrapped by the pipeline.
func (a *AuthAPI) SignIn(ctx context.Context, req *model.SignInRequest) (*model.SignInResponse, error) {
	var resp Envelope[model.SignInResponse]
	if err := a.client.post(ctx, "/api/auth/signin", req, &resp); err != nil {
		return nil, goerr.Wrap(err, "signin failed")
	}
	if resp.Data.AccessToken == "" {
		return nil, goerr.New("signin response missing access token")
	}

	a.client.session.SetToken(resp.Data.AccessToken)
	return &resp.Data, nil
}

// SignUp registers a new account
func (a *AuthAPI) SignUp(ctx context.Context, req *model.SignUpRequest) error {
	var resp Envelope[any]
	if err := a.client.post(ctx, "/api/auth/signup", req, &resp); err != nil {
		return goerr.Wrap(err, "signup failed")
	}
	return nil
}

// CheckEmail reports whether the email address is available for signup
func (a *AuthAPI) CheckEmail(ctx context.Context, email string) (bool, error) {
	query := url.Values{"email": []string{email}}
	var resp Envelope[bool]
	if err := a.client.get(ctx, "/api/auth/check-email", query, &resp); err != nil {
		return false, goerr.Wrap(err, "email check failed", goerr.V("email", email))
	}
	return resp.Data, nil
}

// SignOut invalidates the server-side session and clears the local token.
// The local session is cleared even if the server call fails; a client that
// asked to log out stays logged out.
func (a *AuthAPI) SignOut(ctx context.Context) error {
	err := a.client.post(ctx, "/api/auth/signout", nil, nil)
	a.client.session.Clear()
	if err != nil {
		return goerr.Wrap(err, "signout failed")
	}
	return nil
}

// SSEToken exchanges the bearer token for a short-lived stream credential.
// The credential itself is delivered as a cookie; the call's side effect on
// the jar is all the stream endpoint needs.
func (a *AuthAPI) SSEToken(ctx context.Context) error {
	if err := a.client.post(ctx, "/api/auth/sse-token", nil, nil, SkipLoading()); err != nil {
		return goerr.Wrap(err, "sse token exchange failed")
	}
	return nil
}

// RefreshToken forces a token refresh outside the 401 path, e.g. to warm the
// session before opening the stream. Concurrent callers share one call.
func (a *AuthAPI) RefreshToken(ctx context.Context) error {
	if _, err := a.client.refresh.Refresh(ctx); err != nil {
		return err
	}
	return nil
}
