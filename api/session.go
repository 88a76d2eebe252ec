package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// session holds the bearer token obtained from the password grant. Tokens are
// refreshed shortly before their recorded expiry; a server-side rejection
// still triggers one reactive re-login in send.
type session struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

const expirySlack = 30 * time.Second

// authorize attaches credentials to an outgoing request, logging in first if
// the session token is missing or about to expire.
func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
		return nil
	}

	c.session.mu.Lock()
	token := c.session.token
	expired := token == "" || (!c.session.expiresAt.IsZero() && time.Until(c.session.expiresAt) < expirySlack)
	c.session.mu.Unlock()

	if expired {
		if err := c.login(ctx); err != nil {
			return err
		}
		c.session.mu.Lock()
		token = c.session.token
		c.session.mu.Unlock()
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// login performs the password grant and records the returned token and its
// expiry claim.
func (c *Client) login(ctx context.Context) error {
	payload := map[string]string{
		"username": c.username,
		"password": c.password,
	}
	var out struct {
		Token string `json:"token"`
	}

	// Issued directly, outside send, to keep authentication off the retry
	// and re-auth paths.
	if err := c.postUnauthenticated(ctx, "/v2/session", payload, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return &ValidationError{Endpoint: "/v2/session", Field: "token"}
	}

	c.session.mu.Lock()
	c.session.token = out.Token
	c.session.expiresAt = tokenExpiry(out.Token)
	c.session.mu.Unlock()

	c.log.WithField("username", c.username).Debug("session established")
	return nil
}

// Login authenticates eagerly. Most callers can rely on the lazy login inside
// authorize; Login exists so credential problems surface early and so MFA
// challenges can be answered before issuing other calls.
func (c *Client) Login(ctx context.Context) error {
	return c.login(ctx)
}

// SubmitMFA answers a multi-factor challenge for the current session.
func (c *Client) SubmitMFA(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("mfa code is required")
	}
	return c.doJSON(ctx, http.MethodPost, "/v2/session/mfa", map[string]string{"code": code}, nil)
}

// Logout invalidates the current session token server-side and forgets it.
func (c *Client) Logout(ctx context.Context) error {
	err := c.doJSON(ctx, http.MethodDelete, "/v2/session", nil, nil)

	c.session.mu.Lock()
	c.session.token = ""
	c.session.expiresAt = time.Time{}
	c.session.mu.Unlock()

	return err
}

// RequestPasswordReset asks the service to start a password reset for the
// named user. The reset itself completes out of band.
func (c *Client) RequestPasswordReset(ctx context.Context, username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	return c.doJSON(ctx, http.MethodPost, "/v2/password_reset", map[string]string{"username": username}, nil)
}

// tokenExpiry extracts the exp claim without verifying the signature; the
// client only schedules refreshes from it, trust stays with the server.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}
	}
	return time.Unix(int64(exp), 0)
}
