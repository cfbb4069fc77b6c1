package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/nursultanov/user-dashboard/internal/domain"
)

// AuthClient talks to the auth provider endpoints and pushes auth-state
// change notifications to its subscribers, one per sign-in/sign-out. The
// current (possibly nil) identity is delivered shortly after subscribing.
type AuthClient struct {
	baseURL string
	client  *http.Client

	mu       sync.Mutex
	identity *domain.Identity
	token    string
	subs     map[int]func(*domain.Identity)
	nextSub  int
}

func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		subs:    make(map[int]func(*domain.Identity)),
	}
}

type wireCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type wireIdentity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

type wireSession struct {
	Token    string       `json:"token"`
	Identity wireIdentity `json:"identity"`
}

func (c *AuthClient) SignInWithPassword(ctx context.Context, email, password string) error {
	session, err := c.postCredentials(ctx, "/auth/signin", email, password)
	if err != nil {
		return err
	}
	c.setSession(session)
	return nil
}

func (c *AuthClient) CreateAccountWithPassword(ctx context.Context, email, password string) error {
	session, err := c.postCredentials(ctx, "/auth/signup", email, password)
	if err != nil {
		return err
	}
	c.setSession(session)
	return nil
}

// SignOut revokes the session server-side and always clears it locally, so
// a network failure cannot leave the client looking signed in.
func (c *AuthClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	var revokeErr error
	if token != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/signout", nil)
		if err != nil {
			revokeErr = fmt.Errorf("build request: %w", err)
		} else {
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := c.client.Do(req)
			if err != nil {
				revokeErr = fmt.Errorf("sign out: %w", err)
			} else {
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
			}
		}
	}

	c.setSession(nil)
	return revokeErr
}

// SubscribeToAuthChanges registers cb and returns its unsubscribe func.
// The current identity is delivered asynchronously right away, so a fresh
// subscriber always receives an initial notification.
func (c *AuthClient) SubscribeToAuthChanges(cb func(*domain.Identity)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = cb
	current := c.identity
	c.mu.Unlock()

	go cb(current)

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Token returns the current session token, or "" when signed out.
func (c *AuthClient) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *AuthClient) setSession(session *wireSession) {
	c.mu.Lock()
	if session != nil {
		c.identity = &domain.Identity{UID: session.Identity.UID, Email: session.Identity.Email}
		c.token = session.Token
	} else {
		c.identity = nil
		c.token = ""
	}
	identity := c.identity
	subs := make([]func(*domain.Identity), 0, len(c.subs))
	for _, cb := range c.subs {
		subs = append(subs, cb)
	}
	c.mu.Unlock()

	for _, cb := range subs {
		cb(identity)
	}
}

func (c *AuthClient) postCredentials(ctx context.Context, path, email, password string) (*wireSession, error) {
	buf, err := json.Marshal(wireCredentials{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAuthError(resp)
	}

	var session wireSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

// decodeAuthError maps the server's stable error codes back onto the
// domain sentinels the session guard distinguishes.
func decodeAuthError(resp *http.Response) error {
	var wire wireError
	_ = json.NewDecoder(resp.Body).Decode(&wire)

	switch wire.Code {
	case "email_in_use":
		return domain.ErrEmailInUse
	case "malformed_email":
		return domain.ErrMalformedEmail
	case "weak_password":
		return domain.ErrWeakPassword
	case "auth_disabled":
		return domain.ErrAuthDisabled
	case "invalid_credentials":
		return domain.ErrInvalidCredentials
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return domain.ErrInvalidCredentials
	}
	if wire.Error != "" {
		return fmt.Errorf("auth: %s (status %d)", wire.Error, resp.StatusCode)
	}
	return fmt.Errorf("auth: unexpected status %d", resp.StatusCode)
}
