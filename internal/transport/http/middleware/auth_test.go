package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nursultanov/user-dashboard/internal/domain"
	"github.com/nursultanov/user-dashboard/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

type fakeVerifier struct {
	identity *domain.Identity
	err      error

	gotToken string
}

func (f *fakeVerifier) VerifySession(_ context.Context, rawToken string) (*domain.Identity, error) {
	f.gotToken = rawToken
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func newGuardedRouter(v *fakeVerifier, probe gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", middleware.Auth(v), probe)
	return r
}

func get(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_NoHeader(t *testing.T) {
	v := &fakeVerifier{}
	reached := false
	r := newGuardedRouter(v, func(c *gin.Context) { reached = true })

	w := get(r, "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if reached {
		t.Error("handler ran without credentials")
	}
	if v.gotToken != "" {
		t.Error("verifier called without a bearer token")
	}
}

func TestAuth_WrongScheme(t *testing.T) {
	r := newGuardedRouter(&fakeVerifier{}, func(c *gin.Context) {})

	w := get(r, "Basic dXNlcjpwYXNz")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	v := &fakeVerifier{err: domain.ErrSessionInvalid}
	reached := false
	r := newGuardedRouter(v, func(c *gin.Context) { reached = true })

	w := get(r, "Bearer bad-token")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if reached {
		t.Error("handler ran with an invalid token")
	}
	if v.gotToken != "bad-token" {
		t.Errorf("verifier saw token %q", v.gotToken)
	}
}

func TestAuth_ValidToken_SetsContext(t *testing.T) {
	v := &fakeVerifier{identity: &domain.Identity{UID: "uid-1", Email: "ada@x.com"}}

	var gotIdentity *domain.Identity
	var gotToken string
	r := newGuardedRouter(v, func(c *gin.Context) {
		val, _ := c.Get("identity")
		gotIdentity, _ = val.(*domain.Identity)
		gotToken = c.GetString("sessionToken")
		c.Status(http.StatusOK)
	})

	w := get(r, "Bearer good-token")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotIdentity == nil || gotIdentity.UID != "uid-1" {
		t.Errorf("identity in context = %+v", gotIdentity)
	}
	if gotToken != "good-token" {
		t.Errorf("sessionToken in context = %q", gotToken)
	}
}
