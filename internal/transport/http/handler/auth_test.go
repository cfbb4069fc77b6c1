package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/nursultanov/user-dashboard/internal/domain"
	"github.com/nursultanov/user-dashboard/internal/transport/http/handler"
	"github.com/gin-gonic/gin"
)

type fakeAuthUsecase struct {
	signUpErr error
	signInErr error

	signedOut []string
}

func (f *fakeAuthUsecase) SignUp(_ context.Context, email, _ string) (*domain.Identity, string, error) {
	if f.signUpErr != nil {
		return nil, "", f.signUpErr
	}
	return &domain.Identity{UID: "uid-1", Email: email}, "token-1", nil
}

func (f *fakeAuthUsecase) SignIn(_ context.Context, email, _ string) (*domain.Identity, string, error) {
	if f.signInErr != nil {
		return nil, "", f.signInErr
	}
	return &domain.Identity{UID: "uid-1", Email: email}, "token-1", nil
}

func (f *fakeAuthUsecase) SignOut(_ context.Context, rawToken string) error {
	f.signedOut = append(f.signedOut, rawToken)
	return nil
}

func newAuthRouter(auth *fakeAuthUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewAuthHandler(auth, discardLogger())

	r := gin.New()
	r.POST("/auth/signup", h.SignUp)
	r.POST("/auth/signin", h.SignIn)
	// Stand-in for the auth middleware, which owns these keys in production.
	r.POST("/auth/signout", func(c *gin.Context) {
		c.Set("sessionToken", "token-1")
	}, h.SignOut)
	r.GET("/auth/session", func(c *gin.Context) {
		c.Set("identity", &domain.Identity{UID: "uid-1", Email: "ada@x.com"})
	}, h.Session)
	return r
}

func TestSignUpHandler_OK(t *testing.T) {
	w := doJSON(t, newAuthRouter(&fakeAuthUsecase{}), http.MethodPost, "/auth/signup",
		`{"email":"ada@x.com","password":"secret1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Token    string `json:"token"`
		Identity struct {
			UID   string `json:"uid"`
			Email string `json:"email"`
		} `json:"identity"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Token != "token-1" || body.Identity.Email != "ada@x.com" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSignUpHandler_ErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"email in use", domain.ErrEmailInUse, http.StatusConflict, handler.CodeEmailInUse},
		{"malformed email", domain.ErrMalformedEmail, http.StatusBadRequest, handler.CodeMalformedEmail},
		{"weak password", domain.ErrWeakPassword, http.StatusBadRequest, handler.CodeWeakPassword},
		{"auth disabled", domain.ErrAuthDisabled, http.StatusForbidden, handler.CodeAuthDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newAuthRouter(&fakeAuthUsecase{signUpErr: tt.err})
			w := doJSON(t, r, http.MethodPost, "/auth/signup",
				`{"email":"ada@x.com","password":"secret1"}`)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if code, _ := body["code"].(string); code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
		})
	}
}

func TestSignUpHandler_MissingBody(t *testing.T) {
	w := doJSON(t, newAuthRouter(&fakeAuthUsecase{}), http.MethodPost, "/auth/signup",
		`{"email":"ada@x.com"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSignInHandler_OK(t *testing.T) {
	w := doJSON(t, newAuthRouter(&fakeAuthUsecase{}), http.MethodPost, "/auth/signin",
		`{"email":"ada@x.com","password":"secret1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestSignInHandler_InvalidCredentials(t *testing.T) {
	r := newAuthRouter(&fakeAuthUsecase{signInErr: domain.ErrInvalidCredentials})
	w := doJSON(t, r, http.MethodPost, "/auth/signin",
		`{"email":"ada@x.com","password":"wrong"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if code, _ := body["code"].(string); code != handler.CodeInvalidCredentials {
		t.Errorf("code = %q", code)
	}
}

func TestSignOutHandler_NoContent(t *testing.T) {
	auth := &fakeAuthUsecase{}
	w := doJSON(t, newAuthRouter(auth), http.MethodPost, "/auth/signout", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(auth.signedOut) != 1 || auth.signedOut[0] != "token-1" {
		t.Errorf("revoked tokens = %v", auth.signedOut)
	}
}

func TestSessionHandler_ReturnsIdentity(t *testing.T) {
	w := doJSON(t, newAuthRouter(&fakeAuthUsecase{}), http.MethodGet, "/auth/session", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["uid"] != "uid-1" || body["email"] != "ada@x.com" {
		t.Errorf("body = %s", w.Body.String())
	}
}
