package httptransport_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nursultanov/user-dashboard/internal/domain"
	httptransport "github.com/nursultanov/user-dashboard/internal/transport/http"
	"github.com/nursultanov/user-dashboard/internal/transport/http/handler"
	"github.com/gin-gonic/gin"
)

// countingUserService fails the test if any route dispatch reaches it.
type countingUserService struct {
	calls int
}

func (s *countingUserService) ListUsers(context.Context) ([]domain.User, error) {
	s.calls++
	return nil, nil
}

func (s *countingUserService) GetUser(context.Context, string) (*domain.User, error) {
	s.calls++
	return &domain.User{}, nil
}

func (s *countingUserService) CreateUser(context.Context, domain.UserDraft) (*domain.User, error) {
	s.calls++
	return &domain.User{}, nil
}

func (s *countingUserService) UpdateUser(context.Context, string, domain.UserDraft) (*domain.User, error) {
	s.calls++
	return &domain.User{}, nil
}

func (s *countingUserService) DeleteUser(context.Context, string) error {
	s.calls++
	return nil
}

type noopAuthUsecase struct{}

func (noopAuthUsecase) SignUp(context.Context, string, string) (*domain.Identity, string, error) {
	return &domain.Identity{}, "", nil
}

func (noopAuthUsecase) SignIn(context.Context, string, string) (*domain.Identity, string, error) {
	return &domain.Identity{}, "", nil
}

func (noopAuthUsecase) SignOut(context.Context, string) error { return nil }

type denyVerifier struct{}

func (denyVerifier) VerifySession(context.Context, string) (*domain.Identity, error) {
	return nil, domain.ErrSessionInvalid
}

func newRouter(svc *countingUserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	userHandler := handler.NewUserHandler(svc, logger)
	authHandler := handler.NewAuthHandler(noopAuthUsecase{}, logger)
	return httptransport.NewRouter(logger, userHandler, authHandler, denyVerifier{})
}

func TestRouter_WrongVerbAnswers405BeforeAnyStoreAccess(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/users"},
		{http.MethodDelete, "/users"},
		{http.MethodPatch, "/users"},
		{http.MethodPost, "/users/abc"},
		{http.MethodPatch, "/users/abc"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			svc := &countingUserService{}
			r := newRouter(svc)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want 405", w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != "Method not allowed" {
				t.Errorf("error = %v", body["error"])
			}
			if svc.calls != 0 {
				t.Errorf("store reached %d times for a wrong-verb request", svc.calls)
			}
		})
	}
}

func TestRouter_KnownVerbsDispatch(t *testing.T) {
	svc := &countingUserService{}
	r := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if svc.calls != 1 {
		t.Errorf("store calls = %d, want 1", svc.calls)
	}
}

func TestRouter_ProtectedAuthRoutesRequireSession(t *testing.T) {
	r := newRouter(&countingUserService{})

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/auth/signout"},
		{http.MethodGet, "/auth/session"},
	} {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want 401", tt.method, tt.path, w.Code)
		}
	}
}
