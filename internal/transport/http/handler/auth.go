package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nursultanov/user-dashboard/internal/domain"
	"github.com/gin-gonic/gin"
)

// Stable machine-readable codes so the client can map failures back to
// user-facing messages without parsing prose.
const (
	CodeEmailInUse         = "email_in_use"
	CodeMalformedEmail     = "malformed_email"
	CodeWeakPassword       = "weak_password"
	CodeAuthDisabled       = "auth_disabled"
	CodeInvalidCredentials = "invalid_credentials"
)

// authUsecaser is the subset of the auth usecase the handler needs.
type authUsecaser interface {
	SignUp(ctx context.Context, email, password string) (*domain.Identity, string, error)
	SignIn(ctx context.Context, email, password string) (*domain.Identity, string, error)
	SignOut(ctx context.Context, rawToken string) error
}

type AuthHandler struct {
	auth   authUsecaser
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger.With("component", "auth_handler")}
}

type credentialsRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type identityResponse struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Token    string           `json:"token"`
	Identity identityResponse `json:"identity"`
}

// POST /auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	identity, token, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailInUse):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": CodeEmailInUse})
		case errors.Is(err, domain.ErrMalformedEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": CodeMalformedEmail})
		case errors.Is(err, domain.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": CodeWeakPassword})
		case errors.Is(err, domain.ErrAuthDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": CodeAuthDisabled})
		default:
			h.logger.ErrorContext(c.Request.Context(), "sign up", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		Token:    token,
		Identity: identityResponse{UID: identity.UID, Email: identity.Email},
	})
}

// POST /auth/signin
// Every credential failure gets the same answer to avoid account enumeration.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	identity, token, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrInvalidCredentials.Error(), "code": CodeInvalidCredentials})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "sign in", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		Token:    token,
		Identity: identityResponse{UID: identity.UID, Email: identity.Email},
	})
}

// POST /auth/signout (behind auth middleware)
func (h *AuthHandler) SignOut(c *gin.Context) {
	rawToken := c.GetString("sessionToken")
	if err := h.auth.SignOut(c.Request.Context(), rawToken); err != nil {
		h.logger.ErrorContext(c.Request.Context(), "sign out", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /auth/session (behind auth middleware)
func (h *AuthHandler) Session(c *gin.Context) {
	v, _ := c.Get("identity")
	identity, ok := v.(*domain.Identity)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, identityResponse{UID: identity.UID, Email: identity.Email})
}
