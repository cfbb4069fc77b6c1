package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/nursultanov/user-dashboard/internal/domain"
	"github.com/gin-gonic/gin"
)

// userService is the subset of the users usecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type userService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, draft domain.UserDraft) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, draft domain.UserDraft) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type UserHandler struct {
	users  userService
	logger *slog.Logger
}

func NewUserHandler(users userService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger.With("component", "user_handler")}
}

type userDraftRequest struct {
	Name  string `json:"name"  binding:"required"`
	Email string `json:"email" binding:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, "list users", err)
		return
	}

	resp := make([]userResponse, len(users))
	for i := range users {
		resp[i] = toUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GET /users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get user", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req userDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingFields})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), domain.UserDraft{Name: req.Name, Email: req.Email})
	if err != nil {
		h.fail(c, "create user", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var req userDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingFields})
		return
	}

	user, err := h.users.UpdateUser(c.Request.Context(), c.Param("id"),
		domain.UserDraft{Name: req.Name, Email: req.Email})
	if err != nil {
		h.fail(c, "update user", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete user", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps a usecase error onto the taxonomy. Unexpected errors are logged
// for operators and answered with a generic message only.
func (h *UserHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingFields})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.ErrorContext(c.Request.Context(), op, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errServiceUnavailable})
	default:
		h.logger.ErrorContext(c.Request.Context(), op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
