package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nursultanov/user-dashboard/internal/domain"
)

// UserService is the resource surface the controller talks to. The HTTP
// client and the in-process usecase both satisfy it; neither transport is
// more authoritative than the other.
type UserService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, draft domain.UserDraft) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, draft domain.UserDraft) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Confirmer asks the operator to approve a destructive action.
type Confirmer func(prompt string) bool

const (
	confirmDelete = "Are you sure you want to delete this user?"

	msgLoadFailed   = "Failed to load users. Please check your database permissions."
	msgCreateFailed = "Failed to create user. Please check your database permissions."
	msgUpdateFailed = "Failed to update user. Please check your database permissions."
	msgDeleteFailed = "Failed to delete user. Please check your database permissions."

	// EmptyState is shown when the listing holds no records.
	EmptyState = "No users found."
)

// Controller is the dashboard's single source of truth: the record list, a
// busy flag, an error slot, and at most one open form (edit or create,
// never both). Every mutation is followed by a full re-fetch, so the list
// always shows just-fetched server state.
type Controller struct {
	svc     UserService
	confirm Confirmer
	logger  *slog.Logger

	mu       sync.Mutex
	users    []domain.User
	busy     bool
	errMsg   string
	editing  *domain.User
	creating bool
}

func NewController(svc UserService, confirm Confirmer, logger *slog.Logger) *Controller {
	return &Controller{
		svc:     svc,
		confirm: confirm,
		logger:  logger.With("component", "dashboard"),
	}
}

// Users returns a copy of the current listing.
func (c *Controller) Users() []domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	users := make([]domain.User, len(c.users))
	copy(users, c.users)
	return users
}

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Editing returns the record whose form is open, or nil.
func (c *Controller) Editing() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return nil
	}
	u := *c.editing
	return &u
}

func (c *Controller) Creating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creating
}

// StartCreate opens the create form, closing any edit form.
func (c *Controller) StartCreate() {
	c.mu.Lock()
	c.creating = true
	c.editing = nil
	c.mu.Unlock()
}

// StartEdit opens the edit form for the listed record with the given id.
func (c *Controller) StartEdit(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.users {
		if c.users[i].ID == id {
			u := c.users[i]
			c.editing = &u
			c.creating = false
			return
		}
	}
}

// CancelForm discards whichever draft is open.
func (c *Controller) CancelForm() {
	c.mu.Lock()
	c.creating = false
	c.editing = nil
	c.mu.Unlock()
}

// Refresh replaces the whole listing with a fresh fetch. On failure the
// previous listing stays visible: stale-but-present beats empty.
func (c *Controller) Refresh(ctx context.Context) {
	c.setBusy(true)
	defer c.setBusy(false)

	users, err := c.svc.ListUsers(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "load users", "error", err)
		c.setError(msgLoadFailed)
		return
	}

	c.mu.Lock()
	c.users = users
	c.errMsg = ""
	c.mu.Unlock()
}

// Create submits the draft, closes the form, and re-fetches. On failure
// the form stays open for retry.
func (c *Controller) Create(ctx context.Context, draft domain.UserDraft) {
	c.setBusy(true)

	if _, err := c.svc.CreateUser(ctx, draft); err != nil {
		c.logger.ErrorContext(ctx, "create user", "error", err)
		c.setError(msgCreateFailed)
		c.setBusy(false)
		return
	}

	c.mu.Lock()
	c.creating = false
	c.errMsg = ""
	c.mu.Unlock()
	c.setBusy(false)

	c.Refresh(ctx)
}

// Update submits the draft for the record being edited.
func (c *Controller) Update(ctx context.Context, id string, draft domain.UserDraft) {
	c.setBusy(true)

	if _, err := c.svc.UpdateUser(ctx, id, draft); err != nil {
		c.logger.ErrorContext(ctx, "update user", "error", err)
		c.setError(msgUpdateFailed)
		c.setBusy(false)
		return
	}

	c.mu.Lock()
	c.editing = nil
	c.errMsg = ""
	c.mu.Unlock()
	c.setBusy(false)

	c.Refresh(ctx)
}

// Remove deletes after an explicit confirmation; declining is a no-op.
func (c *Controller) Remove(ctx context.Context, id string) {
	if !c.confirm(confirmDelete) {
		return
	}

	c.setBusy(true)
	if err := c.svc.DeleteUser(ctx, id); err != nil {
		c.logger.ErrorContext(ctx, "delete user", "error", err)
		c.setError(msgDeleteFailed)
		c.setBusy(false)
		return
	}
	c.setBusy(false)

	c.Refresh(ctx)
}

func (c *Controller) setBusy(v bool) {
	c.mu.Lock()
	c.busy = v
	c.mu.Unlock()
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()
}
