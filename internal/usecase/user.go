package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/nursultanov/user-dashboard/internal/domain"
	"github.com/nursultanov/user-dashboard/internal/metrics"
	"github.com/nursultanov/user-dashboard/internal/repository"
	"github.com/google/uuid"
)

func observeStoreOp(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.StoreOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// Users implements the resource lifecycle over the document store. Each
// operation touches exactly one record; the store serializes same-id writes.
type Users struct {
	repo repository.UserRepository
}

func NewUsers(repo repository.UserRepository) *Users {
	return &Users{repo: repo}
}

func (u *Users) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := u.repo.List(ctx)
	observeStoreOp("list", err)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (u *Users) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := u.repo.FindByID(ctx, id)
	observeStoreOp("get", err)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUser allocates a fresh id and stamps CreatedAt == UpdatedAt.
func (u *Users) CreateUser(ctx context.Context, draft domain.UserDraft) (*domain.User, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.NewString(),
		Name:      draft.Name,
		Email:     draft.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := u.repo.Create(ctx, user)
	observeStoreOp("create", err)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// UpdateUser overwrites name/email and advances UpdatedAt. ID and CreatedAt
// never change.
func (u *Users) UpdateUser(ctx context.Context, id string, draft domain.UserDraft) (*domain.User, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	user, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	// UpdatedAt must strictly advance on every mutation.
	if !now.After(user.UpdatedAt) {
		now = user.UpdatedAt.Add(time.Microsecond)
	}

	user.Name = draft.Name
	user.Email = draft.Email
	user.UpdatedAt = now

	err = u.repo.Update(ctx, user)
	observeStoreOp("update", err)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes the record permanently. Ids are never reused: new ids
// are random UUIDs, not recycled ones.
func (u *Users) DeleteUser(ctx context.Context, id string) error {
	err := u.repo.Delete(ctx, id)
	observeStoreOp("delete", err)
	if err != nil {
		return err
	}
	return nil
}
