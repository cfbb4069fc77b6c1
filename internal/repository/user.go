package repository

import (
	"context"

	"github.com/nursultanov/user-dashboard/internal/domain"
)

// UserRepository is the single-document surface of the store. Every method
// touches at most one record; the store is responsible for per-document
// atomicity.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
}
