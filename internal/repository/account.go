package repository

import (
	"context"
	"time"

	"github.com/nursultanov/user-dashboard/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}

// RevocationRepository tracks signed-out session tokens until expiry.
type RevocationRepository interface {
	Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
