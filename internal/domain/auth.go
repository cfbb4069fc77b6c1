package domain

import (
	"errors"
	"time"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrMalformedEmail     = errors.New("malformed email")
	ErrWeakPassword       = errors.New("password too weak")
	ErrAuthDisabled       = errors.New("password auth disabled")
	ErrSessionInvalid     = errors.New("session is invalid or expired")
)

// Account holds the credentials of someone allowed to use the dashboard.
// Accounts are separate from the User records they manage.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the authenticated-principal view of an account, safe to hand
// to clients and to embed in auth-change notifications.
type Identity struct {
	UID   string
	Email string
}

// RevokedSession marks a signed-out session token (by hash) as unusable
// until it would have expired anyway.
type RevokedSession struct {
	TokenHash string
	ExpiresAt time.Time
}
