package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrMissingField     = errors.New("name and email are required")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// User is a managed record, distinct from the account that signs in to
// manage it. Timestamps are server-assigned: CreatedAt once, UpdatedAt on
// every mutation, so CreatedAt <= UpdatedAt always holds.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserDraft is the pair of caller-supplied fields for create and update.
// Both must be present; format is not validated.
type UserDraft struct {
	Name  string
	Email string
}

func (d UserDraft) Validate() error {
	if d.Name == "" || d.Email == "" {
		return ErrMissingField
	}
	return nil
}
