package usecase

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nursultanov/user-dashboard/internal/domain"
	"github.com/nursultanov/user-dashboard/internal/email"
	"github.com/nursultanov/user-dashboard/internal/metrics"
	"github.com/nursultanov/user-dashboard/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL = 24 * time.Hour
	minPasswordLen    = 6
)

// Auth is the server side of the auth provider: email/password accounts,
// JWT session tokens, and sign-out by revocation.
type Auth struct {
	accounts        repository.AccountRepository
	revoked         repository.RevocationRepository
	email           email.Sender
	logger          *slog.Logger
	validate        *validator.Validate
	jwtKey          []byte
	sessionTTL      time.Duration
	passwordSignUps bool
}

func NewAuth(
	accounts repository.AccountRepository,
	revoked repository.RevocationRepository,
	emailSender email.Sender,
	logger *slog.Logger,
	jwtKey []byte,
	sessionTTL time.Duration,
	passwordSignUps bool,
) *Auth {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &Auth{
		accounts:        accounts,
		revoked:         revoked,
		email:           emailSender,
		logger:          logger.With("component", "auth_usecase"),
		validate:        validator.New(),
		jwtKey:          jwtKey,
		sessionTTL:      sessionTTL,
		passwordSignUps: passwordSignUps,
	}
}

// SignUp creates an account and returns a fresh session. Failure modes are
// distinct sentinels so the client can show code-specific messages.
func (a *Auth) SignUp(ctx context.Context, emailAddr, password string) (*domain.Identity, string, error) {
	if !a.passwordSignUps {
		return nil, "", domain.ErrAuthDisabled
	}
	if err := a.validate.Var(emailAddr, "required,email"); err != nil {
		return nil, "", domain.ErrMalformedEmail
	}
	if len(password) < minPasswordLen {
		return nil, "", domain.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrEmailInUse) {
			return nil, "", domain.ErrEmailInUse
		}
		return nil, "", fmt.Errorf("create account: %w", err)
	}

	// Welcome mail is best-effort; the account already exists.
	if err := a.email.Send(ctx, account.Email, "Welcome to User Dashboard",
		"<p>Your account is ready. Sign in with your email and password.</p>"); err != nil {
		a.logger.WarnContext(ctx, "send welcome email", "error", err)
	}

	return a.issueSession(account)
}

// SignIn answers every credential failure with the same sentinel so callers
// cannot tell a missing account from a wrong password.
func (a *Auth) SignIn(ctx context.Context, emailAddr, password string) (*domain.Identity, string, error) {
	account, err := a.accounts.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			metrics.SignInsTotal.WithLabelValues("rejected").Inc()
			return nil, "", domain.ErrInvalidCredentials
		}
		metrics.SignInsTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("find account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		metrics.SignInsTotal.WithLabelValues("rejected").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	metrics.SignInsTotal.WithLabelValues("ok").Inc()
	return a.issueSession(account)
}

// SignOut revokes the presented token until its natural expiry. An already
// invalid token is not an error; there is nothing left to revoke.
func (a *Auth) SignOut(ctx context.Context, rawToken string) error {
	claims, err := a.parseToken(rawToken)
	if err != nil {
		return nil
	}

	expiresAt := time.Now().Add(a.sessionTTL)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}

	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
	if err := a.revoked.Revoke(ctx, hash, expiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// VerifySession validates the token signature, expiry, and revocation list.
func (a *Auth) VerifySession(ctx context.Context, rawToken string) (*domain.Identity, error) {
	claims, err := a.parseToken(rawToken)
	if err != nil {
		return nil, domain.ErrSessionInvalid
	}

	uid, _ := claims["sub"].(string)
	emailAddr, _ := claims["email"].(string)
	if uid == "" {
		return nil, domain.ErrSessionInvalid
	}

	hash := fmt.Sprintf("%x", sha256.Sum256([]byte(rawToken)))
	revoked, err := a.revoked.IsRevoked(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, domain.ErrSessionInvalid
	}

	return &domain.Identity{UID: uid, Email: emailAddr}, nil
}

func (a *Auth) issueSession(account *domain.Account) (*domain.Identity, string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   account.ID,
		"email": account.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(a.sessionTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(a.jwtKey)
	if err != nil {
		return nil, "", fmt.Errorf("sign session token: %w", err)
	}
	return &domain.Identity{UID: account.ID, Email: account.Email}, signed, nil
}

func (a *Auth) parseToken(rawToken string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.jwtKey, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrSessionInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrSessionInvalid
	}
	return claims, nil
}
