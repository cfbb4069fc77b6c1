package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nursultanov/user-dashboard/internal/domain"
)

// State is the guard's view of the session. It starts Unknown and settles
// on the first auth-change notification.
type State int

const (
	Unknown State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the session at one point in time.
type Snapshot struct {
	State    State
	Identity *domain.Identity
}

// AuthProvider is the opaque auth service the guard wraps.
type AuthProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) error
	CreateAccountWithPassword(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	SubscribeToAuthChanges(cb func(*domain.Identity)) func()
}

// Navigator is the route surface the guard redirects on.
type Navigator interface {
	CurrentRoute() string
	Go(route string)
}

const (
	RouteHome   = "/"
	RouteSignIn = "/login"
	RouteSignUp = "/signup"
)

func publicRoute(route string) bool {
	return route == RouteSignIn || route == RouteSignUp
}

// User-facing messages. Sign-in failures are deliberately generic so the
// response cannot be used to probe which emails have accounts.
const (
	msgSignInFailed = "Failed to sign in. Please check your credentials."
	msgEmailInUse   = "This email is already registered. Please try logging in instead."
	msgInvalidEmail = "Please enter a valid email address."
	msgAuthDisabled = "Email/password accounts are not enabled. Please contact support."
	msgWeakPassword = "Password should be at least 6 characters."
	msgSignUpFailed = "Failed to create account. Please try again."
)

// Guard owns the session state machine. It holds exactly one provider
// subscription for its lifetime; Close releases it so a discarded guard
// never receives another notification.
type Guard struct {
	provider AuthProvider
	nav      Navigator
	logger   *slog.Logger

	mu          sync.Mutex
	state       State
	identity    *domain.Identity
	errMsg      string
	watchers    map[int]func(Snapshot)
	nextWatcher int
	unsubscribe func()
}

func NewGuard(provider AuthProvider, nav Navigator, logger *slog.Logger) *Guard {
	g := &Guard{
		provider: provider,
		nav:      nav,
		logger:   logger.With("component", "session_guard"),
		state:    Unknown,
		watchers: make(map[int]func(Snapshot)),
	}
	g.unsubscribe = provider.SubscribeToAuthChanges(g.onAuthChange)
	return g
}

// Close tears down the provider subscription. Safe to call more than once.
func (g *Guard) Close() {
	g.mu.Lock()
	unsub := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Current returns the present session snapshot.
func (g *Guard) Current() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{State: g.state, Identity: g.identity}
}

// Error returns the last command failure message, or "".
func (g *Guard) Error() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.errMsg
}

// Watch registers cb for every state transition and returns its
// unregister func.
func (g *Guard) Watch(cb func(Snapshot)) func() {
	g.mu.Lock()
	id := g.nextWatcher
	g.nextWatcher++
	g.watchers[id] = cb
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.watchers, id)
		g.mu.Unlock()
	}
}

// SignIn clears any prior error and redirects home on success. On failure
// it records a generic message and hands the error back for the caller.
func (g *Guard) SignIn(ctx context.Context, email, password string) error {
	g.setError("")
	if err := g.provider.SignInWithPassword(ctx, email, password); err != nil {
		g.setError(msgSignInFailed)
		return err
	}
	g.nav.Go(RouteHome)
	return nil
}

// SignUp is structurally SignIn, but failures keep their shape: each known
// provider failure maps to its own message, everything else to a fallback.
func (g *Guard) SignUp(ctx context.Context, email, password string) error {
	g.setError("")
	if err := g.provider.CreateAccountWithPassword(ctx, email, password); err != nil {
		g.setError(signUpMessage(err))
		return err
	}
	g.nav.Go(RouteHome)
	return nil
}

// Logout is best-effort: failures are logged, never propagated, and the
// user always lands on the sign-in screen.
func (g *Guard) Logout(ctx context.Context) {
	g.setError("")
	if err := g.provider.SignOut(ctx); err != nil {
		g.logger.WarnContext(ctx, "sign out", "error", err)
	}
	g.nav.Go(RouteSignIn)
}

// View renders one screen.
type View func() string

// Gate wraps a view: a loading indicator while the session is Unknown,
// nothing while the redirect to sign-in is underway, the view itself once
// authenticated.
func (g *Guard) Gate(view View) View {
	return func() string {
		switch g.Current().State {
		case Unknown:
			return "Loading..."
		case Authenticated:
			return view()
		default:
			return ""
		}
	}
}

func (g *Guard) onAuthChange(identity *domain.Identity) {
	g.mu.Lock()
	if identity != nil {
		g.state = Authenticated
	} else {
		g.state = Unauthenticated
	}
	g.identity = identity
	snap := Snapshot{State: g.state, Identity: g.identity}
	watchers := make([]func(Snapshot), 0, len(g.watchers))
	for _, cb := range g.watchers {
		watchers = append(watchers, cb)
	}
	g.mu.Unlock()

	// No redirect on public routes: the sign-in and sign-up screens are
	// exactly where an unauthenticated user belongs.
	if snap.State == Unauthenticated && !publicRoute(g.nav.CurrentRoute()) {
		g.nav.Go(RouteSignIn)
	}

	for _, cb := range watchers {
		cb(snap)
	}
}

func (g *Guard) setError(msg string) {
	g.mu.Lock()
	g.errMsg = msg
	g.mu.Unlock()
}

func signUpMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmailInUse):
		return msgEmailInUse
	case errors.Is(err, domain.ErrMalformedEmail):
		return msgInvalidEmail
	case errors.Is(err, domain.ErrAuthDisabled):
		return msgAuthDisabled
	case errors.Is(err, domain.ErrWeakPassword):
		return msgWeakPassword
	default:
		return msgSignUpFailed
	}
}
