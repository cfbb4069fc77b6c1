package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nursultanov/user-dashboard/config"
	"github.com/nursultanov/user-dashboard/internal/client"
	"github.com/nursultanov/user-dashboard/internal/dashboard"
	"github.com/nursultanov/user-dashboard/internal/domain"
	"github.com/nursultanov/user-dashboard/internal/session"
	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// router tracks which screen is showing; the guard redirects through it.
type router struct {
	mu    sync.Mutex
	route string
}

func (r *router) CurrentRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.route
}

func (r *router) Go(route string) {
	r.mu.Lock()
	r.route = route
	r.mu.Unlock()
}

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelWarn,
		TimeFormat: time.Kitchen,
	}))

	authClient := client.NewAuthClient(cfg.APIBaseURL)
	api := client.NewAPI(cfg.APIBaseURL)

	nav := &router{route: session.RouteSignIn}
	guard := session.NewGuard(authClient, nav, logger)
	defer guard.Close()

	stdin := bufio.NewReader(os.Stdin)
	confirm := func(prompt string) bool {
		fmt.Printf("%s [y/N]: ", prompt)
		line, _ := stdin.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
	ctrl := dashboard.NewController(api, confirm, logger)

	ctx := context.Background()
	for {
		switch nav.CurrentRoute() {
		case session.RouteSignIn:
			if done := signInScreen(ctx, guard, nav, stdin); done {
				return
			}
		case session.RouteSignUp:
			signUpScreen(ctx, guard, nav, stdin)
		default:
			if done := dashboardScreen(ctx, guard, ctrl, stdin); done {
				return
			}
		}
	}
}

func signInScreen(ctx context.Context, guard *session.Guard, nav *router, stdin *bufio.Reader) bool {
	fmt.Println("\n== Sign in ==  (s = sign up instead, q = quit)")
	email := prompt(stdin, "Email: ")
	switch email {
	case "q":
		return true
	case "s":
		nav.Go(session.RouteSignUp)
		return false
	}

	password := promptPassword("Password: ", stdin)
	if err := guard.SignIn(ctx, email, password); err != nil {
		fmt.Println(guard.Error())
	}
	return false
}

func signUpScreen(ctx context.Context, guard *session.Guard, nav *router, stdin *bufio.Reader) {
	fmt.Println("\n== Sign up ==  (b = back to sign in)")
	email := prompt(stdin, "Email: ")
	if email == "b" {
		nav.Go(session.RouteSignIn)
		return
	}

	password := promptPassword("Password: ", stdin)
	confirmPassword := promptPassword("Confirm password: ", stdin)
	if password != confirmPassword {
		fmt.Println("Passwords do not match.")
		return
	}

	if err := guard.SignUp(ctx, email, password); err != nil {
		fmt.Println(guard.Error())
	}
}

func dashboardScreen(ctx context.Context, guard *session.Guard, ctrl *dashboard.Controller, stdin *bufio.Reader) bool {
	ctrl.Refresh(ctx)

	view := guard.Gate(func() string {
		return renderDashboard(guard, ctrl)
	})

	for {
		switch guard.Current().State {
		case session.Unknown:
			fmt.Println(view())
			time.Sleep(50 * time.Millisecond)
			continue
		case session.Unauthenticated:
			return false
		}

		fmt.Println(view())
		fmt.Print("> ")
		line, err := stdin.ReadString('\n')
		if err != nil {
			return true
		}

		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "r":
			ctrl.Refresh(ctx)
		case "a":
			ctrl.StartCreate()
			if draft, ok := readDraft(stdin, nil); ok {
				ctrl.Create(ctx, draft)
			} else {
				ctrl.CancelForm()
			}
		case "e":
			if len(fields) < 2 {
				fmt.Println("usage: e <id>")
				continue
			}
			ctrl.StartEdit(fields[1])
			editing := ctrl.Editing()
			if editing == nil {
				fmt.Println("No such user in the list.")
				continue
			}
			if draft, ok := readDraft(stdin, editing); ok {
				ctrl.Update(ctx, editing.ID, draft)
			} else {
				ctrl.CancelForm()
			}
		case "d":
			if len(fields) < 2 {
				fmt.Println("usage: d <id>")
				continue
			}
			ctrl.Remove(ctx, fields[1])
		case "l":
			guard.Logout(ctx)
		case "q":
			return true
		default:
			fmt.Println("commands: r refresh, a add, e <id> edit, d <id> delete, l logout, q quit")
		}
	}
}

func renderDashboard(guard *session.Guard, ctrl *dashboard.Controller) string {
	var b strings.Builder

	snap := guard.Current()
	if snap.Identity != nil {
		fmt.Fprintf(&b, "\nWelcome, %s\n", snap.Identity.Email)
	}
	if msg := ctrl.Error(); msg != "" {
		fmt.Fprintf(&b, "! %s\n", msg)
	}

	users := ctrl.Users()
	if len(users) == 0 {
		b.WriteString(dashboard.EmptyState + "\n")
	} else {
		for _, u := range users {
			fmt.Fprintf(&b, "%s  %s <%s>\n", u.ID, u.Name, u.Email)
		}
	}
	b.WriteString("commands: r refresh, a add, e <id> edit, d <id> delete, l logout, q quit")
	return b.String()
}

// readDraft collects a {name, email} pair; empty input keeps the current
// value when editing. Returns ok=false when both fields end up empty.
func readDraft(stdin *bufio.Reader, current *domain.User) (domain.UserDraft, bool) {
	draft := domain.UserDraft{}
	if current != nil {
		draft.Name = current.Name
		draft.Email = current.Email
	}

	if name := prompt(stdin, "Name: "); name != "" {
		draft.Name = name
	}
	if email := prompt(stdin, "Email: "); email != "" {
		draft.Email = email
	}

	if draft.Name == "" || draft.Email == "" {
		fmt.Println("Name and email are required")
		return domain.UserDraft{}, false
	}
	return draft, true
}

func prompt(stdin *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptPassword reads without echo when stdin is a terminal, falling back
// to a plain line read when it is not (tests, pipes).
func promptPassword(label string, stdin *bufio.Reader) string {
	fmt.Print(label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return string(raw)
		}
	}
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}
