package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gatherctl/internal/booking"
	"gatherctl/internal/forms"
	"gatherctl/internal/gate"
	"gatherctl/internal/session"
	"gatherctl/pkg/api"
	"gatherctl/pkg/config"
	apperrors "gatherctl/pkg/errors"
)

type app struct {
	cfg *config.Config

	store *session.Store
	bus   *session.Bus
	gate  *gate.Gate

	auth     *api.AuthClient
	events   *api.EventClient
	bookings *api.BookingClient
	profile  *api.ProfileClient
	admin    *api.AdminClient

	reconciler *booking.Reconciler
	forms      *forms.Validator
}

func newApp(cfg *config.Config) (*app, error) {
	bus := session.NewBus()
	store, err := session.NewStore(cfg.StateDir, bus, cfg.Log)
	if err != nil {
		return nil, err
	}

	bookings := api.NewBookingClient(cfg.APIBaseURL, cfg.HTTPTimeout, store)

	return &app{
		cfg:        cfg,
		store:      store,
		bus:        bus,
		gate:       gate.New(store),
		auth:       api.NewAuthClient(cfg.APIBaseURL, cfg.HTTPTimeout),
		events:     api.NewEventClient(cfg.APIBaseURL, cfg.HTTPTimeout, store),
		bookings:   bookings,
		profile:    api.NewProfileClient(cfg.APIBaseURL, cfg.HTTPTimeout, store),
		admin:      api.NewAdminClient(cfg.APIBaseURL, cfg.HTTPTimeout, store),
		reconciler: booking.New(bookings, store, cfg.Log),
		forms:      forms.NewValidator(),
	}, nil
}

func (a *app) run(command string, args []string) int {
	ctx := context.Background()

	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.cmdLogout()
	case "register":
		return a.cmdRegister(ctx, args)
	case "activate":
		return a.cmdActivate(ctx, args)
	case "forgot-password":
		return a.cmdForgotPassword(ctx, args)
	case "reset-password":
		return a.cmdResetPassword(ctx, args)
	case "refresh":
		return a.cmdRefresh(ctx)
	case "whoami":
		return a.cmdWhoami()
	case "events":
		return a.cmdEvents(ctx, args)
	case "event":
		return a.cmdEvent(ctx, args)
	case "book":
		return a.cmdBook(ctx, args)
	case "cancel":
		return a.cmdCancel(ctx, args)
	case "bookings":
		return a.cmdBookings(ctx, args)
	case "profile":
		return a.cmdProfile(ctx, args)
	case "passwd":
		return a.cmdPasswd(ctx, args)
	case "watch":
		return a.cmdWatch()
	case "admin":
		return a.cmdAdmin(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", command, usage)
		return 2
	}
}

// admit runs the admission gate for a protected view. On redirect it renders
// the outcome the SPA would navigate to and reports false so the caller
// skips the view entirely; a standard user asking for an admin view never
// sees a flash of admin content.
func (a *app) admit(viewPath string, requiresAdmin bool) bool {
	decision := a.gate.Decide(viewPath, requiresAdmin)
	if decision.Action == gate.Allow {
		return true
	}

	switch decision.Target {
	case gate.LoginPath:
		fmt.Fprintf(os.Stderr, "You need to log in first (run `gatherctl login`), then retry %s\n", decision.From)
	default:
		fmt.Fprintln(os.Stderr, decision.Reason)
	}
	return false
}

// fail renders a remote error. An authentication failure clears the session
// the way the browser client drops its stored token on a 401, so the next
// command starts anonymous.
func (a *app) fail(err error) int {
	if apperrors.IsAuthExpired(err) {
		if clearErr := a.store.Clear(); clearErr != nil {
			a.cfg.Log.Warn("Failed to clear session", "error", clearErr)
		}
	}

	fmt.Fprintln(os.Stderr, apperrors.UserMessage(err))

	var appErr *apperrors.AppError
	if apperrors.IsValidation(err) && errors.As(err, &appErr) {
		for field, message := range appErr.Details {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", field, message)
		}
	}
	return 1
}
