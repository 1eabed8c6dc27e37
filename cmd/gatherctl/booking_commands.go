package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"gatherctl/internal/booking"
	"gatherctl/internal/gate"
)

func (a *app) cmdBook(ctx context.Context, args []string) int {
	eventID, ok := intArg(args, "gatherctl book <event-id>")
	if !ok {
		return 2
	}
	if !a.admit("/bookings", false) {
		return 1
	}

	// Fetch current state first so booking an already-booked event reads as
	// the no-op it is instead of a remote round trip.
	if err := a.reconciler.Reconcile(ctx, []int{eventID}); err != nil {
		return a.fail(err)
	}

	record, err := a.reconciler.Book(ctx, eventID)
	if err != nil {
		return a.fail(err)
	}

	switch record.State {
	case booking.StateConfirmed:
		fmt.Printf("Booked event %d (booking %d)\n", eventID, record.BookingID)
	case booking.StatePendingBook:
		fmt.Printf("Booking for event %d accepted but not yet confirmed; it will show up under `gatherctl bookings` shortly\n", eventID)
	default:
		fmt.Printf("Event %d is %s\n", eventID, record.State)
	}
	return 0
}

func (a *app) cmdCancel(ctx context.Context, args []string) int {
	eventID, ok := intArg(args, "gatherctl cancel <event-id>")
	if !ok {
		return 2
	}
	if !a.admit("/bookings", false) {
		return 1
	}

	if err := a.reconciler.Reconcile(ctx, []int{eventID}); err != nil {
		return a.fail(err)
	}
	if a.reconciler.Snapshot(eventID).State != booking.StateConfirmed {
		fmt.Printf("Event %d is not booked\n", eventID)
		return 0
	}

	record, err := a.reconciler.Cancel(ctx, eventID)
	if err != nil {
		return a.fail(err)
	}
	if record.State == booking.StateUnbooked {
		fmt.Printf("Cancelled booking for event %d\n", eventID)
	}
	return 0
}

func (a *app) cmdBookings(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("bookings", pflag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	fs.Parse(args)

	if !a.admit("/bookings", false) {
		return 1
	}

	bookings, err := a.bookings.List(ctx, *page, a.cfg.PageSize)
	if err != nil {
		return a.fail(err)
	}

	if len(bookings.Content) == 0 {
		fmt.Println("No bookings yet")
		return 0
	}
	for _, b := range bookings.Content {
		fmt.Printf("%4d  %-40s  %s  (booked %s)\n", b.EventID, b.EventName,
			b.EventDate.Format("2006-01-02 15:04"), b.BookedAt.Format("2006-01-02"))
	}
	return 0
}

// cmdWatch keeps a protected view mounted and re-runs the admission check on
// every session change, the long-running analog of a tab reacting to another
// tab's login or logout.
func (a *app) cmdWatch() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	unsubscribe := a.bus.Subscribe(func() {
		sess := a.store.Get()
		if decision := a.gate.Decide("/bookings", false); decision.Action == gate.Redirect {
			fmt.Println("session ended, view would redirect to", decision.Target)
			return
		}
		fmt.Printf("session changed: %s (%s)\n", sess.DisplayName, sess.Role())
	})
	defer unsubscribe()

	fmt.Println("watching session state, Ctrl-C to stop")
	if err := a.store.Watch(ctx); err != nil && ctx.Err() == nil {
		return a.fail(err)
	}
	return 0
}
