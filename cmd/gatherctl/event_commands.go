package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"gatherctl/internal/booking"
)

func (a *app) cmdEvents(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("events", pflag.ExitOnError)
	page := fs.Int("page", 0, "page number")
	fs.Parse(args)

	events, err := a.events.List(ctx, *page, a.cfg.PageSize)
	if err != nil {
		return a.fail(err)
	}

	// Event browsing is public; the booked markers only exist with a session.
	if a.store.Get().Authenticated() {
		ids := make([]int, 0, len(events.Content))
		for _, event := range events.Content {
			ids = append(ids, event.ID)
		}
		if err := a.reconciler.Reconcile(ctx, ids); err != nil {
			a.cfg.Log.Warn("Could not refresh booking state", "error", err)
		}
	}

	for _, event := range events.Content {
		marker := ""
		if a.reconciler.Snapshot(event.ID).State == booking.StateConfirmed {
			marker = "  [booked]"
		}
		fmt.Printf("%4d  %-40s  %s%s\n", event.ID, event.Name,
			event.EventDate.Format("2006-01-02 15:04"), marker)
	}
	fmt.Printf("page %d of %d (%d events)\n", events.Number+1, events.TotalPages, events.TotalElements)
	return 0
}

func (a *app) cmdEvent(ctx context.Context, args []string) int {
	eventID, ok := intArg(args, "gatherctl event <id>")
	if !ok {
		return 2
	}

	event, err := a.events.Get(ctx, eventID)
	if err != nil {
		return a.fail(err)
	}

	fmt.Printf("%s\n", event.Name)
	fmt.Printf("  when:     %s\n", event.EventDate.Format("2006-01-02 15:04"))
	fmt.Printf("  venue:    %s\n", event.Venue)
	fmt.Printf("  price:    %.2f\n", event.Price)
	if event.Description != "" {
		fmt.Printf("  about:    %s\n", event.Description)
	}

	if a.store.Get().Authenticated() {
		if err := a.reconciler.Reconcile(ctx, []int{eventID}); err != nil {
			a.cfg.Log.Warn("Could not refresh booking state", "error", err)
		}
		fmt.Printf("  status:   %s\n", a.reconciler.Snapshot(eventID).State)
	}
	return 0
}

func intArg(args []string, usage string) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: "+usage)
		return 0, false
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 {
		fmt.Fprintf(os.Stderr, "invalid id %q\n", args[0])
		return 0, false
	}
	return id, true
}
