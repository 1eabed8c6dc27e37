package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"gatherctl/pkg/api"
	"gatherctl/pkg/sanitizer"
)

const adminUsage = `usage: gatherctl admin <subcommand>

  event-create   Create an event
  event-update   Update an event
  event-delete   Delete an event (checks for live bookings first)
  event-photo    Upload an event picture
  users          Search accounts
  promote        Grant or revoke the admin role
  tags           List tags
  tag-create     Create a tag
`

func (a *app) cmdAdmin(ctx context.Context, args []string) int {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, adminUsage)
		return 2
	}
	if !a.admit("/admin", true) {
		return 1
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "event-create":
		return a.cmdAdminEventCreate(ctx, rest, 0)
	case "event-update":
		eventID, ok := intArg(rest[:min(1, len(rest))], "gatherctl admin event-update <id> [flags]")
		if !ok {
			return 2
		}
		return a.cmdAdminEventCreate(ctx, rest[1:], eventID)
	case "event-delete":
		return a.cmdAdminEventDelete(ctx, rest)
	case "event-photo":
		return a.cmdAdminEventPhoto(ctx, rest)
	case "users":
		return a.cmdAdminUsers(ctx, rest)
	case "promote":
		return a.cmdAdminPromote(ctx, rest)
	case "tags":
		return a.cmdAdminTags(ctx)
	case "tag-create":
		return a.cmdAdminTagCreate(ctx, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown admin subcommand %q\n\n%s", sub, adminUsage)
		return 2
	}
}

func (a *app) cmdAdminEventCreate(ctx context.Context, args []string, eventID int) int {
	fs := pflag.NewFlagSet("admin event", pflag.ExitOnError)
	name := fs.String("name", "", "event name")
	description := fs.String("description", "", "event description")
	date := fs.String("date", "", "event date, e.g. 2026-09-18T19:00:00")
	price := fs.Float64("price", 0, "ticket price")
	venue := fs.String("venue", "", "venue")
	category := fs.String("category", "", "category")
	capacity := fs.Int("capacity", 0, "maximum attendees")
	tags := fs.String("tags", "", "comma separated tag names")
	fs.Parse(args)

	req := api.EventRequest{
		Name:        *name,
		Description: *description,
		EventDate:   *date,
		Price:       *price,
		Venue:       *venue,
		Category:    *category,
		Capacity:    *capacity,
	}
	if *tags != "" {
		req.Tags = sanitizer.NormalizeTags(strings.Split(*tags, ","))
	}

	var err error
	var created = "Created"
	if eventID == 0 {
		_, err = a.admin.CreateEvent(ctx, req)
	} else {
		_, err = a.admin.UpdateEvent(ctx, eventID, req)
		created = "Updated"
	}
	if err != nil {
		return a.fail(err)
	}
	fmt.Printf("%s event %q\n", created, req.Name)
	return 0
}

func (a *app) cmdAdminEventDelete(ctx context.Context, args []string) int {
	eventID, ok := intArg(args, "gatherctl admin event-delete <id>")
	if !ok {
		return 2
	}

	canDelete, err := a.admin.CanDeleteEvent(ctx, eventID)
	if err != nil {
		return a.fail(err)
	}
	if !canDelete {
		fmt.Fprintf(os.Stderr, "Event %d still has bookings and cannot be deleted\n", eventID)
		return 1
	}

	if err := a.admin.DeleteEvent(ctx, eventID); err != nil {
		return a.fail(err)
	}
	fmt.Printf("Deleted event %d\n", eventID)
	return 0
}

func (a *app) cmdAdminEventPhoto(ctx context.Context, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: gatherctl admin event-photo <id> <file>")
		return 2
	}
	eventID, ok := intArg(args[:1], "gatherctl admin event-photo <id> <file>")
	if !ok {
		return 2
	}

	file, err := os.Open(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot read %s: %v\n", args[1], err)
		return 1
	}
	defer file.Close()

	if err := a.admin.UploadEventPhoto(ctx, eventID, filepath.Base(args[1]), file); err != nil {
		return a.fail(err)
	}
	fmt.Printf("Photo uploaded for event %d\n", eventID)
	return 0
}

func (a *app) cmdAdminUsers(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("admin users", pflag.ExitOnError)
	query := fs.String("query", "", "name or email to search for")
	page := fs.Int("page", 0, "page number")
	fs.Parse(args)

	users, err := a.admin.SearchUsers(ctx, *query, *page, a.cfg.PageSize)
	if err != nil {
		return a.fail(err)
	}

	for _, user := range users.Content {
		role := ""
		if user.IsAdmin {
			role = "  admin"
		}
		fmt.Printf("%4d  %-30s  %s%s\n", user.ID, user.FullName, user.Email, role)
	}
	return 0
}

func (a *app) cmdAdminPromote(ctx context.Context, args []string) int {
	fs := pflag.NewFlagSet("admin promote", pflag.ExitOnError)
	demote := fs.Bool("demote", false, "revoke the admin role instead")
	fs.Parse(args)

	userID, ok := intArg(fs.Args(), "gatherctl admin promote [--demote] <user-id>")
	if !ok {
		return 2
	}

	if err := a.admin.SetUserRole(ctx, userID, !*demote); err != nil {
		return a.fail(err)
	}
	fmt.Printf("Updated role for user %d\n", userID)
	return 0
}

func (a *app) cmdAdminTags(ctx context.Context) int {
	tags, err := a.admin.ListTags(ctx)
	if err != nil {
		return a.fail(err)
	}
	for _, tag := range tags {
		fmt.Printf("%4d  %s\n", tag.ID, tag.Name)
	}
	return 0
}

func (a *app) cmdAdminTagCreate(ctx context.Context, args []string) int {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintln(os.Stderr, "usage: gatherctl admin tag-create <name>")
		return 2
	}
	tag, err := a.admin.CreateTag(ctx, args[0])
	if err != nil {
		return a.fail(err)
	}
	fmt.Printf("Created tag %d %q\n", tag.ID, tag.Name)
	return 0
}
