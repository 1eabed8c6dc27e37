package main

import (
	"fmt"
	"os"

	"gatherctl/pkg/config"
)

const usage = `gatherctl - EpicGather booking client

Usage:
  gatherctl <command> [flags]

Commands:
  login       Authenticate and store the session
  logout      Clear the stored session
  register    Create a new account
  activate    Activate an account with an emailed code
  forgot-password  Request a password reset email
  reset-password   Set a new password with an emailed token
  refresh     Trade the refresh token for a fresh session
  whoami      Show the current session
  events      Browse upcoming events
  event       Show one event with its booking state
  book        Book an event
  cancel      Cancel a booking for an event
  bookings    List your bookings
  profile     Show or edit your profile
  passwd      Change your password
  watch       Follow session changes from other processes
  admin       Event, tag and user management (admin only)
`

func main() {
	cfg := config.Load("gatherctl")
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	a, err := newApp(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to start", "error", err)
	}

	os.Exit(a.run(os.Args[1], os.Args[2:]))
}
