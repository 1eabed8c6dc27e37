// Package gate decides whether a protected view may render for the current
// session. The decision is pure and cheap; callers re-run it on every
// navigation and on every session-bus notification so that an expiring
// session evicts the view instead of leaving a stale render.
package gate

import "gatherctl/internal/session"

const (
	LoginPath   = "/login"
	DefaultPath = "/"

	AdminRequiredReason = "Admin access required"
)

type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Allow {
		return "ALLOW"
	}
	return "REDIRECT"
}

// Decision is the outcome of one admission check. For redirects to login,
// From carries the originally requested path so a later login can return
// there; for role rejections, Reason carries the user-facing explanation.
type Decision struct {
	Action Action
	Target string
	From   string
	Reason string
}

// Evaluate runs the admission rules against a session snapshot.
func Evaluate(sess session.Session, targetPath string, requiresAdmin bool) Decision {
	if !sess.Authenticated() {
		return Decision{Action: Redirect, Target: LoginPath, From: targetPath}
	}
	if requiresAdmin && sess.Role() != session.RoleAdmin {
		return Decision{Action: Redirect, Target: DefaultPath, Reason: AdminRequiredReason}
	}
	return Decision{Action: Allow}
}

// Gate binds the rules to a session store so each decision consults the
// freshest locally available snapshot.
type Gate struct {
	sessions *session.Store
}

func New(sessions *session.Store) *Gate {
	return &Gate{sessions: sessions}
}

func (g *Gate) Decide(targetPath string, requiresAdmin bool) Decision {
	return Evaluate(g.sessions.Get(), targetPath, requiresAdmin)
}
