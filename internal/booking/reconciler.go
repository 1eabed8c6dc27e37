// Package booking maintains the per-event booking state machine: optimistic
// transitions applied the moment the user acts, reconciled against the
// remote booking collection which stays the source of truth.
package booking

import (
	"context"
	"sync"
	"time"

	"gatherctl/internal/session"
	apperrors "gatherctl/pkg/errors"
	"gatherctl/pkg/logger"
	"gatherctl/pkg/model"
)

type State int

const (
	StateUnbooked State = iota
	StatePendingBook
	StateConfirmed
	StatePendingCancel
)

func (s State) String() string {
	switch s {
	case StatePendingBook:
		return "PENDING_BOOK"
	case StateConfirmed:
		return "CONFIRMED"
	case StatePendingCancel:
		return "PENDING_CANCEL"
	default:
		return "UNBOOKED"
	}
}

// Record is the externally visible booking state of one event. BookingID and
// BookedAt are only meaningful while State is CONFIRMED or PENDING_CANCEL.
type Record struct {
	EventID   int
	BookingID int
	BookedAt  time.Time
	State     State
}

// Service is the remote booking collaborator, satisfied by api.BookingClient.
type Service interface {
	ListAll(ctx context.Context) ([]model.Booking, error)
	Book(ctx context.Context, eventID int) (int, error)
	Cancel(ctx context.Context, bookingID int) error
}

// Sessions provides the current session snapshot, satisfied by session.Store.
type Sessions interface {
	Get() session.Session
}

// Reconciler guards every transition with one mutex; remote calls happen
// outside the lock, with the inflight flag keeping a second operation on the
// same event from reaching the service while the first is unresolved.
type Reconciler struct {
	mu      sync.Mutex
	records map[int]*record

	svc      Service
	sessions Sessions
	log      *logger.Logger
}

type record struct {
	Record
	inflight bool
}

func New(svc Service, sessions Sessions, log *logger.Logger) *Reconciler {
	return &Reconciler{
		records:  make(map[int]*record),
		svc:      svc,
		sessions: sessions,
		log:      log,
	}
}

// Snapshot returns the current state of one event. Events never seen before
// start UNBOOKED.
func (r *Reconciler) Snapshot(eventID int) Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensureLocked(eventID).Record
}

// Book runs UNBOOKED -> PENDING_BOOK -> CONFIRMED, rolling back to UNBOOKED
// on any remote failure. Calling it while the event is in any other state is
// a no-op that returns the state as it stands, so a double submission can
// never produce two remote booking calls.
func (r *Reconciler) Book(ctx context.Context, eventID int) (Record, error) {
	if !r.sessions.Get().Authenticated() {
		return r.Snapshot(eventID), apperrors.AuthRequired()
	}

	r.mu.Lock()
	rec := r.ensureLocked(eventID)
	if rec.inflight || rec.State != StateUnbooked {
		snapshot := rec.Record
		r.mu.Unlock()
		return snapshot, nil
	}
	rec.State = StatePendingBook
	rec.inflight = true
	r.mu.Unlock()

	bookingID, err := r.svc.Book(ctx, eventID)

	r.mu.Lock()
	rec.inflight = false
	if err != nil {
		rec.State = StateUnbooked
		snapshot := rec.Record
		r.mu.Unlock()
		r.log.Warn("Booking failed", "event_id", eventID, "error", err)
		return snapshot, err
	}

	if bookingID != 0 {
		rec.State = StateConfirmed
		rec.BookingID = bookingID
		rec.BookedAt = time.Now()
		snapshot := rec.Record
		r.mu.Unlock()
		r.log.Info("Booking confirmed", "event_id", eventID, "booking_id", bookingID)
		return snapshot, nil
	}
	r.mu.Unlock()

	// Accepted, but the service did not report the booking id. One follow-up
	// pass against the collection recovers it; until then the event stays
	// PENDING_BOOK rather than being assumed confirmed.
	return r.recoverBookingID(ctx, eventID)
}

func (r *Reconciler) recoverBookingID(ctx context.Context, eventID int) (Record, error) {
	bookings, err := r.svc.ListAll(ctx)
	if err != nil {
		r.log.Warn("Could not recover booking id, staying pending",
			"event_id", eventID, "error", err)
		return r.Snapshot(eventID), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.ensureLocked(eventID)
	for _, b := range bookings {
		if b.EventID == eventID {
			rec.State = StateConfirmed
			rec.BookingID = b.BookingID
			rec.BookedAt = b.BookedAt.Time
			return rec.Record, nil
		}
	}

	r.log.Warn("Booking accepted but not yet listed, staying pending", "event_id", eventID)
	return rec.Record, nil
}

// Cancel runs CONFIRMED -> PENDING_CANCEL -> UNBOOKED, rolling back to
// CONFIRMED with the booking id intact when the remote call fails. No-op in
// any state but CONFIRMED, with the same double-submission guard as Book.
func (r *Reconciler) Cancel(ctx context.Context, eventID int) (Record, error) {
	if !r.sessions.Get().Authenticated() {
		return r.Snapshot(eventID), apperrors.AuthRequired()
	}

	r.mu.Lock()
	rec := r.ensureLocked(eventID)
	if rec.inflight || rec.State != StateConfirmed {
		snapshot := rec.Record
		r.mu.Unlock()
		return snapshot, nil
	}
	rec.State = StatePendingCancel
	rec.inflight = true
	bookingID := rec.BookingID
	r.mu.Unlock()

	err := r.svc.Cancel(ctx, bookingID)

	r.mu.Lock()
	rec.inflight = false
	if err != nil {
		rec.State = StateConfirmed
		snapshot := rec.Record
		r.mu.Unlock()
		r.log.Warn("Cancellation failed, keeping booking", "event_id", eventID, "error", err)
		return snapshot, err
	}
	rec.State = StateUnbooked
	rec.BookingID = 0
	rec.BookedAt = time.Time{}
	snapshot := rec.Record
	r.mu.Unlock()
	r.log.Info("Booking cancelled", "event_id", eventID, "booking_id", bookingID)
	return snapshot, nil
}

// Reconcile refreshes the given events against the authoritative booking
// collection: CONFIRMED for every event listed, UNBOOKED for every event
// absent. Events with a remote call in flight are left alone; the terminal
// transition of that call wins, not this refresh. A PENDING_BOOK event with
// no call in flight (its id recovery came up empty earlier) is promoted when
// the collection now lists it, and stays pending otherwise.
func (r *Reconciler) Reconcile(ctx context.Context, eventIDs []int) error {
	if !r.sessions.Get().Authenticated() {
		return apperrors.AuthRequired()
	}

	bookings, err := r.svc.ListAll(ctx)
	if err != nil {
		return err
	}

	byEvent := make(map[int]model.Booking, len(bookings))
	for _, b := range bookings {
		byEvent[b.EventID] = b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, eventID := range eventIDs {
		rec := r.ensureLocked(eventID)
		if rec.inflight {
			continue
		}

		b, listed := byEvent[eventID]
		switch {
		case rec.State == StatePendingBook:
			if listed {
				rec.State = StateConfirmed
				rec.BookingID = b.BookingID
				rec.BookedAt = b.BookedAt.Time
			}
		case rec.State == StatePendingCancel:
			// Unreachable without an in-flight call, but never clobber it.
		case listed:
			rec.State = StateConfirmed
			rec.BookingID = b.BookingID
			rec.BookedAt = b.BookedAt.Time
		default:
			rec.State = StateUnbooked
			rec.BookingID = 0
			rec.BookedAt = time.Time{}
		}
	}
	return nil
}

func (r *Reconciler) ensureLocked(eventID int) *record {
	rec, ok := r.records[eventID]
	if !ok {
		rec = &record{Record: Record{EventID: eventID, State: StateUnbooked}}
		r.records[eventID] = rec
	}
	return rec
}
