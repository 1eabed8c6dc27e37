package booking

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"gatherctl/internal/session"
	apperrors "gatherctl/pkg/errors"
	"gatherctl/pkg/logger"
	"gatherctl/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	listFn   func(ctx context.Context) ([]model.Booking, error)
	bookFn   func(ctx context.Context, eventID int) (int, error)
	cancelFn func(ctx context.Context, bookingID int) error

	bookCalls   atomic.Int32
	cancelCalls atomic.Int32
	listCalls   atomic.Int32
}

func (m *mockService) ListAll(ctx context.Context) ([]model.Booking, error) {
	m.listCalls.Add(1)
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockService) Book(ctx context.Context, eventID int) (int, error) {
	m.bookCalls.Add(1)
	if m.bookFn != nil {
		return m.bookFn(ctx, eventID)
	}
	return 0, nil
}

func (m *mockService) Cancel(ctx context.Context, bookingID int) error {
	m.cancelCalls.Add(1)
	if m.cancelFn != nil {
		return m.cancelFn(ctx, bookingID)
	}
	return nil
}

type mockSessions struct {
	sess session.Session
}

func (m *mockSessions) Get() session.Session {
	return m.sess
}

func authenticated() *mockSessions {
	return &mockSessions{sess: session.Session{Token: "token", DisplayName: "Test User"}}
}

func newReconciler(svc *mockService, sessions Sessions) *Reconciler {
	return New(svc, sessions, logger.Discard())
}

func TestBook_Success(t *testing.T) {
	svc := &mockService{
		bookFn: func(ctx context.Context, eventID int) (int, error) { return 7, nil },
	}
	r := newReconciler(svc, authenticated())

	record, err := r.Book(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, record.State)
	assert.Equal(t, 7, record.BookingID)
	assert.Equal(t, int32(1), svc.bookCalls.Load())
}

func TestBook_DoubleSubmissionMakesOneRemoteCall(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	svc := &mockService{
		bookFn: func(ctx context.Context, eventID int) (int, error) {
			close(entered)
			<-release
			return 7, nil
		},
	}
	r := newReconciler(svc, authenticated())

	firstDone := make(chan Record)
	go func() {
		record, _ := r.Book(context.Background(), 42)
		firstDone <- record
	}()
	<-entered

	// Second submission while the first is pending: no-op, no second call.
	second, err := r.Book(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, StatePendingBook, second.State)
	assert.Equal(t, int32(1), svc.bookCalls.Load())

	close(release)
	first := <-firstDone
	assert.Equal(t, StateConfirmed, first.State)
	assert.Equal(t, 7, first.BookingID)
	assert.Equal(t, int32(1), svc.bookCalls.Load())
}

func TestBook_ConflictRevertsAndIsDistinguishable(t *testing.T) {
	svc := &mockService{
		bookFn: func(ctx context.Context, eventID int) (int, error) {
			return 0, apperrors.BookingConflict("Event is already booked")
		},
	}
	r := newReconciler(svc, authenticated())

	record, err := r.Book(context.Background(), 42)

	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.NotEqual(t, apperrors.CodeOperationFailed, apperrors.CodeOf(err))
	assert.Equal(t, StateUnbooked, record.State)
}

func TestBook_GenericFailureReverts(t *testing.T) {
	svc := &mockService{
		bookFn: func(ctx context.Context, eventID int) (int, error) {
			return 0, apperrors.OperationFailed("boom", nil)
		},
	}
	r := newReconciler(svc, authenticated())

	record, err := r.Book(context.Background(), 42)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeOperationFailed, apperrors.CodeOf(err))
	assert.Equal(t, StateUnbooked, record.State)
}

func TestBook_AnonymousFailsFastWithoutRemoteCall(t *testing.T) {
	svc := &mockService{}
	r := newReconciler(svc, &mockSessions{})

	record, err := r.Book(context.Background(), 42)

	require.Error(t, err)
	assert.True(t, apperrors.IsAuthRequired(err))
	assert.Equal(t, StateUnbooked, record.State)
	assert.Equal(t, int32(0), svc.bookCalls.Load())
}

func TestBook_MissingIDRecoveredByFollowUpPass(t *testing.T) {
	bookedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &mockService{
		bookFn: func(ctx context.Context, eventID int) (int, error) { return 0, nil },
		listFn: func(ctx context.Context) ([]model.Booking, error) {
			return []model.Booking{
				{BookingID: 11, EventID: 42, BookedAt: model.Timestamp{Time: bookedAt}},
			}, nil
		},
	}
	r := newReconciler(svc, authenticated())

	record, err := r.Book(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, record.State)
	assert.Equal(t, 11, record.BookingID)
	assert.Equal(t, bookedAt, record.BookedAt)
	assert.Equal(t, int32(1), svc.listCalls.Load())
}

func TestBook_MissingIDStaysPendingWhenFollowUpComesUpEmpty(t *testing.T) {
	svc := &mockService{
		bookFn: func(ctx context.Context, eventID int) (int, error) { return 0, nil },
		listFn: func(ctx context.Context) ([]model.Booking, error) { return nil, nil },
	}
	r := newReconciler(svc, authenticated())

	record, err := r.Book(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, StatePendingBook, record.State)

	// The next reconciliation pass picks the booking up.
	svc.listFn = func(ctx context.Context) ([]model.Booking, error) {
		return []model.Booking{{BookingID: 11, EventID: 42}}, nil
	}
	require.NoError(t, r.Reconcile(context.Background(), []int{42}))
	record = r.Snapshot(42)
	assert.Equal(t, StateConfirmed, record.State)
	assert.Equal(t, 11, record.BookingID)
}

func confirmEvent(t *testing.T, r *Reconciler, eventID, bookingID int) {
	t.Helper()
	require.NoError(t, r.Reconcile(context.Background(), []int{eventID}))
	require.Equal(t, StateConfirmed, r.Snapshot(eventID).State)
	require.Equal(t, bookingID, r.Snapshot(eventID).BookingID)
}

func TestCancel_Success(t *testing.T) {
	svc := &mockService{
		listFn: func(ctx context.Context) ([]model.Booking, error) {
			return []model.Booking{{BookingID: 9, EventID: 42}}, nil
		},
	}
	r := newReconciler(svc, authenticated())
	confirmEvent(t, r, 42, 9)

	record, err := r.Cancel(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, StateUnbooked, record.State)
	assert.Zero(t, record.BookingID)
	assert.Equal(t, int32(1), svc.cancelCalls.Load())
}

func TestCancel_FailureRollsBackToConfirmed(t *testing.T) {
	svc := &mockService{
		listFn: func(ctx context.Context) ([]model.Booking, error) {
			return []model.Booking{{BookingID: 9, EventID: 42}}, nil
		},
		cancelFn: func(ctx context.Context, bookingID int) error {
			return apperrors.OperationFailed("server error", nil)
		},
	}
	r := newReconciler(svc, authenticated())
	confirmEvent(t, r, 42, 9)

	record, err := r.Cancel(context.Background(), 42)

	require.Error(t, err)
	assert.Equal(t, apperrors.CodeOperationFailed, apperrors.CodeOf(err))
	assert.Equal(t, StateConfirmed, record.State)
	assert.Equal(t, 9, record.BookingID, "bookingId must survive the rollback")
}

func TestCancel_UnbookedIsNoOp(t *testing.T) {
	svc := &mockService{}
	r := newReconciler(svc, authenticated())

	record, err := r.Cancel(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, StateUnbooked, record.State)
	assert.Equal(t, int32(0), svc.cancelCalls.Load())
}

func TestCancel_AnonymousFailsFast(t *testing.T) {
	svc := &mockService{}
	r := newReconciler(svc, &mockSessions{})

	_, err := r.Cancel(context.Background(), 42)

	require.Error(t, err)
	assert.True(t, apperrors.IsAuthRequired(err))
	assert.Equal(t, int32(0), svc.cancelCalls.Load())
}

func TestReconcile_ConfirmsListedAndUnbooksAbsent(t *testing.T) {
	svc := &mockService{
		listFn: func(ctx context.Context) ([]model.Booking, error) {
			return []model.Booking{{BookingID: 5, EventID: 1}}, nil
		},
	}
	r := newReconciler(svc, authenticated())

	require.NoError(t, r.Reconcile(context.Background(), []int{1, 2}))

	assert.Equal(t, StateConfirmed, r.Snapshot(1).State)
	assert.Equal(t, 5, r.Snapshot(1).BookingID)
	assert.Equal(t, StateUnbooked, r.Snapshot(2).State)
}

func TestReconcile_RoundTripKeepsBookingID(t *testing.T) {
	svc := &mockService{
		bookFn: func(ctx context.Context, eventID int) (int, error) { return 7, nil },
		listFn: func(ctx context.Context) ([]model.Booking, error) {
			return []model.Booking{{BookingID: 7, EventID: 42}}, nil
		},
	}
	r := newReconciler(svc, authenticated())

	record, err := r.Book(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, 7, record.BookingID)

	require.NoError(t, r.Reconcile(context.Background(), []int{42}))

	record = r.Snapshot(42)
	assert.Equal(t, StateConfirmed, record.State)
	assert.Equal(t, 7, record.BookingID)
}

func TestReconcile_DoesNotClobberInFlightTransition(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	svc := &mockService{
		bookFn: func(ctx context.Context, eventID int) (int, error) {
			close(entered)
			<-release
			return 7, nil
		},
		listFn: func(ctx context.Context) ([]model.Booking, error) { return nil, nil },
	}
	r := newReconciler(svc, authenticated())

	done := make(chan Record)
	go func() {
		record, _ := r.Book(context.Background(), 42)
		done <- record
	}()
	<-entered

	// A background refresh while the booking call is still out must not
	// demote the event to UNBOOKED.
	require.NoError(t, r.Reconcile(context.Background(), []int{42}))
	assert.Equal(t, StatePendingBook, r.Snapshot(42).State)

	close(release)
	record := <-done
	assert.Equal(t, StateConfirmed, record.State)
}

func TestReconcile_AnonymousFailsFast(t *testing.T) {
	svc := &mockService{}
	r := newReconciler(svc, &mockSessions{})

	err := r.Reconcile(context.Background(), []int{1})

	require.Error(t, err)
	assert.True(t, apperrors.IsAuthRequired(err))
	assert.Equal(t, int32(0), svc.listCalls.Load())
}

func TestStateIsAlwaysOneOfFour(t *testing.T) {
	svc := &mockService{
		bookFn: func(ctx context.Context, eventID int) (int, error) {
			if eventID%2 == 0 {
				return eventID, nil
			}
			return 0, apperrors.OperationFailed("boom", nil)
		},
		listFn: func(ctx context.Context) ([]model.Booking, error) {
			return []model.Booking{{BookingID: 2, EventID: 2}}, nil
		},
	}
	r := newReconciler(svc, authenticated())

	ctx := context.Background()
	for _, eventID := range []int{1, 2, 3, 4} {
		r.Book(ctx, eventID)
		r.Cancel(ctx, eventID)
		r.Reconcile(ctx, []int{eventID})
		r.Book(ctx, eventID)

		state := r.Snapshot(eventID).State
		assert.Contains(t, []State{StateUnbooked, StatePendingBook, StateConfirmed, StatePendingCancel}, state)
	}
}
