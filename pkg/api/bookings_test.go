package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "gatherctl/pkg/errors"
	"gatherctl/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newTestBookingClient(t *testing.T, handler http.Handler) *BookingClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewBookingClient(server.URL, 5*time.Second, staticToken("test-token"))
}

func TestBook_ParsesBookingIDFromLocation(t *testing.T) {
	client := newTestBookingClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/bookings/42/book", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Location", "api/v1/event/7/booked")
		w.WriteHeader(http.StatusCreated)
	}))

	bookingID, err := client.Book(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, 7, bookingID)
}

func TestBook_MissingLocationReportsZeroID(t *testing.T) {
	client := newTestBookingClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	bookingID, err := client.Book(context.Background(), 42)

	require.NoError(t, err)
	assert.Zero(t, bookingID)
}

func TestBook_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{"already booked maps to conflict", http.StatusBadRequest,
			`{"message":"Event is already booked"}`, apperrors.CodeBookingConflict},
		{"capacity conflict maps to conflict", http.StatusConflict,
			`{"message":"Event is full"}`, apperrors.CodeBookingConflict},
		{"unauthorized maps to auth expired", http.StatusUnauthorized, "", apperrors.CodeAuthExpired},
		{"server error maps to generic failure", http.StatusInternalServerError, "", apperrors.CodeOperationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestBookingClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))

			_, err := client.Book(context.Background(), 42)

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
		})
	}
}

func TestBook_ConflictCarriesRemoteMessage(t *testing.T) {
	client := newTestBookingClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"Event is already booked"}`)
	}))

	_, err := client.Book(context.Background(), 42)

	require.Error(t, err)
	assert.Equal(t, "Event is already booked", apperrors.UserMessage(err))
}

func TestCancel_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"no content succeeds", http.StatusNoContent, ""},
		{"unauthorized maps to auth expired", http.StatusUnauthorized, apperrors.CodeAuthExpired},
		{"not found maps to not found", http.StatusNotFound, apperrors.CodeNotFound},
		{"event passed maps to generic failure", http.StatusBadRequest, apperrors.CodeOperationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestBookingClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/bookings/9", r.URL.Path)
				w.WriteHeader(tt.status)
			}))

			err := client.Cancel(context.Background(), 9)

			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, apperrors.CodeOf(err))
			}
		})
	}
}

func TestListAll_WalksEveryPage(t *testing.T) {
	pages := []model.Page[model.Booking]{
		{Content: []model.Booking{{BookingID: 1, EventID: 10}, {BookingID: 2, EventID: 20}}, Last: false},
		{Content: []model.Booking{{BookingID: 3, EventID: 30}}, Last: true},
	}

	client := newTestBookingClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := 0
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)
		require.Less(t, page, len(pages))
		json.NewEncoder(w).Encode(pages[page])
	}))

	all, err := client.ListAll(context.Background())

	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 30, all[2].EventID)
}

func TestBookingIDFromLocation(t *testing.T) {
	tests := []struct {
		location string
		want     int
	}{
		{"api/v1/event/7/booked", 7},
		{"/api/v1/event/123/booked", 123},
		{"", 0},
		{"api/v1/event/not-a-number/booked", 0},
		{"api/v1/bookings/7", 0},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			assert.Equal(t, tt.want, bookingIDFromLocation(tt.location))
		})
	}
}
