package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "gatherctl/pkg/errors"
	"gatherctl/pkg/model"
)

type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL string, timeout time.Duration, tokens TokenSource) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseURL, timeout, tokens),
	}
}

func (c *BookingClient) List(ctx context.Context, page, size int) (*model.Page[model.Booking], error) {
	path := fmt.Sprintf("/bookings?page=%d&size=%d", page, size)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var bookings model.Page[model.Booking]
	if err := resp.DecodeJSON(&bookings); err != nil {
		return nil, decodeError("booking list", err)
	}
	return &bookings, nil
}

// ListAll walks every page of the booking collection. The reconciler needs
// the full set to decide UNBOOKED, not just the first page.
func (c *BookingClient) ListAll(ctx context.Context) ([]model.Booking, error) {
	const pageSize = 50

	var all []model.Booking
	for page := 0; ; page++ {
		chunk, err := c.List(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, chunk.Content...)
		if chunk.Last || len(chunk.Content) == 0 {
			return all, nil
		}
	}
}

// Book reserves a spot on an event. On success the service answers 201
// Created with the booking id embedded in the Location header; a zero id
// with a nil error means the booking was accepted but the id was not
// reported, and the caller has to recover it from the booking collection.
//
// 400 and 409 both mean the business said no (already booked, event full or
// passed) and map to BOOKING_CONFLICT, distinguishable from plain failures.
func (c *BookingClient) Book(ctx context.Context, eventID int) (int, error) {
	resp, err := c.httpClient.POST(ctx, fmt.Sprintf("/bookings/%d/book", eventID), nil)
	if err != nil {
		return 0, err
	}

	switch resp.StatusCode {
	case http.StatusCreated:
		return bookingIDFromLocation(resp.Header.Get("Location")), nil
	case http.StatusBadRequest, http.StatusConflict:
		return 0, apperrors.BookingConflict(remoteMessage(resp)).WithStatus(resp.StatusCode)
	case http.StatusUnauthorized:
		return 0, apperrors.AuthExpired().WithStatus(resp.StatusCode)
	default:
		return 0, apperrors.OperationFailed(remoteMessage(resp), nil).WithStatus(resp.StatusCode)
	}
}

// Cancel releases a confirmed booking. 204 is the only success outcome.
func (c *BookingClient) Cancel(ctx context.Context, bookingID int) error {
	resp, err := c.httpClient.DELETE(ctx, fmt.Sprintf("/bookings/%d", bookingID))
	if err != nil {
		return err
	}

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusUnauthorized:
		return apperrors.AuthExpired().WithStatus(resp.StatusCode)
	case http.StatusNotFound:
		return apperrors.NotFound("Booking").WithStatus(resp.StatusCode)
	default:
		return apperrors.OperationFailed(remoteMessage(resp), nil).WithStatus(resp.StatusCode)
	}
}

// bookingIDFromLocation parses the id out of the Location header, shaped like
// "api/v1/event/{bookingId}/booked". Returns zero when the header is missing
// or has drifted from that shape.
func bookingIDFromLocation(location string) int {
	if location == "" {
		return 0
	}
	parts := strings.Split(strings.Trim(location, "/"), "/")
	for i, part := range parts {
		if part == "event" && i+1 < len(parts) {
			id, err := strconv.Atoi(parts[i+1])
			if err != nil {
				return 0
			}
			return id
		}
	}
	return 0
}
