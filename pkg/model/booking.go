package model

// Booking is one entry of the user's authoritative booking collection as
// reported by the remote service.
type Booking struct {
	BookingID int       `json:"bookingId"`
	EventID   int       `json:"eventId"`
	EventName string    `json:"eventName"`
	EventDate Timestamp `json:"eventDate"`
	BookedAt  Timestamp `json:"bookedAt"`
}
