// Package queue defines the booking events exchanged over RabbitMQ, the
// publisher used by the booking service and the audit consumer that
// appends them to a log file.
package queue

import (
	"time"

	"github.com/iliyamo/room-booking/internal/model"
)

// Routing keys on the bookings exchange.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking is admitted or its status
// changes.  It carries enough of the booking for consumers to log, notify
// or aggregate without querying the primary database.
type BookingEvent struct {
	Type           string  `json:"type"`
	BookingID      uint64  `json:"booking_id"`
	RoomID         uint64  `json:"room_id"`
	UserID         *uint64 `json:"user_id"`
	CheckIn        string  `json:"check_in"`
	CheckOut       string  `json:"check_out"`
	Guests         int     `json:"guests"`
	Nights         int     `json:"nights"`
	TotalPrice     string  `json:"total_price"`
	Status         string  `json:"status"`
	PreviousStatus string  `json:"previous_status,omitempty"`
	OccurredAt     string  `json:"occurred_at"`
}

// NewBookingEvent snapshots b.  prev is empty for booking.created.
func NewBookingEvent(eventType string, b model.Booking, prev model.Status, at time.Time) BookingEvent {
	return BookingEvent{
		Type:           eventType,
		BookingID:      b.ID,
		RoomID:         b.RoomID,
		UserID:         b.UserID,
		CheckIn:        b.CheckIn.Format(model.DateLayout),
		CheckOut:       b.CheckOut.Format(model.DateLayout),
		Guests:         b.Guests,
		Nights:         b.Nights(),
		TotalPrice:     b.TotalPrice.String(),
		Status:         string(b.Status),
		PreviousStatus: string(prev),
		OccurredAt:     at.UTC().Format(time.RFC3339),
	}
}
