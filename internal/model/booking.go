package model

import (
	"time"

	"gorm.io/datatypes"
)

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ActiveStatuses lists the statuses that hold a room.  Only bookings in one
// of these states block other stays on the same dates.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// ParseStatus converts raw client input into a Status.  Matching is exact
// (lower case) to mirror the values stored in the bookings table.
func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, true
	}
	return "", false
}

// Active reports whether the status blocks the booked dates.
func (s Status) Active() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// Booking records a stay in a room between CheckIn (inclusive) and
// CheckOut (exclusive).
//
// Fields:
//  ID         – primary key identifier, assigned on insert.
//  RoomID     – catalog room being booked.
//  UserID     – owner of the booking; nil for guest bookings.
//  CheckIn    – first night of the stay (date at midnight UTC).
//  CheckOut   – departure date, strictly after CheckIn.
//  Guests     – number of guests, between 1 and the room's MaxGuests.
//  TotalPrice – nightly price × nights, fixed at creation.
//  Status     – pending, confirmed, cancelled or completed.
//  GuestInfo  – free-form contact data supplied by the client.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Booking struct {
	ID         uint64         // bookings.id
	RoomID     uint64         // bookings.room_id
	UserID     *uint64        // bookings.user_id (nullable)
	CheckIn    time.Time      // bookings.check_in
	CheckOut   time.Time      // bookings.check_out
	Guests     int            // bookings.guests
	TotalPrice Money          // bookings.total_price
	Status     Status         // bookings.status
	GuestInfo  datatypes.JSON // bookings.guest_info
	CreatedAt  time.Time      // bookings.created_at
	UpdatedAt  time.Time      // bookings.updated_at
}

// Nights returns the number of nights covered by the booking.
func (b Booking) Nights() int { return Nights(b.CheckIn, b.CheckOut) }

// OwnedBy reports whether the booking belongs to the given user.
func (b Booking) OwnedBy(userID uint64) bool {
	return b.UserID != nil && *b.UserID == userID
}
