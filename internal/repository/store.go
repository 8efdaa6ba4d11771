package repository

import (
	"context"
	"time"

	"github.com/iliyamo/room-booking/internal/model"
)

// BookingTx is the view of the booking store available inside an admission
// transaction.  Both calls run against the same transaction so the overlap
// check and the insert are observed atomically by concurrent admissions on
// the same room.
type BookingTx interface {
	// HasOverlap reports whether any booking on roomID with one of the
	// given statuses intersects [checkIn, checkOut).
	HasOverlap(ctx context.Context, roomID uint64, checkIn, checkOut time.Time, statuses []model.Status) (bool, error)
	// Insert persists b and populates its ID.
	Insert(ctx context.Context, b *model.Booking) error
}

// TxFunc is the unit of work executed by WithinRoomTx.
type TxFunc func(ctx context.Context, tx BookingTx) error
