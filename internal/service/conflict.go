package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/room-booking/internal/model"
	"github.com/iliyamo/room-booking/internal/repository"
)

// HasConflict reports whether roomID already holds an active (pending or
// confirmed) booking intersecting [checkIn, checkOut).  Stays that only
// touch, one checking out the day the other checks in, do not conflict.
// checkIn must be strictly before checkOut.
func HasConflict(ctx context.Context, tx repository.BookingTx, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	if !checkIn.Before(checkOut) {
		return false, fmt.Errorf("conflict check on room %d: %w", roomID, ErrInvalidRange)
	}
	return tx.HasOverlap(ctx, roomID, checkIn, checkOut, model.ActiveStatuses)
}

// TotalPrice is the nightly price times the number of nights.
func TotalPrice(price model.Money, checkIn, checkOut time.Time) model.Money {
	return price.Times(model.Nights(checkIn, checkOut))
}
