package model

// Room is the read-only view of a bookable room as resolved from the room
// catalog.  The booking service never mutates rooms; it only reads the
// capacity and nightly price when admitting a stay.
//
// Fields:
//  ID        – catalog identifier of the room.
//  Name      – display name, used in logs and events only.
//  MaxGuests – maximum number of guests allowed in one booking.
//  Price     – nightly price with two fraction digits.
type Room struct {
	ID        uint64 // rooms.id
	Name      string // rooms.name
	MaxGuests int    // rooms.max_guests
	Price     Money  // rooms.price (DECIMAL(10,2))
}
