// Package repository defines the persistence layer of the booking service
// and the error values shared by its stores.  These sentinel values allow
// the service layer to distinguish failure scenarios without inspecting
// driver-specific errors: drivers' errors are translated at the boundary
// by the active Dialect.
package repository

import "errors"

// ErrNotFound is returned when a booking with the requested ID does not
// exist.  Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("booking not found")

// ErrRoomNotFound is returned by catalog lookups for unknown room IDs.
var ErrRoomNotFound = errors.New("room not found")

// ErrOverlap is returned when the store itself rejects an insert because
// an active booking already covers part of the requested dates (the
// PostgreSQL exclusion constraint).  The service reports it as the room
// being unavailable.
var ErrOverlap = errors.New("overlapping active booking")

// ErrSerialization signals that the database aborted the admission
// transaction because a concurrent admission won (deadlock or
// serialization failure).  Retrying the whole admission is safe.
var ErrSerialization = errors.New("transaction serialization failure")
