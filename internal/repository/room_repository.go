package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/room-booking/internal/model"
)

// RoomRepo resolves rooms from the catalog's rooms table.  The booking
// service only reads the capacity and nightly price; room CRUD belongs to
// the catalog.
type RoomRepo struct {
	db      *sql.DB
	dialect Dialect
}

// NewRoomRepo returns a RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB, d Dialect) *RoomRepo { return &RoomRepo{db: db, dialect: d} }

// GetRoom fetches a room by id or returns ErrRoomNotFound.
func (r *RoomRepo) GetRoom(ctx context.Context, id uint64) (model.Room, error) {
	var room model.Room
	err := r.db.QueryRowContext(ctx,
		r.dialect.Rebind(`SELECT id, name, max_guests, price FROM rooms WHERE id = ?`), id,
	).Scan(&room.ID, &room.Name, &room.MaxGuests, &room.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Room{}, ErrRoomNotFound
	}
	if err != nil {
		return model.Room{}, err
	}
	return room, nil
}
