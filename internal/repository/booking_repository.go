package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/room-booking/internal/model"
)

// BookingRepo is the SQL-backed booking store.  Writes that must be atomic
// with the overlap check go through WithinRoomTx; the remaining methods use
// the pool directly.  All timestamps are stored in UTC.
type BookingRepo struct {
	db      *sql.DB
	dialect Dialect
}

// NewBookingRepo returns a BookingRepo bound to db, speaking dialect d.
func NewBookingRepo(db *sql.DB, d Dialect) *BookingRepo {
	return &BookingRepo{db: db, dialect: d}
}

// DB exposes the underlying pool, e.g. for health checks.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, room_id, user_id, check_in, check_out, guests, total_price, status, guest_info, created_at, updated_at`

// WithinRoomTx runs fn inside a SERIALIZABLE transaction after locking the
// room row.  Concurrent admissions for the same room therefore queue up on
// the lock instead of both passing the overlap check.  The transaction is
// committed when fn returns nil and rolled back otherwise; driver errors
// are translated into ErrOverlap / ErrSerialization where applicable.
func (r *BookingRepo) WithinRoomTx(ctx context.Context, roomID uint64, fn TxFunc) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin admission tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked uint64
	err = tx.QueryRowContext(ctx, r.dialect.Rebind(`SELECT id FROM rooms WHERE id = ? FOR UPDATE`), roomID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoomNotFound
	}
	if err != nil {
		return fmt.Errorf("lock room %d: %w", roomID, r.dialect.Translate(err))
	}

	if err := fn(ctx, &sqlBookingTx{tx: tx, dialect: r.dialect}); err != nil {
		return r.dialect.Translate(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit admission tx: %w", r.dialect.Translate(err))
	}
	committed = true
	return nil
}

// sqlBookingTx implements BookingTx on top of an open *sql.Tx.
type sqlBookingTx struct {
	tx      *sql.Tx
	dialect Dialect
}

// HasOverlap uses half-open interval semantics: an existing stay conflicts
// when it starts before the new check-out and ends after the new check-in.
func (t *sqlBookingTx) HasOverlap(ctx context.Context, roomID uint64, checkIn, checkOut time.Time, statuses []model.Status) (bool, error) {
	if len(statuses) == 0 {
		return false, nil
	}
	q := `SELECT 1 FROM bookings
	      WHERE room_id = ? AND check_in < ? AND check_out > ? AND status IN (` + placeholders(len(statuses)) + `)
	      LIMIT 1`
	args := make([]any, 0, 3+len(statuses))
	args = append(args, roomID, checkOut, checkIn)
	for _, s := range statuses {
		args = append(args, string(s))
	}
	var one int
	err := t.tx.QueryRowContext(ctx, t.dialect.Rebind(q), args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert stores b and sets its generated ID.  Timestamps are taken from b
// so the response carries exactly what was written.
func (t *sqlBookingTx) Insert(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (room_id, user_id, check_in, check_out, guests, total_price, status, guest_info, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := t.dialect.InsertID(ctx, t.tx, q,
		b.RoomID, nullableID(b.UserID), b.CheckIn, b.CheckOut, b.Guests,
		b.TotalPrice, string(b.Status), string(b.GuestInfo), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

// GetByID loads a single booking or returns ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	row := r.db.QueryRowContext(ctx, r.dialect.Rebind(`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`), id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

// UpdateStatus changes status and updated_at only, then returns the
// stored row.  Other bookings are not consulted.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status model.Status, at time.Time) (model.Booking, error) {
	// MySQL reports zero affected rows when the values are unchanged, so
	// existence is decided by the read-back rather than RowsAffected.
	if _, err := r.db.ExecContext(ctx,
		r.dialect.Rebind(`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`),
		string(status), at.UTC(), id); err != nil {
		return model.Booking{}, r.dialect.Translate(err)
	}
	return r.GetByID(ctx, id)
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id DESC`)
}

// ListByUser returns the bookings owned by userID, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b      model.Booking
		userID sql.NullInt64
		status string
	)
	if err := s.Scan(
		&b.ID, &b.RoomID, &userID, &b.CheckIn, &b.CheckOut, &b.Guests,
		&b.TotalPrice, &status, &b.GuestInfo, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return model.Booking{}, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		b.UserID = &uid
	}
	b.Status = model.Status(status)
	b.CheckIn = model.DateOf(b.CheckIn)
	b.CheckOut = model.DateOf(b.CheckOut)
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

func nullableID(id *uint64) any {
	if id == nil {
		return nil
	}
	return *id
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
