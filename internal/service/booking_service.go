// Package service implements booking admission and the booking status
// workflow on top of the repository layer.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/room-booking/internal/model"
	"github.com/iliyamo/room-booking/internal/queue"
	"github.com/iliyamo/room-booking/internal/repository"
)

// BookingStore is the persistence the service needs.  Both
// repository.BookingRepo and repository.MemoryStore satisfy it.
type BookingStore interface {
	WithinRoomTx(ctx context.Context, roomID uint64, fn repository.TxFunc) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	UpdateStatus(ctx context.Context, id uint64, status model.Status, at time.Time) (model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// EventPublisher receives booking events after the write committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// AdmissionRequest is the validated input of CreateBooking.  RoomID stays a
// string because clients send both numeric and string ids; ids that are
// not numbers resolve to "room not found".
type AdmissionRequest struct {
	RoomID    string          `json:"roomId" validate:"required"`
	CheckIn   string          `json:"checkIn" validate:"required"`
	CheckOut  string          `json:"checkOut" validate:"required"`
	Guests    int             `json:"guests" validate:"required,gte=1"`
	GuestInfo json.RawMessage `json:"guestInfo"`
}

// BookingService owns admission control and status transitions.
type BookingService struct {
	rooms    repository.RoomCatalog
	store    BookingStore
	events   EventPublisher
	log      *slog.Logger
	now      func() time.Time
	loc      *time.Location
	validate *validator.Validate
}

// Option customises a BookingService.
type Option func(*BookingService)

// WithClock overrides time.Now, used by tests to pin "today".
func WithClock(now func() time.Time) Option { return func(s *BookingService) { s.now = now } }

// WithLocation sets the business time zone in which "today" is evaluated.
func WithLocation(loc *time.Location) Option {
	return func(s *BookingService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithPublisher enables booking events.
func WithPublisher(p EventPublisher) Option { return func(s *BookingService) { s.events = p } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *BookingService) {
		if l != nil {
			s.log = l
		}
	}
}

// NewBookingService wires a service over a room catalog and a booking store.
func NewBookingService(rooms repository.RoomCatalog, store BookingStore, opts ...Option) *BookingService {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	s := &BookingService{
		rooms:    rooms,
		store:    store,
		log:      slog.Default(),
		now:      time.Now,
		loc:      time.UTC,
		validate: v,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking admits a new booking.  Checks run in a fixed order and the
// first failure is returned: presence, date format, date range, check-in
// not in the past, room exists, capacity, availability.  The availability
// check, price computation and insert happen in one room-scoped
// transaction, so at most one of several concurrent overlapping requests
// succeeds.  The booking is stored as pending, owned by the requester or
// by nobody for guest bookings.
func (s *BookingService) CreateBooking(ctx context.Context, req AdmissionRequest, who model.Requester) (model.Booking, error) {
	if err := s.validate.Struct(req); err != nil {
		return model.Booking{}, ErrValidationFailed.WithDetails(map[string]any{"fields": invalidFields(err)})
	}
	guestInfo, ok := normalizeGuestInfo(req.GuestInfo)
	if !ok {
		return model.Booking{}, ErrValidationFailed.WithDetails(map[string]any{"fields": []string{"guestInfo"}})
	}

	checkIn, err := model.ParseDate(req.CheckIn)
	if err != nil {
		return model.Booking{}, ErrInvalidDateFormat
	}
	checkOut, err := model.ParseDate(req.CheckOut)
	if err != nil {
		return model.Booking{}, ErrInvalidDateFormat
	}
	if !checkIn.Before(checkOut) {
		return model.Booking{}, ErrInvalidRange
	}
	now := s.now()
	if checkIn.Before(model.Today(now, s.loc)) {
		return model.Booking{}, ErrCheckInInPast
	}

	roomID, err := strconv.ParseUint(strings.TrimSpace(req.RoomID), 10, 64)
	if err != nil || roomID == 0 {
		return model.Booking{}, ErrRoomNotFound
	}
	room, err := s.rooms.GetRoom(ctx, roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return model.Booking{}, ErrRoomNotFound
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("resolve room %d: %w", roomID, err)
	}
	if req.Guests > room.MaxGuests {
		return model.Booking{}, ErrCapacityExceeded.WithDetails(map[string]any{"maxGuests": room.MaxGuests})
	}

	b := model.Booking{
		RoomID:    roomID,
		UserID:    who.UserID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    req.Guests,
		Status:    model.StatusPending,
		GuestInfo: guestInfo,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	err = s.store.WithinRoomTx(ctx, roomID, func(ctx context.Context, tx repository.BookingTx) error {
		clash, err := HasConflict(ctx, tx, roomID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if clash {
			return ErrRoomUnavailable
		}
		b.TotalPrice = TotalPrice(room.Price, checkIn, checkOut)
		return tx.Insert(ctx, &b)
	})
	switch {
	case err == nil:
	case errors.Is(err, ErrRoomUnavailable),
		errors.Is(err, repository.ErrOverlap),
		errors.Is(err, repository.ErrSerialization):
		return model.Booking{}, ErrRoomUnavailable
	case errors.Is(err, repository.ErrRoomNotFound):
		return model.Booking{}, ErrRoomNotFound
	default:
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("booking created", "booking_id", b.ID, "room_id", b.RoomID, "nights", b.Nights(), "total_price", b.TotalPrice.String())
	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingCreated, b, "", now))
	return b, nil
}

// UpdateStatus sets the status of an existing booking.  Only admins may
// call it.  It changes status and updated_at and nothing else; in
// particular re-activating a cancelled booking is not checked against
// other bookings.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID uint64, rawStatus string, who model.Requester) (model.Booking, error) {
	if !who.IsAdmin {
		return model.Booking{}, ErrForbidden
	}
	status, ok := model.ParseStatus(rawStatus)
	if !ok {
		return model.Booking{}, ErrInvalidStatus
	}
	prev, err := s.store.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("load booking %d: %w", bookingID, err)
	}

	now := s.now()
	b, err := s.store.UpdateStatus(ctx, bookingID, status, now)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("update booking %d: %w", bookingID, err)
	}

	s.log.Info("booking status changed", "booking_id", b.ID, "from", prev.Status, "to", b.Status)
	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingStatusChanged, b, prev.Status, now))
	return b, nil
}

// GetBooking returns a booking visible to its owner or to an admin.
// Bookings belonging to someone else are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uint64, who model.Requester) (model.Booking, error) {
	b, err := s.store.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	if who.IsAdmin || (who.Authenticated() && b.OwnedBy(*who.UserID)) {
		return b, nil
	}
	return model.Booking{}, ErrNotFound
}

// ListBookings returns every booking, newest first.  Admin only.
func (s *BookingService) ListBookings(ctx context.Context, who model.Requester) ([]model.Booking, error) {
	if !who.IsAdmin {
		return nil, ErrForbidden
	}
	out, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// ListMyBookings returns the requester's own bookings, newest first.
// Guests own nothing and get ErrForbidden.
func (s *BookingService) ListMyBookings(ctx context.Context, who model.Requester) ([]model.Booking, error) {
	if !who.Authenticated() {
		return nil, ErrForbidden
	}
	out, err := s.store.ListByUser(ctx, *who.UserID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of user %d: %w", *who.UserID, err)
	}
	return out, nil
}

// publish delivers ev without letting a broker failure affect the
// already-committed write.
func (s *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("booking event not published", "type", ev.Type, "booking_id", ev.BookingID, "error", err)
	}
}

func invalidFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// normalizeGuestInfo accepts a JSON object, null or nothing; the latter
// two become {}.
func normalizeGuestInfo(raw json.RawMessage) ([]byte, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []byte("{}"), true
	}
	var obj map[string]any
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &obj) != nil {
		return nil, false
	}
	return append([]byte(nil), trimmed...), true
}
