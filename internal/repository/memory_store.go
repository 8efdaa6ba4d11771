package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/room-booking/internal/model"
)

// MemoryStore is an in-process booking store and room catalog.  It backs
// DB_DRIVER=memory for local runs and the service tests.  A single mutex
// serialises every admission transaction, which gives the same guarantee
// the SQL store gets from its room row lock.
type MemoryStore struct {
	mu       sync.Mutex
	rooms    map[uint64]model.Room
	bookings map[uint64]model.Booking
	nextID   uint64
}

// NewMemoryStore returns an empty store seeded with the given rooms.
func NewMemoryStore(rooms ...model.Room) *MemoryStore {
	s := &MemoryStore{
		rooms:    make(map[uint64]model.Room),
		bookings: make(map[uint64]model.Booking),
	}
	for _, r := range rooms {
		s.rooms[r.ID] = r
	}
	return s
}

// GetRoom implements RoomCatalog.
func (s *MemoryStore) GetRoom(_ context.Context, id uint64) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return model.Room{}, ErrRoomNotFound
	}
	return r, nil
}

// WithinRoomTx runs fn with the store locked.  Inserts made by fn are
// staged and only become visible when fn returns nil.
func (s *MemoryStore) WithinRoomTx(ctx context.Context, roomID uint64, fn TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return ErrRoomNotFound
	}
	tx := &memoryTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, b := range tx.staged {
		s.bookings[b.ID] = b
	}
	return nil
}

type memoryTx struct {
	store  *MemoryStore
	staged []model.Booking
}

func (t *memoryTx) HasOverlap(_ context.Context, roomID uint64, checkIn, checkOut time.Time, statuses []model.Status) (bool, error) {
	wanted := make(map[model.Status]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}
	check := func(b model.Booking) bool {
		return b.RoomID == roomID && wanted[b.Status] && model.Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut)
	}
	for _, b := range t.store.bookings {
		if check(b) {
			return true, nil
		}
	}
	for _, b := range t.staged {
		if check(b) {
			return true, nil
		}
	}
	return false, nil
}

func (t *memoryTx) Insert(_ context.Context, b *model.Booking) error {
	t.store.nextID++
	b.ID = t.store.nextID
	t.staged = append(t.staged, cloneBooking(*b))
	return nil
}

// GetByID implements the booking store lookup.
func (s *MemoryStore) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return cloneBooking(b), nil
}

// UpdateStatus sets status and updated_at of an existing booking.
func (s *MemoryStore) UpdateStatus(_ context.Context, id uint64, status model.Status, at time.Time) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	b.Status = status
	b.UpdatedAt = at.UTC()
	s.bookings[id] = b
	return cloneBooking(b), nil
}

// ListAll returns every booking, newest first.
func (s *MemoryStore) ListAll(_ context.Context) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(model.Booking) bool { return true }), nil
}

// ListByUser returns the bookings owned by userID, newest first.
func (s *MemoryStore) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(b model.Booking) bool { return b.OwnedBy(userID) }), nil
}

func (s *MemoryStore) sorted(keep func(model.Booking) bool) []model.Booking {
	out := []model.Booking{}
	for _, b := range s.bookings {
		if keep(b) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// cloneBooking copies the pointer and slice fields so callers cannot
// mutate stored state.
func cloneBooking(b model.Booking) model.Booking {
	if b.UserID != nil {
		uid := *b.UserID
		b.UserID = &uid
	}
	if b.GuestInfo != nil {
		b.GuestInfo = append(b.GuestInfo[:0:0], b.GuestInfo...)
	}
	return b
}
