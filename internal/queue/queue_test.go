package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iliyamo/room-booking/internal/model"
)

func sampleBooking() model.Booking {
	in, _ := model.ParseDate("2030-06-01")
	out, _ := model.ParseDate("2030-06-04")
	uid := uint64(11)
	return model.Booking{
		ID: 3, RoomID: 7, UserID: &uid, CheckIn: in, CheckOut: out,
		Guests: 2, TotalPrice: 30000, Status: model.StatusConfirmed,
	}
}

func TestNewBookingEvent(t *testing.T) {
	at := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	ev := NewBookingEvent(EventBookingStatusChanged, sampleBooking(), model.StatusPending, at)
	if ev.Nights != 3 || ev.TotalPrice != "300.00" || ev.CheckIn != "2030-06-01" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.PreviousStatus != "pending" || ev.OccurredAt != "2030-01-02T03:04:05Z" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestPublishReturnsErrorsWithoutLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewPublisher("http://not-a-broker", log)
	ev := NewBookingEvent(EventBookingCreated, sampleBooking(), "", time.Now())
	if err := p.Publish(context.Background(), ev); err == nil {
		t.Fatal("expected a dial error")
	}
	if buf.Len() != 0 {
		t.Fatalf("publish failure was logged by the publisher: %s", buf.String())
	}
}

func TestNewPublishing(t *testing.T) {
	ev := NewBookingEvent(EventBookingCreated, sampleBooking(), "", time.Now())
	msg, err := newPublishing(ev, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if msg.MessageId == "" || msg.Type != EventBookingCreated || msg.ContentType != "application/json" {
		t.Fatalf("unexpected publishing: %+v", msg)
	}
	var back BookingEvent
	if err := json.Unmarshal(msg.Body, &back); err != nil {
		t.Fatal(err)
	}
	if back.BookingID != 3 || back.PreviousStatus != "" {
		t.Fatalf("unexpected body: %s", msg.Body)
	}
	if strings.Contains(string(msg.Body), "previous_status") {
		t.Fatalf("previous_status should be omitted for created events: %s", msg.Body)
	}
}

func TestFormatLine(t *testing.T) {
	ev := NewBookingEvent(EventBookingCreated, sampleBooking(), "", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	want := "[2030-01-01T00:00:00Z] booking.created | booking_id=3 | room_id=7 | user_id=11 | stay=2030-06-01..2030-06-04 | nights=3 | guests=2 | total=300.00 | status=confirmed\n"
	if got := formatLine(ev); got != want {
		t.Fatalf("formatLine =\n%q\nwant\n%q", got, want)
	}

	ev.UserID = nil
	ev.PreviousStatus = "pending"
	got := formatLine(ev)
	if !strings.Contains(got, "user_id=guest") || !strings.HasSuffix(got, "| previous=pending\n") {
		t.Fatalf("formatLine = %q", got)
	}
}

func TestHandleMessageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	ev := NewBookingEvent(EventBookingCreated, sampleBooking(), "", time.Now())
	body, _ := json.Marshal(ev)
	for i := 0; i < 2; i++ {
		if err := handleMessage(body, path); err != nil {
			t.Fatalf("handleMessage: %v", err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Fatalf("got %d lines, want 2", n)
	}
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "booking.log")
	if err := handleMessage([]byte("not json"), path); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if err := handleMessage([]byte(`{"type":""}`), path); err == nil {
		t.Fatal("expected error for empty event")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("rejected messages must not create the log file")
	}
}
