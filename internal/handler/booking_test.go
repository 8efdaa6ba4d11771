package handler_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-booking/internal/handler"
	"github.com/iliyamo/room-booking/internal/model"
	"github.com/iliyamo/room-booking/internal/repository"
	"github.com/iliyamo/room-booking/internal/router"
	"github.com/iliyamo/room-booking/internal/service"
)

const secret = "handler-test-secret"

var now = time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)

func newServer(t *testing.T, allowGuests bool) *echo.Echo {
	t.Helper()
	store := repository.NewMemoryStore(
		model.Room{ID: 1, Name: "Deluxe Double", MaxGuests: 2, Price: 10000},
		model.Room{ID: 2, Name: "Family Suite", MaxGuests: 4, Price: 18000},
	)
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewBookingService(store, store,
		service.WithClock(func() time.Time { return now }),
		service.WithLogger(quiet),
	)
	e := echo.New()
	router.RegisterRoutes(e, nil)
	router.RegisterBookings(e, handler.NewBookingHandler(svc, quiet), router.BookingRoutes{
		JWTSecret: secret, AdminRole: "admin", AllowGuestBookings: allowGuests,
	})
	return e
}

func bearer(t *testing.T, sub string, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "role": role, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Status  int             `json:"status"`
	Details map[string]any  `json:"details"`
}

func do(t *testing.T, e *echo.Echo, method, path, auth, body string) (int, response) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out response
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

type view struct {
	ID         uint64          `json:"id"`
	UserID     *uint64         `json:"userId"`
	RoomID     string          `json:"roomId"`
	CheckIn    string          `json:"checkIn"`
	CheckOut   string          `json:"checkOut"`
	Guests     int             `json:"guests"`
	Nights     int             `json:"nights"`
	TotalPrice float64         `json:"totalPrice"`
	Status     string          `json:"status"`
	GuestInfo  json.RawMessage `json:"guestInfo"`
	CreatedAt  string          `json:"createdAt"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestCreateBooking(t *testing.T) {
	e := newServer(t, false)
	user := bearer(t, "5", "user")

	code, res := do(t, e, http.MethodPost, "/v1/bookings", user,
		`{"roomId": 1, "checkIn": "2030-02-01", "checkOut": "2030-02-04", "guests": 2, "guestInfo": {"name": "Ann"}}`)
	if code != http.StatusCreated || !res.Success {
		t.Fatalf("status %d: %+v", code, res)
	}
	v := decode[view](t, res.Data)
	if v.ID == 0 || v.RoomID != "1" || v.Nights != 3 || v.TotalPrice != 300 || v.Status != "pending" {
		t.Fatalf("unexpected booking: %+v", v)
	}
	if v.UserID == nil || *v.UserID != 5 {
		t.Fatalf("userId = %v, want 5", v.UserID)
	}
	if string(v.GuestInfo) != `{"name":"Ann"}` || v.CreatedAt != "2030-01-10T09:00:00Z" {
		t.Fatalf("unexpected booking: %+v", v)
	}
	if !strings.Contains(string(res.Data), `"totalPrice":300.00`) {
		t.Fatalf("price should render with two decimals: %s", res.Data)
	}
}

func TestCreateBookingSnakeCase(t *testing.T) {
	e := newServer(t, false)
	code, res := do(t, e, http.MethodPost, "/v1/bookings", bearer(t, "5", "user"),
		`{"room_id": "2", "check_in": "2030-02-01", "check_out": "2030-02-02", "guests": "3"}`)
	if code != http.StatusCreated {
		t.Fatalf("status %d: %+v", code, res)
	}
	v := decode[view](t, res.Data)
	if v.RoomID != "2" || v.Guests != 3 || string(v.GuestInfo) != "{}" {
		t.Fatalf("unexpected booking: %+v", v)
	}
}

func TestCreateBookingAuth(t *testing.T) {
	body := `{"roomId": "1", "checkIn": "2030-02-01", "checkOut": "2030-02-02", "guests": 1}`

	strict := newServer(t, false)
	if code, _ := do(t, strict, http.MethodPost, "/v1/bookings", "", body); code != http.StatusUnauthorized {
		t.Fatalf("anonymous create: status %d, want 401", code)
	}

	open := newServer(t, true)
	code, res := do(t, open, http.MethodPost, "/v1/bookings", "", body)
	if code != http.StatusCreated {
		t.Fatalf("guest create: status %d: %+v", code, res)
	}
	if v := decode[view](t, res.Data); v.UserID != nil {
		t.Fatalf("guest booking has owner %d", *v.UserID)
	}
	if code, _ := do(t, open, http.MethodPost, "/v1/bookings", "Bearer nope", body); code != http.StatusUnauthorized {
		t.Fatalf("bad token on open route: status %d, want 401", code)
	}
}

func TestCreateBookingErrors(t *testing.T) {
	e := newServer(t, false)
	user := bearer(t, "5", "user")
	if code, _ := do(t, e, http.MethodPost, "/v1/bookings", user,
		`{"roomId": "1", "checkIn": "2030-03-01", "checkOut": "2030-03-05", "guests": 1}`); code != http.StatusCreated {
		t.Fatalf("seed booking: status %d", code)
	}

	cases := []struct {
		name   string
		body   string
		status int
		code   string
		msg    string
	}{
		{"missing fields", `{"roomId": "1"}`, 422, "validation_failed", "Validation failed"},
		{"bad date", `{"roomId": "1", "checkIn": "01/03/2030", "checkOut": "2030-03-02", "guests": 1}`, 422, "invalid_date_format", "Invalid date format"},
		{"inverted", `{"roomId": "1", "checkIn": "2030-03-05", "checkOut": "2030-03-01", "guests": 1}`, 422, "invalid_range", "Check-in must be before check-out"},
		{"past", `{"roomId": "1", "checkIn": "2030-01-01", "checkOut": "2030-01-02", "guests": 1}`, 422, "check_in_in_past", "Check-in must be in the future"},
		{"unknown room", `{"roomId": "77", "checkIn": "2030-03-01", "checkOut": "2030-03-02", "guests": 1}`, 404, "room_not_found", "Room not found"},
		{"capacity", `{"roomId": "1", "checkIn": "2030-04-01", "checkOut": "2030-04-02", "guests": 5}`, 422, "capacity_exceeded", "Guest count exceeds room capacity"},
		{"overlap", `{"roomId": "1", "checkIn": "2030-03-04", "checkOut": "2030-03-07", "guests": 1}`, 422, "room_unavailable", "Room not available for selected dates"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, res := do(t, e, http.MethodPost, "/v1/bookings", user, tc.body)
			if code != tc.status || res.Success || res.Code != tc.code || res.Error != tc.msg || res.Status != tc.status {
				t.Fatalf("got %d %+v, want %d %s", code, res, tc.status, tc.code)
			}
		})
	}

	if code, res := do(t, e, http.MethodPost, "/v1/bookings", user, `{"roomId": `); code != http.StatusBadRequest || res.Code != "bad_request" {
		t.Fatalf("malformed body: %d %+v", code, res)
	}
}

func TestUpdateStatus(t *testing.T) {
	e := newServer(t, false)
	owner := bearer(t, "5", "user")
	admin := bearer(t, "1", "admin")

	_, res := do(t, e, http.MethodPost, "/v1/bookings", owner,
		`{"roomId": "1", "checkIn": "2030-02-01", "checkOut": "2030-02-03", "guests": 1}`)
	id := decode[view](t, res.Data).ID
	path := "/v1/bookings/" + jsonNumber(id) + "/status"

	code, res := do(t, e, http.MethodPatch, path, owner, `{"status": "confirmed"}`)
	if code != http.StatusForbidden || res.Code != "forbidden" {
		t.Fatalf("owner update: %d %+v", code, res)
	}
	_, res = do(t, e, http.MethodGet, "/v1/bookings/"+jsonNumber(id), owner, "")
	if v := decode[view](t, res.Data); v.Status != "pending" {
		t.Fatalf("forbidden update changed status to %s", v.Status)
	}
	if code, res := do(t, e, http.MethodPatch, path, owner, `{"status":`); code != http.StatusForbidden || res.Code != "forbidden" {
		t.Fatalf("owner update with malformed body: %d %+v", code, res)
	}
	if code, res := do(t, e, http.MethodPatch, path, admin, `{"status":`); code != http.StatusBadRequest || res.Code != "bad_request" {
		t.Fatalf("admin update with malformed body: %d %+v", code, res)
	}

	if code, res := do(t, e, http.MethodPatch, path, admin, `{"status": "archived"}`); code != 422 || res.Code != "invalid_status" {
		t.Fatalf("invalid status: %d %+v", code, res)
	}
	if code, res := do(t, e, http.MethodPatch, "/v1/bookings/999/status", admin, `{"status": "confirmed"}`); code != 404 || res.Code != "not_found" {
		t.Fatalf("missing booking: %d %+v", code, res)
	}

	code, res = do(t, e, http.MethodPatch, path, admin, `{"status": "confirmed"}`)
	if code != http.StatusOK {
		t.Fatalf("admin update: %d %+v", code, res)
	}
	got := decode[map[string]any](t, res.Data)
	if got["status"] != "confirmed" || got["updatedAt"] != "2030-01-10T09:00:00Z" {
		t.Fatalf("update response = %v", got)
	}
}

func TestReadRoutes(t *testing.T) {
	e := newServer(t, false)
	alice := bearer(t, "5", "user")
	bob := bearer(t, "6", "user")
	admin := bearer(t, "1", "admin")

	for _, body := range []string{
		`{"roomId": "1", "checkIn": "2030-02-01", "checkOut": "2030-02-02", "guests": 1}`,
		`{"roomId": "1", "checkIn": "2030-02-05", "checkOut": "2030-02-06", "guests": 1}`,
	} {
		if code, res := do(t, e, http.MethodPost, "/v1/bookings", alice, body); code != http.StatusCreated {
			t.Fatalf("seed: %d %+v", code, res)
		}
	}
	do(t, e, http.MethodPost, "/v1/bookings", bob, `{"roomId": "2", "checkIn": "2030-02-01", "checkOut": "2030-02-02", "guests": 1}`)

	_, res := do(t, e, http.MethodGet, "/v1/my-bookings", alice, "")
	mine := decode[[]view](t, res.Data)
	if len(mine) != 2 || mine[0].CheckIn != "2030-02-05" {
		t.Fatalf("my bookings = %+v", mine)
	}

	if code, res := do(t, e, http.MethodGet, "/v1/bookings", alice, ""); code != http.StatusForbidden || res.Code != "forbidden" {
		t.Fatalf("non-admin list: %d %+v", code, res)
	}
	_, res = do(t, e, http.MethodGet, "/v1/bookings", admin, "")
	if all := decode[[]view](t, res.Data); len(all) != 3 {
		t.Fatalf("admin list has %d bookings", len(all))
	}

	if code, _ := do(t, e, http.MethodGet, "/v1/bookings/"+jsonNumber(mine[0].ID), bob, ""); code != http.StatusNotFound {
		t.Fatalf("foreign booking: status %d, want 404", code)
	}
	if code, _ := do(t, e, http.MethodGet, "/v1/bookings/abc", alice, ""); code != http.StatusNotFound {
		t.Fatalf("non-numeric id: status %d, want 404", code)
	}
	if code, _ := do(t, e, http.MethodGet, "/v1/my-bookings", "", ""); code != http.StatusUnauthorized {
		t.Fatalf("anonymous my-bookings: status %d, want 401", code)
	}
}

func TestHealth(t *testing.T) {
	e := newServer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rec.Code, rec.Body.String())
	}
}

func jsonNumber(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
