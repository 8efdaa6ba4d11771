package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-booking/internal/middleware"
	"github.com/iliyamo/room-booking/internal/model"
	"github.com/iliyamo/room-booking/internal/service"
)

// BookingHandler exposes the booking service over HTTP.  Authentication
// has already run; handlers read the caller via middleware.RequesterFrom
// and leave authorisation decisions to the service.
type BookingHandler struct {
	svc *service.BookingService
	log *slog.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc *service.BookingService, log *slog.Logger) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &BookingHandler{svc: svc, log: log}
}

// flexString accepts a JSON string or number.  Room ids arrive in both
// forms depending on the client.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON integer or a numeric string.  Anything else
// decodes to 0, which fails presence validation downstream.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(b); err != nil {
		return nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(string(s))); err == nil {
		*f = flexInt(n)
	}
	return nil
}

// createBookingRequest accepts both camelCase and snake_case field names.
type createBookingRequest struct {
	RoomID         flexString      `json:"roomId"`
	RoomIDSnake    flexString      `json:"room_id"`
	CheckIn        flexString      `json:"checkIn"`
	CheckInSnake   flexString      `json:"check_in"`
	CheckOut       flexString      `json:"checkOut"`
	CheckOutSnake  flexString      `json:"check_out"`
	Guests         flexInt         `json:"guests"`
	GuestInfo      json.RawMessage `json:"guestInfo"`
	GuestInfoSnake json.RawMessage `json:"guest_info"`
}

func firstNonEmpty(a, b flexString) string {
	if s := strings.TrimSpace(string(a)); s != "" {
		return s
	}
	return strings.TrimSpace(string(b))
}

func (r createBookingRequest) admission() service.AdmissionRequest {
	info := r.GuestInfo
	if len(info) == 0 {
		info = r.GuestInfoSnake
	}
	return service.AdmissionRequest{
		RoomID:    firstNonEmpty(r.RoomID, r.RoomIDSnake),
		CheckIn:   firstNonEmpty(r.CheckIn, r.CheckInSnake),
		CheckOut:  firstNonEmpty(r.CheckOut, r.CheckOutSnake),
		Guests:    int(r.Guests),
		GuestInfo: info,
	}
}

// bookingView is the client representation of a booking.
type bookingView struct {
	ID         uint64          `json:"id"`
	UserID     *uint64         `json:"userId"`
	RoomID     string          `json:"roomId"`
	CheckIn    string          `json:"checkIn"`
	CheckOut   string          `json:"checkOut"`
	Guests     int             `json:"guests"`
	Nights     int             `json:"nights"`
	TotalPrice model.Money     `json:"totalPrice"`
	Status     model.Status    `json:"status"`
	GuestInfo  json.RawMessage `json:"guestInfo"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
}

func toView(b model.Booking) bookingView {
	info := json.RawMessage(b.GuestInfo)
	if len(info) == 0 {
		info = json.RawMessage("{}")
	}
	return bookingView{
		ID:         b.ID,
		UserID:     b.UserID,
		RoomID:     strconv.FormatUint(b.RoomID, 10),
		CheckIn:    b.CheckIn.Format(model.DateLayout),
		CheckOut:   b.CheckOut.Format(model.DateLayout),
		Guests:     b.Guests,
		Nights:     b.Nights(),
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
		GuestInfo:  info,
		CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toViews(bs []model.Booking) []bookingView {
	out := make([]bookingView, 0, len(bs))
	for _, b := range bs {
		out = append(out, toView(b))
	}
	return out
}

// Create handles POST /v1/bookings and returns 201 with the new booking.
func (h *BookingHandler) Create(c echo.Context) error {
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}
	b, err := h.svc.CreateBooking(c.Request().Context(), body.admission(), middleware.RequesterFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, http.StatusCreated, toView(b))
}

// List handles GET /v1/bookings (admins only).
func (h *BookingHandler) List(c echo.Context) error {
	bs, err := h.svc.ListBookings(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, http.StatusOK, toViews(bs))
}

// ListMine handles GET /v1/my-bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	bs, err := h.svc.ListMyBookings(c.Request().Context(), middleware.RequesterFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, http.StatusOK, toViews(bs))
}

// Get handles GET /v1/bookings/:id.  Non-numeric ids are reported as not
// found rather than as a bad request.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return writeError(c, h.log, service.ErrNotFound)
	}
	b, err := h.svc.GetBooking(c.Request().Context(), id, middleware.RequesterFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, http.StatusOK, toView(b))
}

// UpdateStatus handles PATCH /v1/bookings/:id/status with a body of
// {"status": "..."}.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	who := middleware.RequesterFrom(c)
	if !who.IsAdmin {
		return writeError(c, h.log, service.ErrForbidden)
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		// Status validity is reported before an unknown id.
		if _, ok := model.ParseStatus(body.Status); !ok {
			return writeError(c, h.log, service.ErrInvalidStatus)
		}
		return writeError(c, h.log, service.ErrNotFound)
	}
	b, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Status, who)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"id":        b.ID,
		"status":    b.Status,
		"updatedAt": b.UpdatedAt.UTC().Format(time.RFC3339),
	})
}
