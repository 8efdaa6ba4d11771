package service

// Code is the stable, client-visible identifier of an admission or status
// error.  None of these errors are retried by the service.
type Code string

const (
	CodeValidationFailed  Code = "validation_failed"
	CodeInvalidDateFormat Code = "invalid_date_format"
	CodeInvalidRange      Code = "invalid_range"
	CodeCheckInInPast     Code = "check_in_in_past"
	CodeRoomNotFound      Code = "room_not_found"
	CodeCapacityExceeded  Code = "capacity_exceeded"
	CodeRoomUnavailable   Code = "room_unavailable"
	CodeInvalidStatus     Code = "invalid_status"
	CodeForbidden         Code = "forbidden"
	CodeNotFound          Code = "not_found"
)

// Error is a domain error carrying a Code, a human-readable message and
// optional structured details (e.g. the fields that failed validation).
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

func (e *Error) Error() string { return e.Message }

// Is reports whether target is an *Error with the same code, so
// errors.Is(err, ErrRoomUnavailable) holds for copies carrying details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithDetails returns a copy of e with details attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

var (
	ErrValidationFailed  = &Error{Code: CodeValidationFailed, Message: "Validation failed"}
	ErrInvalidDateFormat = &Error{Code: CodeInvalidDateFormat, Message: "Invalid date format"}
	ErrInvalidRange      = &Error{Code: CodeInvalidRange, Message: "Check-in must be before check-out"}
	ErrCheckInInPast     = &Error{Code: CodeCheckInInPast, Message: "Check-in must be in the future"}
	ErrRoomNotFound      = &Error{Code: CodeRoomNotFound, Message: "Room not found"}
	ErrCapacityExceeded  = &Error{Code: CodeCapacityExceeded, Message: "Guest count exceeds room capacity"}
	ErrRoomUnavailable   = &Error{Code: CodeRoomUnavailable, Message: "Room not available for selected dates"}
	ErrInvalidStatus     = &Error{Code: CodeInvalidStatus, Message: "Invalid status"}
	ErrForbidden         = &Error{Code: CodeForbidden, Message: "Forbidden"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "Booking not found"}
)
