package middleware

// identity.go stores and retrieves the authenticated Requester on the Echo
// context.  Handlers never look at raw JWT claims.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-booking/internal/model"
)

const requesterKey = "requester"

// SetRequester attaches r to the request context.
func SetRequester(c echo.Context, r model.Requester) { c.Set(requesterKey, r) }

// RequesterFrom returns the requester stored by JWTAuth, or model.Guest
// when the route is unauthenticated.
func RequesterFrom(c echo.Context) model.Requester {
	if r, ok := c.Get(requesterKey).(model.Requester); ok {
		return r
	}
	return model.Guest
}

// userKey identifies the caller for rate limiting: the user id when
// authenticated, otherwise the client IP.
func userKey(c echo.Context) string {
	if r := RequesterFrom(c); r.Authenticated() {
		return fmtUint(*r.UserID)
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return "anon@" + ip
}
