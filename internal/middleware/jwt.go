package middleware // reusable HTTP middleware for the booking API

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-booking/internal/model"
	"github.com/iliyamo/room-booking/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the resulting model.Requester in the context (see
// RequesterFrom).  Role claims equal to adminRole, or is_staff=true, grant
// the admin capability.
//
// With optional set, requests without an Authorization header proceed as
// model.Guest.  A header that is present but invalid is always rejected.
func JWTAuth(secret, adminRole string, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if auth == "" && optional {
				SetRequester(c, model.Guest)
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return unauthorized(c, "invalid token")
			}
			who, err := utils.RequesterFromClaims(claims, adminRole)
			if err != nil {
				return unauthorized(c, "invalid claims")
			}
			SetRequester(c, who)
			return next(c)
		}
	}
}

// unauthorized writes the standard error envelope with a 401 status.
func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"success": false,
		"error":   msg,
		"code":    "unauthenticated",
		"status":  http.StatusUnauthorized,
	})
}

func fmtUint(v uint64) string { return strconv.FormatUint(v, 10) }
