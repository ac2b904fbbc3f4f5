package middleware

import (
	"github.com/labstack/echo/v4"
)

// UserID extracts the authenticated user's id from the request context.
// JWT numeric claims arrive as float64 through MapClaims, so both numeric
// forms are accepted.
func UserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}

// PortID extracts the agent's assigned port id from the request context.
// Returns false when the token carried no port assignment; the decide flow
// turns that into a forbidden response rather than guessing a port.
func PortID(c echo.Context) (uint64, bool) {
	switch v := c.Get("port_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}
