package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets the response headers expected of an API serving
// patient demographics. Responses carry names, dates of birth and NHS
// numbers, so nothing may be cached and nothing may be framed.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")

			// The legacy XSS filter is off; the CSP below is the control.
			h.Set("X-XSS-Protection", "0")

			// JSON-only API: no resource loading, no embedding.
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

			// One year of HSTS, subdomains included.
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// Patient data must never land in an intermediary cache.
			h.Set("Cache-Control", "no-store")

			return next(c)
		}
	}
}
