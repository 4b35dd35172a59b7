package middleware

import (
	"github.com/labstack/echo/v4"
)

// ContentSecurityPolicy allows the dashboard pages to load Plotly and
// Bootstrap from their CDNs and nothing else from third parties.
const ContentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' https://cdn.plot.ly https://cdn.jsdelivr.net; " +
	"style-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net; " +
	"font-src 'self' https://cdn.jsdelivr.net; " +
	"img-src 'self' data:; " +
	"connect-src 'self'; " +
	"frame-ancestors 'none'"

// SecurityHeaders returns middleware that sets security response headers on
// every request. Strict-Transport-Security is only sent when hsts is true,
// which should be the case behind TLS.
func SecurityHeaders(hsts bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			// Rely on the CSP instead of the legacy filter.
			h.Set("X-XSS-Protection", "0")
			h.Set("Content-Security-Policy", ContentSecurityPolicy)
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			h.Set("Referrer-Policy", "same-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			return next(c)
		}
	}
}
