package middleware

import "github.com/gin-gonic/gin"

// baseSecurityHeaders suit a JSON API that is never framed or rendered as a page.
var baseSecurityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cross-Origin-Resource-Policy", "same-site"},
	// responses carry per-user data
	{"Cache-Control", "no-store"},
}

const hstsHeader = "max-age=63072000; includeSubDomains"

// Security sets the response security headers. HSTS is only sent when the
// API is served over HTTPS.
func Security(hsts bool) gin.HandlerFunc {
	headers := baseSecurityHeaders
	if hsts {
		headers = append(headers[:len(headers):len(headers)], [2]string{"Strict-Transport-Security", hstsHeader})
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range headers {
			h.Set(kv[0], kv[1])
		}
		c.Next()
	}
}
