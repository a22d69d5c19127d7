package handler

import (
	"net/http"

	"github.com/ErlanBelekov/taskboard/internal/auth"
	"github.com/ErlanBelekov/taskboard/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
)

// CookiePolicy decides the attributes of the session cookie. Local
// development runs over plain HTTP on one site; deployed environments serve
// the client from another origin over HTTPS.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

func CookiePolicyFor(env string) CookiePolicy {
	if env == "local" {
		return CookiePolicy{Secure: false, SameSite: http.SameSiteStrictMode}
	}
	return CookiePolicy{Secure: true, SameSite: http.SameSiteNoneMode}
}

func (p CookiePolicy) set(c *gin.Context, token string) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(middleware.SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", p.Secure, true)
}

// clear replaces the session cookie with an empty one that has already expired.
func (p CookiePolicy) clear(c *gin.Context) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", p.Secure, true)
}
