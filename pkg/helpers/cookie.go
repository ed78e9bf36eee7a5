package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieManager centralizes cookie attributes so every auth cookie shares
// the same domain/secure settings.
type CookieManager struct {
	Domain string
	Secure bool
}

// RememberCookie is the long-lived credential enabling silent
// re-authentication after the session expires.
const RememberCookie = "remember_token"

func NewCookie(domain string, secure bool) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure}
}

// SetRemember stores the remember token until exp.
func (m *CookieManager) SetRemember(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RememberCookie, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

// ClearRemember drops the remember token cookie.
func (m *CookieManager) ClearRemember(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RememberCookie, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
