package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie   = "access"
	LoggedInCookie = "logged_in"
)

// Manager writes the session cookies. Production cookies are Secure with
// SameSite=None so a separately hosted frontend can send them.
type Manager struct {
	Domain     string
	Production bool
	TTL        time.Duration
}

func NewCookie(domain string, production bool, ttl time.Duration) *Manager {
	return &Manager{Domain: domain, Production: production, TTL: ttl}
}

func (m *Manager) sameSite(c *gin.Context) bool {
	if m.Production {
		c.SetSameSite(http.SameSiteNoneMode)
		return true
	}
	c.SetSameSite(http.SameSiteLaxMode)
	return false
}

// SetSession stores the token in an HTTP-only cookie plus a readable logged_in flag.
func (m *Manager) SetSession(c *gin.Context, token string) {
	secure := m.sameSite(c)
	maxAge := int(m.TTL.Seconds())
	c.SetCookie(AccessCookie, token, maxAge, "/", m.Domain, secure, true)
	c.SetCookie(LoggedInCookie, "true", maxAge, "/", m.Domain, secure, false)
}

func (m *Manager) Clear(c *gin.Context) {
	secure := m.sameSite(c)
	c.SetCookie(AccessCookie, "", -1, "/", m.Domain, secure, true)
	c.SetCookie(LoggedInCookie, "", -1, "/", m.Domain, secure, false)
}
