package session

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Flash is a one-shot message queued for the next rendered page. Flashes
// live in the session store, not in a separate cookie, so they survive
// redirects and are consumed exactly once.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Backend is the session store. Sessions are keyed by an opaque sid and
// hold string fields plus a flash queue.
type Backend interface {
	Put(ctx context.Context, sid, field, value string) error
	Get(ctx context.Context, sid, field string) (string, error)
	Delete(ctx context.Context, sid string) error
	PushFlash(ctx context.Context, sid string, f Flash) error
	PopFlashes(ctx context.Context, sid string) ([]Flash, error)
}

const sidKey = "session_sid"

// Manager issues session cookies and proxies field access to the backend.
// A session exists for every visitor; it is authenticated once the
// user_id field is set.
type Manager struct {
	Backend    Backend
	CookieName string
	TTL        time.Duration
	Domain     string
	Secure     bool
}

func NewManager(backend Backend, cookieName string, ttl time.Duration, domain string, secure bool) *Manager {
	return &Manager{Backend: backend, CookieName: cookieName, TTL: ttl, Domain: domain, Secure: secure}
}

// Ensure guarantees every request carries a session id, minting one for
// first-time visitors.
func (m *Manager) Ensure() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(m.CookieName)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			m.setCookie(c, sid)
		}
		c.Set(sidKey, sid)
		c.Next()
	}
}

func (m *Manager) setCookie(c *gin.Context, sid string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.CookieName, sid, int(m.TTL.Seconds()), "/", m.Domain, m.Secure, true)
}

// SID returns the request's session id.
func (m *Manager) SID(c *gin.Context) string {
	if v, ok := c.Get(sidKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// UserID returns the authenticated user's id, or "" for anonymous
// sessions.
func (m *Manager) UserID(c *gin.Context) string {
	sid := m.SID(c)
	if sid == "" {
		return ""
	}
	id, err := m.Backend.Get(c.Request.Context(), sid, "user_id")
	if err != nil {
		return ""
	}
	return id
}

// LoginUser marks the current session as authenticated for userID.
func (m *Manager) LoginUser(c *gin.Context, userID string) error {
	return m.Backend.Put(c.Request.Context(), m.SID(c), "user_id", userID)
}

// Logout destroys the session and rotates the sid so the old cookie is
// worthless.
func (m *Manager) Logout(c *gin.Context) error {
	if err := m.Backend.Delete(c.Request.Context(), m.SID(c)); err != nil {
		return err
	}
	sid := uuid.NewString()
	m.setCookie(c, sid)
	c.Set(sidKey, sid)
	return nil
}

// Flash queues a one-shot message on the current session.
func (m *Manager) Flash(c *gin.Context, level, message string) error {
	return m.Backend.PushFlash(c.Request.Context(), m.SID(c), Flash{Level: level, Message: message})
}

// PopFlashes drains and returns the queued flashes.
func (m *Manager) PopFlashes(c *gin.Context) ([]Flash, error) {
	return m.Backend.PopFlashes(c.Request.Context(), m.SID(c))
}
