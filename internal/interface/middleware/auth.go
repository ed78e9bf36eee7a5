package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	"github.com/rakapratama/go-admin-backend/internal/session"
	"github.com/rakapratama/go-admin-backend/pkg/helpers"
)

// UserProvider resolves users for silent re-authentication.
type UserProvider interface {
	GetByRememberToken(ctx context.Context, token string) (*entity.User, error)
}

// AuthContext carries the collaborators the auth guard needs.
type AuthContext struct {
	Sessions  *session.Manager
	Users     UserProvider
	LoginPath string
}

// NotLoggedInMessage is flashed when a guest hits a protected route.
const NotLoggedInMessage = "Oops! You're not logged in."

// Auth guards routes behind an authenticated session. Guests holding a
// valid remember token are logged back in silently; everyone else is
// flashed a warning and redirected to the login page with the original
// URL preserved in redirect_url.
func Auth(ac AuthContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := ac.Sessions.UserID(c); uid != "" {
			c.Set("userID", uid)
			c.Next()
			return
		}

		if token, err := c.Cookie(helpers.RememberCookie); err == nil && token != "" {
			if u, err := ac.Users.GetByRememberToken(c.Request.Context(), token); err == nil && u != nil {
				if err := ac.Sessions.LoginUser(c, u.ID); err == nil {
					c.Set("userID", u.ID)
					c.Next()
					return
				}
			}
		}

		_ = ac.Sessions.Flash(c, session.LevelWarning, NotLoggedInMessage)
		target := ac.LoginPath + "?redirect_url=" + url.QueryEscape(c.Request.RequestURI)
		c.Redirect(http.StatusSeeOther, target)
		c.Abort()
	}
}
