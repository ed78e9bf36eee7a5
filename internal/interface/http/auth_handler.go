package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rakapratama/go-admin-backend/config"
	userapp "github.com/rakapratama/go-admin-backend/internal/application"
	"github.com/rakapratama/go-admin-backend/internal/session"
	"github.com/rakapratama/go-admin-backend/pkg/helpers"
	"github.com/rakapratama/go-admin-backend/pkg/response"
	"github.com/rakapratama/go-admin-backend/pkg/validation"
)

type AuthHandler struct {
	Svc      *userapp.Service
	Sessions *session.Manager
	Cookies  *helpers.CookieManager
	Logger   *logrus.Logger
	Cfg      *config.Config
}

func NewAuthHandler(svc *userapp.Service, sessions *session.Manager, logger *logrus.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Svc:      svc,
		Sessions: sessions,
		Cookies:  helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
		Logger:   logger,
		Cfg:      cfg,
	}
}

type loginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// LoginPage serves the login form data: any pending flash messages plus
// the redirect target carried over from the auth guard.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	flashes, err := h.Sessions.PopFlashes(c)
	if err != nil {
		h.Logger.WithError(err).Warn("failed to pop flashes")
		flashes = nil
	}
	response.Success(c, http.StatusOK, gin.H{
		"flashes":      flashes,
		"redirect_url": c.Query("redirect_url"),
	}, "login", nil)
}

// Login authenticates email/password and marks the session logged in.
// User-not-found and wrong-password stay distinguishable so the form
// can render the right message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.GetByEmailAndPassword(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, userapp.ErrEntityNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	case errors.Is(err, userapp.ErrInvalidPassword):
		response.Error[any](c, http.StatusUnauthorized, "invalid password", nil)
		return
	case err != nil:
		h.Logger.WithError(err).Error("login failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}

	if err := h.Sessions.LoginUser(c, u.ID); err != nil {
		h.Logger.WithError(err).Error("session login failed")
		response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
		return
	}

	if req.RememberMe {
		token, err := h.Svc.EnsureRememberToken(c.Request.Context(), u)
		if err != nil {
			h.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to issue remember token")
		} else {
			h.Cookies.SetRemember(c, token, time.Now().Add(h.Cfg.RememberTTL))
		}
	}

	redirect := c.Query("redirect_url")
	if redirect == "" {
		redirect = "/admin/users"
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"name":         u.Name,
		"redirect_url": redirect,
	}, "login successful", nil)
}

// Logout destroys the session and the remember cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(c); err != nil {
		h.Logger.WithError(err).Warn("session logout failed")
	}
	h.Cookies.ClearRemember(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

type managerSyncRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// ManagerSync reconciles an identity pushed by the external manager
// tool. Guarded by a service token, not a user session.
func (h *AuthHandler) ManagerSync(c *gin.Context) {
	var req managerSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.LoginUserFromManager(c.Request.Context(), userapp.ManagerSyncInput{
		Email:    req.Email,
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if errors.Is(err, userapp.ErrEntityNotFound) {
		response.Error[any](c, http.StatusNotFound, "manager account not found", nil)
		return
	}
	if err != nil {
		h.Logger.WithError(err).WithField("email", req.Email).Error("manager sync failed")
		response.Error[any](c, http.StatusInternalServerError, "manager sync failed", nil)
		return
	}

	response.Success(c, http.StatusOK, userJSON(u), "synced", nil)
}
