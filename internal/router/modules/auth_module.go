package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rakapratama/go-admin-backend/internal/container"
	handlers "github.com/rakapratama/go-admin-backend/internal/interface/http"
	"github.com/rakapratama/go-admin-backend/internal/interface/middleware"
	"github.com/rakapratama/go-admin-backend/pkg/helpers"
)

// AuthModule wires login, logout and the manager sync endpoint.
// Public: GET /login, POST /login
// Session-guarded: POST /logout
// Service-token-guarded: POST /internal/manager-sync

type AuthModule struct {
	Handler *handlers.AuthHandler
	AuthCtx middleware.AuthContext
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, ac middleware.AuthContext, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, AuthCtx: ac, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	pageLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/login", pageLimiter, m.Handler.LoginPage)
	rg.POST("/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.AuthCtx))
	{
		auth.POST("/logout", m.Handler.Logout)
	}

	internal := rg.Group("/internal")
	internal.Use(middleware.ServiceAuth(m.JWT))
	{
		internal.POST("/manager-sync", m.Handler.ManagerSync)
	}
}
