package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rakapratama/go-admin-backend/internal/container"
	handlers "github.com/rakapratama/go-admin-backend/internal/interface/http"
	"github.com/rakapratama/go-admin-backend/internal/interface/middleware"
)

// UserModule wires the admin user management routes behind the session
// auth guard.
// Protected: GET/POST /admin/users, GET/PUT /admin/users/:id,
// POST /admin/users/:id/invite, GET /admin/users/search, GET /admin/profile

type UserModule struct {
	Handler *handlers.UserHandler
	AuthCtx middleware.AuthContext
}

func NewUserModule(h *handlers.UserHandler, ac middleware.AuthContext) *UserModule {
	return &UserModule{Handler: h, AuthCtx: ac}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.AuthCtx))
	admin.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	{
		admin.GET("/users", m.Handler.List)
		admin.POST("/users", m.Handler.Create)
		admin.GET("/users/search", m.Handler.Search)
		admin.GET("/users/:id", m.Handler.Show)
		admin.PUT("/users/:id", m.Handler.Update)
		admin.POST("/users/:id/invite", m.Handler.Invite)
		admin.GET("/profile", m.Handler.Profile)
	}
}
