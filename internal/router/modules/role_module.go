package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rakapratama/go-admin-backend/internal/container"
	handlers "github.com/rakapratama/go-admin-backend/internal/interface/http"
	"github.com/rakapratama/go-admin-backend/internal/interface/middleware"
)

// RoleModule wires role management under the admin guard.

type RoleModule struct {
	Handler *handlers.RoleHandler
	AuthCtx middleware.AuthContext
}

func NewRoleModule(h *handlers.RoleHandler, ac middleware.AuthContext) *RoleModule {
	return &RoleModule{Handler: h, AuthCtx: ac}
}

func (m *RoleModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.AuthCtx))
	admin.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	{
		admin.GET("/roles", m.Handler.List)
		admin.POST("/roles", m.Handler.Create)
		admin.GET("/roles/:id", m.Handler.Show)
		admin.PUT("/roles/:id", m.Handler.Update)
	}
}
