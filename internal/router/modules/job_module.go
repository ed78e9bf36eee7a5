package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rakapratama/go-admin-backend/internal/container"
	handlers "github.com/rakapratama/go-admin-backend/internal/interface/http"
	"github.com/rakapratama/go-admin-backend/internal/interface/middleware"
)

// JobModule exposes the failed job log under the admin guard.

type JobModule struct {
	Handler *handlers.JobHandler
	AuthCtx middleware.AuthContext
}

func NewJobModule(h *handlers.JobHandler, ac middleware.AuthContext) *JobModule {
	return &JobModule{Handler: h, AuthCtx: ac}
}

func (m *JobModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Auth(m.AuthCtx))
	admin.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()))
	{
		admin.GET("/jobs/failed", m.Handler.List)
	}
}
