package router

import (
	userapp "github.com/rakapratama/go-admin-backend/internal/application"
	"github.com/rakapratama/go-admin-backend/internal/container"
	pginfra "github.com/rakapratama/go-admin-backend/internal/infrastructure/postgres"
	handlers "github.com/rakapratama/go-admin-backend/internal/interface/http"
	"github.com/rakapratama/go-admin-backend/internal/interface/middleware"
	"github.com/rakapratama/go-admin-backend/internal/router/modules"
)

type Deps struct {
	UserService *userapp.Service
	RoleService *userapp.RoleService
	JobService  *userapp.JobService

	AuthHandler *handlers.AuthHandler
	UserHandler *handlers.UserHandler
	RoleHandler *handlers.RoleHandler
	JobHandler  *handlers.JobHandler

	AuthCtx middleware.AuthContext
}

func buildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	userRepo := pginfra.NewUserRepository(pool)
	roleRepo := pginfra.NewRoleRepository(pool)
	jobRepo := pginfra.NewFailedJobRepository(pool)

	var images userapp.ImageStore
	if s := container.GetImageStore(); s != nil {
		images = s
	}

	userSvc := userapp.NewService(userRepo, images, container.GetES(), cfg.ESUsersIndex, logger, cfg)
	roleSvc := userapp.NewRoleService(roleRepo, logger)
	jobSvc := userapp.NewJobService(jobRepo, logger)

	return Deps{
		UserService: userSvc,
		RoleService: roleSvc,
		JobService:  jobSvc,

		AuthHandler: handlers.NewAuthHandler(userSvc, container.GetSessions(), logger, cfg),
		UserHandler: handlers.NewUserHandler(userSvc, container.GetNotifier(), logger),
		RoleHandler: handlers.NewRoleHandler(roleSvc, logger),
		JobHandler:  handlers.NewJobHandler(jobSvc, logger),

		AuthCtx: middleware.AuthContext{
			Sessions:  container.GetSessions(),
			Users:     userSvc,
			LoginPath: cfg.LoginPath,
		},
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()

	r.Add(modules.NewAuthModule(deps.AuthHandler, deps.AuthCtx, container.GetJWT()))
	r.Add(modules.NewUserModule(deps.UserHandler, deps.AuthCtx))
	r.Add(modules.NewRoleModule(deps.RoleHandler, deps.AuthCtx))
	r.Add(modules.NewJobModule(deps.JobHandler, deps.AuthCtx))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
