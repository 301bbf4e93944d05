package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dipeshss4/tripgo-auth/internal/core/domain"
	"github.com/dipeshss4/tripgo-auth/internal/infra/config"
	"github.com/dipeshss4/tripgo-auth/internal/infra/telemetry"
	"github.com/dipeshss4/tripgo-auth/internal/transport/http/handlers"
	"github.com/dipeshss4/tripgo-auth/internal/transport/http/middleware"
	"github.com/dipeshss4/tripgo-auth/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth     *usecase.AuthService
	Sessions *usecase.SessionService
	Tenants  *usecase.TenantService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Metrics  *telemetry.Metrics
	Services ServiceSet
	Database DatabaseChecker
	Cache    CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.Authenticate(deps.Services.Auth)

	api := r.Group("/api/v1")
	api.Use(middleware.ResolveTenant(deps.Services.Tenants))
	{
		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Sessions, deps.Services.Tenants)
		authHandler.RegisterRoutes(api.Group("/auth"))

		adminHandler := handlers.NewAdminHandler(deps.Services.Sessions)
		admin := api.Group("/admin")
		admin.Use(authMiddleware, middleware.RequireMFA())
		{
			security := admin.Group("/security", middleware.RequirePermission("tenants:manage"))
			security.POST("/sessions/sweep", adminHandler.SweepSessions)
			security.POST("/revocations/sweep", adminHandler.SweepRevocations)

			admin.GET("/users/:id/sessions", middleware.RequireRole(domain.RoleAdmin, domain.RoleHR), adminHandler.ListUserSessions)
			admin.DELETE("/users/:id/sessions", middleware.RequirePermission("users:write"), adminHandler.RevokeUserSessions)
		}
	}

	return r
}
