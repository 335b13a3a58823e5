package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/STAYCALM1234/mabest-alum/config"
	"github.com/STAYCALM1234/mabest-alum/internal/api/handler"
	"github.com/STAYCALM1234/mabest-alum/internal/api/middleware"
	"github.com/STAYCALM1234/mabest-alum/internal/dto"
	"github.com/STAYCALM1234/mabest-alum/pkg/jwt"
	"github.com/STAYCALM1234/mabest-alum/pkg/redis"
)

// Deps collaborators the routes need beyond the handlers
type Deps struct {
	JWT      *jwt.Manager
	Redis    *redis.Client // nil disables revocation checks and rate limiting
	Resolver middleware.PrincipalResolver
	DB       *gorm.DB
	// Files serves locally stored gallery images under /files; nil for remote drivers
	Files http.FileSystem
}

// Setup builds the gin engine
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, cfg.Storage.MaxUploadBytes))

	r.GET("/health", health(deps))

	if deps.Files != nil {
		r.StaticFS("/files", deps.Files)
	}

	jwtAuth := middleware.JWTAuth(deps.JWT, deps.Redis, logger)
	limited := middleware.RateLimit(deps.Redis, cfg.Auth.RateLimit, cfg.Auth.RateWindow, logger)
	alumniOnly := middleware.RequireRole(deps.Resolver, dto.RoleUser)
	adminOnly := middleware.RequireRole(deps.Resolver, dto.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", limited, h.Auth.Login)
			auth.POST("/register", limited, h.Auth.RegisterAlumni)
			auth.POST("/admin-register", limited, h.Auth.RegisterAdmin)
			auth.GET("/session", middleware.OptionalAuth(deps.JWT, deps.Redis, logger), h.Auth.Session)
			auth.POST("/logout", jwtAuth, h.Auth.Logout)
		}

		v1.GET("/courses", h.Auth.Courses)

		gallery := v1.Group("/gallery")
		{
			gallery.GET("", h.Gallery.List)
			gallery.GET("/mine", jwtAuth, alumniOnly, h.Gallery.Mine)
			gallery.POST("", jwtAuth, alumniOnly, h.Gallery.Upload)
			gallery.DELETE("/:id", jwtAuth, alumniOnly, h.Gallery.Remove)
		}

		admin := v1.Group("/admin", jwtAuth, adminOnly)
		{
			admin.GET("/profiles", h.Approval.ListProfiles)
			admin.GET("/profiles/export", h.Approval.ExportProfiles)
			admin.PATCH("/profiles/:id/approval", h.Approval.SetApproval)
		}
	}

	return r
}

func health(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, status)
	}
}
