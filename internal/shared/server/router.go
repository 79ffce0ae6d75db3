package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authhandler "housy-backend/internal/auth"
	"housy-backend/internal/enrichment"
	"housy-backend/internal/leads"
	"housy-backend/internal/photos"
	"housy-backend/internal/properties"
	"housy-backend/internal/services/health"
	"housy-backend/internal/shared/config"
	"housy-backend/internal/shared/metrics"
	"housy-backend/internal/shared/server/middleware"
	"housy-backend/internal/shared/server/respond"
	"housy-backend/internal/users"
	"housy-backend/internal/visits"
)

const (
	rateGroupDefault = "DEFAULT"
	rateGroupAuth    = "AUTH"
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config     config.Config
	Tokens     middleware.TokenValidator
	Health     *health.Service
	Auth       *authhandler.Handler
	GoogleAuth *authhandler.GoogleService
	Users      *users.Handler
	UsersSvc   *users.Service
	Properties *properties.Handler
	Photos     *photos.Handler
	Leads      *leads.Handler
	Visits     *visits.Handler
	Enrichment *enrichment.Handler
	// FilesDir is served under /files when photos are stored on local disk.
	FilesDir    string
	RateLimiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	if deps.FilesDir != "" {
		r.Static("/files", deps.FilesDir)
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.OK(c, gin.H{"ok": true})
			return
		}
		status, ok := deps.Health.Status(c.Request.Context())
		if !ok {
			respond.JSON(c, http.StatusServiceUnavailable, status)
			return
		}
		respond.OK(c, status)
	})
	api.GET("/metrics", metrics.Handler())

	public := api.Group("", rateLimit(deps.RateLimiter))
	if deps.Auth != nil {
		deps.Auth.RegisterPublicRoutes(public)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(public)
	}
	if deps.Properties != nil {
		deps.Properties.RegisterPublicRoutes(public)
	}

	protected := api.Group("", middleware.Auth(deps.Tokens), rateLimit(deps.RateLimiter))
	if deps.Auth != nil {
		deps.Auth.RegisterRoutes(protected)
	}
	if deps.UsersSvc != nil {
		registerMeRoutes(protected, deps.UsersSvc)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(protected)
	}
	if deps.Properties != nil {
		deps.Properties.RegisterRoutes(protected)
	}
	if deps.Photos != nil {
		deps.Photos.RegisterRoutes(protected)
	}
	if deps.Leads != nil {
		deps.Leads.RegisterRoutes(protected)
	}
	if deps.Visits != nil {
		deps.Visits.RegisterRoutes(protected)
	}
	if deps.Enrichment != nil {
		deps.Enrichment.RegisterRoutes(protected)
	}

	return r
}

// rateLimit applies a stricter budget to credential endpoints.
func rateLimit(limiter *middleware.RateLimiter) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: rateGroupDefault,
		Limiter:      limiter,
		GroupFor: func(c *gin.Context) string {
			if strings.HasPrefix(c.FullPath(), "/api/v1/auth/") && c.Request.Method == http.MethodPost {
				return rateGroupAuth
			}
			return rateGroupDefault
		},
		Rules: map[string]middleware.RateLimitRule{
			rateGroupDefault: {Rate: 20, Burst: 40},
			rateGroupAuth:    {Rate: 1, Burst: 5},
		},
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
