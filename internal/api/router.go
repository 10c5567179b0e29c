package api

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"campus-rms-console/config"
	"campus-rms-console/internal/metrics"
	"campus-rms-console/internal/mw"
	"campus-rms-console/internal/policy"
)

// NewRouter creates and configures a new Gin router. A nil gatherer leaves
// /metrics out.
func NewRouter(h *Handler, cfg *config.Config, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), mw.Logger(logger))

	r.GET("/healthz", h.Health)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}

	cookie := cfg.Session.CookieName
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, mw.ClientKey)

	// Views are cached per identity and dropped on any successful write.
	cacheStore := cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.Server.CacheTTL)

	api := r.Group("/api")
	api.Use(mw.FlushOnWrite(cacheStore))

	// Anonymous callers are limited per IP, sessions per identity once resolved.
	public := api.Group("", rateLimiter)
	{
		public.POST("/auth/login", h.Login)
		public.POST("/auth/register", h.Register)
		public.GET("/options", h.Options)
		public.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	authed := api.Group("")
	authed.Use(mw.Session(h.sessions, cookie), rateLimiter, mw.OneMutation())
	{
		authed.POST("/auth/logout", h.Logout)
		authed.GET("/me", h.Me)
		authed.GET("/navigation", h.Navigation)
		authed.GET("/dashboard", caching, h.Dashboard)

		// Identities may read and edit themselves; the handlers check that.
		authed.GET("/users/:id", h.GetUser)
		authed.PUT("/users/:id", h.UpdateUser)

		users := authed.Group("/users", mw.RequireSection(policy.SectionUsers))
		users.GET("", caching, h.ListUsers)
		users.POST("", h.CreateUser)
		users.POST("/:id/deactivate", h.DeactivateUser)
		users.DELETE("/:id", h.DeleteUser)

		authed.GET("/resources", caching, h.ListResources)
		authed.GET("/resources/available", caching, h.ListAvailableResources)
		authed.GET("/resources/:id", caching, h.GetResource)
		resources := authed.Group("/resources", mw.RequireSection(policy.SectionResources))
		resources.POST("", h.CreateResource)
		resources.PUT("/:id", h.UpdateResource)
		resources.DELETE("/:id", h.DeleteResource)

		bookings := authed.Group("/bookings", mw.RequireSection(policy.SectionBookings))
		bookings.GET("", caching, h.ListBookings)
		bookings.GET("/upcoming", caching, h.ListUpcomingBookings)
		bookings.GET("/:id", caching, h.GetBooking)
		bookings.POST("", h.CreateBooking)
		bookings.PUT("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.DeleteBooking)
		bookings.POST("/:id/approve", h.ApproveBooking)
		bookings.POST("/:id/reject", h.RejectBooking)

		authed.GET("/subscriptions", h.GetSubscription)
		authed.PUT("/subscriptions", h.PutSubscription)
		authed.DELETE("/subscriptions", h.DeleteSubscription)
	}

	return r
}
