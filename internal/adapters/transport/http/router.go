package http

import (
	"context"
	"time"

	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/contacts-service/internal/infra/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires middleware and routes. ctx bounds the rate limiter's
// background sweeper.
func NewRouter(ctx context.Context, cfg *config.Config, h *Handler, metrics *middleware.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(h.log))
	if metrics != nil {
		router.Use(metrics.Middleware())
	}

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
			middleware.RequestIDHeader,
		},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = cfg.AllowCredentials
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", h.health)
	if metrics != nil {
		router.GET("/metrics", metrics.Handler())
	}

	api := router.Group("/api")
	api.Use(middleware.NewRateLimitPerIP(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, 10_000, time.Hour))
	requireUser := middleware.RequireUser(h.auth, h.log)

	auth := api.Group("/auth")
	auth.POST("/signup", h.signup)
	auth.POST("/login", h.login)
	auth.GET("/refresh_token", h.refreshToken)
	auth.POST("/logout", requireUser, h.logout)
	auth.GET("/confirmed_email/:token", h.confirmedEmail)
	auth.POST("/request_email", h.requestEmail)
	auth.POST("/password-reset-request", h.passwordResetRequest)
	auth.POST("/password-reset", h.passwordReset)
	auth.GET("/password-reset/:token", h.passwordResetForm)

	users := api.Group("/users", requireUser)
	users.GET("/me", h.me)
	users.PATCH("/avatar", h.updateAvatar)

	contacts := api.Group("/contact", requireUser)
	contacts.GET("/", h.listContacts)
	contacts.POST("/", h.createContact)
	contacts.GET("/search", h.searchContacts)
	contacts.GET("/upcoming_birthdays", h.upcomingBirthdays)
	contacts.GET("/:id", h.getContact)
	contacts.PUT("/:id", h.updateContact)
	contacts.DELETE("/:id", h.deleteContact)

	return router
}
