package routes

import (
	"time"

	"companionhub/handlers"
	"companionhub/middleware"
	"companionhub/models"
	"companionhub/services/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options carries what route registration needs besides the handlers.
type Options struct {
	Gate           *auth.Gate
	AllowedOrigins []string
	Logger         *zap.Logger
}

var (
	seekerOnly    = auth.Roles(models.RoleSeeker)
	seekerOrAdmin = auth.Roles(models.RoleSeeker, models.RoleAdmin)
	adminOnly     = auth.Roles(models.RoleAdmin)
	anyRole       = auth.AnyRole()
)

// RegisterPublicRoutes registers the welcome and health endpoints.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/", hb.Health.Welcome)
	r.GET("/health", hb.Health.Health)
}

// RegisterAuthRoutes registers the unauthenticated identity endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.Auth.Register)
		api.POST("/login", hb.Auth.Login)
		api.POST("/logout", hb.Auth.Logout)
	}
}

// RegisterUserRoutes registers profile and companion discovery endpoints.
func RegisterUserRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, opts Options) {
	users := api.Group("/users", middleware.RequireRoles(anyRole, opts.Logger))
	{
		users.GET("/profile", hb.Users.GetProfile)
		users.PUT("/profile", hb.Users.UpdateProfile)
		users.GET("/companions", hb.Users.ListCompanions)
	}
}

// RegisterBookingRoutes registers the booking engine and payment endpoints.
// Role checks run before any handler binds the body.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, opts Options) {
	role := func(set auth.RoleSet) gin.HandlerFunc { return middleware.RequireRoles(set, opts.Logger) }

	bookings := api.Group("/bookings")
	{
		bookings.POST("", role(seekerOnly), hb.Bookings.Create)
		bookings.GET("", role(anyRole), hb.Bookings.List)
		bookings.GET("/:id", role(anyRole), hb.Bookings.Get)
		bookings.PATCH("/:id", role(seekerOrAdmin), hb.Bookings.UpdateDetails)
		bookings.PATCH("/:id/status", role(anyRole), hb.Bookings.UpdateStatus)
		bookings.POST("/:id/rating", role(seekerOnly), hb.Bookings.Rate)
		bookings.POST("/:id/payment", role(seekerOnly), hb.Payments.Initiate)
		bookings.POST("/:id/refund", role(adminOnly), hb.Payments.Refund)
	}
	api.POST("/payments/:id/confirm", role(anyRole), hb.Payments.Confirm)
}

// RegisterChatRoutes registers chat and the notification stream.
func RegisterChatRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, opts Options) {
	chat := api.Group("/chat", middleware.RequireRoles(anyRole, opts.Logger))
	{
		chat.POST("", hb.Chat.CreateOrGet)
		chat.POST("/messages", hb.Chat.SendMessage)
		chat.GET("/:id/messages", hb.Chat.ListMessages)
	}
	api.GET("/events/stream", middleware.RequireRoles(anyRole, opts.Logger), hb.Events.Stream)
}

// RegisterAdminRoutes registers account moderation endpoints.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, opts Options) {
	admin := api.Group("/admin", middleware.RequireRoles(adminOnly, opts.Logger))
	{
		admin.GET("/users", hb.Admin.ListUsers)
		admin.PUT("/users/:id/verify", hb.Admin.SetVerified)
		admin.PUT("/users/:id/active", hb.Admin.SetActive)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	corsConfig := cors.Config{
		AllowOrigins:  opts.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.AllowedOrigins) != 1 || opts.AllowedOrigins[0] != "*" {
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	RegisterPublicRoutes(r, hb)
	RegisterAuthRoutes(r, hb)

	// Everything else under /api passes the access gate.
	api := r.Group("/api", middleware.Authenticate(opts.Gate, opts.Logger))
	RegisterUserRoutes(api, hb, opts)
	RegisterBookingRoutes(api, hb, opts)
	RegisterChatRoutes(api, hb, opts)
	RegisterAdminRoutes(api, hb, opts)
}
