package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/servicios/internal/container"
	"github.com/joshua-takyi/servicios/internal/handlers"
	"github.com/joshua-takyi/servicios/internal/metrics"
	"github.com/joshua-takyi/servicios/internal/middleware"
	"github.com/joshua-takyi/servicios/internal/models"
	"github.com/joshua-takyi/servicios/internal/uploads"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "X-Session-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-Cache"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(middleware.Recovery(container.Logger))

	auth := middleware.AuthMiddleware(container.AuthService, container.Logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Handler()
	cached := middleware.ResponseCache(container.Cache, cfg.CacheTTL)

	r.GET("/health", handlers.Health(container.StartedAt, container.PingDB))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if container.UploadDir != "" {
		r.StaticFS(uploads.PublicPrefix, http.Dir(container.UploadDir))
	}

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/signup", limiter, handlers.Signup(container.AuthService))
		authRoutes.POST("/signup-client", limiter, handlers.SignupClient(container.AuthService))
		authRoutes.POST("/login", limiter, handlers.Login(container.AuthService))
		authRoutes.GET("/me", auth, handlers.Me(container.AuthService))
	}

	providerRoutes := r.Group("/providers")
	{
		providerRoutes.POST("/register", limiter, handlers.RegisterProvider(container.ProviderService))
		providerRoutes.GET("", cached, handlers.ListProviders(container.ProviderService))
		providerRoutes.GET("/categories/list", cached, handlers.ListCategories(container.ProviderService))
		providerRoutes.GET("/:id", handlers.GetProvider(container.ProviderService))
		providerRoutes.GET("/:id/views", auth, handlers.ProviderViews(container.ProviderService))
	}

	bookingRoutes := r.Group("/bookings", auth)
	{
		bookingRoutes.POST("", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("", handlers.ListBookings(container.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(container.BookingService))
		bookingRoutes.PATCH("/:id/status", middleware.RequireRole(models.RoleProvider), handlers.UpdateBookingStatus(container.BookingService))
		bookingRoutes.PATCH("/:id/cancel", handlers.CancelBooking(container.BookingService))
	}

	reviewRoutes := r.Group("/reviews")
	{
		reviewRoutes.POST("", auth, handlers.CreateReview(container.ReviewService))
		reviewRoutes.GET("/provider/:id", handlers.ListProviderReviews(container.ReviewService))
		reviewRoutes.GET("/booking/:id", handlers.GetBookingReview(container.ReviewService))
		reviewRoutes.GET("/client/:id", handlers.ListClientReviews(container.ReviewService))
		reviewRoutes.PATCH("/:id/response", auth, middleware.RequireRole(models.RoleProvider), handlers.RespondToReview(container.ReviewService))
	}

	userRoutes := r.Group("/users", auth)
	{
		userRoutes.GET("", middleware.RequireRole(models.RoleAdmin), handlers.ListUsers(container.UserService))
		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PATCH("/:id", handlers.UpdateUser(container.UserService))
		userRoutes.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), handlers.DeleteUser(container.UserService))
	}

	r.GET("/notifications", auth, handlers.ListNotifications(container.NotificationService))
	r.POST("/support/contact", limiter, handlers.Contact(container.SupportService))

	if container.FavouritesService != nil {
		favRoutes := r.Group("/favourites", auth)
		{
			favRoutes.GET("", handlers.GetUserFavourites(container.FavouritesService))
			favRoutes.POST("/:providerId", handlers.AddToFavourites(container.FavouritesService))
			favRoutes.DELETE("/:providerId", handlers.RemoveFromFavourite(container.FavouritesService))
		}
	}

	return r
}
