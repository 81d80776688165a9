package container

import (
	"context"
	"log/slog"
	"time"

	"github.com/joshua-takyi/servicios/internal/cache"
	"github.com/joshua-takyi/servicios/internal/config"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
	"github.com/joshua-takyi/servicios/internal/services"
	"github.com/joshua-takyi/servicios/internal/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	Logger    *slog.Logger
	Config    *config.Config
	DB        *gorm.DB
	StartedAt time.Time
	Cache     cache.Cache
	// UploadDir is set when files are kept on local disk and served by the API.
	UploadDir string

	AuthService         *services.AuthService
	ProviderService     *services.ProviderService
	BookingService      *services.BookingService
	ReviewService       *services.ReviewService
	UserService         *services.UserService
	SupportService      *services.SupportService
	NotificationService *services.NotificationService
	// FavouritesService is nil when MongoDB is not configured.
	FavouritesService *services.FavouriteService
}

// NewContainer wires repositories and services. mongoDBClient and c may be nil.
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	db *gorm.DB,
	mongoDBClient *mongo.Client,
	c cache.Cache,
	store uploads.Store,
	tokens *helpers.TokenManager,
) *Container {
	if c == nil {
		c = cache.NoopCache{}
	}
	sql := models.NewSQLRepo(db)
	uploader := uploads.NewUploader(store, cfg.MaxUploadBytes)

	var views models.ProviderViewsRepo
	var favouriteService *services.FavouriteService
	if mongoDBClient != nil {
		mongoRepo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBDatabase)
		views = mongoRepo
		favouriteService = services.NewFavouriteService(mongoRepo, sql)
	}

	notificationService := services.NewNotificationService(sql)
	authService := services.NewAuthService(sql, tokens, c)

	ct := &Container{
		Logger:              logger,
		Config:              cfg,
		DB:                  db,
		StartedAt:           time.Now(),
		Cache:               c,
		AuthService:         authService,
		ProviderService:     services.NewProviderService(authService, sql, uploader, views),
		BookingService:      services.NewBookingService(sql, sql, notificationService, uploader),
		ReviewService:       services.NewReviewService(sql, sql, sql, notificationService, c),
		UserService:         services.NewUserService(sql, c),
		SupportService:      services.NewSupportService(sql),
		NotificationService: notificationService,
		FavouritesService:   favouriteService,
	}
	if local, ok := store.(*uploads.LocalStore); ok {
		ct.UploadDir = local.Root()
	}
	return ct
}

func (ct *Container) PingDB(ctx context.Context) error {
	sqlDB, err := ct.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
