package models

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var Validate = validator.New()

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")

	// ErrStatusChanged means the booking left the expected status before the write landed.
	ErrStatusChanged = errors.New("booking status changed")
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	ListUsers(ctx context.Context, role Role) ([]User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, fields map[string]interface{}, profile *ProfileUpdate) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type ProviderRepo interface {
	ListProviders(ctx context.Context) ([]ProviderProfile, error)
	GetProviderByID(ctx context.Context, id uuid.UUID) (*ProviderProfile, error)
	GetProviderByUserID(ctx context.Context, userID uuid.UUID) (*ProviderProfile, error)
	UpdateProvider(ctx context.Context, id uuid.UUID, fields map[string]interface{}, specialties []string) error
	CountByCategory(ctx context.Context) ([]CategoryCount, error)
}

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error)
	// UpdateBooking writes fields only while the booking is still in the from status.
	UpdateBooking(ctx context.Context, id uuid.UUID, from BookingStatus, fields map[string]interface{}) error
}

type ReviewRepo interface {
	// CreateReview inserts the review and rewrites the provider's rating aggregate atomically.
	CreateReview(ctx context.Context, review *Review) (*RatingSummary, error)
	GetReviewByID(ctx context.Context, id uuid.UUID) (*Review, error)
	GetReviewByBookingID(ctx context.Context, bookingID uuid.UUID) (*Review, error)
	ListReviewsByProvider(ctx context.Context, providerID uuid.UUID, offset, limit int) ([]Review, int64, error)
	RatingDistribution(ctx context.Context, providerID uuid.UUID) (map[int]int64, error)
	ListReviewsByClient(ctx context.Context, clientID uuid.UUID) ([]Review, error)
	RespondToReview(ctx context.Context, id uuid.UUID, response string) error
}

type NotificationRepo interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID uuid.UUID) ([]Notification, error)
}

type SupportRepo interface {
	CreateSupportMessage(ctx context.Context, msg *SupportMessage) error
}

// SQLRepo implements the relational repositories on top of a gorm handle.
type SQLRepo struct {
	db            *gorm.DB
	providerLocks sync.Map
}

func NewSQLRepo(db *gorm.DB) *SQLRepo {
	return &SQLRepo{db: db}
}

func (r *SQLRepo) DB() *gorm.DB {
	return r.db
}

// AllModels is the AutoMigrate list, parents before children.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&ProviderProfile{},
		&ProviderAttachment{},
		&ProviderReference{},
		&Booking{},
		&BookingImage{},
		&Review{},
		&Notification{},
		&SupportMessage{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// translate maps driver-level errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

func (r *SQLRepo) lockProvider(id uuid.UUID) func() {
	v, _ := r.providerLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, errors.New("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}
