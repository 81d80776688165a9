package models

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRepo(t *testing.T) *SQLRepo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, AutoMigrate(db))
	return NewSQLRepo(db)
}

func seedProvider(t *testing.T, repo *SQLRepo, email string) *User {
	t.Helper()
	user := &User{
		Email:    email,
		Password: "hash",
		Name:     "Proveedor",
		Role:     RoleProvider,
		Provider: &ProviderProfile{
			ServiceCategory: CategoryPlomeria,
			Description:     "Reparaciones",
			Experience:      4,
			PricePerHour:    20,
			Location:        "Lima",
			Available:       true,
			Specialties:     []string{"tuberias", "griferia"},
			PortfolioImages: []string{"/uploads/portfolio/a.png"},
		},
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func seedClient(t *testing.T, repo *SQLRepo, email string) *User {
	t.Helper()
	user := &User{Email: email, Password: "hash", Name: "Cliente", Role: RoleClient}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func seedCompletedBooking(t *testing.T, repo *SQLRepo, clientID, providerID uuid.UUID) *Booking {
	t.Helper()
	b := &Booking{
		ClientID:    clientID,
		ProviderID:  providerID,
		ServiceDate: time.Now().Add(24 * time.Hour),
		Description: "Fuga",
		Address:     "Av. 1",
		Status:      BookingCompleted,
	}
	require.NoError(t, repo.CreateBooking(context.Background(), b))
	return b
}

func TestCreateUserKeepsListFieldsInOrder(t *testing.T) {
	repo := setupTestRepo(t)
	user := seedProvider(t, repo, "Pro@Example.com")

	got, err := repo.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "pro@example.com", got.Email)
	require.NotNil(t, got.Provider)
	assert.Equal(t, []string{"tuberias", "griferia"}, got.Provider.Specialties)
	assert.Equal(t, []string{}, got.Provider.Certifications)
	assert.Equal(t, []string{"/uploads/portfolio/a.png"}, got.Provider.PortfolioImages)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := setupTestRepo(t)
	seedClient(t, repo, "dup@example.com")

	err := repo.CreateUser(context.Background(), &User{Email: "DUP@example.com", Password: "x", Name: "Otro", Role: RoleClient})
	assert.ErrorIs(t, err, ErrDuplicate)

	exists, err := repo.EmailExists(context.Background(), "dup@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGetUserByIDNotFound(t *testing.T) {
	repo := setupTestRepo(t)
	_, err := repo.GetUserByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateReviewRecomputesAggregate(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	pro := seedProvider(t, repo, "pro@example.com")
	client := seedClient(t, repo, "cli@example.com")

	ratings := []int{5, 4, 4}
	for _, rating := range ratings {
		b := seedCompletedBooking(t, repo, client.ID, pro.Provider.ID)
		_, err := repo.CreateReview(ctx, &Review{
			BookingID:  b.ID,
			ClientID:   client.ID,
			ProviderID: pro.Provider.ID,
			Rating:     rating,
		})
		require.NoError(t, err)
	}

	provider, err := repo.GetProviderByID(ctx, pro.Provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, provider.TotalReviews)
	assert.InDelta(t, 13.0/3.0, provider.Rating, 1e-9)

	dist, err := repo.RatingDistribution(ctx, pro.Provider.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{1: 0, 2: 0, 3: 0, 4: 2, 5: 1}, dist)
}

func TestCreateReviewSameBookingTwice(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	pro := seedProvider(t, repo, "pro@example.com")
	client := seedClient(t, repo, "cli@example.com")
	b := seedCompletedBooking(t, repo, client.ID, pro.Provider.ID)

	review := func() *Review {
		return &Review{BookingID: b.ID, ClientID: client.ID, ProviderID: pro.Provider.ID, Rating: 3}
	}
	_, err := repo.CreateReview(ctx, review())
	require.NoError(t, err)

	_, err = repo.CreateReview(ctx, review())
	assert.ErrorIs(t, err, ErrDuplicate)

	provider, err := repo.GetProviderByID(ctx, pro.Provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.TotalReviews)
}

func TestConcurrentReviewsForSameProvider(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	pro := seedProvider(t, repo, "pro@example.com")
	client := seedClient(t, repo, "cli@example.com")
	first := seedCompletedBooking(t, repo, client.ID, pro.Provider.ID)
	second := seedCompletedBooking(t, repo, client.ID, pro.Provider.ID)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, tc := range []struct {
		booking *Booking
		rating  int
	}{{first, 4}, {second, 2}} {
		wg.Add(1)
		go func(b *Booking, rating int) {
			defer wg.Done()
			_, err := repo.CreateReview(ctx, &Review{
				BookingID:  b.ID,
				ClientID:   client.ID,
				ProviderID: pro.Provider.ID,
				Rating:     rating,
			})
			errs <- err
		}(tc.booking, tc.rating)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	provider, err := repo.GetProviderByID(ctx, pro.Provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.TotalReviews)
	assert.InDelta(t, 3.0, provider.Rating, 1e-9)
}

func TestUpdateProviderReplacesSpecialties(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	pro := seedProvider(t, repo, "pro@example.com")

	err := repo.UpdateProvider(ctx, pro.Provider.ID, map[string]interface{}{"price_per_hour": 35.5}, []string{"calentadores"})
	require.NoError(t, err)

	provider, err := repo.GetProviderByID(ctx, pro.Provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 35.5, provider.PricePerHour)
	assert.Equal(t, []string{"calentadores"}, provider.Specialties)
	assert.Equal(t, []string{"/uploads/portfolio/a.png"}, provider.PortfolioImages)
}

func TestCountByCategory(t *testing.T) {
	repo := setupTestRepo(t)
	seedProvider(t, repo, "a@example.com")
	seedProvider(t, repo, "b@example.com")

	counts, err := repo.CountByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, CategoryPlomeria, counts[0].Category)
	assert.Equal(t, int64(2), counts[0].Count)
}

func TestListBookingsFiltersAndPreloads(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	pro := seedProvider(t, repo, "pro@example.com")
	client := seedClient(t, repo, "cli@example.com")
	other := seedClient(t, repo, "other@example.com")

	pending := &Booking{
		ClientID:      client.ID,
		ProviderID:    pro.Provider.ID,
		ServiceDate:   time.Now(),
		Description:   "Enchufe",
		Address:       "Calle 2",
		ProblemImages: []string{"/uploads/problems/x.jpg"},
	}
	require.NoError(t, repo.CreateBooking(ctx, pending))
	seedCompletedBooking(t, repo, other.ID, pro.Provider.ID)

	mine, err := repo.ListBookings(ctx, BookingFilter{ClientID: &client.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, BookingPending, mine[0].Status)
	assert.Equal(t, []string{"/uploads/problems/x.jpg"}, mine[0].ProblemImages)
	assert.Nil(t, mine[0].Review)
	require.NotNil(t, mine[0].Provider)
	require.NotNil(t, mine[0].Provider.User)

	completed, err := repo.ListBookings(ctx, BookingFilter{ProviderID: &pro.Provider.ID, Status: BookingCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, other.ID, completed[0].ClientID)
}

func TestUpdateBookingOnlyFromExpectedStatus(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	pro := seedProvider(t, repo, "pro@example.com")
	client := seedClient(t, repo, "cli@example.com")

	b := &Booking{
		ClientID:    client.ID,
		ProviderID:  pro.Provider.ID,
		ServiceDate: time.Now(),
		Description: "Enchufe",
		Address:     "Calle 2",
		Status:      BookingInProgress,
	}
	require.NoError(t, repo.CreateBooking(ctx, b))

	// Both writers read IN_PROGRESS; only the first may land.
	err := repo.UpdateBooking(ctx, b.ID, BookingInProgress, map[string]interface{}{"status": string(BookingCompleted)})
	require.NoError(t, err)
	err = repo.UpdateBooking(ctx, b.ID, BookingInProgress, map[string]interface{}{"status": string(BookingCancelled)})
	assert.ErrorIs(t, err, ErrStatusChanged)

	stored, err := repo.GetBookingByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, BookingCompleted, stored.Status)

	err = repo.UpdateBooking(ctx, uuid.New(), BookingPending, map[string]interface{}{"status": string(BookingAccepted)})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserRollsBackWhenProfileWriteFails(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	client := seedClient(t, repo, "cli@example.com")

	err := repo.UpdateUser(ctx, client.ID, map[string]interface{}{"name": "Nuevo"}, &ProfileUpdate{
		ProviderID: uuid.New(),
		Fields:     map[string]interface{}{"description": "x"},
	})
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := repo.GetUserByID(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cliente", stored.Name)
}

func TestDeleteClientRecomputesProviderRating(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	pro := seedProvider(t, repo, "pro@example.com")
	keep := seedClient(t, repo, "keep@example.com")
	gone := seedClient(t, repo, "gone@example.com")

	for _, tc := range []struct {
		client *User
		rating int
	}{{keep, 5}, {gone, 1}} {
		b := seedCompletedBooking(t, repo, tc.client.ID, pro.Provider.ID)
		_, err := repo.CreateReview(ctx, &Review{BookingID: b.ID, ClientID: tc.client.ID, ProviderID: pro.Provider.ID, Rating: tc.rating})
		require.NoError(t, err)
	}

	require.NoError(t, repo.DeleteUser(ctx, gone.ID))

	provider, err := repo.GetProviderByID(ctx, pro.Provider.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.TotalReviews)
	assert.InDelta(t, 5.0, provider.Rating, 1e-9)

	_, err = repo.GetUserByID(ctx, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMetadataRoundTripThroughColumn(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	user := seedClient(t, repo, "n@example.com")

	n := &Notification{
		UserID:   user.ID,
		Type:     NotificationNewReview,
		Title:    "Nueva reseña",
		Message:  "Recibiste 5 estrellas",
		Metadata: Metadata{"rating": 5, "bookingId": "abc"},
	}
	require.NoError(t, repo.CreateNotification(ctx, n))

	list, err := repo.ListNotifications(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "abc", list[0].Metadata["bookingId"])
	assert.Equal(t, float64(5), list[0].Metadata["rating"])
}
