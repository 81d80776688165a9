package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/cache"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/metrics"
	"github.com/joshua-takyi/servicios/internal/models"
)

const reviewNotFound = "Reseña no encontrada"

type CreateReviewInput struct {
	BookingID string `json:"bookingId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type ReviewResult struct {
	Review        *models.Review `json:"review"`
	AverageRating float64        `json:"averageRating"`
	TotalReviews  int64          `json:"totalReviews"`
}

type ReviewStats struct {
	AverageRating float64       `json:"averageRating"`
	TotalReviews  int           `json:"totalReviews"`
	Distribution  map[int]int64 `json:"ratingDistribution"`
}

type ProviderReviews struct {
	Reviews    []models.Review   `json:"reviews"`
	Pagination models.Pagination `json:"pagination"`
	Stats      ReviewStats       `json:"stats"`
}

type ReviewService struct {
	reviews       models.ReviewRepo
	bookings      models.BookingRepo
	providers     models.ProviderRepo
	notifications *NotificationService
	cache         cache.Cache
}

func NewReviewService(reviews models.ReviewRepo, bookings models.BookingRepo, providers models.ProviderRepo, notifications *NotificationService, c cache.Cache) *ReviewService {
	return &ReviewService{
		reviews:       reviews,
		bookings:      bookings,
		providers:     providers,
		notifications: notifications,
		cache:         c,
	}
}

func (rs *ReviewService) Create(ctx context.Context, claims *helpers.Claims, in CreateReviewInput) (*ReviewResult, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.Validation("La calificación debe estar entre 1 y 5")
	}
	if claims.Role != models.RoleClient {
		return nil, apperr.Forbidden("Solo los clientes pueden dejar reseñas")
	}
	clientID, err := callerID(claims)
	if err != nil {
		return nil, err
	}

	bookingID, err := parseID(in.BookingID, bookingNotFound)
	if err != nil {
		return nil, err
	}
	booking, err := rs.bookings.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, repoError(err, bookingNotFound)
	}
	if booking.ClientID != clientID {
		return nil, apperr.Forbidden("No puedes reseñar una reserva que no es tuya")
	}
	if booking.Status != models.BookingCompleted {
		return nil, apperr.Validation("Solo se pueden reseñar servicios completados")
	}
	if booking.Review != nil {
		return nil, apperr.Conflict("Esta reserva ya tiene una reseña")
	}

	review := &models.Review{
		BookingID:  booking.ID,
		ClientID:   clientID,
		ProviderID: booking.ProviderID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
	}
	summary, err := rs.reviews.CreateReview(ctx, review)
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, apperr.Conflict("Esta reserva ya tiene una reseña")
		}
		return nil, apperr.Internal("Error al crear la reseña", err)
	}

	metrics.ReviewCreated()
	invalidateProviders(ctx, rs.cache)
	if booking.Provider != nil {
		rs.notifications.Notify(ctx, booking.Provider.UserID, models.NotificationNewReview,
			"Nueva reseña",
			fmt.Sprintf("Recibiste una reseña de %d estrellas", in.Rating),
			models.Metadata{"reviewId": review.ID.String(), "bookingId": booking.ID.String(), "rating": in.Rating},
		)
	}

	return &ReviewResult{Review: review, AverageRating: summary.Average, TotalReviews: summary.Count}, nil
}

func (rs *ReviewService) ListForProvider(ctx context.Context, rawProviderID string, page, limit int) (*ProviderReviews, error) {
	providerID, err := parseID(rawProviderID, providerNotFound)
	if err != nil {
		return nil, err
	}
	provider, err := rs.providers.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, repoError(err, providerNotFound)
	}

	page, limit = models.NormalizePage(page, limit)
	reviews, total, err := rs.reviews.ListReviewsByProvider(ctx, providerID, (page-1)*limit, limit)
	if err != nil {
		return nil, apperr.Internal("Error al obtener las reseñas", err)
	}
	dist, err := rs.reviews.RatingDistribution(ctx, providerID)
	if err != nil {
		return nil, apperr.Internal("Error al obtener las reseñas", err)
	}

	return &ProviderReviews{
		Reviews:    reviews,
		Pagination: models.NewPagination(page, limit, total),
		Stats: ReviewStats{
			AverageRating: provider.Rating,
			TotalReviews:  provider.TotalReviews,
			Distribution:  dist,
		},
	}, nil
}

func (rs *ReviewService) GetForBooking(ctx context.Context, rawBookingID string) (*models.Review, error) {
	const msg = "No hay reseña para esta reserva"
	bookingID, err := parseID(rawBookingID, msg)
	if err != nil {
		return nil, err
	}
	review, err := rs.reviews.GetReviewByBookingID(ctx, bookingID)
	if err != nil {
		return nil, repoError(err, msg)
	}
	return review, nil
}

// Respond stores the provider's answer to a review and notifies its author.
func (rs *ReviewService) Respond(ctx context.Context, claims *helpers.Claims, rawID, text string) (*models.Review, error) {
	id, err := parseID(rawID, reviewNotFound)
	if err != nil {
		return nil, err
	}
	review, err := rs.reviews.GetReviewByID(ctx, id)
	if err != nil {
		return nil, repoError(err, reviewNotFound)
	}
	if review.Provider == nil || claims.UserID != review.Provider.UserID.String() {
		return nil, apperr.Forbidden("Solo el proveedor reseñado puede responder")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("La respuesta no puede estar vacía")
	}

	if err := rs.reviews.RespondToReview(ctx, review.ID, text); err != nil {
		return nil, repoError(err, reviewNotFound)
	}
	rs.notifications.Notify(ctx, review.ClientID, models.NotificationReviewResponse,
		"Respuesta a tu reseña",
		"El proveedor respondió a tu reseña",
		models.Metadata{"reviewId": review.ID.String(), "bookingId": review.BookingID.String()},
	)

	updated, err := rs.reviews.GetReviewByID(ctx, review.ID)
	if err != nil {
		return nil, repoError(err, reviewNotFound)
	}
	return updated, nil
}

func (rs *ReviewService) ListForClient(ctx context.Context, rawClientID string) ([]models.Review, error) {
	clientID, err := uuid.Parse(strings.TrimSpace(rawClientID))
	if err != nil {
		return []models.Review{}, nil
	}
	reviews, err := rs.reviews.ListReviewsByClient(ctx, clientID)
	if err != nil {
		return nil, apperr.Internal("Error al obtener las reseñas", err)
	}
	return reviews, nil
}
