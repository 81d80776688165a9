package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (r *SQLRepo) CreateReview(ctx context.Context, review *Review) (*RatingSummary, error) {
	if err := Validate.Struct(review); err != nil {
		return nil, err
	}

	unlock := r.lockProvider(review.ProviderID)
	defer unlock()

	var summary *RatingSummary
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var provider ProviderProfile
		q := tx.Select("id")
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&provider, "id = ?", review.ProviderID).Error; err != nil {
			return translate(err)
		}

		if err := tx.Create(review).Error; err != nil {
			return translate(err)
		}

		var err error
		summary, err = recomputeRating(tx, review.ProviderID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating review: %w", err)
	}
	return summary, nil
}

// recomputeRating derives the provider aggregate from the reviews table and stores it.
func recomputeRating(tx *gorm.DB, providerID uuid.UUID) (*RatingSummary, error) {
	var row struct {
		Count   int64
		Average float64
	}
	err := tx.Model(&Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("provider_id = ?", providerID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("error aggregating ratings: %w", err)
	}

	summary := &RatingSummary{
		Average: row.Average,
		Count:   row.Count,
	}
	err = tx.Model(&ProviderProfile{}).Where("id = ?", providerID).Updates(map[string]interface{}{
		"rating":        summary.Average,
		"total_reviews": summary.Count,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("error storing rating: %w", err)
	}
	return summary, nil
}

func (r *SQLRepo) GetReviewByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	var review Review
	if err := r.db.WithContext(ctx).Preload("Client").Preload("Provider").First(&review, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (r *SQLRepo) GetReviewByBookingID(ctx context.Context, bookingID uuid.UUID) (*Review, error) {
	var review Review
	if err := r.db.WithContext(ctx).Preload("Client").First(&review, "booking_id = ?", bookingID).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (r *SQLRepo) ListReviewsByProvider(ctx context.Context, providerID uuid.UUID, offset, limit int) ([]Review, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&Review{}).Where("provider_id = ?", providerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("error counting reviews: %w", err)
	}

	var reviews []Review
	err := db.Preload("Client").
		Where("provider_id = ?", providerID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("error listing reviews: %w", err)
	}
	return reviews, total, nil
}

// RatingDistribution returns the number of reviews per star, with every star from 1 to 5 present.
func (r *SQLRepo) RatingDistribution(ctx context.Context, providerID uuid.UUID) (map[int]int64, error) {
	var rows []struct {
		Rating int
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&Review{}).
		Select("rating, COUNT(*) AS count").
		Where("provider_id = ?", providerID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error building distribution: %w", err)
	}

	dist := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, row := range rows {
		dist[row.Rating] = row.Count
	}
	return dist, nil
}

func (r *SQLRepo) ListReviewsByClient(ctx context.Context, clientID uuid.UUID) ([]Review, error) {
	var reviews []Review
	err := r.db.WithContext(ctx).
		Preload("Provider").
		Preload("Provider.User").
		Where("client_id = ?", clientID).
		Order("created_at desc").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("error listing reviews: %w", err)
	}
	return reviews, nil
}

func (r *SQLRepo) RespondToReview(ctx context.Context, id uuid.UUID, response string) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&Review{}).Where("id = ?", id).Updates(map[string]interface{}{
		"provider_response": response,
		"responded_at":      now,
	})
	if res.Error != nil {
		return fmt.Errorf("error responding to review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
