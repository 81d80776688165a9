package models

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *SQLRepo) ListProviders(ctx context.Context) ([]ProviderProfile, error) {
	var providers []ProviderProfile
	q := preloadProvider(r.db.WithContext(ctx).Preload("User"), "")
	if err := q.Find(&providers).Error; err != nil {
		return nil, fmt.Errorf("error listing providers: %w", err)
	}
	return providers, nil
}

func (r *SQLRepo) GetProviderByID(ctx context.Context, id uuid.UUID) (*ProviderProfile, error) {
	var provider ProviderProfile
	q := preloadProvider(r.db.WithContext(ctx).Preload("User"), "")
	if err := q.First(&provider, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &provider, nil
}

func (r *SQLRepo) GetProviderByUserID(ctx context.Context, userID uuid.UUID) (*ProviderProfile, error) {
	var provider ProviderProfile
	if err := r.db.WithContext(ctx).First(&provider, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &provider, nil
}

// UpdateProvider applies column updates and, when specialties is non-nil, replaces the specialty list.
func (r *SQLRepo) UpdateProvider(ctx context.Context, id uuid.UUID, fields map[string]interface{}, specialties []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return updateProvider(tx, id, fields, specialties)
	})
}

func updateProvider(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}, specialties []string) error {
	if len(fields) > 0 {
		res := tx.Model(&ProviderProfile{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return fmt.Errorf("error updating provider: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
	}
	if specialties == nil {
		return nil
	}
	err := tx.Where("provider_id = ? AND kind = ?", id, string(AttachmentSpecialty)).Delete(&ProviderAttachment{}).Error
	if err != nil {
		return fmt.Errorf("error clearing specialties: %w", err)
	}
	rows := make([]ProviderAttachment, 0, len(specialties))
	for i, s := range specialties {
		rows = append(rows, ProviderAttachment{ProviderID: id, Kind: AttachmentSpecialty, Value: s, Position: i})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *SQLRepo) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := r.db.WithContext(ctx).Model(&ProviderProfile{}).
		Select("service_category AS category, COUNT(*) AS count").
		Group("service_category").
		Order("count DESC, service_category").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("error counting categories: %w", err)
	}
	return counts, nil
}
