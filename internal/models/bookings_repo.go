package models

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func bookingPreloads(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Client").
		Preload("Provider").
		Preload("Provider.User").
		Preload("Review").
		Preload("Images", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") })
}

func (r *SQLRepo) CreateBooking(ctx context.Context, booking *Booking) error {
	if err := r.db.WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("error creating booking: %w", translate(err))
	}
	return nil
}

func (r *SQLRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := bookingPreloads(r.db.WithContext(ctx)).First(&booking, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &booking, nil
}

func (r *SQLRepo) ListBookings(ctx context.Context, filter BookingFilter) ([]Booking, error) {
	q := bookingPreloads(r.db.WithContext(ctx)).Order("created_at desc")
	if filter.ClientID != nil {
		q = q.Where("client_id = ?", *filter.ClientID)
	}
	if filter.ProviderID != nil {
		q = q.Where("provider_id = ?", *filter.ProviderID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	var bookings []Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	return bookings, nil
}

func (r *SQLRepo) UpdateBooking(ctx context.Context, id uuid.UUID, from BookingStatus, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("error updating booking: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("error updating booking: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStatusChanged
}
