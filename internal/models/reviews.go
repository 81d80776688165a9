package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"bookingId"`
	ClientID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"clientId"`
	Client           *User            `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty"`
	ProviderID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"providerId"`
	Provider         *ProviderProfile `gorm:"foreignKey:ProviderID;constraint:OnDelete:CASCADE" json:"provider,omitempty"`
	Rating           int              `gorm:"not null" json:"rating" validate:"required,min=1,max=5"`
	Comment          string           `gorm:"type:text" json:"comment"`
	ProviderResponse *string          `gorm:"type:text" json:"providerResponse"`
	RespondedAt      *time.Time       `json:"respondedAt,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// RatingSummary is the recomputed aggregate written back onto a provider profile.
type RatingSummary struct {
	Average float64 `json:"averageRating"`
	Count   int64   `json:"totalReviews"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
