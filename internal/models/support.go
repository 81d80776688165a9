package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupportMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"nombre"`
	Email     string    `gorm:"not null;index" json:"email"`
	Subject   string    `gorm:"not null" json:"asunto"`
	Message   string    `gorm:"type:text;not null" json:"mensaje"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *SupportMessage) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
