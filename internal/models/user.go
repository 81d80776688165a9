package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient   Role = "CLIENT"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleProvider || r == RoleAdmin
}

type User struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string           `gorm:"uniqueIndex;not null" json:"email"`
	Password  string           `gorm:"not null" json:"-"`
	Name      string           `gorm:"not null" json:"name"`
	Phone     string           `json:"phone,omitempty"`
	Role      Role             `gorm:"type:varchar(16);not null;index" json:"role"`
	Provider  *ProviderProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"providerProfile,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsProvider reports whether the user has a provider profile to act through.
func (u *User) IsProvider() bool {
	return u.Role == RoleProvider && u.Provider != nil
}
