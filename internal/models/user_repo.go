package models

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func preloadProvider(db *gorm.DB, prefix string) *gorm.DB {
	return db.
		Preload(prefix+"Attachments", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		Preload(prefix + "References")
}

func (r *SQLRepo) CreateUser(ctx context.Context, user *User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Provider != nil {
		user.Provider.BuildAttachments()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("error creating user: %w", translate(err))
	}
	return nil
}

func (r *SQLRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	q := preloadProvider(r.db.WithContext(ctx).Preload("Provider"), "Provider.")
	if err := q.First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *SQLRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Preload("Provider").
		First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *SQLRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return count > 0, nil
}

func (r *SQLRepo) ListUsers(ctx context.Context, role Role) ([]User, error) {
	q := r.db.WithContext(ctx).Preload("Provider").Order("created_at desc")
	if role != "" {
		q = q.Where("role = ?", string(role))
	}
	var users []User
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// ProfileUpdate is the provider half of an account update.
type ProfileUpdate struct {
	ProviderID  uuid.UUID
	Fields      map[string]interface{}
	Specialties []string
}

// UpdateUser writes the user columns and, when profile is set, the provider profile in one transaction.
func (r *SQLRepo) UpdateUser(ctx context.Context, id uuid.UUID, fields map[string]interface{}, profile *ProfileUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			res := tx.Model(&User{}).Where("id = ?", id).Updates(fields)
			if res.Error != nil {
				return fmt.Errorf("error updating user: %w", translate(res.Error))
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		if profile == nil {
			return nil
		}
		return updateProvider(tx, profile.ProviderID, profile.Fields, profile.Specialties)
	})
}

// DeleteUser removes the user together with the rows that hang off it.
func (r *SQLRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Preload("Provider").First(&user, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if user.Provider != nil {
			pid := user.Provider.ID
			if err := tx.Where("provider_id = ?", pid).Delete(&ProviderAttachment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("provider_id = ?", pid).Delete(&ProviderReference{}).Error; err != nil {
				return err
			}
			if err := tx.Where("provider_id = ?", pid).Delete(&Review{}).Error; err != nil {
				return err
			}
			if err := deleteBookings(tx, "provider_id = ?", pid); err != nil {
				return err
			}
			if err := tx.Delete(&ProviderProfile{}, "id = ?", pid).Error; err != nil {
				return err
			}
		}
		var reviewed []uuid.UUID
		if err := tx.Model(&Review{}).Where("client_id = ?", id).Distinct().Pluck("provider_id", &reviewed).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&Review{}).Error; err != nil {
			return err
		}
		for _, pid := range reviewed {
			if _, err := recomputeRating(tx, pid); err != nil {
				return err
			}
		}
		if err := deleteBookings(tx, "client_id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&Notification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&User{}, "id = ?", id).Error
	})
}

func deleteBookings(tx *gorm.DB, cond string, arg interface{}) error {
	sub := tx.Model(&Booking{}).Select("id").Where(cond, arg)
	if err := tx.Where("booking_id IN (?)", sub).Delete(&BookingImage{}).Error; err != nil {
		return err
	}
	return tx.Where(cond, arg).Delete(&Booking{}).Error
}
