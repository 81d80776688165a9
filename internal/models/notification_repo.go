package models

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func (r *SQLRepo) CreateNotification(ctx context.Context, n *Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

func (r *SQLRepo) ListNotifications(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	var out []Notification
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("error listing notifications: %w", err)
	}
	return out, nil
}

func (r *SQLRepo) CreateSupportMessage(ctx context.Context, msg *SupportMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("error saving support message: %w", err)
	}
	return nil
}
