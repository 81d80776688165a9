package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
)

type NotificationService struct {
	repo models.NotificationRepo
}

func NewNotificationService(repo models.NotificationRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify records a notification. Failures are logged and never reach the caller.
func (ns *NotificationService) Notify(ctx context.Context, userID uuid.UUID, typ models.NotificationType, title, message string, meta models.Metadata) {
	n := &models.Notification{
		UserID:   userID,
		Type:     typ,
		Title:    title,
		Message:  message,
		Metadata: meta,
	}
	if err := ns.repo.CreateNotification(ctx, n); err != nil {
		slog.Warn("failed to create notification", "user_id", userID, "type", typ, "error", err)
	}
}

func (ns *NotificationService) List(ctx context.Context, claims *helpers.Claims) ([]models.Notification, error) {
	id, err := callerID(claims)
	if err != nil {
		return nil, err
	}
	list, err := ns.repo.ListNotifications(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Error al obtener las notificaciones", err)
	}
	return list, nil
}
