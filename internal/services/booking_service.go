package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/metrics"
	"github.com/joshua-takyi/servicios/internal/models"
	"github.com/joshua-takyi/servicios/internal/uploads"
)

const bookingNotFound = "Reserva no encontrada"

type CreateBookingInput struct {
	ProviderID     string   `json:"providerId" form:"providerId"`
	ServiceDate    string   `json:"serviceDate" form:"serviceDate"`
	ServiceTime    string   `json:"serviceTime" form:"serviceTime"`
	Description    string   `json:"description" form:"description"`
	Address        string   `json:"address" form:"address"`
	EstimatedHours *float64 `json:"estimatedHours" form:"estimatedHours"`
	ClientNotes    string   `json:"clientNotes" form:"clientNotes"`
}

type UpdateStatusInput struct {
	Status        string   `json:"status"`
	ProviderNotes *string  `json:"providerNotes"`
	TotalPrice    *float64 `json:"totalPrice"`
}

type BookingService struct {
	bookings      models.BookingRepo
	providers     models.ProviderRepo
	notifications *NotificationService
	uploader      *uploads.Uploader
}

func NewBookingService(bookings models.BookingRepo, providers models.ProviderRepo, notifications *NotificationService, uploader *uploads.Uploader) *BookingService {
	return &BookingService{
		bookings:      bookings,
		providers:     providers,
		notifications: notifications,
		uploader:      uploader,
	}
}

func parseServiceDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validation("La fecha del servicio no es válida")
}

func (bs *BookingService) Create(ctx context.Context, claims *helpers.Claims, in CreateBookingInput, images []*multipart.FileHeader) (*models.Booking, error) {
	clientID, err := callerID(claims)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ProviderID) == "" || strings.TrimSpace(in.ServiceDate) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("Faltan campos obligatorios: providerId, serviceDate y description")
	}
	serviceDate, err := parseServiceDate(in.ServiceDate)
	if err != nil {
		return nil, err
	}
	if in.EstimatedHours != nil && *in.EstimatedHours < 0 {
		return nil, apperr.Validation("Las horas estimadas no pueden ser negativas")
	}

	providerID, err := parseID(in.ProviderID, providerNotFound)
	if err != nil {
		return nil, err
	}
	provider, err := bs.providers.GetProviderByID(ctx, providerID)
	if err != nil {
		return nil, repoError(err, providerNotFound)
	}
	if provider.UserID == clientID {
		return nil, apperr.Validation("No puedes reservar tu propio servicio")
	}

	var problemImages []string
	if len(images) > 0 {
		if problemImages, err = bs.uploader.SaveAll(ctx, "images", images); err != nil {
			return nil, err
		}
	}

	booking := &models.Booking{
		ClientID:       clientID,
		ProviderID:     provider.ID,
		ServiceDate:    serviceDate,
		ServiceTime:    strings.TrimSpace(in.ServiceTime),
		Description:    strings.TrimSpace(in.Description),
		Address:        helpers.StringTrim(in.Address),
		Status:         models.BookingPending,
		EstimatedHours: in.EstimatedHours,
		ClientNotes:    strings.TrimSpace(in.ClientNotes),
		ProblemImages:  problemImages,
	}
	if err := bs.bookings.CreateBooking(ctx, booking); err != nil {
		bs.uploader.Discard(ctx, problemImages)
		return nil, apperr.Internal("Error al crear la reserva", err)
	}

	bs.notifications.Notify(ctx, provider.UserID, models.NotificationNewBooking,
		"Nueva solicitud de servicio",
		fmt.Sprintf("Tienes una nueva solicitud para el %s", serviceDate.Format("02/01/2006")),
		models.Metadata{"bookingId": booking.ID.String()},
	)

	return bs.load(ctx, booking.ID)
}

func (bs *BookingService) List(ctx context.Context, claims *helpers.Claims, status string) ([]models.Booking, error) {
	id, err := callerID(claims)
	if err != nil {
		return nil, err
	}
	filter := models.BookingFilter{}
	if status != "" {
		filter.Status = models.BookingStatus(strings.ToUpper(status))
		if !filter.Status.Valid() {
			return nil, apperr.Validation("Estado inválido")
		}
	}

	switch claims.Role {
	case models.RoleAdmin:
	case models.RoleProvider:
		provider, err := bs.providers.GetProviderByUserID(ctx, id)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return []models.Booking{}, nil
			}
			return nil, apperr.Internal("Error al obtener las reservas", err)
		}
		filter.ProviderID = &provider.ID
	default:
		filter.ClientID = &id
	}

	list, err := bs.bookings.ListBookings(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("Error al obtener las reservas", err)
	}
	return list, nil
}

func (bs *BookingService) Get(ctx context.Context, claims *helpers.Claims, rawID string) (*models.Booking, error) {
	booking, err := bs.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() && !isClient(claims, booking) && !isProvider(claims, booking) {
		return nil, apperr.Forbidden("No tienes permiso para ver esta reserva")
	}
	return booking, nil
}

// UpdateStatus moves a booking along its lifecycle. Only the assigned provider may call it.
func (bs *BookingService) UpdateStatus(ctx context.Context, claims *helpers.Claims, rawID string, in UpdateStatusInput) (*models.Booking, error) {
	booking, err := bs.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if !isProvider(claims, booking) {
		return nil, apperr.Forbidden("Solo el proveedor asignado puede actualizar el estado")
	}

	next := models.BookingStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if !next.Valid() {
		return nil, apperr.Validation("Estado inválido")
	}
	if !booking.Status.CanTransitionTo(next) {
		return nil, apperr.Validation(fmt.Sprintf("No se puede cambiar el estado de %s a %s", booking.Status, next))
	}
	if in.TotalPrice != nil && *in.TotalPrice < 0 {
		return nil, apperr.Validation("El precio no puede ser negativo")
	}

	fields := map[string]interface{}{"status": string(next)}
	if in.ProviderNotes != nil {
		fields["provider_notes"] = strings.TrimSpace(*in.ProviderNotes)
	}
	if in.TotalPrice != nil {
		fields["total_price"] = *in.TotalPrice
	}
	if next == models.BookingCompleted {
		fields["completed_at"] = time.Now()
	}
	if err := bs.bookings.UpdateBooking(ctx, booking.ID, booking.Status, fields); err != nil {
		return nil, bookingWriteError(err)
	}

	metrics.BookingStatusChanged(string(booking.Status), string(next))
	bs.notifications.Notify(ctx, booking.ClientID, models.NotificationBookingStatus,
		"Actualización de tu reserva",
		fmt.Sprintf("Tu reserva ahora está en estado %s", next),
		models.Metadata{"bookingId": booking.ID.String(), "status": string(next)},
	)
	return bs.load(ctx, booking.ID)
}

// Cancel lets either party call off a booking that has not reached a terminal state.
func (bs *BookingService) Cancel(ctx context.Context, claims *helpers.Claims, rawID, reason string) (*models.Booking, error) {
	booking, err := bs.find(ctx, rawID)
	if err != nil {
		return nil, err
	}
	asClient, asProvider := isClient(claims, booking), isProvider(claims, booking)
	if !asClient && !asProvider && !claims.IsAdmin() {
		return nil, apperr.Forbidden("No tienes permiso para cancelar esta reserva")
	}
	if !booking.Status.CanTransitionTo(models.BookingCancelled) {
		return nil, apperr.Validation(fmt.Sprintf("No se puede cancelar una reserva en estado %s", booking.Status))
	}

	fields := map[string]interface{}{"status": string(models.BookingCancelled)}
	if reason = strings.TrimSpace(reason); reason != "" {
		if asProvider {
			fields["provider_notes"] = reason
		} else {
			fields["client_notes"] = reason
		}
	}
	if err := bs.bookings.UpdateBooking(ctx, booking.ID, booking.Status, fields); err != nil {
		return nil, bookingWriteError(err)
	}
	metrics.BookingStatusChanged(string(booking.Status), string(models.BookingCancelled))

	recipient := booking.ClientID
	if asClient && booking.Provider != nil {
		recipient = booking.Provider.UserID
	}
	bs.notifications.Notify(ctx, recipient, models.NotificationBookingStatus,
		"Reserva cancelada",
		"Una de tus reservas fue cancelada",
		models.Metadata{"bookingId": booking.ID.String(), "status": string(models.BookingCancelled)},
	)
	return bs.load(ctx, booking.ID)
}

func bookingWriteError(err error) error {
	if errors.Is(err, models.ErrStatusChanged) {
		return apperr.Conflict("La reserva cambió de estado, vuelve a intentarlo")
	}
	return repoError(err, bookingNotFound)
}

func (bs *BookingService) find(ctx context.Context, rawID string) (*models.Booking, error) {
	id, err := parseID(rawID, bookingNotFound)
	if err != nil {
		return nil, err
	}
	return bs.load(ctx, id)
}

func (bs *BookingService) load(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		return nil, repoError(err, bookingNotFound)
	}
	return booking, nil
}

func isClient(claims *helpers.Claims, b *models.Booking) bool {
	return claims.UserID == b.ClientID.String()
}

func isProvider(claims *helpers.Claims, b *models.Booking) bool {
	return b.Provider != nil && claims.UserID == b.Provider.UserID.String()
}
