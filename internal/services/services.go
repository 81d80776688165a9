package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/cache"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
)

var fieldNames = map[string]string{
	"Email":           "email",
	"Password":        "contraseña",
	"Name":            "nombre",
	"ServiceCategory": "categoría",
	"Experience":      "experiencia",
	"PricePerHour":    "precio por hora",
	"Nombre":          "nombre",
	"Asunto":          "asunto",
	"Mensaje":         "mensaje",
}

// validationError turns validator output into a single Spanish message.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("Datos inválidos")
	}
	fe := verrs[0]
	name, ok := fieldNames[fe.Field()]
	if !ok {
		name = strings.ToLower(fe.Field())
	}
	switch fe.Tag() {
	case "required":
		return apperr.Validation(fmt.Sprintf("El campo %s es obligatorio", name))
	case "email":
		return apperr.Validation("El email no es válido")
	case "min", "gte":
		return apperr.Validation(fmt.Sprintf("El campo %s es demasiado corto o bajo", name))
	case "max", "lte":
		return apperr.Validation(fmt.Sprintf("El campo %s es demasiado largo o alto", name))
	}
	return apperr.Validation(fmt.Sprintf("El campo %s no es válido", name))
}

func validate(v interface{}) error {
	if err := models.Validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// callerID parses the user id carried in verified claims.
func callerID(claims *helpers.Claims) (uuid.UUID, error) {
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, apperr.Auth("Token inválido o expirado", err)
	}
	return id, nil
}

func parseID(raw, notFoundMsg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperr.NotFound(notFoundMsg)
	}
	return id, nil
}

// repoError converts repository sentinels into domain errors, keeping anything else as internal.
func repoError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return apperr.NotFound(notFoundMsg)
	case errors.Is(err, models.ErrDuplicate):
		return apperr.Conflict("El registro ya existe")
	}
	return apperr.Internal("Error interno del servidor", err)
}

func invalidateProviders(ctx context.Context, c cache.Cache) {
	if c == nil {
		return
	}
	if err := c.DeletePrefix(ctx, cache.ProvidersPrefix); err != nil {
		slog.Warn("failed to invalidate provider cache", "error", err)
	}
}
