package services

import (
	"context"
	"strings"

	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
)

type ContactInput struct {
	Nombre  string `json:"nombre" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Asunto  string `json:"asunto" validate:"required"`
	Mensaje string `json:"mensaje" validate:"required"`
}

type SupportService struct {
	repo models.SupportRepo
}

func NewSupportService(repo models.SupportRepo) *SupportService {
	return &SupportService{repo: repo}
}

// Contact stores a contact request and returns its id.
func (ss *SupportService) Contact(ctx context.Context, in ContactInput) (*models.SupportMessage, error) {
	in.Nombre = helpers.StringTrim(in.Nombre)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Asunto = helpers.StringTrim(in.Asunto)
	in.Mensaje = strings.TrimSpace(in.Mensaje)
	if err := validate(in); err != nil {
		return nil, err
	}

	msg := &models.SupportMessage{
		Name:    in.Nombre,
		Email:   in.Email,
		Subject: in.Asunto,
		Message: in.Mensaje,
	}
	if err := ss.repo.CreateSupportMessage(ctx, msg); err != nil {
		return nil, apperr.Internal("Error al enviar el mensaje", err)
	}
	return msg, nil
}
