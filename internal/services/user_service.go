package services

import (
	"context"
	"strings"

	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/cache"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
)

const userNotFound = "Usuario no encontrado"

// UpdateUserInput carries a partial update. Nil fields are left untouched.
type UpdateUserInput struct {
	Name         *string  `json:"name"`
	Phone        *string  `json:"phone"`
	Description  *string  `json:"description"`
	PricePerHour *float64 `json:"pricePerHour"`
	Experience   *int     `json:"experience"`
	Location     *string  `json:"location"`
	Available    *bool    `json:"available"`
	WhatsApp     *string  `json:"whatsapp"`
	Instagram    *string  `json:"instagram"`
	Facebook     *string  `json:"facebook"`
	Website      *string  `json:"website"`
	Specialties  []string `json:"specialties"`
}

func (in UpdateUserInput) userFields() (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if in.Name != nil {
		name := helpers.StringTrim(*in.Name)
		if name == "" {
			return nil, apperr.Validation("El campo nombre es obligatorio")
		}
		fields["name"] = name
	}
	if in.Phone != nil {
		fields["phone"] = strings.TrimSpace(*in.Phone)
	}
	return fields, nil
}

func (in UpdateUserInput) providerFields() (map[string]interface{}, error) {
	fields := map[string]interface{}{}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.PricePerHour != nil {
		if *in.PricePerHour < 0 {
			return nil, apperr.Validation("El precio por hora no puede ser negativo")
		}
		fields["price_per_hour"] = *in.PricePerHour
	}
	if in.Experience != nil {
		if *in.Experience < 0 {
			return nil, apperr.Validation("La experiencia no puede ser negativa")
		}
		fields["experience"] = *in.Experience
	}
	if in.Location != nil {
		fields["location"] = helpers.StringTrim(*in.Location)
	}
	if in.Available != nil {
		fields["available"] = *in.Available
	}
	links := map[string]*string{
		"whats_app": in.WhatsApp,
		"instagram": in.Instagram,
		"facebook":  in.Facebook,
		"website":   in.Website,
	}
	for col, v := range links {
		if v != nil {
			fields[col] = strings.TrimSpace(*v)
		}
	}
	return fields, nil
}

func (in UpdateUserInput) touchesProvider() bool {
	return in.Description != nil || in.PricePerHour != nil || in.Experience != nil ||
		in.Location != nil || in.Available != nil || in.WhatsApp != nil ||
		in.Instagram != nil || in.Facebook != nil || in.Website != nil || in.Specialties != nil
}

type UserService struct {
	users models.UserRepo
	cache cache.Cache
}

func NewUserService(users models.UserRepo, c cache.Cache) *UserService {
	return &UserService{users: users, cache: c}
}

func (us *UserService) List(ctx context.Context, role string) ([]models.User, error) {
	r := models.Role(strings.ToUpper(strings.TrimSpace(role)))
	if r != "" && !r.Valid() {
		return nil, apperr.Validation("Rol inválido")
	}
	users, err := us.users.ListUsers(ctx, r)
	if err != nil {
		return nil, apperr.Internal("Error al obtener los usuarios", err)
	}
	return users, nil
}

func (us *UserService) Get(ctx context.Context, claims *helpers.Claims, rawID string) (*models.User, error) {
	id, err := parseID(rawID, userNotFound)
	if err != nil {
		return nil, err
	}
	if !claims.IsOwner(id.String()) && !claims.IsAdmin() {
		return nil, apperr.Forbidden("No tienes permiso para ver este usuario")
	}
	user, err := us.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, repoError(err, userNotFound)
	}
	return user, nil
}

// Update applies the caller's changes to the user row and, for providers, to the profile.
func (us *UserService) Update(ctx context.Context, claims *helpers.Claims, rawID string, in UpdateUserInput) (*models.User, error) {
	id, err := parseID(rawID, userNotFound)
	if err != nil {
		return nil, err
	}
	if !claims.IsOwner(id.String()) && !claims.IsAdmin() {
		return nil, apperr.Forbidden("No tienes permiso para modificar este usuario")
	}
	user, err := us.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, repoError(err, userNotFound)
	}

	userFields, err := in.userFields()
	if err != nil {
		return nil, err
	}
	var profile *models.ProfileUpdate
	if in.touchesProvider() {
		if user.Provider == nil {
			return nil, apperr.Validation("El usuario no tiene perfil de proveedor")
		}
		providerFields, err := in.providerFields()
		if err != nil {
			return nil, err
		}
		profile = &models.ProfileUpdate{ProviderID: user.Provider.ID, Fields: providerFields}
		if in.Specialties != nil {
			profile.Specialties = nonEmpty(in.Specialties)
		}
	}

	if err := us.users.UpdateUser(ctx, id, userFields, profile); err != nil {
		return nil, repoError(err, userNotFound)
	}
	if user.IsProvider() {
		invalidateProviders(ctx, us.cache)
	}

	updated, err := us.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, repoError(err, userNotFound)
	}
	return updated, nil
}

func (us *UserService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, userNotFound)
	if err != nil {
		return err
	}
	if err := us.users.DeleteUser(ctx, id); err != nil {
		return repoError(err, userNotFound)
	}
	invalidateProviders(ctx, us.cache)
	return nil
}
