package services

import (
	"context"
	"errors"
	"strings"

	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/cache"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
)

const invalidCredentials = "Credenciales inválidas"

// dummyHash keeps login timing similar whether or not the email exists.
var dummyHash, _ = helpers.HashPassword("servicios-timing-guard")

type ReferenceInput struct {
	Name         string `json:"name" validate:"required"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type SignupInput struct {
	Email           string           `json:"email" validate:"required,email"`
	Password        string           `json:"password" validate:"required"`
	Name            string           `json:"name" validate:"required"`
	Phone           string           `json:"phone"`
	Role            models.Role      `json:"role"`
	ServiceCategory string           `json:"serviceCategory"`
	Description     string           `json:"description"`
	Experience      int              `json:"experience" validate:"gte=0"`
	PricePerHour    float64          `json:"pricePerHour" validate:"gte=0"`
	Location        string           `json:"location"`
	Specialties     []string         `json:"specialties"`
	Certifications  []string         `json:"certifications"`
	WhatsApp        string           `json:"whatsapp"`
	Instagram       string           `json:"instagram"`
	Facebook        string           `json:"facebook"`
	Website         string           `json:"website"`
	References      []ReferenceInput `json:"references" validate:"dive"`

	ProfilePhoto    string   `json:"-"`
	DNIFront        string   `json:"-"`
	DNIBack         string   `json:"-"`
	PortfolioImages []string `json:"-"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users  models.UserRepo
	tokens *helpers.TokenManager
	cache  cache.Cache
}

func NewAuthService(users models.UserRepo, tokens *helpers.TokenManager, c cache.Cache) *AuthService {
	return &AuthService{users: users, tokens: tokens, cache: c}
}

// Signup creates the account and returns a fresh token for it.
func (as *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	user, err := as.CreateAccount(ctx, in)
	if err != nil {
		return nil, err
	}
	return as.issue(user)
}

// CheckSignup runs every check that does not touch storage or the database write.
func (as *AuthService) CheckSignup(ctx context.Context, in *SignupInput) error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = helpers.StringTrim(in.Name)
	if in.Role == "" {
		in.Role = models.RoleProvider
	}

	if err := validate(in); err != nil {
		return err
	}
	if len(in.Password) < helpers.MinPasswordLength {
		return apperr.Validation("La contraseña debe tener al menos 6 caracteres")
	}
	if len(in.Password) > helpers.MaxPasswordBytes {
		return apperr.Validation("La contraseña no puede superar los 72 caracteres")
	}
	if in.Role != models.RoleClient && in.Role != models.RoleProvider {
		return apperr.Validation("Rol inválido")
	}
	if in.Role == models.RoleProvider && strings.TrimSpace(in.ServiceCategory) == "" {
		return apperr.Validation("El campo categoría es obligatorio")
	}

	exists, err := as.users.EmailExists(ctx, in.Email)
	if err != nil {
		return apperr.Internal("Error interno del servidor", err)
	}
	if exists {
		return apperr.Conflict("El email ya está registrado")
	}
	return nil
}

func (as *AuthService) CreateAccount(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := as.CheckSignup(ctx, &in); err != nil {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("Error interno del servidor", err)
	}

	user := &models.User{
		Email:    in.Email,
		Password: hash,
		Name:     in.Name,
		Phone:    strings.TrimSpace(in.Phone),
		Role:     in.Role,
	}
	if in.Role == models.RoleProvider {
		user.Provider = buildProfile(in)
	}

	if err := as.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, apperr.Conflict("El email ya está registrado")
		}
		return nil, apperr.Internal("Error al crear el usuario", err)
	}

	if user.Role == models.RoleProvider {
		invalidateProviders(ctx, as.cache)
	}

	created, err := as.users.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, repoError(err, "Usuario no encontrado")
	}
	return created, nil
}

func buildProfile(in SignupInput) *models.ProviderProfile {
	p := &models.ProviderProfile{
		ServiceCategory: helpers.NormalizeCategory(in.ServiceCategory),
		Description:     strings.TrimSpace(in.Description),
		Experience:      in.Experience,
		PricePerHour:    in.PricePerHour,
		Location:        helpers.StringTrim(in.Location),
		Available:       true,
		ProfilePhoto:    in.ProfilePhoto,
		DNIFront:        in.DNIFront,
		DNIBack:         in.DNIBack,
		WhatsApp:        strings.TrimSpace(in.WhatsApp),
		Instagram:       strings.TrimSpace(in.Instagram),
		Facebook:        strings.TrimSpace(in.Facebook),
		Website:         strings.TrimSpace(in.Website),
		Specialties:     nonEmpty(in.Specialties),
		Certifications:  nonEmpty(in.Certifications),
		PortfolioImages: nonEmpty(in.PortfolioImages),
	}
	for _, ref := range in.References {
		p.References = append(p.References, models.ProviderReference{
			Name:         helpers.StringTrim(ref.Name),
			Phone:        strings.TrimSpace(ref.Phone),
			Relationship: helpers.StringTrim(ref.Relationship),
		})
	}
	return p
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := helpers.StringTrim(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (as *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("Email y contraseña son obligatorios")
	}

	user, err := as.users.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		helpers.CheckPassword(dummyHash, password)
		return nil, apperr.Auth(invalidCredentials, nil)
	}
	if err != nil {
		return nil, apperr.Internal("Error interno del servidor", err)
	}
	if !helpers.CheckPassword(user.Password, password) {
		return nil, apperr.Auth(invalidCredentials, nil)
	}
	return as.issue(user)
}

func (as *AuthService) VerifyToken(token string) (*helpers.Claims, error) {
	if token == "" {
		return nil, apperr.Auth("Token no proporcionado", nil)
	}
	claims, err := as.tokens.Verify(token)
	if err != nil {
		return nil, apperr.Auth("Token inválido o expirado", err)
	}
	return claims, nil
}

func (as *AuthService) CurrentUser(ctx context.Context, claims *helpers.Claims) (*models.User, error) {
	id, err := callerID(claims)
	if err != nil {
		return nil, err
	}
	user, err := as.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Usuario no encontrado")
	}
	return user, nil
}

func (as *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := as.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperr.Internal("Error al generar el token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
