package services

import (
	"context"
	"log/slog"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
	"github.com/joshua-takyi/servicios/internal/uploads"
)

const providerNotFound = "Proveedor no encontrado"

type ProviderFiles struct {
	ProfilePhoto *multipart.FileHeader
	DNIFront     *multipart.FileHeader
	DNIBack      *multipart.FileHeader
	Certificates []*multipart.FileHeader
	Portfolio    []*multipart.FileHeader
}

type ProviderFilter struct {
	Category string
	Location string
	SortBy   string
	Order    string
}

type ProviderService struct {
	auth      *AuthService
	providers models.ProviderRepo
	uploader  *uploads.Uploader
	views     models.ProviderViewsRepo
}

// NewProviderService builds the service; views may be nil when no document store is configured.
func NewProviderService(auth *AuthService, providers models.ProviderRepo, uploader *uploads.Uploader, views models.ProviderViewsRepo) *ProviderService {
	return &ProviderService{auth: auth, providers: providers, uploader: uploader, views: views}
}

// Register creates a provider account from a multipart form, storing its files first.
func (ps *ProviderService) Register(ctx context.Context, in SignupInput, files ProviderFiles) (*models.User, error) {
	in.Role = models.RoleProvider
	if err := ps.auth.CheckSignup(ctx, &in); err != nil {
		return nil, err
	}

	var stored []string
	saveOne := func(field string, fh *multipart.FileHeader) (string, error) {
		if fh == nil {
			return "", nil
		}
		ref, err := ps.uploader.Save(ctx, field, fh)
		if err != nil {
			return "", err
		}
		stored = append(stored, ref)
		return ref, nil
	}
	saveMany := func(field string, fhs []*multipart.FileHeader) ([]string, error) {
		refs, err := ps.uploader.SaveAll(ctx, field, fhs)
		if err != nil {
			return nil, err
		}
		stored = append(stored, refs...)
		return refs, nil
	}

	user, err := func() (*models.User, error) {
		var err error
		if in.ProfilePhoto, err = saveOne("profilePhoto", files.ProfilePhoto); err != nil {
			return nil, err
		}
		if in.DNIFront, err = saveOne("dniFront", files.DNIFront); err != nil {
			return nil, err
		}
		if in.DNIBack, err = saveOne("dniBack", files.DNIBack); err != nil {
			return nil, err
		}
		certs, err := saveMany("certificates", files.Certificates)
		if err != nil {
			return nil, err
		}
		in.Certifications = append(in.Certifications, certs...)
		if in.PortfolioImages, err = saveMany("portfolio", files.Portfolio); err != nil {
			return nil, err
		}
		return ps.auth.CreateAccount(ctx, in)
	}()
	if err != nil {
		ps.uploader.Discard(ctx, stored)
		return nil, err
	}
	return user, nil
}

// List returns every provider matching the filter, sorted in memory.
func (ps *ProviderService) List(ctx context.Context, f ProviderFilter) ([]models.ProviderProfile, error) {
	all, err := ps.providers.ListProviders(ctx)
	if err != nil {
		return nil, apperr.Internal("Error al obtener los proveedores", err)
	}

	var category models.Category
	if strings.TrimSpace(f.Category) != "" {
		c, ok := helpers.LookupCategory(f.Category)
		if !ok {
			return []models.ProviderProfile{}, nil
		}
		category = c
	}
	location := strings.ToLower(helpers.FoldAccents(strings.TrimSpace(f.Location)))

	out := make([]models.ProviderProfile, 0, len(all))
	for _, p := range all {
		if p.User == nil || p.User.Role != models.RoleProvider {
			continue
		}
		if category != "" && p.ServiceCategory != category {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(helpers.FoldAccents(p.Location)), location) {
			continue
		}
		out = append(out, p)
	}

	sortProviders(out, f.SortBy, f.Order)
	return out, nil
}

func sortProviders(list []models.ProviderProfile, sortBy, order string) {
	key := func(p models.ProviderProfile) float64 { return p.Rating }
	switch strings.ToLower(sortBy) {
	case "price", "priceperhour":
		key = func(p models.ProviderProfile) float64 { return p.PricePerHour }
	case "experience":
		key = func(p models.ProviderProfile) float64 { return float64(p.Experience) }
	}
	asc := strings.EqualFold(order, "asc")
	sort.SliceStable(list, func(i, j int) bool {
		if asc {
			return key(list[i]) < key(list[j])
		}
		return key(list[i]) > key(list[j])
	})
}

func (ps *ProviderService) Get(ctx context.Context, rawID string) (*models.ProviderProfile, error) {
	id, err := parseID(rawID, providerNotFound)
	if err != nil {
		return nil, err
	}
	p, err := ps.providers.GetProviderByID(ctx, id)
	if err != nil {
		return nil, repoError(err, providerNotFound)
	}
	if p.User == nil || p.User.Role != models.RoleProvider {
		return nil, apperr.NotFound(providerNotFound)
	}
	return p, nil
}

func (ps *ProviderService) Categories(ctx context.Context) ([]models.CategoryCount, error) {
	counts, err := ps.providers.CountByCategory(ctx)
	if err != nil {
		return nil, apperr.Internal("Error al obtener las categorías", err)
	}
	if counts == nil {
		counts = []models.CategoryCount{}
	}
	return counts, nil
}

// TrackView records a profile view when a document store is configured.
func (ps *ProviderService) TrackView(ctx context.Context, view *models.ProviderView) {
	if ps.views == nil {
		return
	}
	if err := ps.views.TrackProviderView(ctx, view); err != nil {
		slog.Warn("failed to track provider view", "provider_id", view.ProviderID, "error", err)
	}
}

func (ps *ProviderService) ViewStats(ctx context.Context, claims *helpers.Claims, rawID string) (*models.ProviderViewStats, error) {
	p, err := ps.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() && !claims.IsOwner(p.UserID.String()) {
		return nil, apperr.Forbidden("No tienes permiso para ver estas estadísticas")
	}
	if ps.views == nil {
		return &models.ProviderViewStats{ProviderID: p.ID.String()}, nil
	}
	stats, err := ps.views.GetProviderViewStats(ctx, p.ID.String())
	if err != nil {
		return nil, apperr.Internal("Error al obtener las estadísticas", err)
	}
	return stats, nil
}
