package services

import (
	"context"

	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
)

type FavouriteService struct {
	favouritesRepo models.FavouriteRepo
	providers      models.ProviderRepo
}

func NewFavouriteService(favouritesRepo models.FavouriteRepo, providers models.ProviderRepo) *FavouriteService {
	return &FavouriteService{
		favouritesRepo: favouritesRepo,
		providers:      providers,
	}
}

func (fs *FavouriteService) AddToFavourites(ctx context.Context, claims *helpers.Claims, rawProviderID string) (*models.Favourite, error) {
	userID, err := callerID(claims)
	if err != nil {
		return nil, err
	}
	providerID, err := parseID(rawProviderID, providerNotFound)
	if err != nil {
		return nil, err
	}
	if _, err := fs.providers.GetProviderByID(ctx, providerID); err != nil {
		return nil, repoError(err, providerNotFound)
	}

	fav, err := fs.favouritesRepo.AddToFavourites(ctx, userID, providerID)
	if err != nil {
		return nil, apperr.Internal("Error al agregar a favoritos", err)
	}
	return fav, nil
}

func (fs *FavouriteService) RemoveFromFavourites(ctx context.Context, claims *helpers.Claims, rawProviderID string) error {
	userID, err := callerID(claims)
	if err != nil {
		return err
	}
	providerID, err := parseID(rawProviderID, providerNotFound)
	if err != nil {
		return err
	}
	if err := fs.favouritesRepo.RemoveFromFavourites(ctx, userID, providerID); err != nil {
		return apperr.Internal("Error al eliminar de favoritos", err)
	}
	return nil
}

func (fs *FavouriteService) GetFavourites(ctx context.Context, claims *helpers.Claims) (*models.Favourite, error) {
	userID, err := callerID(claims)
	if err != nil {
		return nil, err
	}
	fav, err := fs.favouritesRepo.GetFavouritesByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Error al obtener favoritos", err)
	}
	return fav, nil
}
