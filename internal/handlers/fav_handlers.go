package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/servicios/internal/services"
)

func AddToFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		res, err := f.AddToFavourites(c.Request.Context(), claims, c.Param("providerId"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func RemoveFromFavourite(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		if err := f.RemoveFromFavourites(c.Request.Context(), claims, c.Param("providerId")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Proveedor eliminado de favoritos"})
	}
}

func GetUserFavourites(f *services.FavouriteService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		res, err := f.GetFavourites(c.Request.Context(), claims)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
