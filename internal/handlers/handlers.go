package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/middleware"
)

// respondError writes {"error": message} with the status that matches err.
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperr.As(err); ok {
		if appErr.Kind == apperr.KindInternal {
			requestID, _ := c.Get("request_id")
			slog.Error("request failed", "request_id", requestID, "path", c.Request.URL.Path, "error", err)
		}
		c.JSON(appErr.Status(), gin.H{"error": appErr.Message})
		return
	}

	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos: " + verrs[0].Field()})
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
	}
}

// claimsOrAbort fetches the verified claims set by AuthMiddleware.
func claimsOrAbort(c *gin.Context) (*helpers.Claims, bool) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token no proporcionado"})
		return nil, false
	}
	return claims, true
}

func queryInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.Query(key))
	return v
}
