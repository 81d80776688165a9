package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
)

// ClaimsKey is the gin context key holding the verified *helpers.Claims.
const ClaimsKey = "user"

type TokenVerifier interface {
	VerifyToken(token string) (*helpers.Claims, error)
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")

		logger.Info("HTTP Request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// ErrorHandler logs errors attached with c.Error and answers 500 if nothing was written yet.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		requestID, _ := c.Get("request_id")
		logger.Error("Request error",
			"request_id", requestID,
			"error", err.Error(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      "Error interno del servidor",
				"request_id": requestID,
			})
		}
	}
}

// Recovery turns panics into a logged 500 with the usual error body.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID, _ := c.Get("request_id")
		logger.Error("panic recovered",
			"request_id", requestID,
			"panic", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Error interno del servidor"})
	})
}

func abortWith(c *gin.Context, err *apperr.Error) {
	c.AbortWithStatusJSON(err.Status(), gin.H{"error": err.Message})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func AuthMiddleware(verifier TokenVerifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.VerifyToken(bearerToken(c))
		if err != nil {
			appErr, ok := apperr.As(err)
			if !ok {
				appErr = apperr.Auth("Token inválido o expirado", err)
			}
			logger.Debug("rejected token", "path", c.Request.URL.Path, "error", err)
			abortWith(c, appErr)
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole lets the request through when the caller holds one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abortWith(c, apperr.Auth("Token no proporcionado", nil))
			return
		}
		if !claims.HasRole(roles...) {
			abortWith(c, apperr.Forbidden("No tienes permiso para realizar esta acción"))
			return
		}
		c.Next()
	}
}

func GetClaims(c *gin.Context) (*helpers.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*helpers.Claims)
	return claims, ok
}
