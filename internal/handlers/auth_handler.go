package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/servicios/internal/models"
	"github.com/joshua-takyi/servicios/internal/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a provider by default; a body role of CLIENT creates a client instead.
func Signup(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.SignupInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		res, err := a.Signup(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

func SignupClient(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.SignupInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		req.Role = models.RoleClient
		res, err := a.Signup(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

func Login(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		res, err := a.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func Me(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		user, err := a.CurrentUser(c.Request.Context(), claims)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
