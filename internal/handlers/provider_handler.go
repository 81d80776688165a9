package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/joshua-takyi/servicios/internal/helpers"
	"github.com/joshua-takyi/servicios/internal/models"
	"github.com/joshua-takyi/servicios/internal/services"
)

// signupFromForm reads the provider registration fields of a multipart form.
func signupFromForm(c *gin.Context) (services.SignupInput, error) {
	in := services.SignupInput{
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		Name:            c.PostForm("name"),
		Phone:           c.PostForm("phone"),
		ServiceCategory: c.PostForm("serviceCategory"),
		Description:     c.PostForm("description"),
		Location:        c.PostForm("location"),
		Specialties:     helpers.ParseList(c.PostForm("specialties")),
		Certifications:  helpers.ParseList(c.PostForm("certifications")),
		WhatsApp:        c.PostForm("whatsapp"),
		Instagram:       c.PostForm("instagram"),
		Facebook:        c.PostForm("facebook"),
		Website:         c.PostForm("website"),
	}

	if raw := strings.TrimSpace(c.PostForm("experience")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return in, apperr.Validation("La experiencia debe ser un número entero")
		}
		in.Experience = v
	}
	if raw := strings.TrimSpace(c.PostForm("pricePerHour")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return in, apperr.Validation("El precio por hora debe ser un número")
		}
		in.PricePerHour = v
	}
	if raw := strings.TrimSpace(c.PostForm("references")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.References); err != nil {
			return in, apperr.Validation("Las referencias no tienen un formato válido")
		}
	}
	return in, nil
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if files := form.File[field]; len(files) > 0 {
		return files[0]
	}
	return nil
}

func RegisterProvider(p *services.ProviderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, apperr.Validation("Se esperaba un formulario multipart"))
			return
		}
		in, err := signupFromForm(c)
		if err != nil {
			respondError(c, err)
			return
		}
		files := services.ProviderFiles{
			ProfilePhoto: firstFile(form, "profilePhoto"),
			DNIFront:     firstFile(form, "dniFront"),
			DNIBack:      firstFile(form, "dniBack"),
			Certificates: form.File["certificates"],
			Portfolio:    form.File["portfolio"],
		}

		user, err := p.Register(c.Request.Context(), in, files)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func ListProviders(p *services.ProviderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := p.List(c.Request.Context(), services.ProviderFilter{
			Category: c.Query("category"),
			Location: c.Query("location"),
			SortBy:   c.Query("sortBy"),
			Order:    c.Query("order"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetProvider returns one profile and records the visit for view statistics.
func GetProvider(p *services.ProviderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, err := p.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		session := strings.TrimSpace(c.GetHeader("X-Session-ID"))
		if session == "" {
			session = c.ClientIP()
		}
		p.TrackView(c.Request.Context(), &models.ProviderView{
			ProviderID: provider.ID.String(),
			SessionID:  session,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		})
		c.JSON(http.StatusOK, provider)
	}
}

func ListCategories(p *services.ProviderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := p.Categories(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, counts)
	}
}

func ProviderViews(p *services.ProviderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		stats, err := p.ViewStats(c.Request.Context(), claims, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
