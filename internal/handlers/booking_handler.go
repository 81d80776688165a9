package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/joshua-takyi/servicios/internal/services"
)

// CreateBooking accepts JSON or a multipart form carrying problem photos under "images".
func CreateBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}

		var in services.CreateBookingInput
		var images []*multipart.FileHeader
		if c.ContentType() == binding.MIMEMultipartPOSTForm {
			if err := c.ShouldBindWith(&in, binding.FormMultipart); err != nil {
				respondError(c, err)
				return
			}
			if form, err := c.MultipartForm(); err == nil {
				images = form.File["images"]
			}
		} else if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, err)
			return
		}

		booking, err := b.Create(c.Request.Context(), claims, in, images)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, booking)
	}
}

func ListBookings(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		list, err := b.List(c.Request.Context(), claims, c.Query("status"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		booking, err := b.Get(c.Request.Context(), claims, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}

func UpdateBookingStatus(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		var in services.UpdateStatusInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, err)
			return
		}
		booking, err := b.UpdateStatus(c.Request.Context(), claims, c.Param("id"), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}

func CancelBooking(b *services.BookingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		var req struct {
			Reason string `json:"reason"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, err)
				return
			}
		}
		booking, err := b.Cancel(c.Request.Context(), claims, c.Param("id"), req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, booking)
	}
}
