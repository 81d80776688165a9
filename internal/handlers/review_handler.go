package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/servicios/internal/services"
)

func CreateReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		var in services.CreateReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respondError(c, err)
			return
		}
		res, err := r.Create(c.Request.Context(), claims, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

func ListProviderReviews(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := r.ListForProvider(c.Request.Context(), c.Param("id"), queryInt(c, "page"), queryInt(c, "limit"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func GetBookingReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		review, err := r.GetForBooking(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, review)
	}
}

func RespondToReview(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsOrAbort(c)
		if !ok {
			return
		}
		var req struct {
			ProviderResponse string `json:"providerResponse"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		review, err := r.Respond(c.Request.Context(), claims, c.Param("id"), req.ProviderResponse)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, review)
	}
}

func ListClientReviews(r *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviews, err := r.ListForClient(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, reviews)
	}
}
