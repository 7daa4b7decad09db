package handler

import (
	"net/http"

	"dining/internal/middleware"
	"dining/internal/model"
	"dining/internal/service"

	"github.com/gin-gonic/gin"
)

// RecommendationHandler handles recommendation-related HTTP requests
type RecommendationHandler struct {
	recommendations *service.RecommendationService
	advisor         *service.Advisor
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(recommendations *service.RecommendationService, advisor *service.Advisor) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		advisor:         advisor,
	}
}

// List handles GET /api/v1/recommendations
func (h *RecommendationHandler) List(c *gin.Context) {
	var q model.RecommendationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	response, err := h.recommendations.Recommend(c.Request.Context(), middleware.GetUserID(c), q.MealType, q.Date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// AIPicks handles GET /api/v1/recommendations/ai
func (h *RecommendationHandler) AIPicks(c *gin.Context) {
	var q model.RecommendationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	response, err := h.advisor.Recommend(c.Request.Context(), middleware.GetUserID(c), q.MealType, q.Date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Meal picks failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}
