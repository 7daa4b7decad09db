package handler

import (
	"net/http"

	"dining/internal/model"
	"dining/internal/service"

	"github.com/gin-gonic/gin"
)

// ClassifyHandler exposes the food classifier
type ClassifyHandler struct {
	classifier *service.Classifier
	topN       int
}

// NewClassifyHandler creates a new classify handler
func NewClassifyHandler(classifier *service.Classifier) *ClassifyHandler {
	return &ClassifyHandler{classifier: classifier, topN: 3}
}

// Classify handles POST /api/v1/classify
func (h *ClassifyHandler) Classify(c *gin.Context) {
	var req model.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	scores := h.classifier.ClassifyItem(model.MenuItem{
		Name:     req.Name,
		Category: req.Category,
		Healthy:  req.Healthy,
	})

	c.JSON(http.StatusOK, model.ClassifyResponse{
		Scores: scores,
		Top:    h.classifier.Top(scores, h.topN),
	})
}
