package handler

import (
	"net/http"

	"dining/internal/model"
	"dining/internal/service"

	"github.com/gin-gonic/gin"
)

// MenuHandler serves stored menus and triggers ingestion
type MenuHandler struct {
	ingestor *service.Ingestor
	calendar *service.Calendar
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(ingestor *service.Ingestor, calendar *service.Calendar) *MenuHandler {
	return &MenuHandler{
		ingestor: ingestor,
		calendar: calendar,
	}
}

// List handles GET /api/v1/menus
func (h *MenuHandler) List(c *gin.Context) {
	var q model.MenuQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}

	filter := model.MenuFilter{MealType: q.MealType}
	if q.Date != "" {
		filter.Dates = []string{q.Date}
	}
	if q.Eatery != "" {
		filter.EateryNames = []string{q.Eatery}
	}

	menus, err := h.ingestor.StoredMenus(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list menus: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, summarize(menus))
}

// Today handles GET /api/v1/menus/today
func (h *MenuHandler) Today(c *gin.Context) {
	menus, err := h.ingestor.TodaysMenus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list menus: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, summarize(menus))
}

// Stats handles GET /api/v1/menus/stats
func (h *MenuHandler) Stats(c *gin.Context) {
	stats, err := h.ingestor.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get stats: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// NextMeal handles GET /api/v1/menus/next-meal
func (h *MenuHandler) NextMeal(c *gin.Context) {
	c.JSON(http.StatusOK, h.calendar.NextMeal())
}

// Refresh handles POST /api/v1/menus/refresh
func (h *MenuHandler) Refresh(c *gin.Context) {
	force := c.Query("force") == "true"

	result, err := h.ingestor.Run(c.Request.Context(), force)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Refresh failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func summarize(menus []model.Menu) model.MenuListResponse {
	out := make([]model.MenuSummary, 0, len(menus))
	for _, m := range menus {
		out = append(out, model.MenuSummary{
			Menu:         m,
			ItemCount:    len(m.Items),
			HealthyCount: m.HealthyCount(),
		})
	}
	return model.MenuListResponse{Menus: out, Total: len(out)}
}
