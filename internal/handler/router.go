package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Handlers groups every API handler
type Handlers struct {
	Classify       *ClassifyHandler
	Menu           *MenuHandler
	Preference     *PreferenceHandler
	Recommendation *RecommendationHandler
}

// RegisterRoutes mounts the /api/v1 routes. authRequired guards the
// per-user and write endpoints.
func RegisterRoutes(router *gin.Engine, h Handlers, authRequired gin.HandlerFunc) {
	apiV1 := router.Group("/api/v1")
	{
		// Classifier
		apiV1.POST("/classify", h.Classify.Classify)

		// Menus
		apiV1.GET("/menus", h.Menu.List)
		apiV1.GET("/menus/today", h.Menu.Today)
		apiV1.GET("/menus/stats", h.Menu.Stats)
		apiV1.GET("/menus/next-meal", h.Menu.NextMeal)
		apiV1.POST("/menus/refresh", authRequired, h.Menu.Refresh)

		// Preferences
		apiV1.GET("/preferences/options", h.Preference.Options)
		user := apiV1.Group("", authRequired)
		user.GET("/preferences", h.Preference.Get)
		user.PUT("/preferences", h.Preference.Save)
		user.GET("/preferences/simple", h.Preference.GetSimple)
		user.PUT("/preferences/simple", h.Preference.SaveSimple)

		// Recommendations
		user.GET("/recommendations", h.Recommendation.List)
		user.GET("/recommendations/ai", h.Recommendation.AIPicks)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}
