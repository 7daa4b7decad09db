package model

// Meal types served by the dining halls
const (
	MealBreakfast = "Breakfast"
	MealBrunch    = "Brunch"
	MealLunch     = "Lunch"
	MealLateLunch = "Late Lunch"
	MealDinner    = "Dinner"
)

// Classification holds a confidence in [0,1] per food category
type Classification struct {
	Seafood       float64 `json:"seafood"`
	Poultry       float64 `json:"poultry"`
	BeefPork      float64 `json:"beef_pork"`
	Vegetarian    float64 `json:"vegetarian"`
	Vegan         float64 `json:"vegan"`
	ProteinRich   float64 `json:"protein_rich"`
	HealthyOption float64 `json:"healthy_option"`
	FriedFood     float64 `json:"fried_food"`
	ComfortFood   float64 `json:"comfort_food"`
	Asian         float64 `json:"asian"`
	Italian       float64 `json:"italian"`
	Mexican       float64 `json:"mexican"`
	American      float64 `json:"american"`
	Indian        float64 `json:"indian"`
	BreakfastFood float64 `json:"breakfast_food"`
	Dessert       float64 `json:"dessert"`
}

// ClassifyRequest represents a classification request
type ClassifyRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Healthy  bool   `json:"healthy"`
}

// CategoryScore is one entry of a classification ranking
type CategoryScore struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// ClassifyResponse represents a classification result
type ClassifyResponse struct {
	Scores Classification  `json:"scores"`
	Top    []CategoryScore `json:"top"`
}

// RecommendationQuery is the query string of the recommendation endpoints
type RecommendationQuery struct {
	MealType string `form:"meal_type"`
	Date     string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// MenuQuery is the query string of the menu listing endpoint
type MenuQuery struct {
	Date     string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	MealType string `form:"meal_type"`
	Eatery   string `form:"eatery"`
}

// RecommendationResponse wraps a ranked recommendation list
type RecommendationResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Total           int              `json:"total"`
	Took            int64            `json:"took_ms"`
}

// MealPickResponse wraps the advisor picks
type MealPickResponse struct {
	Picks []MealPick `json:"picks"`
	Total int        `json:"total"`
	Took  int64      `json:"took_ms"`
}

// MenuListResponse wraps a menu listing
type MenuListResponse struct {
	Menus []MenuSummary `json:"menus"`
	Total int           `json:"total"`
}

// MenuSummary is a menu plus derived counters
type MenuSummary struct {
	Menu
	ItemCount    int `json:"item_count"`
	HealthyCount int `json:"healthy_count"`
}
