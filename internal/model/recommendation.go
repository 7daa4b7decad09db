package model

import "time"

// ScoreBreakdown shows how a recommendation score was assembled
type ScoreBreakdown struct {
	Favorite   float64 `json:"favorite"`
	Location   float64 `json:"location"`
	Preference float64 `json:"preference"`
}

// Recommendation is a ranked eatery menu for one user
type Recommendation struct {
	EateryName      string         `json:"eatery_name"`
	MealType        string         `json:"meal_type"`
	MenuDate        string         `json:"menu_date"`
	Location        string         `json:"location"`
	CampusArea      string         `json:"campus_area"`
	OperatingHours  OperatingHours `json:"operating_hours"`
	Score           float64        `json:"score"`
	MatchPercentage int            `json:"match_percentage"`
	TopItems        []MenuItem     `json:"top_items"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
}

// Pick sources
const (
	PickSourceAI       = "ai"
	PickSourceFallback = "fallback"
)

// MealPick is a single main plus side suggestion for one hall
type MealPick struct {
	EateryName string    `json:"eatery_name"`
	MealType   string    `json:"meal_type"`
	MenuDate   string    `json:"menu_date"`
	MainDish   *MenuItem `json:"main_dish"`
	SideDish   *MenuItem `json:"side_dish,omitempty"`
	Message    string    `json:"message"`
	Source     string    `json:"source"`
}

// IngestResult reports what one ingestion run did
type IngestResult struct {
	Fetched       bool      `json:"fetched"`
	SkippedReason string    `json:"skipped_reason,omitempty"`
	Eateries      int       `json:"eateries"`
	MenusUpserted int       `json:"menus_upserted"`
	MenusRejected int       `json:"menus_rejected"`
	MenusDeleted  int64     `json:"menus_deleted"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// NextMeal is the meal a user is most likely planning for
type NextMeal struct {
	MealType string `json:"meal_type"`
	Date     string `json:"date"`
}
