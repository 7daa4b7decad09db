package model

import (
	"database/sql/driver"
	"time"
)

// DefaultCampusLocation is used when a user has not picked a location
const DefaultCampusLocation = "Central Campus"

// UserPreferences is the per-user input of the scorer. It is saved wholesale.
type UserPreferences struct {
	UserID              string     `json:"user_id" db:"user_id" gorm:"primaryKey" validate:"required"`
	DietaryRestrictions StringList `json:"dietary_restrictions" db:"dietary_restrictions" gorm:"type:text"`
	FavoriteDiningHalls StringList `json:"favorite_dining_halls" db:"favorite_dining_halls" gorm:"type:text"`
	PreferredCuisines   StringList `json:"preferred_cuisines" db:"preferred_cuisines" gorm:"type:text"`
	CampusLocation      string     `json:"campus_location" db:"campus_location"`
	NutritionWeights    WeightMap  `json:"nutrition_weights,omitempty" db:"nutrition_weights" gorm:"type:text" validate:"dive,gte=0,lte=1"`
	CuisineWeights      WeightMap  `json:"cuisine_weights,omitempty" db:"cuisine_weights" gorm:"type:text" validate:"dive,gte=0,lte=1"`
	MealFocusWeights    WeightMap  `json:"meal_focus_weights,omitempty" db:"meal_focus_weights" gorm:"type:text" validate:"dive,gte=0,lte=1"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// DefaultUserPreferences returns the empty preference set for a user
func DefaultUserPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:              userID,
		DietaryRestrictions: StringList{},
		FavoriteDiningHalls: StringList{},
		PreferredCuisines:   StringList{},
		CampusLocation:      DefaultCampusLocation,
	}
}

// ProteinPrefs are the protein checkboxes
type ProteinPrefs struct {
	Chicken    bool `json:"chicken"`
	Beef       bool `json:"beef"`
	Pork       bool `json:"pork"`
	Seafood    bool `json:"seafood"`
	Vegetarian bool `json:"vegetarian"`
	Vegan      bool `json:"vegan"`
}

// MainMealPrefs are the main dish checkboxes
type MainMealPrefs struct {
	Pizza      bool `json:"pizza"`
	Pasta      bool `json:"pasta"`
	Burgers    bool `json:"burgers"`
	Sandwiches bool `json:"sandwiches"`
	Salads     bool `json:"salads"`
	StirFry    bool `json:"stir_fry"`
	Soup       bool `json:"soup"`
	RiceBowls  bool `json:"rice_bowls"`
	Desserts   bool `json:"desserts"`
}

// SidePrefs are the side dish checkboxes
type SidePrefs struct {
	Fries      bool `json:"fries"`
	Vegetables bool `json:"vegetables"`
	Rice       bool `json:"rice"`
	Bread      bool `json:"bread"`
	Fruit      bool `json:"fruit"`
	Chips      bool `json:"chips"`
}

// FocusPrefs are the meal goal checkboxes
type FocusPrefs struct {
	ProteinHeavy bool `json:"protein_heavy"`
	LowCarb      bool `json:"low_carb"`
	Vegan        bool `json:"vegan"`
	Vegetarian   bool `json:"vegetarian"`
	CheatMeal    bool `json:"cheat_meal"`
	Healthy      bool `json:"healthy"`
	ComfortFood  bool `json:"comfort_food"`
	PreWorkout   bool `json:"pre_workout"`
	PostWorkout  bool `json:"post_workout"`
}

// Value implements driver.Valuer interface
func (p ProteinPrefs) Value() (driver.Value, error) { return jsonValue(p) }

// Scan implements sql.Scanner interface
func (p *ProteinPrefs) Scan(value interface{}) error { return scanJSON(value, p) }

// Value implements driver.Valuer interface
func (p MainMealPrefs) Value() (driver.Value, error) { return jsonValue(p) }

// Scan implements sql.Scanner interface
func (p *MainMealPrefs) Scan(value interface{}) error { return scanJSON(value, p) }

// Value implements driver.Valuer interface
func (p SidePrefs) Value() (driver.Value, error) { return jsonValue(p) }

// Scan implements sql.Scanner interface
func (p *SidePrefs) Scan(value interface{}) error { return scanJSON(value, p) }

// Value implements driver.Valuer interface
func (p FocusPrefs) Value() (driver.Value, error) { return jsonValue(p) }

// Scan implements sql.Scanner interface
func (p *FocusPrefs) Scan(value interface{}) error { return scanJSON(value, p) }

// SimplePreferences drive the meal advisor
type SimplePreferences struct {
	UserID              string        `json:"user_id" db:"user_id" gorm:"primaryKey" validate:"required"`
	Proteins            ProteinPrefs  `json:"proteins" db:"proteins" gorm:"type:text"`
	MainMeals           MainMealPrefs `json:"main_meals" db:"main_meals" gorm:"type:text"`
	Sides               SidePrefs     `json:"sides" db:"sides" gorm:"type:text"`
	Focus               FocusPrefs    `json:"focus" db:"focus" gorm:"type:text"`
	FavoriteDiningHalls StringList    `json:"favorite_dining_halls" db:"favorite_dining_halls" gorm:"type:text"`
	CampusLocation      string        `json:"campus_location" db:"campus_location"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`
}

// DefaultSimplePreferences returns the all-unchecked preference set
func DefaultSimplePreferences(userID string) *SimplePreferences {
	return &SimplePreferences{
		UserID:              userID,
		FavoriteDiningHalls: StringList{},
		CampusLocation:      DefaultCampusLocation,
	}
}

// HasSelections reports whether any protein, meal, side or focus checkbox is
// set. Favorite halls only narrow the halls and do not count.
func (p *SimplePreferences) HasSelections() bool {
	if p == nil {
		return false
	}
	empty := SimplePreferences{}
	return p.Proteins != empty.Proteins ||
		p.MainMeals != empty.MainMeals ||
		p.Sides != empty.Sides ||
		p.Focus != empty.Focus
}

// PreferenceOptions lists the values a client can pick from
type PreferenceOptions struct {
	DietaryRestrictions []string `json:"dietary_restrictions"`
	Cuisines            []string `json:"cuisines"`
	CampusLocations     []string `json:"campus_locations"`
	MealTypes           []string `json:"meal_types"`
}
