package model

import (
	"database/sql/driver"
	"strings"
	"time"
)

// DateLayout is the storage format of menu dates
const DateLayout = "2006-01-02"

// MenuItem is a single dish offered in a menu
type MenuItem struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required"`
	Category    string   `json:"category"`
	Ingredients []string `json:"ingredients"`
	Allergens   []string `json:"allergens"`
	Healthy     bool     `json:"healthy"`
	SortIdx     int      `json:"sort_idx"`
}

// SearchText returns the lowercased text that dietary restrictions are
// matched against
func (i MenuItem) SearchText() string {
	parts := make([]string, 0, 2+len(i.Ingredients)+len(i.Allergens))
	parts = append(parts, i.Name, i.Category)
	parts = append(parts, i.Ingredients...)
	parts = append(parts, i.Allergens...)
	return strings.ToLower(strings.Join(parts, " "))
}

// MenuItems represents the JSON items column of a menu
type MenuItems []MenuItem

// Value implements driver.Valuer interface
func (m MenuItems) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return jsonValue(m)
}

// Scan implements sql.Scanner interface
func (m *MenuItems) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// OperatingHours holds the serving window of a meal event
type OperatingHours struct {
	Start          string `json:"start"`
	End            string `json:"end"`
	StartTimestamp int64  `json:"start_timestamp"`
	EndTimestamp   int64  `json:"end_timestamp"`
}

// Value implements driver.Valuer interface
func (o OperatingHours) Value() (driver.Value, error) {
	return jsonValue(o)
}

// Scan implements sql.Scanner interface
func (o *OperatingHours) Scan(value interface{}) error {
	return scanJSON(value, o)
}

// Menu is the set of items one eatery serves for one date and meal type.
// (EateryID, MenuDate, MealType) is the natural key.
type Menu struct {
	ID             int64          `json:"id" db:"id" gorm:"primaryKey"`
	EateryID       string         `json:"eatery_id" db:"eatery_id" gorm:"uniqueIndex:idx_menus_key;not null" validate:"required"`
	EateryName     string         `json:"eatery_name" db:"eatery_name" gorm:"not null" validate:"required"`
	MenuDate       string         `json:"menu_date" db:"menu_date" gorm:"uniqueIndex:idx_menus_key;index;not null" validate:"required,datetime=2006-01-02"`
	MealType       string         `json:"meal_type" db:"meal_type" gorm:"uniqueIndex:idx_menus_key;not null" validate:"required"`
	Items          MenuItems      `json:"items" db:"items" gorm:"type:text" validate:"dive"`
	CampusArea     string         `json:"campus_area" db:"campus_area"`
	Location       string         `json:"location" db:"location"`
	OperatingHours OperatingHours `json:"operating_hours" db:"operating_hours" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at" gorm:"index"`
}

// HealthyCount returns the number of items flagged healthy
func (m *Menu) HealthyCount() int {
	n := 0
	for _, item := range m.Items {
		if item.Healthy {
			n++
		}
	}
	return n
}

// MenuFilter narrows a menu query. Empty fields are ignored.
type MenuFilter struct {
	Dates       []string
	MealType    string
	EateryNames []string
}

// MenuStats summarizes the menu store
type MenuStats struct {
	Total          int        `json:"total"`
	TodayAndFuture int        `json:"today_and_future"`
	LatestUpdate   *time.Time `json:"latest_update,omitempty"`
}
