package service

import (
	"time"

	"dining/internal/model"
)

// Calendar resolves "today" and meal windows in the dining timezone
type Calendar struct {
	now           func() time.Time
	loc           *time.Location
	lookaheadDays int
}

// NewCalendar creates a calendar. A nil now uses time.Now; a nil loc uses UTC.
func NewCalendar(now func() time.Time, loc *time.Location, lookaheadDays int) *Calendar {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	if lookaheadDays <= 0 {
		lookaheadDays = 7
	}
	return &Calendar{now: now, loc: loc, lookaheadDays: lookaheadDays}
}

// Now returns the current time in the dining timezone
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns today's date as YYYY-MM-DD
func (c *Calendar) Today() string {
	return c.Now().Format(model.DateLayout)
}

// DaysAgo returns the date n days before today
func (c *Calendar) DaysAgo(n int) string {
	return c.Now().AddDate(0, 0, -n).Format(model.DateLayout)
}

// Dates returns []string{date} when date is set, otherwise today and the
// following lookahead days
func (c *Calendar) Dates(date string) []string {
	if date != "" {
		return []string{date}
	}
	now := c.Now()
	dates := make([]string, 0, c.lookaheadDays)
	for i := 0; i < c.lookaheadDays; i++ {
		dates = append(dates, now.AddDate(0, 0, i).Format(model.DateLayout))
	}
	return dates
}

// NextMeal returns the upcoming meal: breakfast before 10:00, lunch before
// 14:00, dinner before 20:00, otherwise tomorrow's breakfast
func (c *Calendar) NextMeal() model.NextMeal {
	return NextMeal(c.Now())
}

// NextMeal computes the upcoming meal for the wall-clock time of now
func NextMeal(now time.Time) model.NextMeal {
	today := now.Format(model.DateLayout)
	switch hour := now.Hour(); {
	case hour < 10:
		return model.NextMeal{MealType: model.MealBreakfast, Date: today}
	case hour < 14:
		return model.NextMeal{MealType: model.MealLunch, Date: today}
	case hour < 20:
		return model.NextMeal{MealType: model.MealDinner, Date: today}
	default:
		return model.NextMeal{MealType: model.MealBreakfast, Date: now.AddDate(0, 0, 1).Format(model.DateLayout)}
	}
}
