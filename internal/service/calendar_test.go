package service

import (
	"testing"
	"time"

	"dining/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNextMeal(t *testing.T) {
	tests := []struct {
		name     string
		clock    string
		wantMeal string
		wantDate string
	}{
		{"early morning", "2024-03-10T07:30:00Z", model.MealBreakfast, "2024-03-10"},
		{"ten sharp", "2024-03-10T10:00:00Z", model.MealLunch, "2024-03-10"},
		{"afternoon", "2024-03-10T13:59:00Z", model.MealLunch, "2024-03-10"},
		{"two sharp", "2024-03-10T14:00:00Z", model.MealDinner, "2024-03-10"},
		{"evening", "2024-03-10T19:59:00Z", model.MealDinner, "2024-03-10"},
		{"late night", "2024-03-10T20:00:00Z", model.MealBreakfast, "2024-03-11"},
		{"month end", "2024-03-31T23:00:00Z", model.MealBreakfast, "2024-04-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, _ := time.Parse(time.RFC3339, tt.clock)
			got := NextMeal(now)
			if got.MealType != tt.wantMeal || got.Date != tt.wantDate {
				t.Errorf("NextMeal(%s) = %+v, want %s on %s", tt.clock, got, tt.wantMeal, tt.wantDate)
			}
		})
	}
}

func TestCalendar_Dates(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	cal := NewCalendar(fixedClock(now), time.UTC, 7)

	if got := cal.Dates("2024-05-01"); len(got) != 1 || got[0] != "2024-05-01" {
		t.Errorf("explicit date = %v", got)
	}

	got := cal.Dates("")
	if len(got) != 7 {
		t.Fatalf("expected 7 dates, got %d", len(got))
	}
	if got[0] != "2024-03-10" || got[6] != "2024-03-16" {
		t.Errorf("unexpected range %v", got)
	}
}

func TestCalendar_TimezoneToday(t *testing.T) {
	// 02:00 UTC is still the previous evening in New York
	now := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	ny := time.FixedZone("EST", -5*3600)
	cal := NewCalendar(fixedClock(now), ny, 7)

	if got := cal.Today(); got != "2024-03-09" {
		t.Errorf("Today() = %s, want 2024-03-09", got)
	}
	if got := cal.DaysAgo(2); got != "2024-03-07" {
		t.Errorf("DaysAgo(2) = %s, want 2024-03-07", got)
	}
	if got := cal.NextMeal(); got.MealType != model.MealBreakfast || got.Date != "2024-03-10" {
		t.Errorf("NextMeal() = %+v", got)
	}
}
