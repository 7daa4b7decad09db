package service

import (
	"context"
	"fmt"

	"dining/internal/model"
	"dining/internal/repository"
)

// Selectable preference values
var (
	DietaryRestrictionOptions = []string{
		"Vegetarian", "Vegan", "Gluten-Free", "Dairy-Free", "Nut-Free", "Halal", "Kosher",
	}
	CuisineOptions = []string{
		"American", "Asian", "Italian", "Mexican", "Mediterranean", "Indian",
		"Chinese", "Japanese", "Thai", "Pizza", "Salads", "Sandwiches",
	}
	CampusLocationOptions = []string{
		"North Campus", "Central Campus", "West Campus", "Collegetown",
	}
	MealTypeOptions = []string{
		model.MealBreakfast, model.MealBrunch, model.MealLunch, model.MealLateLunch, model.MealDinner,
	}
)

// PreferenceService loads and saves user preferences
type PreferenceService struct {
	store repository.PreferenceStore
}

// NewPreferenceService creates a new preference service
func NewPreferenceService(store repository.PreferenceStore) *PreferenceService {
	return &PreferenceService{store: store}
}

// Options returns the values clients may offer
func (s *PreferenceService) Options() model.PreferenceOptions {
	return model.PreferenceOptions{
		DietaryRestrictions: DietaryRestrictionOptions,
		Cuisines:            CuisineOptions,
		CampusLocations:     CampusLocationOptions,
		MealTypes:           MealTypeOptions,
	}
}

// Get returns the saved preferences of userID, or defaults when none exist
func (s *PreferenceService) Get(ctx context.Context, userID string) (*model.UserPreferences, error) {
	prefs, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs == nil {
		return model.DefaultUserPreferences(userID), nil
	}
	return prefs, nil
}

// Save replaces the preferences of prefs.UserID
func (s *PreferenceService) Save(ctx context.Context, prefs *model.UserPreferences) error {
	if prefs.CampusLocation == "" {
		prefs.CampusLocation = model.DefaultCampusLocation
	}
	if prefs.DietaryRestrictions == nil {
		prefs.DietaryRestrictions = model.StringList{}
	}
	if prefs.FavoriteDiningHalls == nil {
		prefs.FavoriteDiningHalls = model.StringList{}
	}
	if prefs.PreferredCuisines == nil {
		prefs.PreferredCuisines = model.StringList{}
	}
	return s.store.SavePreferences(ctx, prefs)
}

// GetSimple returns the checkbox preferences of userID, or all-unchecked
// defaults when none exist
func (s *PreferenceService) GetSimple(ctx context.Context, userID string) (*model.SimplePreferences, error) {
	prefs, err := s.store.GetSimplePreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load simple preferences: %w", err)
	}
	if prefs == nil {
		return model.DefaultSimplePreferences(userID), nil
	}
	return prefs, nil
}

// SaveSimple replaces the checkbox preferences of prefs.UserID
func (s *PreferenceService) SaveSimple(ctx context.Context, prefs *model.SimplePreferences) error {
	if prefs.CampusLocation == "" {
		prefs.CampusLocation = model.DefaultCampusLocation
	}
	if prefs.FavoriteDiningHalls == nil {
		prefs.FavoriteDiningHalls = model.StringList{}
	}
	return s.store.SaveSimplePreferences(ctx, prefs)
}
