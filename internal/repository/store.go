package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dining/internal/model"

	"github.com/go-playground/validator/v10"
)

// Validation errors returned at the store boundary
var (
	ErrInvalidMenu        = errors.New("invalid menu")
	ErrInvalidPreferences = errors.New("invalid preferences")
)

// MenuStore persists menus keyed by (eatery_id, menu_date, meal_type)
type MenuStore interface {
	// UpsertMenus validates and writes menus; invalid menus are reported, not written
	UpsertMenus(ctx context.Context, menus []model.Menu) (*UpsertReport, error)
	ListMenus(ctx context.Context, filter model.MenuFilter) ([]model.Menu, error)
	// LatestUpdate returns nil when the store holds no menus
	LatestUpdate(ctx context.Context) (*time.Time, error)
	DeleteMenusBefore(ctx context.Context, date string) (int64, error)
	MenuStats(ctx context.Context, today string) (*model.MenuStats, error)
}

// PreferenceStore persists one preference record per user. Getters return
// nil, nil when the user has saved nothing.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error)
	SavePreferences(ctx context.Context, prefs *model.UserPreferences) error
	GetSimplePreferences(ctx context.Context, userID string) (*model.SimplePreferences, error)
	SaveSimplePreferences(ctx context.Context, prefs *model.SimplePreferences) error
}

// Store is a complete backend
type Store interface {
	MenuStore
	PreferenceStore
	Migrate(ctx context.Context) error
	Close() error
}

// UpsertReport summarizes a batch write
type UpsertReport struct {
	Upserted int
	Rejected []string
}

// recordValidator checks records before they are written
type recordValidator struct {
	validate *validator.Validate
}

func newRecordValidator() *recordValidator {
	return &recordValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *recordValidator) menu(m *model.Menu) error {
	if err := v.validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %s/%s/%s: %v", ErrInvalidMenu, m.EateryID, m.MenuDate, m.MealType, err)
	}
	return nil
}

func (v *recordValidator) preferences(p interface{}) error {
	if p == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidPreferences)
	}
	if err := v.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}
	return nil
}
