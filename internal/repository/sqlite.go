package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dining/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SQLiteRepository is an embedded store for local development and tests
type SQLiteRepository struct {
	db        *gorm.DB
	validator *recordValidator
}

var _ Store = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (or creates) the database at path. Use
// ":memory:" for a throwaway store.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases shared
	sqlDB.SetMaxOpenConns(1)

	return &SQLiteRepository{db: db, validator: newRecordValidator()}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates the tables if they do not exist
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	err := r.db.WithContext(ctx).AutoMigrate(
		&model.Menu{},
		&model.UserPreferences{},
		&model.SimplePreferences{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return nil
}

// UpsertMenus writes each valid menu separately, overwriting rows with the
// same (eatery_id, menu_date, meal_type). Write failures are reported in
// Rejected alongside validation failures.
func (r *SQLiteRepository) UpsertMenus(ctx context.Context, menus []model.Menu) (*UpsertReport, error) {
	report := &UpsertReport{}

	valid := make([]*model.Menu, 0, len(menus))
	for i := range menus {
		if err := r.validator.menu(&menus[i]); err != nil {
			report.Rejected = append(report.Rejected, err.Error())
			continue
		}
		valid = append(valid, &menus[i])
	}
	if len(valid) == 0 {
		return report, nil
	}

	upsert := clause.OnConflict{
		Columns: []clause.Column{{Name: "eatery_id"}, {Name: "menu_date"}, {Name: "meal_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"eatery_name", "items", "campus_area", "location", "operating_hours", "updated_at",
		}),
	}

	// a failed write is reported and the rest of the batch continues
	for _, m := range valid {
		if err := r.db.WithContext(ctx).Clauses(upsert).Create(m).Error; err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, fmt.Errorf("failed to upsert menus: %w", ctxErr)
			}
			report.Rejected = append(report.Rejected, fmt.Sprintf("failed to upsert menu %s/%s/%s: %v", m.EateryID, m.MenuDate, m.MealType, err))
			continue
		}
		report.Upserted++
	}

	return report, nil
}

// ListMenus returns menus matching the filter ordered by date, eatery and meal
func (r *SQLiteRepository) ListMenus(ctx context.Context, filter model.MenuFilter) ([]model.Menu, error) {
	query := r.db.WithContext(ctx).Model(&model.Menu{})
	if len(filter.Dates) > 0 {
		query = query.Where("menu_date IN ?", filter.Dates)
	}
	if filter.MealType != "" {
		query = query.Where("meal_type = ?", filter.MealType)
	}
	if len(filter.EateryNames) > 0 {
		query = query.Where("eatery_name IN ?", filter.EateryNames)
	}

	var menus []model.Menu
	if err := query.Order("menu_date, eatery_name, meal_type").Find(&menus).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch menus: %w", err)
	}
	return menus, nil
}

// LatestUpdate returns the newest updated_at over all menus
func (r *SQLiteRepository) LatestUpdate(ctx context.Context) (*time.Time, error) {
	var menu model.Menu
	err := r.db.WithContext(ctx).
		Select("updated_at").
		Order("updated_at DESC").
		Take(&menu).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest update: %w", err)
	}
	return &menu.UpdatedAt, nil
}

// DeleteMenusBefore removes menus dated strictly before date
func (r *SQLiteRepository) DeleteMenusBefore(ctx context.Context, date string) (int64, error) {
	result := r.db.WithContext(ctx).Where("menu_date < ?", date).Delete(&model.Menu{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old menus: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MenuStats counts stored menus
func (r *SQLiteRepository) MenuStats(ctx context.Context, today string) (*model.MenuStats, error) {
	var total, upcoming int64
	db := r.db.WithContext(ctx).Model(&model.Menu{})
	if err := db.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count menus: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&model.Menu{}).Where("menu_date >= ?", today).Count(&upcoming).Error; err != nil {
		return nil, fmt.Errorf("failed to count upcoming menus: %w", err)
	}

	latest, err := r.LatestUpdate(ctx)
	if err != nil {
		return nil, err
	}

	return &model.MenuStats{
		Total:          int(total),
		TodayAndFuture: int(upcoming),
		LatestUpdate:   latest,
	}, nil
}

// GetPreferences retrieves the preferences of a user
func (r *SQLiteRepository) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	var prefs model.UserPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&prefs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &prefs, nil
}

// SavePreferences replaces the preferences of a user
func (r *SQLiteRepository) SavePreferences(ctx context.Context, prefs *model.UserPreferences) error {
	if err := r.validator.preferences(prefs); err != nil {
		return err
	}
	prefs.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(prefs).Error
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// GetSimplePreferences retrieves the checkbox preferences of a user
func (r *SQLiteRepository) GetSimplePreferences(ctx context.Context, userID string) (*model.SimplePreferences, error) {
	var prefs model.SimplePreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&prefs).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get simple preferences: %w", err)
	}
	return &prefs, nil
}

// SaveSimplePreferences replaces the checkbox preferences of a user
func (r *SQLiteRepository) SaveSimplePreferences(ctx context.Context, prefs *model.SimplePreferences) error {
	if err := r.validator.preferences(prefs); err != nil {
		return err
	}
	prefs.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(prefs).Error
	if err != nil {
		return fmt.Errorf("failed to save simple preferences: %w", err)
	}
	return nil
}
