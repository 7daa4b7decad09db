package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"dining/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var postgresSchema string

const menuColumns = `
	id, eatery_id, eatery_name, menu_date::text AS menu_date, meal_type, items,
	campus_area, location, operating_hours, created_at, updated_at`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db        *sqlx.DB
	validator *recordValidator
}

var _ Store = (*PostgresRepository)(nil)

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db, validator: newRecordValidator()}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Migrate creates the tables if they do not exist
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// UpsertMenus writes each valid menu separately, overwriting rows with the
// same (eatery_id, menu_date, meal_type). Write failures are reported in
// Rejected alongside validation failures.
func (r *PostgresRepository) UpsertMenus(ctx context.Context, menus []model.Menu) (*UpsertReport, error) {
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

	stmt, err := r.db.PreparexContext(ctx, `
		INSERT INTO menus (eatery_id, eatery_name, menu_date, meal_type, items, campus_area, location, operating_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (eatery_id, menu_date, meal_type) DO UPDATE SET
			eatery_name = EXCLUDED.eatery_name,
			items = EXCLUDED.items,
			campus_area = EXCLUDED.campus_area,
			location = EXCLUDED.location,
			operating_hours = EXCLUDED.operating_hours,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`)
	if err != nil {
		return report, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	// a failed write is reported and the rest of the batch continues
	for _, m := range valid {
		err := stmt.QueryRowxContext(ctx,
			m.EateryID, m.EateryName, m.MenuDate, m.MealType,
			m.Items, m.CampusArea, m.Location, m.OperatingHours,
		).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
		if err != nil {
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
func (r *PostgresRepository) ListMenus(ctx context.Context, filter model.MenuFilter) ([]model.Menu, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if len(filter.Dates) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("menu_date = ANY($%d::date[])", argIndex))
		args = append(args, pq.Array(filter.Dates))
		argIndex++
	}
	if filter.MealType != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("meal_type = $%d", argIndex))
		args = append(args, filter.MealType)
		argIndex++
	}
	if len(filter.EateryNames) > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("eatery_name = ANY($%d)", argIndex))
		args = append(args, pq.Array(filter.EateryNames))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM menus
		WHERE %s
		ORDER BY menu_date, eatery_name, meal_type
	`, menuColumns, strings.Join(whereClauses, " AND "))

	var menus []model.Menu
	if err := r.db.SelectContext(ctx, &menus, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch menus: %w", err)
	}
	return menus, nil
}

// LatestUpdate returns the newest updated_at over all menus
func (r *PostgresRepository) LatestUpdate(ctx context.Context) (*time.Time, error) {
	var latest sql.NullTime
	if err := r.db.GetContext(ctx, &latest, `SELECT MAX(updated_at) FROM menus`); err != nil {
		return nil, fmt.Errorf("failed to get latest update: %w", err)
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

// DeleteMenusBefore removes menus dated strictly before date
func (r *PostgresRepository) DeleteMenusBefore(ctx context.Context, date string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM menus WHERE menu_date < $1::date`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old menus: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted menus: %w", err)
	}
	return n, nil
}

// MenuStats counts stored menus
func (r *PostgresRepository) MenuStats(ctx context.Context, today string) (*model.MenuStats, error) {
	var row struct {
		Total          int          `db:"total"`
		TodayAndFuture int          `db:"today_and_future"`
		LatestUpdate   sql.NullTime `db:"latest_update"`
	}
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE menu_date >= $1::date) AS today_and_future,
			MAX(updated_at) AS latest_update
		FROM menus
	`
	if err := r.db.GetContext(ctx, &row, query, today); err != nil {
		return nil, fmt.Errorf("failed to get menu stats: %w", err)
	}

	stats := &model.MenuStats{Total: row.Total, TodayAndFuture: row.TodayAndFuture}
	if row.LatestUpdate.Valid {
		stats.LatestUpdate = &row.LatestUpdate.Time
	}
	return stats, nil
}

// GetPreferences retrieves the preferences of a user
func (r *PostgresRepository) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	var prefs model.UserPreferences
	query := `
		SELECT user_id, dietary_restrictions, favorite_dining_halls, preferred_cuisines,
			campus_location, nutrition_weights, cuisine_weights, meal_focus_weights, updated_at
		FROM user_preferences
		WHERE user_id = $1
	`
	err := r.db.GetContext(ctx, &prefs, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &prefs, nil
}

// SavePreferences replaces the preferences of a user
func (r *PostgresRepository) SavePreferences(ctx context.Context, prefs *model.UserPreferences) error {
	if err := r.validator.preferences(prefs); err != nil {
		return err
	}

	query := `
		INSERT INTO user_preferences (user_id, dietary_restrictions, favorite_dining_halls, preferred_cuisines,
			campus_location, nutrition_weights, cuisine_weights, meal_focus_weights, updated_at)
		VALUES (:user_id, :dietary_restrictions, :favorite_dining_halls, :preferred_cuisines,
			:campus_location, :nutrition_weights, :cuisine_weights, :meal_focus_weights, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			dietary_restrictions = EXCLUDED.dietary_restrictions,
			favorite_dining_halls = EXCLUDED.favorite_dining_halls,
			preferred_cuisines = EXCLUDED.preferred_cuisines,
			campus_location = EXCLUDED.campus_location,
			nutrition_weights = EXCLUDED.nutrition_weights,
			cuisine_weights = EXCLUDED.cuisine_weights,
			meal_focus_weights = EXCLUDED.meal_focus_weights,
			updated_at = NOW()
	`
	if _, err := r.db.NamedExecContext(ctx, query, prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// GetSimplePreferences retrieves the checkbox preferences of a user
func (r *PostgresRepository) GetSimplePreferences(ctx context.Context, userID string) (*model.SimplePreferences, error) {
	var prefs model.SimplePreferences
	query := `
		SELECT user_id, proteins, main_meals, sides, focus, favorite_dining_halls, campus_location, updated_at
		FROM simple_preferences
		WHERE user_id = $1
	`
	err := r.db.GetContext(ctx, &prefs, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get simple preferences: %w", err)
	}
	return &prefs, nil
}

// SaveSimplePreferences replaces the checkbox preferences of a user
func (r *PostgresRepository) SaveSimplePreferences(ctx context.Context, prefs *model.SimplePreferences) error {
	if err := r.validator.preferences(prefs); err != nil {
		return err
	}

	query := `
		INSERT INTO simple_preferences (user_id, proteins, main_meals, sides, focus,
			favorite_dining_halls, campus_location, updated_at)
		VALUES (:user_id, :proteins, :main_meals, :sides, :focus,
			:favorite_dining_halls, :campus_location, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			proteins = EXCLUDED.proteins,
			main_meals = EXCLUDED.main_meals,
			sides = EXCLUDED.sides,
			focus = EXCLUDED.focus,
			favorite_dining_halls = EXCLUDED.favorite_dining_halls,
			campus_location = EXCLUDED.campus_location,
			updated_at = NOW()
	`
	if _, err := r.db.NamedExecContext(ctx, query, prefs); err != nil {
		return fmt.Errorf("failed to save simple preferences: %w", err)
	}
	return nil
}
