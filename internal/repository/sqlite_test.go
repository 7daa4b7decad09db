package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dining/internal/model"

	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	if err := repo.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}
	return repo
}

func testMenu(eatery, date, meal string, items ...string) model.Menu {
	m := model.Menu{
		EateryID:   strings.ToLower(strings.ReplaceAll(eatery, " ", "-")),
		EateryName: eatery,
		MenuDate:   date,
		MealType:   meal,
		CampusArea: "North",
	}
	for i, name := range items {
		m.Items = append(m.Items, model.MenuItem{ID: eatery + name, Name: name, Category: "Entree", SortIdx: i})
	}
	return m
}

func TestSQLiteRepository_UpsertKeepsBatchOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	err := repo.db.Callback().Create().Before("gorm:create").Register("fail_becker", func(db *gorm.DB) {
		if m, ok := db.Statement.Dest.(*model.Menu); ok && m.EateryName == "Becker House Dining Room" {
			db.AddError(errors.New("disk I/O error"))
		}
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	report, err := repo.UpsertMenus(ctx, []model.Menu{
		testMenu("Morrison Dining", "2024-03-10", "Lunch", "Pizza"),
		testMenu("Becker House Dining Room", "2024-03-10", "Lunch", "Tacos"),
		testMenu("Okenshields", "2024-03-10", "Lunch", "Soup"),
	})
	if err != nil {
		t.Fatalf("UpsertMenus() error: %v", err)
	}
	if report.Upserted != 2 {
		t.Errorf("Upserted = %d, want 2", report.Upserted)
	}
	if len(report.Rejected) != 1 || !strings.Contains(report.Rejected[0], "becker-house-dining-room") {
		t.Errorf("Rejected = %v, want the Becker menu", report.Rejected)
	}

	menus, err := repo.ListMenus(ctx, model.MenuFilter{Dates: []string{"2024-03-10"}})
	if err != nil {
		t.Fatalf("ListMenus() error: %v", err)
	}
	if len(menus) != 2 {
		t.Errorf("stored %d menus, want 2", len(menus))
	}
}

func TestSQLiteRepository_UpsertOverwritesNaturalKey(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	report, err := repo.UpsertMenus(ctx, []model.Menu{
		testMenu("Morrison Dining", "2024-03-10", "Lunch", "Pizza"),
	})
	if err != nil {
		t.Fatalf("UpsertMenus() error: %v", err)
	}
	if report.Upserted != 1 {
		t.Fatalf("Upserted = %d, want 1", report.Upserted)
	}

	_, err = repo.UpsertMenus(ctx, []model.Menu{
		testMenu("Morrison Dining", "2024-03-10", "Lunch", "Tacos", "Salad"),
	})
	if err != nil {
		t.Fatalf("second UpsertMenus() error: %v", err)
	}

	menus, err := repo.ListMenus(ctx, model.MenuFilter{})
	if err != nil {
		t.Fatalf("ListMenus() error: %v", err)
	}
	if len(menus) != 1 {
		t.Fatalf("expected 1 menu after re-ingestion, got %d", len(menus))
	}
	if len(menus[0].Items) != 2 || menus[0].Items[0].Name != "Tacos" {
		t.Errorf("menu items not overwritten: %+v", menus[0].Items)
	}
}

func TestSQLiteRepository_RejectsInvalidMenus(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	bad := []model.Menu{
		testMenu("", "2024-03-10", "Lunch", "Pizza"),
		testMenu("Morrison Dining", "03/10/2024", "Lunch", "Pizza"),
		testMenu("Morrison Dining", "2024-03-10", "", "Pizza"),
		{EateryID: "x", EateryName: "X", MenuDate: "2024-03-10", MealType: "Dinner", Items: model.MenuItems{{ID: "1"}}},
		testMenu("Okenshields", "2024-03-10", "Dinner", "Soup"),
	}

	report, err := repo.UpsertMenus(ctx, bad)
	if err != nil {
		t.Fatalf("UpsertMenus() error: %v", err)
	}
	if report.Upserted != 1 {
		t.Errorf("Upserted = %d, want 1", report.Upserted)
	}
	if len(report.Rejected) != 4 {
		t.Errorf("Rejected = %d, want 4: %v", len(report.Rejected), report.Rejected)
	}

	menus, _ := repo.ListMenus(ctx, model.MenuFilter{})
	if len(menus) != 1 || menus[0].EateryName != "Okenshields" {
		t.Errorf("only the valid menu should be stored, got %+v", menus)
	}
}

func TestSQLiteRepository_ListMenusFilter(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	_, err := repo.UpsertMenus(ctx, []model.Menu{
		testMenu("Morrison Dining", "2024-03-10", "Lunch", "Pizza"),
		testMenu("Morrison Dining", "2024-03-10", "Dinner", "Pasta"),
		testMenu("Becker House Dining Room", "2024-03-11", "Dinner", "Curry"),
		testMenu("Okenshields", "2024-03-12", "Dinner", "Soup"),
	})
	if err != nil {
		t.Fatalf("UpsertMenus() error: %v", err)
	}

	tests := []struct {
		name   string
		filter model.MenuFilter
		want   int
	}{
		{"all", model.MenuFilter{}, 4},
		{"one date", model.MenuFilter{Dates: []string{"2024-03-10"}}, 2},
		{"two dates", model.MenuFilter{Dates: []string{"2024-03-10", "2024-03-11"}}, 3},
		{"meal type", model.MenuFilter{MealType: "Dinner"}, 3},
		{"meal type is exact", model.MenuFilter{MealType: "dinner"}, 0},
		{"eatery names", model.MenuFilter{EateryNames: []string{"Okenshields", "Becker House Dining Room"}}, 2},
		{"combined", model.MenuFilter{Dates: []string{"2024-03-10"}, MealType: "Dinner"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			menus, err := repo.ListMenus(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListMenus() error: %v", err)
			}
			if len(menus) != tt.want {
				t.Errorf("got %d menus, want %d", len(menus), tt.want)
			}
		})
	}
}

func TestSQLiteRepository_CleanupAndStats(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	latest, err := repo.LatestUpdate(ctx)
	if err != nil {
		t.Fatalf("LatestUpdate() error: %v", err)
	}
	if latest != nil {
		t.Fatalf("empty store should have no latest update, got %v", latest)
	}

	_, err = repo.UpsertMenus(ctx, []model.Menu{
		testMenu("Morrison Dining", "2024-03-08", "Lunch", "Pizza"),
		testMenu("Morrison Dining", "2024-03-09", "Lunch", "Pizza"),
		testMenu("Morrison Dining", "2024-03-10", "Lunch", "Pizza"),
		testMenu("Morrison Dining", "2024-03-11", "Lunch", "Pizza"),
	})
	if err != nil {
		t.Fatalf("UpsertMenus() error: %v", err)
	}

	stats, err := repo.MenuStats(ctx, "2024-03-10")
	if err != nil {
		t.Fatalf("MenuStats() error: %v", err)
	}
	if stats.Total != 4 || stats.TodayAndFuture != 2 {
		t.Errorf("stats = %+v, want total 4, upcoming 2", stats)
	}
	if stats.LatestUpdate == nil || time.Since(*stats.LatestUpdate) > time.Minute {
		t.Errorf("latest update not recent: %v", stats.LatestUpdate)
	}

	deleted, err := repo.DeleteMenusBefore(ctx, "2024-03-10")
	if err != nil {
		t.Fatalf("DeleteMenusBefore() error: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	menus, _ := repo.ListMenus(ctx, model.MenuFilter{})
	for _, m := range menus {
		if m.MenuDate < "2024-03-10" {
			t.Errorf("menu dated %s survived cleanup", m.MenuDate)
		}
	}
}

func TestSQLiteRepository_Preferences(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	got, err := repo.GetPreferences(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetPreferences() error: %v", err)
	}
	if got != nil {
		t.Fatalf("missing preferences should be nil, got %+v", got)
	}

	prefs := model.DefaultUserPreferences("user-1")
	prefs.PreferredCuisines = model.StringList{"Italian"}
	prefs.DietaryRestrictions = model.StringList{"peanut"}
	prefs.CuisineWeights = model.WeightMap{"italian": 0.8}
	if err := repo.SavePreferences(ctx, prefs); err != nil {
		t.Fatalf("SavePreferences() error: %v", err)
	}

	prefs.PreferredCuisines = model.StringList{"Mexican", "Thai"}
	if err := repo.SavePreferences(ctx, prefs); err != nil {
		t.Fatalf("second SavePreferences() error: %v", err)
	}

	got, err = repo.GetPreferences(ctx, "user-1")
	if err != nil || got == nil {
		t.Fatalf("GetPreferences() = %v, %v", got, err)
	}
	if len(got.PreferredCuisines) != 2 || got.PreferredCuisines[0] != "Mexican" {
		t.Errorf("preferences not replaced: %v", got.PreferredCuisines)
	}
	if got.CuisineWeights["italian"] != 0.8 {
		t.Errorf("weights not round-tripped: %v", got.CuisineWeights)
	}
	if got.CampusLocation != model.DefaultCampusLocation {
		t.Errorf("CampusLocation = %q", got.CampusLocation)
	}
}

func TestSQLiteRepository_PreferencesValidation(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	tests := []struct {
		name  string
		prefs *model.UserPreferences
	}{
		{"missing user", &model.UserPreferences{}},
		{"weight above one", &model.UserPreferences{UserID: "u", NutritionWeights: model.WeightMap{"protein": 1.5}}},
		{"negative weight", &model.UserPreferences{UserID: "u", MealFocusWeights: model.WeightMap{"comfort": -0.1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.SavePreferences(ctx, tt.prefs)
			if !errors.Is(err, ErrInvalidPreferences) {
				t.Errorf("expected ErrInvalidPreferences, got %v", err)
			}
		})
	}
}

func TestSQLiteRepository_SimplePreferences(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t)

	prefs := model.DefaultSimplePreferences("user-2")
	prefs.Proteins.Chicken = true
	prefs.Focus.PostWorkout = true
	prefs.FavoriteDiningHalls = model.StringList{"Morrison Dining"}
	if err := repo.SaveSimplePreferences(ctx, prefs); err != nil {
		t.Fatalf("SaveSimplePreferences() error: %v", err)
	}

	got, err := repo.GetSimplePreferences(ctx, "user-2")
	if err != nil || got == nil {
		t.Fatalf("GetSimplePreferences() = %v, %v", got, err)
	}
	if !got.Proteins.Chicken || got.Proteins.Beef || !got.Focus.PostWorkout {
		t.Errorf("checkboxes not round-tripped: %+v %+v", got.Proteins, got.Focus)
	}
	if !got.HasSelections() {
		t.Error("HasSelections() should be true")
	}

	if err := repo.SaveSimplePreferences(ctx, &model.SimplePreferences{}); !errors.Is(err, ErrInvalidPreferences) {
		t.Errorf("expected ErrInvalidPreferences for empty user id, got %v", err)
	}
}
