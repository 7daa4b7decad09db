package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dining/internal/logging"
	"dining/internal/metrics"
	"dining/internal/middleware"
	"dining/internal/model"
	"dining/internal/repository"
	"dining/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const diningFeed = `{"status":"success","data":{"eateries":[{
  "id": 3, "name": "Morrison Dining", "location": "North Campus",
  "campusArea": {"descr": "North", "descrshort": "North"},
  "eateryTypes": [{"descr": "All You Care to Eat Dining Room"}],
  "operatingHours": [{"date": "2024-03-10", "events": [{"descr": "Lunch", "menu": [
    {"category": "Grill", "items": [{"item": "Pepperoni Pizza", "healthy": false}, {"item": "Steamed Broccoli", "healthy": true}]}
  ]}]}]
}]}}`

type testServer struct {
	router *gin.Engine
	store  *repository.SQLiteRepository
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	store, err := repository.NewSQLiteRepository(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(diningFeed))
	}))
	t.Cleanup(api.Close)

	m := metrics.NewNop()
	logger := logging.Nop()
	now := time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC)
	calendar := service.NewCalendar(func() time.Time { return now }, time.UTC, 7)

	client := service.NewCornellDiningClient(api.URL, 5*time.Second, m, logger)
	ingestor := service.NewIngestor(client, store, calendar, service.IngestOptions{Freshness: 6 * time.Hour}, m, logger)
	scorer := service.NewScorer(service.DefaultScoreWeights())
	recommendations := service.NewRecommendationService(store, store, scorer, calendar, m, logger)
	advisor := service.NewAdvisor(store, store, nil, calendar, service.AdvisorOptions{}, m, logger)

	auth := middleware.NewAuthenticator("handler-secret", "")
	token, err := auth.GenerateToken("student-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	router := gin.New()
	RegisterRoutes(router, Handlers{
		Classify:       NewClassifyHandler(service.NewClassifier()),
		Menu:           NewMenuHandler(ingestor, calendar),
		Preference:     NewPreferenceHandler(service.NewPreferenceService(store)),
		Recommendation: NewRecommendationHandler(recommendations, advisor),
	}, auth.AuthRequired())

	return &testServer{router: router, store: store, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Unmarshal(%s) error: %v", w.Body.String(), err)
	}
}

func TestClassifyHandler(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/classify", map[string]interface{}{
		"name": "Pepperoni Pizza", "category": "Italian Station",
	}, false)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp model.ClassifyResponse
	decode(t, w, &resp)
	if resp.Scores.Italian != 0.9 {
		t.Errorf("italian = %v, want 0.9", resp.Scores.Italian)
	}
	if len(resp.Top) == 0 || resp.Top[0].Category != service.CategoryItalian {
		t.Errorf("top = %+v, want italian first", resp.Top)
	}

	w = s.do(t, http.MethodPost, "/api/v1/classify", map[string]interface{}{"category": "Grill"}, false)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing name: status = %d, want 400", w.Code)
	}
}

func TestMenuHandler_RefreshAndList(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(t, http.MethodPost, "/api/v1/menus/refresh", nil, false); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated refresh: status = %d, want 401", w.Code)
	}

	w := s.do(t, http.MethodPost, "/api/v1/menus/refresh?force=true", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d, body %s", w.Code, w.Body.String())
	}
	var result model.IngestResult
	decode(t, w, &result)
	if !result.Fetched || result.MenusUpserted != 1 {
		t.Errorf("unexpected ingest result: %+v", result)
	}

	w = s.do(t, http.MethodGet, "/api/v1/menus/today", nil, false)
	var today model.MenuListResponse
	decode(t, w, &today)
	if today.Total != 1 || today.Menus[0].ItemCount != 2 || today.Menus[0].HealthyCount != 1 {
		t.Errorf("unexpected today listing: %+v", today)
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTotal  int
	}{
		{"all", "", http.StatusOK, 1},
		{"by meal", "?meal_type=Lunch", http.StatusOK, 1},
		{"other meal", "?meal_type=Dinner", http.StatusOK, 0},
		{"by eatery", "?eatery=Morrison%20Dining&date=2024-03-10", http.StatusOK, 1},
		{"bad date", "?date=03/10/2024", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/menus"+tt.query, nil, false)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var list model.MenuListResponse
			decode(t, w, &list)
			if list.Total != tt.wantTotal {
				t.Errorf("total = %d, want %d", list.Total, tt.wantTotal)
			}
		})
	}

	w = s.do(t, http.MethodGet, "/api/v1/menus/stats", nil, false)
	var stats model.MenuStats
	decode(t, w, &stats)
	if stats.Total != 1 || stats.TodayAndFuture != 1 || stats.LatestUpdate == nil {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestMenuHandler_NextMeal(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/menus/next-meal", nil, false)
	var next model.NextMeal
	decode(t, w, &next)
	if next.MealType != model.MealLunch || next.Date != "2024-03-10" {
		t.Errorf("next meal = %+v, want Lunch on 2024-03-10", next)
	}
}

func TestPreferenceHandler(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(t, http.MethodGet, "/api/v1/preferences", nil, false); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	w := s.do(t, http.MethodGet, "/api/v1/preferences", nil, true)
	var defaults model.UserPreferences
	decode(t, w, &defaults)
	if defaults.UserID != "student-1" || defaults.CampusLocation != model.DefaultCampusLocation {
		t.Errorf("unexpected defaults: %+v", defaults)
	}

	w = s.do(t, http.MethodPut, "/api/v1/preferences", map[string]interface{}{
		"user_id":               "someone-else",
		"favorite_dining_halls": []string{"Morrison Dining"},
		"preferred_cuisines":    []string{"Italian"},
		"campus_location":       "North Campus",
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("save: status = %d, body %s", w.Code, w.Body.String())
	}

	saved, err := s.store.GetPreferences(context.Background(), "student-1")
	if err != nil || saved == nil {
		t.Fatalf("GetPreferences() = %v, %v", saved, err)
	}
	if len(saved.FavoriteDiningHalls) != 1 {
		t.Errorf("favorites not saved: %+v", saved)
	}
	if other, _ := s.store.GetPreferences(context.Background(), "someone-else"); other != nil {
		t.Error("body user_id must not override the token user")
	}

	w = s.do(t, http.MethodPut, "/api/v1/preferences", map[string]interface{}{
		"cuisine_weights": map[string]float64{"italian": 3},
	}, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("out of range weight: status = %d, want 400", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/preferences/options", nil, false)
	var opts model.PreferenceOptions
	decode(t, w, &opts)
	if len(opts.CampusLocations) == 0 || len(opts.MealTypes) != 5 {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestRecommendationHandler(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(t, http.MethodPost, "/api/v1/menus/refresh?force=true", nil, true); w.Code != http.StatusOK {
		t.Fatalf("refresh: status = %d", w.Code)
	}

	w := s.do(t, http.MethodGet, "/api/v1/recommendations", nil, true)
	var empty model.RecommendationResponse
	decode(t, w, &empty)
	if empty.Total != 0 {
		t.Errorf("user without preferences got %d recommendations", empty.Total)
	}

	s.do(t, http.MethodPut, "/api/v1/preferences", map[string]interface{}{
		"favorite_dining_halls": []string{"Morrison Dining"},
		"preferred_cuisines":    []string{"Pizza"},
		"campus_location":       "North Campus",
	}, true)

	w = s.do(t, http.MethodGet, "/api/v1/recommendations?meal_type=Lunch&date=2024-03-10", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp model.RecommendationResponse
	decode(t, w, &resp)
	if resp.Total != 1 {
		t.Fatalf("expected 1 recommendation, got %+v", resp)
	}
	// 30 favorite + 25 location + 10 * 1 pizza match / 2 items
	if rec := resp.Recommendations[0]; rec.Score != 60 || rec.MatchPercentage != 60 {
		t.Errorf("score = %v (%d%%), want 60", rec.Score, rec.MatchPercentage)
	}

	s.do(t, http.MethodPut, "/api/v1/preferences/simple", map[string]interface{}{
		"main_meals": map[string]bool{"pizza": true},
		"sides":      map[string]bool{"vegetables": true},
	}, true)

	w = s.do(t, http.MethodGet, "/api/v1/recommendations/ai?meal_type=Lunch&date=2024-03-10", nil, true)
	var picks model.MealPickResponse
	decode(t, w, &picks)
	if picks.Total != 1 {
		t.Fatalf("expected 1 pick, got %+v", picks)
	}
	pick := picks.Picks[0]
	if pick.Source != model.PickSourceFallback || pick.MainDish.Name != "Pepperoni Pizza" {
		t.Errorf("unexpected pick: %+v", pick)
	}
	if pick.SideDish == nil || pick.SideDish.Name != "Steamed Broccoli" {
		t.Errorf("unexpected side: %+v", pick.SideDish)
	}

	if w := s.do(t, http.MethodGet, "/api/v1/recommendations?date=tomorrow", nil, true); w.Code != http.StatusBadRequest {
		t.Errorf("bad date: status = %d, want 400", w.Code)
	}
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/v1/nothing", nil, false)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
