package service

import (
	"context"
	"fmt"
	"time"

	"dining/internal/metrics"
	"dining/internal/model"
	"dining/internal/repository"

	"github.com/rs/zerolog"
)

// RecommendationService ranks stored menus for a user
type RecommendationService struct {
	menus    repository.MenuStore
	prefs    repository.PreferenceStore
	scorer   *Scorer
	calendar *Calendar
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(
	menus repository.MenuStore,
	prefs repository.PreferenceStore,
	scorer *Scorer,
	calendar *Calendar,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *RecommendationService {
	return &RecommendationService{
		menus:    menus,
		prefs:    prefs,
		scorer:   scorer,
		calendar: calendar,
		metrics:  m,
		logger:   logger.With().Str("component", "recommendations").Logger(),
	}
}

// Recommend ranks the menus of date (or the coming week when date is empty)
// for userID. A user without saved preferences gets no recommendations.
func (s *RecommendationService) Recommend(ctx context.Context, userID, mealType, date string) (*model.RecommendationResponse, error) {
	startTime := time.Now()

	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	if prefs == nil {
		s.logger.Debug().Str("user_id", userID).Msg("no preferences saved, returning empty recommendations")
		return &model.RecommendationResponse{
			Recommendations: []model.Recommendation{},
			Took:            time.Since(startTime).Milliseconds(),
		}, nil
	}

	menus, err := s.menus.ListMenus(ctx, model.MenuFilter{
		Dates:    s.calendar.Dates(date),
		MealType: mealType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load menus: %w", err)
	}

	recs := s.scorer.Rank(menus, prefs)
	s.metrics.RecommendationsServed.Observe(float64(len(recs)))

	s.logger.Debug().
		Str("user_id", userID).
		Str("meal_type", mealType).
		Str("date", date).
		Int("menus", len(menus)).
		Int("recommendations", len(recs)).
		Msg("recommendations ranked")

	return &model.RecommendationResponse{
		Recommendations: recs,
		Total:           len(recs),
		Took:            time.Since(startTime).Milliseconds(),
	}, nil
}
