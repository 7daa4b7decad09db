package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"dining/internal/metrics"
	"dining/internal/model"
	"dining/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const unknownValue = "Unknown"

// menuItemNamespace seeds the name-based UUIDs of menu items
var menuItemNamespace = uuid.MustParse("8f4c1c2e-3a57-4f0e-9d7b-6c1d2b0e5a41")

var (
	diningTypeMarkers = []string{"dining", "marketplace", "all you care to eat"}
	diningNameMarkers = []string{"dining", "marketplace", "house", "104west", "okenshields"}
)

// IngestOptions configure an Ingestor
type IngestOptions struct {
	// Freshness is the age below which stored menus are not refetched
	Freshness time.Duration
	// RetentionDays keeps menus this many days before today; 0 keeps only today onward
	RetentionDays int
}

// Ingestor copies dining hall menus from the dining API into the menu store
type Ingestor struct {
	client   DiningClient
	store    repository.MenuStore
	calendar *Calendar
	opts     IngestOptions
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	// mu serializes runs so the scheduler and manual refreshes never overlap
	mu sync.Mutex
}

// NewIngestor creates a new ingestor
func NewIngestor(
	client DiningClient,
	store repository.MenuStore,
	calendar *Calendar,
	opts IngestOptions,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Ingestor {
	if opts.Freshness <= 0 {
		opts.Freshness = 6 * time.Hour
	}
	return &Ingestor{
		client:   client,
		store:    store,
		calendar: calendar,
		opts:     opts,
		metrics:  m,
		logger:   logger.With().Str("component", "ingestion").Logger(),
	}
}

// Run deletes past menus, then fetches and stores fresh menus unless the
// store was updated within the freshness window. force skips the freshness
// check.
func (i *Ingestor) Run(ctx context.Context, force bool) (*model.IngestResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	result := &model.IngestResult{StartedAt: i.calendar.Now()}
	defer func() { result.FinishedAt = i.calendar.Now() }()

	deleted, err := i.Cleanup(ctx)
	if err != nil {
		i.logger.Error().Err(err).Msg("cleanup of old menus failed")
	}
	result.MenusDeleted = deleted

	if !force {
		fetch, reason := i.shouldFetch(ctx)
		if !fetch {
			result.SkippedReason = reason
			i.metrics.IngestionRuns.WithLabelValues("skipped").Inc()
			i.logger.Info().Str("reason", reason).Msg("menu data is fresh, skipping fetch")
			return result, nil
		}
		i.logger.Info().Str("reason", reason).Msg("fetching menus from dining API")
	}

	eateries, err := i.client.FetchEateries(ctx)
	if err != nil {
		i.metrics.IngestionRuns.WithLabelValues("failed").Inc()
		return result, fmt.Errorf("failed to fetch eateries: %w", err)
	}
	result.Fetched = true

	var menus []model.Menu
	for _, e := range eateries {
		if !IsDiningHall(e) {
			continue
		}
		result.Eateries++
		menus = append(menus, FlattenEatery(e)...)
	}

	report, err := i.store.UpsertMenus(ctx, menus)
	if report != nil {
		result.MenusUpserted = report.Upserted
		result.MenusRejected = len(report.Rejected)
		for _, reason := range report.Rejected {
			i.logger.Warn().Str("reason", reason).Msg("menu rejected")
		}
		i.metrics.MenusUpserted.Add(float64(report.Upserted))
		i.metrics.MenusRejected.Add(float64(len(report.Rejected)))
	}
	if err != nil {
		i.metrics.IngestionRuns.WithLabelValues("failed").Inc()
		return result, fmt.Errorf("failed to store menus: %w", err)
	}

	i.metrics.IngestionRuns.WithLabelValues("fetched").Inc()
	i.logger.Info().
		Int("dining_halls", result.Eateries).
		Int("menus_upserted", result.MenusUpserted).
		Int("menus_rejected", result.MenusRejected).
		Int64("menus_deleted", result.MenusDeleted).
		Msg("ingestion finished")

	return result, nil
}

// Cleanup deletes menus dated before today minus the retention window
func (i *Ingestor) Cleanup(ctx context.Context) (int64, error) {
	cutoff := i.calendar.DaysAgo(i.opts.RetentionDays)
	deleted, err := i.store.DeleteMenusBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		i.metrics.MenusDeleted.Add(float64(deleted))
		i.logger.Info().Int64("deleted", deleted).Str("before", cutoff).Msg("deleted old menus")
	}
	return deleted, nil
}

// shouldFetch reports whether the store needs new data and why
func (i *Ingestor) shouldFetch(ctx context.Context) (bool, string) {
	latest, err := i.store.LatestUpdate(ctx)
	if err != nil {
		i.logger.Warn().Err(err).Msg("could not read last update time")
		return true, "last update unknown"
	}
	if latest == nil {
		return true, "no stored menus"
	}

	age := i.calendar.Now().Sub(*latest)
	if age < i.opts.Freshness {
		return false, fmt.Sprintf("updated %s ago", age.Round(time.Minute))
	}
	return true, fmt.Sprintf("last update %s ago", age.Round(time.Minute))
}

// Stats summarizes the menu store
func (i *Ingestor) Stats(ctx context.Context) (*model.MenuStats, error) {
	stats, err := i.store.MenuStats(ctx, i.calendar.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to get menu stats: %w", err)
	}
	return stats, nil
}

// TodaysMenus returns every stored menu dated today
func (i *Ingestor) TodaysMenus(ctx context.Context) ([]model.Menu, error) {
	return i.StoredMenus(ctx, model.MenuFilter{Dates: []string{i.calendar.Today()}})
}

// StoredMenus returns stored menus matching filter
func (i *Ingestor) StoredMenus(ctx context.Context, filter model.MenuFilter) ([]model.Menu, error) {
	menus, err := i.store.ListMenus(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list menus: %w", err)
	}
	return menus, nil
}

// IsDiningHall reports whether an eatery is an all-you-care-to-eat hall
// rather than a cafe
func IsDiningHall(e model.Eatery) bool {
	for _, t := range e.EateryTypes {
		descr := strings.ToLower(t.Descr)
		for _, marker := range diningTypeMarkers {
			if strings.Contains(descr, marker) {
				return true
			}
		}
	}

	name := strings.ToLower(e.Name)
	for _, marker := range diningNameMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// FlattenEatery turns the nested hours/events/categories/items structure
// into one menu per date and meal event. Events without items are dropped.
func FlattenEatery(e model.Eatery) []model.Menu {
	eateryID := strconv.Itoa(e.ID)
	campusArea := e.CampusArea.Descr
	if campusArea == "" {
		campusArea = unknownValue
	}

	var menus []model.Menu
	for _, day := range e.OperatingHours {
		for _, event := range day.Events {
			mealType := event.Descr
			if mealType == "" {
				mealType = unknownValue
			}

			var items model.MenuItems
			for _, cat := range event.Menu {
				category := cat.Category
				if category == "" {
					category = unknownValue
				}
				for _, it := range cat.Items {
					name := strings.TrimSpace(it.Item)
					if name == "" {
						continue
					}
					items = append(items, model.MenuItem{
						ID:          menuItemID(eateryID, day.Date, mealType, category, name, len(items)),
						Name:        name,
						Category:    category,
						Ingredients: []string{},
						Allergens:   []string{},
						Healthy:     it.Healthy,
						SortIdx:     it.SortIdx,
					})
				}
			}
			if len(items) == 0 {
				continue
			}

			menus = append(menus, model.Menu{
				EateryID:   eateryID,
				EateryName: e.Name,
				MenuDate:   day.Date,
				MealType:   mealType,
				Items:      items,
				CampusArea: campusArea,
				Location:   e.Location,
				OperatingHours: model.OperatingHours{
					Start:          event.Start,
					End:            event.End,
					StartTimestamp: event.StartTimestamp,
					EndTimestamp:   event.EndTimestamp,
				},
			})
		}
	}
	return menus
}

// menuItemID is stable across re-ingestion of the same menu
func menuItemID(eateryID, date, meal, category, name string, position int) string {
	key := strings.Join([]string{eateryID, date, meal, category, name, strconv.Itoa(position)}, "|")
	return uuid.NewSHA1(menuItemNamespace, []byte(key)).String()
}
