package service

import (
	"math"
	"sort"
	"strings"

	"dining/internal/model"
)

// ScoreWeights are the point values of the score components
type ScoreWeights struct {
	FavoriteBonus      float64
	LocationMatch      float64
	LocationTableMatch float64
	LocationDefault    float64
	CuisineMatch       float64
	TopItems           int
}

// maxTopItems bounds the items listed per recommendation
const maxTopItems = 5

// DefaultScoreWeights returns the standard point values
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		FavoriteBonus:      30,
		LocationMatch:      25,
		LocationTableMatch: 20,
		LocationDefault:    5,
		CuisineMatch:       10,
		TopItems:           5,
	}
}

// campusHalls maps a campus location to name fragments of the halls in it
var campusHalls = map[string][]string{
	"North Campus":   {"Robert Purcell", "North Star", "RPCC", "Morrison"},
	"Central Campus": {"Okenshields", "Mattin", "Ivy Room", "Trillium", "Kennedy"},
	"West Campus":    {"Becker", "Cook", "Keeton", "Rose", "Flora Rose", "104West"},
	"Collegetown":    {"Collegetown", "CTB"},
}

// Scorer ranks menus against user preferences
type Scorer struct {
	weights ScoreWeights
}

// NewScorer creates a scorer with the given weights
func NewScorer(weights ScoreWeights) *Scorer {
	if weights.TopItems <= 0 {
		weights.TopItems = DefaultScoreWeights().TopItems
	}
	if weights.TopItems > maxTopItems {
		weights.TopItems = maxTopItems
	}
	return &Scorer{weights: weights}
}

// Score returns the total score of a menu for the given preferences
func (s *Scorer) Score(menu *model.Menu, prefs *model.UserPreferences) float64 {
	b := s.breakdown(menu, prefs)
	return b.Favorite + b.Location + b.Preference
}

// Rank scores every menu and returns recommendations sorted by score,
// keeping only menus with a positive score and at least one eligible item
func (s *Scorer) Rank(menus []model.Menu, prefs *model.UserPreferences) []model.Recommendation {
	recs := make([]model.Recommendation, 0, len(menus))

	for i := range menus {
		menu := &menus[i]

		items := s.FilterItems(menu.Items, prefs)
		if len(items) == 0 {
			continue
		}

		b := s.breakdown(menu, prefs)
		score := b.Favorite + b.Location + b.Preference
		if score <= 0 {
			continue
		}

		if len(items) > s.weights.TopItems {
			items = items[:s.weights.TopItems]
		}

		recs = append(recs, model.Recommendation{
			EateryName:      menu.EateryName,
			MealType:        menu.MealType,
			MenuDate:        menu.MenuDate,
			Location:        menu.Location,
			CampusArea:      menu.CampusArea,
			OperatingHours:  menu.OperatingHours,
			Score:           score,
			MatchPercentage: int(math.Round(score)),
			TopItems:        items,
			Breakdown:       b,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})

	return recs
}

// FilterItems drops restricted items and orders the rest by the number of
// preferred cuisines they match, most first
func (s *Scorer) FilterItems(items []model.MenuItem, prefs *model.UserPreferences) []model.MenuItem {
	restrictions := lowerAll(prefs.DietaryRestrictions)
	cuisines := lowerAll(prefs.PreferredCuisines)

	eligible := make([]model.MenuItem, 0, len(items))
	for _, item := range items {
		if !IsRestricted(item, restrictions) {
			eligible = append(eligible, item)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return cuisineMatches(eligible[i], cuisines) > cuisineMatches(eligible[j], cuisines)
	})

	return eligible
}

// IsRestricted reports whether any lowercase restriction appears in the
// item's name, category, ingredients or allergens
func IsRestricted(item model.MenuItem, restrictions []string) bool {
	if len(restrictions) == 0 {
		return false
	}
	text := item.SearchText()
	for _, r := range restrictions {
		if r != "" && strings.Contains(text, r) {
			return true
		}
	}
	return false
}

func (s *Scorer) breakdown(menu *model.Menu, prefs *model.UserPreferences) model.ScoreBreakdown {
	return model.ScoreBreakdown{
		Favorite:   s.favoriteScore(menu, prefs),
		Location:   s.locationScore(menu, prefs),
		Preference: s.preferenceScore(menu, prefs),
	}
}

func (s *Scorer) favoriteScore(menu *model.Menu, prefs *model.UserPreferences) float64 {
	for _, fav := range prefs.FavoriteDiningHalls {
		if fav == menu.EateryName {
			return s.weights.FavoriteBonus
		}
	}
	return 0
}

func (s *Scorer) locationScore(menu *model.Menu, prefs *model.UserPreferences) float64 {
	userLocation := strings.ToLower(prefs.CampusLocation)
	area := strings.ToLower(menu.CampusArea)

	if area != "" && userLocation != "" &&
		(strings.Contains(area, userLocation) || strings.Contains(userLocation, area)) {
		return s.weights.LocationMatch
	}

	eatery := strings.ToLower(menu.EateryName)
	for _, name := range campusHalls[prefs.CampusLocation] {
		name = strings.ToLower(name)
		if strings.Contains(eatery, name) || strings.Contains(name, eatery) {
			return s.weights.LocationTableMatch
		}
	}

	return s.weights.LocationDefault
}

func (s *Scorer) preferenceScore(menu *model.Menu, prefs *model.UserPreferences) float64 {
	restrictions := lowerAll(prefs.DietaryRestrictions)
	cuisines := lowerAll(prefs.PreferredCuisines)

	total := 0.0
	eligible := 0
	for _, item := range menu.Items {
		if IsRestricted(item, restrictions) {
			continue
		}
		eligible++
		total += float64(cuisineMatches(item, cuisines)) * s.weights.CuisineMatch
	}

	if eligible == 0 {
		return 0
	}
	return total / float64(eligible)
}

func cuisineMatches(item model.MenuItem, cuisines []string) int {
	name := strings.ToLower(item.Name)
	category := strings.ToLower(item.Category)

	n := 0
	for _, c := range cuisines {
		if c == "" {
			continue
		}
		if strings.Contains(name, c) || strings.Contains(category, c) {
			n++
		}
	}
	return n
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
