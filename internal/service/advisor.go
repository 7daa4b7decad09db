package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"dining/internal/metrics"
	"dining/internal/model"
	"dining/internal/repository"
	"dining/internal/utils"

	"github.com/rs/zerolog"
)

// AdvisorOptions configure an Advisor
type AdvisorOptions struct {
	// PromptItems is how many menu items are listed in the prompt
	PromptItems int
	// MessageLimit caps the pick message in characters
	MessageLimit int
}

// Advisor suggests one main dish and one side dish per dining hall from
// checkbox preferences
type Advisor struct {
	prefs    repository.PreferenceStore
	menus    repository.MenuStore
	ai       AIClient
	calendar *Calendar
	opts     AdvisorOptions
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewAdvisor creates a new meal advisor
func NewAdvisor(
	prefs repository.PreferenceStore,
	menus repository.MenuStore,
	ai AIClient,
	calendar *Calendar,
	opts AdvisorOptions,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Advisor {
	if opts.PromptItems <= 0 {
		opts.PromptItems = 15
	}
	if opts.MessageLimit <= 0 {
		opts.MessageLimit = 120
	}
	return &Advisor{
		prefs:    prefs,
		menus:    menus,
		ai:       ai,
		calendar: calendar,
		opts:     opts,
		metrics:  m,
		logger:   logger.With().Str("component", "advisor").Logger(),
	}
}

// completion is the only reply shape accepted from the model
type completion struct {
	MainDish string `json:"mainDish"`
	SideDish string `json:"sideDish"`
	Message  string `json:"message"`
}

// Recommend returns a pick for every favorite hall (every hall when none are
// set) serving mealType on date. Empty mealType or date default to the next
// meal. A user who selected nothing gets no picks.
func (a *Advisor) Recommend(ctx context.Context, userID, mealType, date string) (*model.MealPickResponse, error) {
	startTime := time.Now()

	prefs, err := a.prefs.GetSimplePreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load simple preferences: %w", err)
	}
	if !prefs.HasSelections() {
		a.logger.Debug().Str("user_id", userID).Msg("no selections, returning empty picks")
		return &model.MealPickResponse{Picks: []model.MealPick{}, Took: time.Since(startTime).Milliseconds()}, nil
	}

	next := a.calendar.NextMeal()
	if mealType == "" {
		mealType = next.MealType
	}
	if date == "" {
		date = next.Date
	}

	halls := utils.NormalizeDiningHalls(prefs.FavoriteDiningHalls)
	menus, err := a.menus.ListMenus(ctx, model.MenuFilter{
		Dates:       []string{date},
		MealType:    mealType,
		EateryNames: halls,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load menus: %w", err)
	}

	picks := make([]model.MealPick, 0, len(menus))
	for i := range menus {
		if len(menus[i].Items) == 0 {
			continue
		}
		picks = append(picks, a.pick(ctx, &menus[i], prefs))
	}

	a.logger.Debug().
		Str("user_id", userID).
		Str("meal_type", mealType).
		Str("date", date).
		Strs("halls", halls).
		Int("picks", len(picks)).
		Msg("meal picks generated")

	return &model.MealPickResponse{
		Picks: picks,
		Total: len(picks),
		Took:  time.Since(startTime).Milliseconds(),
	}, nil
}

// pick asks the model first and falls back to the rule tables on any failure
func (a *Advisor) pick(ctx context.Context, menu *model.Menu, prefs *model.SimplePreferences) model.MealPick {
	pick, err := a.aiPick(ctx, menu, prefs)
	if err != nil {
		event := a.logger.Warn()
		if isFallbackReason(err) {
			event = a.logger.Info()
		}
		event.Err(err).Str("eatery", menu.EateryName).Msg("using fallback pick")
		pick = a.fallbackPick(menu, prefs)
	}
	a.metrics.AdvisorPicks.WithLabelValues(pick.Source).Inc()
	return pick
}

func (a *Advisor) aiPick(ctx context.Context, menu *model.Menu, prefs *model.SimplePreferences) (model.MealPick, error) {
	if a.ai == nil || !a.ai.IsEnabled() {
		return model.MealPick{}, ErrAIDisabled
	}

	system, user := a.buildPrompt(menu, prefs)
	text, err := a.ai.Complete(ctx, system, user)
	if err != nil {
		return model.MealPick{}, fmt.Errorf("completion failed: %w", err)
	}

	main, side, message, err := a.parseCompletion(text, menu.Items)
	if err != nil {
		a.logger.Debug().Str("completion", truncate(text, 200)).Msg("rejected completion")
		return model.MealPick{}, err
	}
	if message == "" {
		message = a.fallbackMessage(menu.EateryName, prefs)
	}

	return model.MealPick{
		EateryName: menu.EateryName,
		MealType:   menu.MealType,
		MenuDate:   menu.MenuDate,
		MainDish:   main,
		SideDish:   side,
		Message:    message,
		Source:     model.PickSourceAI,
	}, nil
}

// parseCompletion applies the strict reply contract: one JSON object, a main
// dish on the menu and an optional different side dish on the menu
func (a *Advisor) parseCompletion(text string, items []model.MenuItem) (*model.MenuItem, *model.MenuItem, string, error) {
	var reply completion
	if err := utils.ParseCompletionJSON(text, &reply); err != nil {
		return nil, nil, "", fmt.Errorf("%w: %v", ErrUnparseableCompletion, err)
	}

	mainIdx := findDish(items, reply.MainDish, -1)
	if mainIdx < 0 {
		return nil, nil, "", fmt.Errorf("%w: main dish %q", ErrDishNotOnMenu, reply.MainDish)
	}
	main := items[mainIdx]

	var side *model.MenuItem
	if name := strings.TrimSpace(reply.SideDish); name != "" && !strings.EqualFold(name, "null") {
		sideIdx := findDish(items, name, mainIdx)
		if sideIdx < 0 {
			return nil, nil, "", fmt.Errorf("%w: side dish %q", ErrDishNotOnMenu, name)
		}
		s := items[sideIdx]
		side = &s
	}

	return &main, side, truncateRunes(strings.TrimSpace(reply.Message), a.opts.MessageLimit), nil
}

// findDish returns the index of the item named name, skipping the item at
// skip. An exact case-insensitive match wins; otherwise the longest item
// related to name by containment.
func findDish(items []model.MenuItem, name string, skip int) int {
	name = strings.TrimSpace(name)
	for i, it := range items {
		if i != skip && strings.EqualFold(strings.TrimSpace(it.Name), name) {
			return i
		}
	}

	best := -1
	for i, it := range items {
		if i == skip || !utils.FuzzyMatchDish(name, it.Name) {
			continue
		}
		if best < 0 || utf8.RuneCountInString(it.Name) > utf8.RuneCountInString(items[best].Name) {
			best = i
		}
	}
	return best
}

func (a *Advisor) buildPrompt(menu *model.Menu, prefs *model.SimplePreferences) (string, string) {
	system := fmt.Sprintf(`You are a dining recommendation assistant for Cornell University students.
Recommend ONE main dish and optionally ONE side dish from the listed menu items.

Respond ONLY with a JSON object of exactly this shape:
{"mainDish": "exact menu item name", "sideDish": "exact menu item name or empty", "message": "short upbeat message"}

Rules:
- Use EXACT item names from the list
- The side dish must be a different item than the main dish
- Keep the message under %d characters
- Do not add any other fields or text`, a.opts.MessageLimit)

	var b strings.Builder
	fmt.Fprintf(&b, "Dining hall: %s\n", menu.EateryName)
	fmt.Fprintf(&b, "Meal: %s\n\n", menu.MealType)
	b.WriteString("User preferences:\n")
	fmt.Fprintf(&b, "- Proteins: %s\n", orDefault(selectedProteins(prefs.Proteins), "Open to anything"))
	fmt.Fprintf(&b, "- Main meals: %s\n", orDefault(selectedMainMeals(prefs.MainMeals), "Open to anything"))
	fmt.Fprintf(&b, "- Sides: %s\n", orDefault(selectedSides(prefs.Sides), "Open to anything"))
	fmt.Fprintf(&b, "- Focus: %s\n\n", orDefault(selectedFocus(prefs.Focus), "Just hungry"))
	b.WriteString("Menu items:\n")

	items := menu.Items
	if len(items) > a.opts.PromptItems {
		items = items[:a.opts.PromptItems]
	}
	for _, it := range items {
		if it.Category != "" {
			fmt.Fprintf(&b, "- %s (%s)\n", it.Name, it.Category)
		} else {
			fmt.Fprintf(&b, "- %s\n", it.Name)
		}
	}

	return system, b.String()
}

// dishRule selects items for one checked box
type dishRule struct {
	selected func(p *model.SimplePreferences) bool
	pattern  *regexp.Regexp
}

var mainDishRules = []dishRule{
	{func(p *model.SimplePreferences) bool { return p.Proteins.Chicken }, regexp.MustCompile(`chicken|poultry`)},
	{func(p *model.SimplePreferences) bool { return p.Proteins.Beef }, regexp.MustCompile(`beef|steak`)},
	{func(p *model.SimplePreferences) bool { return p.Proteins.Pork }, regexp.MustCompile(`pork|bacon|\bham\b|sausage`)},
	{func(p *model.SimplePreferences) bool { return p.Proteins.Seafood }, regexp.MustCompile(`fish|salmon|tuna|shrimp|seafood|crab`)},
	{func(p *model.SimplePreferences) bool { return p.Proteins.Vegetarian }, regexp.MustCompile(`vegetarian|veggie`)},
	{func(p *model.SimplePreferences) bool { return p.Proteins.Vegan }, regexp.MustCompile(`vegan`)},
	{func(p *model.SimplePreferences) bool { return p.MainMeals.Pizza }, regexp.MustCompile(`pizza`)},
	{func(p *model.SimplePreferences) bool { return p.MainMeals.Pasta }, regexp.MustCompile(`pasta|spaghetti|penne|ravioli`)},
	{func(p *model.SimplePreferences) bool { return p.MainMeals.Burgers }, regexp.MustCompile(`burger`)},
	{func(p *model.SimplePreferences) bool { return p.MainMeals.Sandwiches }, regexp.MustCompile(`sandwich|wrap`)},
	{func(p *model.SimplePreferences) bool { return p.MainMeals.Salads }, regexp.MustCompile(`salad`)},
	{func(p *model.SimplePreferences) bool { return p.MainMeals.StirFry }, regexp.MustCompile(`stir.?fry|wok`)},
	{func(p *model.SimplePreferences) bool { return p.MainMeals.Soup }, regexp.MustCompile(`soup|broth|chowder`)},
	{func(p *model.SimplePreferences) bool { return p.MainMeals.RiceBowls }, regexp.MustCompile(`rice.*bowl|bowl.*rice`)},
	{func(p *model.SimplePreferences) bool { return p.MainMeals.Desserts }, regexp.MustCompile(`dessert|cake|cookie|ice.*cream|chocolate|brownie|pudding|pastry`)},
}

// genericMainDishes are tried in order when no checked box matches
var genericMainDishes = []*regexp.Regexp{
	regexp.MustCompile(`chicken|poultry`),
	regexp.MustCompile(`beef|steak`),
	regexp.MustCompile(`fish|salmon|shrimp|seafood`),
	regexp.MustCompile(`pizza`),
	regexp.MustCompile(`pasta|spaghetti`),
	regexp.MustCompile(`burger`),
}

var sideDishRules = []dishRule{
	{func(p *model.SimplePreferences) bool { return p.Sides.Fries }, regexp.MustCompile(`fries|chips`)},
	{func(p *model.SimplePreferences) bool { return p.Sides.Vegetables }, regexp.MustCompile(`vegetable|broccoli|carrot|green`)},
	{func(p *model.SimplePreferences) bool { return p.Sides.Rice }, regexp.MustCompile(`rice`)},
	{func(p *model.SimplePreferences) bool { return p.Sides.Bread }, regexp.MustCompile(`bread|roll|biscuit`)},
	{func(p *model.SimplePreferences) bool { return p.Sides.Fruit }, regexp.MustCompile(`fruit|apple|banana|berry`)},
	{func(p *model.SimplePreferences) bool { return p.Sides.Chips }, regexp.MustCompile(`chips`)},
}

// fallbackPick builds a pick from the rule tables alone
func (a *Advisor) fallbackPick(menu *model.Menu, prefs *model.SimplePreferences) model.MealPick {
	items := menu.Items
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = strings.ToLower(it.Name + " " + it.Category)
	}

	mainIdx := firstRuleMatch(texts, mainDishRules, prefs, -1)
	if mainIdx < 0 {
		mainIdx = firstPatternMatch(texts, genericMainDishes)
	}
	if mainIdx < 0 {
		mainIdx = 0
	}
	main := items[mainIdx]

	var side *model.MenuItem
	sideIdx := firstRuleMatch(texts, sideDishRules, prefs, mainIdx)
	if sideIdx < 0 {
		for i := range items {
			if i != mainIdx && items[i].Name != main.Name {
				sideIdx = i
				break
			}
		}
	}
	if sideIdx >= 0 {
		s := items[sideIdx]
		side = &s
	}

	return model.MealPick{
		EateryName: menu.EateryName,
		MealType:   menu.MealType,
		MenuDate:   menu.MenuDate,
		MainDish:   &main,
		SideDish:   side,
		Message:    a.fallbackMessage(menu.EateryName, prefs),
		Source:     model.PickSourceFallback,
	}
}

// firstRuleMatch walks the rules in order and returns the first item matched
// by a selected rule
func firstRuleMatch(texts []string, rules []dishRule, prefs *model.SimplePreferences, skip int) int {
	for _, rule := range rules {
		if !rule.selected(prefs) {
			continue
		}
		for i, text := range texts {
			if i != skip && rule.pattern.MatchString(text) {
				return i
			}
		}
	}
	return -1
}

func firstPatternMatch(texts []string, patterns []*regexp.Regexp) int {
	for _, p := range patterns {
		for i, text := range texts {
			if p.MatchString(text) {
				return i
			}
		}
	}
	return -1
}

var (
	generalMessages = []string{
		"Amazing find at %s! This combo is going to hit different!",
		"Jackpot! Found the perfect %s meal for you!",
		"Your taste buds called. They want this %s combo!",
		"Fuel up time! This %s selection is chef's kiss!",
		"Plot twist: %s has exactly what you need. Let's go!",
		"Magic happens at %s! This combo is pure perfection!",
	}
	proteinMessages = []string{
		"Protein power at %s! This plate is built to keep you strong.",
		"Gains approved: %s has the protein you are after today.",
	}
	healthyMessages = []string{
		"Fresh and balanced: %s has a plate that treats you right.",
		"Eating well at %s today. Nutritious and still delicious!",
	}
	comfortMessages = []string{
		"Cozy vibes at %s. This one is comfort on a plate.",
		"Treat yourself at %s! Hearty, warm and exactly right.",
	}
	workoutMessages = []string{
		"Workout fuel at %s! Good energy for before or after the gym.",
		"Recharge at %s. This combo keeps you going between sets.",
	}
)

// fallbackMessage is stable for a given hall and focus selection
func (a *Advisor) fallbackMessage(eateryName string, prefs *model.SimplePreferences) string {
	templates := generalMessages
	switch f := prefs.Focus; {
	case f.ProteinHeavy:
		templates = proteinMessages
	case f.Healthy || f.LowCarb:
		templates = healthyMessages
	case f.ComfortFood || f.CheatMeal:
		templates = comfortMessages
	case f.PreWorkout || f.PostWorkout:
		templates = workoutMessages
	}

	h := fnv.New32a()
	h.Write([]byte(eateryName))
	msg := fmt.Sprintf(templates[h.Sum32()%uint32(len(templates))], eateryName)
	return truncateRunes(msg, a.opts.MessageLimit)
}

// option is one checkbox and its prompt label
type option struct {
	on    bool
	label string
}

func selectedProteins(p model.ProteinPrefs) []string {
	return checked([]option{
		{p.Chicken, "chicken"}, {p.Beef, "beef"}, {p.Pork, "pork"},
		{p.Seafood, "seafood"}, {p.Vegetarian, "vegetarian"}, {p.Vegan, "vegan"},
	})
}

func selectedMainMeals(p model.MainMealPrefs) []string {
	return checked([]option{
		{p.Pizza, "pizza"}, {p.Pasta, "pasta"}, {p.Burgers, "burgers"},
		{p.Sandwiches, "sandwiches"}, {p.Salads, "salads"}, {p.StirFry, "stir fry"},
		{p.Soup, "soup"}, {p.RiceBowls, "rice bowls"}, {p.Desserts, "desserts"},
	})
}

func selectedSides(p model.SidePrefs) []string {
	return checked([]option{
		{p.Fries, "fries"}, {p.Vegetables, "vegetables"}, {p.Rice, "rice"},
		{p.Bread, "bread"}, {p.Fruit, "fruit"}, {p.Chips, "chips"},
	})
}

func selectedFocus(p model.FocusPrefs) []string {
	return checked([]option{
		{p.ProteinHeavy, "protein heavy"}, {p.LowCarb, "low carb"}, {p.Vegan, "vegan"},
		{p.Vegetarian, "vegetarian"}, {p.CheatMeal, "cheat meal"}, {p.Healthy, "healthy"},
		{p.ComfortFood, "comfort food"}, {p.PreWorkout, "pre workout"}, {p.PostWorkout, "post workout"},
	})
}

func checked(opts []option) []string {
	var out []string
	for _, o := range opts {
		if o.on {
			out = append(out, o.label)
		}
	}
	return out
}

func orDefault(values []string, def string) string {
	if len(values) == 0 {
		return def
	}
	return strings.Join(values, ", ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// isFallbackReason reports whether err is one of the advisor's own rejections
// rather than a transport failure
func isFallbackReason(err error) bool {
	return errors.Is(err, ErrAIDisabled) || errors.Is(err, ErrUnparseableCompletion) || errors.Is(err, ErrDishNotOnMenu)
}
