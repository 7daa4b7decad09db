package service

import (
	"sort"
	"strings"
	"unicode/utf8"

	"dining/internal/model"
)

// Category names, in classification order
const (
	CategorySeafood       = "seafood"
	CategoryPoultry       = "poultry"
	CategoryBeefPork      = "beef_pork"
	CategoryVegetarian    = "vegetarian"
	CategoryVegan         = "vegan"
	CategoryProteinRich   = "protein_rich"
	CategoryHealthyOption = "healthy_option"
	CategoryFriedFood     = "fried_food"
	CategoryComfortFood   = "comfort_food"
	CategoryAsian         = "asian"
	CategoryItalian       = "italian"
	CategoryMexican       = "mexican"
	CategoryAmerican      = "american"
	CategoryIndian        = "indian"
	CategoryBreakfastFood = "breakfast_food"
	CategoryDessert       = "dessert"
)

const (
	longKeywordConfidence  = 0.9
	shortKeywordConfidence = 0.7
	longKeywordMinLen      = 7
	proteinDominance       = 0.5
	proteinDampening       = 0.3
	vegetarianFloor        = 0.6
)

type categoryKeywords struct {
	name     string
	keywords []string
}

var categoryTable = []categoryKeywords{
	{CategorySeafood, []string{
		"pollock", "fish", "salmon", "shrimp", "tuna", "clam", "seafood", "cioppino",
		"manhattan clam chowder", "shrimp fried rice", "crab", "lobster", "scallop", "cod",
		"halibut", "mahi mahi", "tilapia", "catfish", "sea bass", "mussels",
	}},
	{CategoryPoultry, []string{
		"chicken", "turkey", "poultry", "buffalo chicken", "bbq chicken", "fried chicken",
		"chicken tikka", "korean bbq chicken", "chicken thigh", "chicken breast",
		"chicken drumstick", "chicken nugget", "chicken cordon", "orange chicken",
	}},
	{CategoryBeefPork, []string{
		"beef", "pork", "burger", "cheeseburger", "hamburger", "pulled pork", "bacon",
		"sausage", "meatball", "gyro", "bbq pork", "bulgogi", "taco beef", "spicy beef",
	}},
	{CategoryVegetarian, []string{
		"vegetarian", "veggie", "tofu", "hummus", "falafel", "cheese pizza", "mac and cheese",
		"pasta", "eggplant", "quinoa", "lentil", "chickpea", "black bean burger",
		"veggie supreme", "marinara", "alfredo",
	}},
	{CategoryVegan, []string{
		"vegan", "plant-based", "meatless", "chick'n", "dairy-free", "tofu", "tempeh",
		"seitan", "coconut milk", "almond", "soy",
	}},
	{CategoryProteinRich, []string{
		"chicken", "beef", "pork", "fish", "salmon", "tuna", "shrimp", "turkey", "tofu",
		"eggs", "quinoa", "lentil", "chickpea", "beans", "cheese", "yogurt", "protein",
		"masala", "tikka",
	}},
	{CategoryHealthyOption, []string{
		"salad", "steamed", "grilled", "roasted", "fresh fruit", "vegetables", "quinoa",
		"brown rice", "whole grain", "organic", "harvest salad", "yogurt", "hummus",
		"broccoli", "carrots", "green beans",
	}},
	{CategoryFriedFood, []string{
		"fried", "crispy", "breaded", "battered", "fries", "nuggets", "fried chicken",
		"fried rice", "tempura", "spring roll", "fritters", "fried potato", "popcorn chicken",
	}},
	{CategoryComfortFood, []string{
		"mac and cheese", "pizza", "burger", "fries", "mashed potato", "comfort", "casserole",
		"gravy", "cheese sauce", "fried chicken", "pot pie", "meatloaf", "chili",
	}},
	{CategoryAsian, []string{
		"asian", "chinese", "korean", "thai", "japanese", "stir fry", "wok", "teriyaki",
		"sesame", "ginger", "soy sauce", "kimchi", "bulgogi", "lo mein", "fried rice",
		"dumpling", "pot sticker", "ramen", "szechuan", "orange chicken", "sweet and sour",
		"jasmine rice", "egg drop soup", "hot and sour", "udon", "curry", "pad thai",
	}},
	{CategoryItalian, []string{
		"pasta", "pizza", "italian", "marinara", "alfredo", "parmesan", "mozzarella", "basil",
		"pesto", "risotto", "gnocchi", "ravioli", "tortellini", "lasagna", "spaghetti", "penne",
		"farfalle", "gemelli", "fettuccine", "linguine", "rigatoni", "fusilli", "capellini",
		"angel hair", "bolognese", "carbonara", "aglio e olio", "cacio e pepe", "arrabbiata",
		"puttanesca", "primavera", "romano", "pecorino", "ricotta", "provolone", "focaccia",
		"ciabatta", "bruschetta", "antipasto", "caprese", "minestrone", "italian sausage",
		"prosciutto", "pancetta", "salami", "mortadella",
	}},
	{CategoryMexican, []string{
		"mexican", "taco", "burrito", "quesadilla", "salsa", "guacamole", "chipotle",
		"jalapeño", "cilantro", "lime", "enchilada", "fajita", "nachos", "tortilla",
		"pico de gallo", "black bean", "corn salsa", "ancho chili", "birria", "peruvian",
	}},
	{CategoryAmerican, []string{
		"american", "burger", "fries", "bbq", "sandwich", "hot dog", "classic", "southern",
		"nashville", "carolina", "buffalo", "ranch", "cheddar", "bacon", "pulled pork", "coleslaw",
	}},
	{CategoryIndian, []string{
		"indian", "curry", "tikka", "masala", "tandoor", "naan", "basmati", "turmeric", "cumin",
		"coriander", "garam masala", "dal", "chana", "biryani", "vindaloo", "korma", "makhani",
		"chutney",
	}},
	{CategoryBreakfastFood, []string{
		"breakfast", "pancake", "waffle", "eggs", "bacon", "sausage", "cereal", "oatmeal",
		"bagel", "muffin", "toast", "hash browns", "scrambled", "omelet", "frittata",
		"continental breakfast",
	}},
	{CategoryDessert, []string{
		"dessert", "cake", "pie", "cookie", "ice cream", "chocolate", "sweet", "waffle bar",
		"bread pudding", "bars", "treats", "pastries", "vegan chocolate cake",
	}},
}

// Classifier maps menu item text to per-category confidences by keyword
// containment. It has no state; the zero value is ready to use.
type Classifier struct{}

// NewClassifier creates a classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify scores the lowercased concatenation of name and category
func (c *Classifier) Classify(name, category string) model.Classification {
	text := strings.ToLower(name + " " + category)

	scores := make(map[string]float64, len(categoryTable))
	for _, cat := range categoryTable {
		scores[cat.name] = keywordConfidence(text, cat.keywords)
	}

	applyProteinRules(scores)
	return toClassification(scores)
}

// ClassifyItem classifies an ingested item; items the dining API flags as
// healthy are fully confident healthy options
func (c *Classifier) ClassifyItem(item model.MenuItem) model.Classification {
	result := c.Classify(item.Name, item.Category)
	if item.Healthy {
		result.HealthyOption = 1.0
	}
	return result
}

// Top returns the n highest non-zero categories, strongest first
func (c *Classifier) Top(result model.Classification, n int) []model.CategoryScore {
	all := Scores(result)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Confidence > all[j].Confidence
	})

	top := make([]model.CategoryScore, 0, n)
	for _, s := range all {
		if len(top) == n || s.Confidence <= 0 {
			break
		}
		top = append(top, s)
	}
	return top
}

// dampenProteins applies the protein exclusivity rules to a score vector
func dampenProteins(result model.Classification) model.Classification {
	scores := map[string]float64{}
	for _, s := range Scores(result) {
		scores[s.Category] = s.Confidence
	}
	applyProteinRules(scores)
	return toClassification(scores)
}

// Scores lists the classification in category order
func Scores(r model.Classification) []model.CategoryScore {
	return []model.CategoryScore{
		{Category: CategorySeafood, Confidence: r.Seafood},
		{Category: CategoryPoultry, Confidence: r.Poultry},
		{Category: CategoryBeefPork, Confidence: r.BeefPork},
		{Category: CategoryVegetarian, Confidence: r.Vegetarian},
		{Category: CategoryVegan, Confidence: r.Vegan},
		{Category: CategoryProteinRich, Confidence: r.ProteinRich},
		{Category: CategoryHealthyOption, Confidence: r.HealthyOption},
		{Category: CategoryFriedFood, Confidence: r.FriedFood},
		{Category: CategoryComfortFood, Confidence: r.ComfortFood},
		{Category: CategoryAsian, Confidence: r.Asian},
		{Category: CategoryItalian, Confidence: r.Italian},
		{Category: CategoryMexican, Confidence: r.Mexican},
		{Category: CategoryAmerican, Confidence: r.American},
		{Category: CategoryIndian, Confidence: r.Indian},
		{Category: CategoryBreakfastFood, Confidence: r.BreakfastFood},
		{Category: CategoryDessert, Confidence: r.Dessert},
	}
}

func keywordConfidence(text string, keywords []string) float64 {
	best := 0.0
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			continue
		}
		conf := shortKeywordConfidence
		if utf8.RuneCountInString(kw) >= longKeywordMinLen {
			conf = longKeywordConfidence
		}
		if conf > best {
			best = conf
		}
	}
	return best
}

// applyProteinRules dampens protein categories dominated by a confident one
// and floors vegetarian when no protein matched
func applyProteinRules(scores map[string]float64) {
	proteins := []string{CategorySeafood, CategoryPoultry, CategoryBeefPork}

	maxProtein := 0.0
	for _, p := range proteins {
		if scores[p] > maxProtein {
			maxProtein = scores[p]
		}
	}

	if maxProtein > proteinDominance {
		for _, p := range proteins {
			if scores[p] < maxProtein {
				scores[p] *= proteinDampening
			}
		}
	}

	if maxProtein == 0 && scores[CategoryVegetarian] < vegetarianFloor {
		scores[CategoryVegetarian] = vegetarianFloor
	}
}

func toClassification(s map[string]float64) model.Classification {
	return model.Classification{
		Seafood:       s[CategorySeafood],
		Poultry:       s[CategoryPoultry],
		BeefPork:      s[CategoryBeefPork],
		Vegetarian:    s[CategoryVegetarian],
		Vegan:         s[CategoryVegan],
		ProteinRich:   s[CategoryProteinRich],
		HealthyOption: s[CategoryHealthyOption],
		FriedFood:     s[CategoryFriedFood],
		ComfortFood:   s[CategoryComfortFood],
		Asian:         s[CategoryAsian],
		Italian:       s[CategoryItalian],
		Mexican:       s[CategoryMexican],
		American:      s[CategoryAmerican],
		Indian:        s[CategoryIndian],
		BreakfastFood: s[CategoryBreakfastFood],
		Dessert:       s[CategoryDessert],
	}
}
