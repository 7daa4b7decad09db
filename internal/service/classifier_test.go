package service

import (
	"math"
	"testing"

	"dining/internal/model"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestClassifier_KeywordConfidence(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		item     string
		category string
		get      func(model.Classification) float64
		want     float64
	}{
		{
			name: "long keyword scores 0.9",
			item: "Pepperoni Pizza", category: "Italian Station",
			get:  func(r model.Classification) float64 { return r.Italian },
			want: 0.9, // "italian" has 7 characters
		},
		{
			name: "short keyword scores 0.7",
			item: "Cheese Pizza", category: "",
			get:  func(r model.Classification) float64 { return r.ComfortFood },
			want: 0.7,
		},
		{
			name: "six character keyword is short",
			item: "Roasted Salmon", category: "",
			get:  func(r model.Classification) float64 { return r.Seafood },
			want: 0.7,
		},
		{
			name: "max over keywords",
			item: "Pulled Pork Sandwich", category: "",
			get:  func(r model.Classification) float64 { return r.BeefPork },
			want: 0.9, // "pulled pork" beats "pork"
		},
		{
			name: "category text is matched",
			item: "Daily Special", category: "Dessert",
			get:  func(r model.Classification) float64 { return r.Dessert },
			want: 0.9,
		},
		{
			name: "case insensitive",
			item: "BEEF BULGOGI", category: "",
			get:  func(r model.Classification) float64 { return r.Asian },
			want: 0.9,
		},
		{
			name: "no match",
			item: "Water", category: "Beverages",
			get:  func(r model.Classification) float64 { return r.Mexican },
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.get(c.Classify(tt.item, tt.category))
			if !almostEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_ProteinDampening(t *testing.T) {
	c := NewClassifier()

	r := c.Classify("Turkey and Shrimp Fried Rice", "")
	if !almostEqual(r.Seafood, 0.9) {
		t.Errorf("seafood = %v, want 0.9", r.Seafood)
	}
	if !almostEqual(r.Poultry, 0.7*0.3) {
		t.Errorf("dominated poultry = %v, want %v", r.Poultry, 0.7*0.3)
	}

	// ties are not dampened
	tie := c.Classify("Chicken Sausage", "")
	if !almostEqual(tie.Poultry, 0.9) || !almostEqual(tie.BeefPork, 0.9) {
		t.Errorf("unexpected tie scores: poultry=%v beef_pork=%v", tie.Poultry, tie.BeefPork)
	}
}

func TestClassifier_DampenProteins(t *testing.T) {
	in := model.Classification{Seafood: 0.8, Poultry: 0.3}
	out := dampenProteins(in)

	if !almostEqual(out.Poultry, 0.09) {
		t.Errorf("poultry = %v, want 0.09", out.Poultry)
	}
	if !almostEqual(out.Seafood, 0.8) {
		t.Errorf("dominant seafood should be unchanged, got %v", out.Seafood)
	}
	if out.BeefPork != 0 {
		t.Errorf("zero beef_pork should stay zero, got %v", out.BeefPork)
	}

	weak := dampenProteins(model.Classification{Seafood: 0.5, Poultry: 0.3})
	if !almostEqual(weak.Poultry, 0.3) {
		t.Errorf("no dampening expected at max 0.5, got %v", weak.Poultry)
	}
}

func TestKeywordConfidence_CountsCharacters(t *testing.T) {
	tests := []struct {
		keyword string
		want    float64
	}{
		{"crêpes", shortKeywordConfidence}, // 6 characters, 7 bytes
		{"jalapeño", longKeywordConfidence},
		{"tofu", shortKeywordConfidence},
		{"chicken", longKeywordConfidence},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			if got := keywordConfidence("fresh "+tt.keyword+" plate", []string{tt.keyword}); !almostEqual(got, tt.want) {
				t.Errorf("keywordConfidence(%q) = %v, want %v", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestClassifier_VegetarianFloor(t *testing.T) {
	c := NewClassifier()

	for _, text := range []string{"Garden Salad", "Steamed Broccoli", "", "Fruit Cup"} {
		r := c.Classify(text, "")
		if !almostEqual(r.Vegetarian, 0.6) {
			t.Errorf("%q: vegetarian = %v, want 0.6", text, r.Vegetarian)
		}
	}

	// keyword confidence above the floor is kept
	if r := c.Classify("Falafel Wrap", ""); !almostEqual(r.Vegetarian, 0.9) {
		t.Errorf("falafel vegetarian = %v, want 0.9", r.Vegetarian)
	}

	// any protein match disables the floor
	if r := c.Classify("Turkey Club", ""); r.Vegetarian != 0 {
		t.Errorf("turkey vegetarian = %v, want 0", r.Vegetarian)
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c := NewClassifier()
	a := c.Classify("Chicken Tikka Masala", "Indian")
	b := c.Classify("Chicken Tikka Masala", "Indian")
	if a != b {
		t.Errorf("classification not deterministic: %+v vs %+v", a, b)
	}
}

func TestClassifier_ClassifyItemHealthyFlag(t *testing.T) {
	c := NewClassifier()

	flagged := c.ClassifyItem(model.MenuItem{Name: "Turkey Chili", Healthy: true})
	if flagged.HealthyOption != 1.0 {
		t.Errorf("healthy flag should force 1.0, got %v", flagged.HealthyOption)
	}

	plain := c.ClassifyItem(model.MenuItem{Name: "Grilled Cheese"})
	if !almostEqual(plain.HealthyOption, 0.9) {
		t.Errorf("unflagged grilled item = %v, want 0.9", plain.HealthyOption)
	}
}

func TestClassifier_Top(t *testing.T) {
	c := NewClassifier()
	r := c.Classify("Chicken Tikka Masala", "Indian")
	top := c.Top(r, 3)

	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Confidence > top[i-1].Confidence {
			t.Errorf("top not sorted: %+v", top)
		}
	}
	if top[0].Category != CategoryPoultry {
		t.Errorf("strongest category = %s, want poultry", top[0].Category)
	}

	if empty := c.Top(model.Classification{}, 5); len(empty) != 0 {
		t.Errorf("zero classification should have no top categories, got %+v", empty)
	}
}
