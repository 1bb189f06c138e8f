package tutor

import (
	"testing"

	"percity/internal/domain"
)

func classicRules() domain.Rules {
	return domain.Rules{
		ItemsPerCategory: 5,
		TargetMin:        80,
		TargetMax:        88,
		MaxAttempts:      3,
	}
}

func classicWeights() domain.Weights {
	return domain.NewStaticWeights(map[domain.Category]float64{
		domain.CategorySolar: 2,
		domain.CategoryWind:  6,
		domain.CategoryHydro: 12,
	})
}

func TestSuggestFindsReachablePlacement(t *testing.T) {
	suggestion, ok := Suggest(classicRules(), classicWeights())
	if !ok {
		t.Fatal("expected the classic variant target to be reachable")
	}

	total := 0.0
	w := classicWeights()
	for cat, n := range suggestion.Counts {
		if n < 0 || n > 5 {
			t.Fatalf("%s count = %d exceeds stock cap", cat, n)
		}
		total += float64(n) * w.Weight(cat)
	}
	if total != suggestion.Total {
		t.Fatalf("reported total %v != recomputed %v", suggestion.Total, total)
	}
	if total < 80 || total > 88 {
		t.Fatalf("total = %v, want within [80,88]", total)
	}
}

func TestSuggestPrefersFewestItems(t *testing.T) {
	suggestion, ok := Suggest(classicRules(), classicWeights())
	if !ok {
		t.Fatal("expected a suggestion")
	}

	// No 8-item placement reaches 80 (best is 5 hydro + 3 wind = 78), and
	// 5 hydro + 3 wind + 1 solar = 80 is the cheapest 9-item hit.
	if got := suggestion.ItemCount(); got != 9 {
		t.Fatalf("item count = %d, want 9", got)
	}
	if suggestion.Total != 80 {
		t.Fatalf("total = %v, want 80", suggestion.Total)
	}
}

func TestSuggestUnreachableTarget(t *testing.T) {
	rules := classicRules()
	rules.TargetMin = 101 // max reachable total is 5*2 + 5*6 + 5*12 = 100
	rules.TargetMax = 110

	if _, ok := Suggest(rules, classicWeights()); ok {
		t.Fatal("expected no suggestion above the maximum reachable total")
	}
	if Reachable(rules, classicWeights()) {
		t.Fatal("Reachable should agree with Suggest")
	}
}

func TestSuggestDynamicWeather(t *testing.T) {
	rules := domain.Rules{ItemsPerCategory: 5, TargetMin: 55, TargetMax: 65}
	weights := domain.NewDynamicWeights(5) // 10 per item at the midpoint

	suggestion, ok := Suggest(rules, weights)
	if !ok {
		t.Fatal("expected the weather variant target to be reachable at default sliders")
	}
	if suggestion.Total != 60 {
		t.Fatalf("total = %v, want 60", suggestion.Total)
	}
	if suggestion.ItemCount() != 6 {
		t.Fatalf("item count = %d, want 6", suggestion.ItemCount())
	}

	// Calm weather can make the target unreachable.
	for _, cat := range domain.Categories {
		weights.SetWeather(cat, 10) // 2 per item, max total 30
	}
	if Reachable(rules, weights) {
		t.Fatal("expected the target to be unreachable in calm weather")
	}
}
