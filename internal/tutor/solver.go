// Package tutor suggests placements that land inside the target range. It
// backs the in-game hint nudge and doubles as a reachability check for
// variant configs.
package tutor

import "percity/internal/domain"

// Suggestion describes a placement, as item counts per category, whose
// weighted total falls inside the variant's target range.
type Suggestion struct {
	Counts map[domain.Category]int
	Total  float64
}

// ItemCount returns the number of items the suggestion places.
func (s Suggestion) ItemCount() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

// Suggest enumerates every placement within the per-category stock caps and
// returns one whose total lands in [TargetMin, TargetMax], preferring the
// fewest items and breaking ties on the lower total. ok is false when no
// placement can reach the range, which is possible under dynamic weather.
func Suggest(rules domain.Rules, weights domain.Weights) (Suggestion, bool) {
	var best Suggestion
	found := false

	counts := make(map[domain.Category]int, len(domain.Categories))
	enumerate(rules, weights, 0, 0, counts, func(total float64) {
		candidate := Suggestion{Counts: cloneCounts(counts), Total: total}
		if !found {
			best = candidate
			found = true
			return
		}
		if candidate.ItemCount() < best.ItemCount() ||
			(candidate.ItemCount() == best.ItemCount() && candidate.Total < best.Total) {
			best = candidate
		}
	})

	return best, found
}

// Reachable reports whether any placement within the stock caps can land in
// the target range.
func Reachable(rules domain.Rules, weights domain.Weights) bool {
	_, ok := Suggest(rules, weights)
	return ok
}

func enumerate(rules domain.Rules, weights domain.Weights, idx int, total float64, counts map[domain.Category]int, hit func(total float64)) {
	if idx == len(domain.Categories) {
		if total >= rules.TargetMin && total <= rules.TargetMax {
			hit(total)
		}
		return
	}

	cat := domain.Categories[idx]
	weight := weights.Weight(cat)
	for n := 0; n <= rules.ItemsPerCategory; n++ {
		counts[cat] = n
		enumerate(rules, weights, idx+1, total+float64(n)*weight, counts, hit)
	}
	counts[cat] = 0
}

func cloneCounts(counts map[domain.Category]int) map[domain.Category]int {
	out := make(map[domain.Category]int, len(counts))
	for cat, n := range counts {
		if n > 0 {
			out[cat] = n
		}
	}
	return out
}
