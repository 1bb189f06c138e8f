package nakama

import (
	"percity/internal/app"
	"percity/internal/domain"
	"percity/internal/tutor"
)

// Wire DTOs. All match payloads are JSON; field names are the contract with
// the web widget.

type wireItem struct {
	ID       string `json:"id"`
	Category string `json:"category"`
}

type wireLabel struct {
	Open    bool   `json:"open"`
	Game    string `json:"game"`
	Phase   string `json:"phase"`
	Variant string `json:"variant"`
}

type wireSnapshot struct {
	Variant      string             `json:"variant"`
	Phase        string             `json:"phase"`
	Available    []wireItem         `json:"available"`
	Placed       []wireItem         `json:"placed"`
	Total        float64            `json:"total"`
	Verdict      string             `json:"verdict,omitempty"`
	HasCommitted bool               `json:"has_committed"`
	AttemptsLeft int                `json:"attempts_left"`
	Weights      map[string]float64 `json:"weights"`
	Weather      map[string]float64 `json:"weather,omitempty"` // slider values 0..100
}

type wireGameStarted struct {
	Phase        string             `json:"phase"`
	AttemptsLeft int                `json:"attempts_left"`
	Available    []wireItem         `json:"available"`
	Weights      map[string]float64 `json:"weights"`
}

type wireItemMoved struct {
	ItemID      string  `json:"item_id"`
	Destination string  `json:"destination"`
	PlacedCount int     `json:"placed_count"`
	Total       float64 `json:"total"`
}

type wireCommitResolved struct {
	Total        float64 `json:"total"`
	Verdict      string  `json:"verdict"`
	AttemptsLeft int     `json:"attempts_left"`
	Phase        string  `json:"phase"`
}

type wireGameEnded struct {
	Outcome      string  `json:"outcome"`
	Total        float64 `json:"total"`
	AttemptsUsed int     `json:"attempts_used"`
	Certificate  string  `json:"certificate,omitempty"`
	AwardWatts   int64   `json:"award_watts,omitempty"`
}

type wireWeatherChanged struct {
	Category  string             `json:"category"`
	Intensity float64            `json:"intensity"`
	Weights   map[string]float64 `json:"weights"`
}

type wireGameReset struct {
	Phase        string `json:"phase"`
	AttemptsLeft int    `json:"attempts_left"`
}

type wireHint struct {
	Reachable bool           `json:"reachable"`
	Counts    map[string]int `json:"counts,omitempty"`
	Total     float64        `json:"total,omitempty"`
}

type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func itemsToWire(items []domain.Item) []wireItem {
	out := make([]wireItem, len(items))
	for i, it := range items {
		out[i] = wireItem{ID: it.ID, Category: string(it.Category)}
	}
	return out
}

func weightsToWire(weights map[domain.Category]float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for cat, w := range weights {
		out[string(cat)] = w
	}
	return out
}

func snapshotFromGame(variantID string, g *domain.Game) wireSnapshot {
	eval := domain.Evaluate(g.Board.Placed, g.Weights, g.Rules)

	snap := wireSnapshot{
		Variant:      variantID,
		Phase:        string(g.Phase),
		Available:    itemsToWire(g.Board.Available),
		Placed:       itemsToWire(g.Board.Placed),
		Total:        domain.DisplayTotal(eval.Total),
		HasCommitted: g.HasCommitted,
		AttemptsLeft: g.AttemptsLeft,
		Weights:      make(map[string]float64, len(domain.Categories)),
	}
	if g.HasCommitted {
		snap.Verdict = string(g.LastEval.Verdict)
	}
	for _, cat := range domain.Categories {
		snap.Weights[string(cat)] = g.Weights.DisplayWeight(cat)
	}
	if g.Weights.Mode == domain.WeightModeDynamic {
		snap.Weather = make(map[string]float64, len(g.Weights.Weather))
		for cat := range g.Weights.Weather {
			snap.Weather[string(cat)] = g.Weights.WeatherIntensity(cat)
		}
	}
	return snap
}

func hintToWire(suggestion tutor.Suggestion, ok bool) wireHint {
	hint := wireHint{Reachable: ok}
	if !ok {
		return hint
	}
	hint.Total = domain.DisplayTotal(suggestion.Total)
	hint.Counts = make(map[string]int, len(suggestion.Counts))
	for cat, n := range suggestion.Counts {
		hint.Counts[string(cat)] = n
	}
	return hint
}

func gameEndedToWire(p app.GameEndedPayload) wireGameEnded {
	return wireGameEnded{
		Outcome:      string(p.Outcome),
		Total:        p.Total,
		AttemptsUsed: p.AttemptsUsed,
	}
}
