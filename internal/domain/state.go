package domain

// Category identifies one of the energy-source kinds a player can place.
type Category string

const (
	CategorySolar Category = "solar"
	CategoryWind  Category = "wind"
	CategoryHydro Category = "hydro"
)

// Categories lists every category in tray display order.
var Categories = []Category{CategorySolar, CategoryWind, CategoryHydro}

// Phase represents the lifecycle stage of a game.
type Phase string

const (
	// PhaseIntro is the pre-game state before the player presses start.
	PhaseIntro Phase = "intro"
	// PhasePlaying is the active state where items can be moved and committed.
	PhasePlaying Phase = "playing"
	// PhaseWon is the terminal state after an in-range commit.
	PhaseWon Phase = "won"
	// PhaseLost is the terminal state after the last attempt failed.
	PhaseLost Phase = "lost"
)

// Verdict classifies a committed total against the target range.
type Verdict string

const (
	VerdictBelow   Verdict = "below"
	VerdictInRange Verdict = "in_range"
	VerdictAbove   Verdict = "above"
)

// Item is a single placeable energy token.
type Item struct {
	ID       string
	Category Category
}

// Board holds the two item collections. An item is always in exactly one of
// the two; their union is the full stock for the variant.
type Board struct {
	Available []Item
	Placed    []Item
}

// Evaluation is the outcome of scoring the placed items.
type Evaluation struct {
	Total   float64
	Verdict Verdict
}

// Rules are the fixed parameters of one game variant.
type Rules struct {
	ItemsPerCategory int
	TargetMin        float64
	TargetMax        float64
	MaxAttempts      int
	StartPhase       Phase // PhaseIntro or PhasePlaying
}

// Game captures the authoritative state for a single game instance.
type Game struct {
	Phase        Phase
	Rules        Rules
	Board        Board
	Weights      Weights
	AttemptsLeft int
	HasCommitted bool
	LastEval     Evaluation
}

// NewGame constructs a freshly reset game for the given rules and weights.
func NewGame(rules Rules, weights Weights) *Game {
	g := &Game{Rules: rules, Weights: weights}
	g.Reset()
	return g
}

// Reset repopulates the stock, restores the attempt budget and returns the
// game to its variant start phase. Weather settings survive a reset; they are
// session-level, not game-level.
func (g *Game) Reset() {
	g.Board = Board{Available: NewStock(g.Rules.ItemsPerCategory)}
	g.AttemptsLeft = g.Rules.MaxAttempts
	g.HasCommitted = false
	g.LastEval = Evaluation{}
	g.Phase = g.Rules.StartPhase
	if g.Phase == "" {
		g.Phase = PhaseIntro
	}
}

// TotalItemCount returns the invariant size of the full stock.
func (g *Game) TotalItemCount() int {
	return g.Rules.ItemsPerCategory * len(Categories)
}
