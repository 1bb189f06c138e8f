package app

import (
	"errors"

	"percity/internal/domain"
)

// Service contains Perceptron City use-cases operating on domain state.
type Service struct{}

// NewService constructs a Service.
func NewService() *Service {
	return &Service{}
}

var (
	ErrNotIntro     = errors.New("game not in intro phase")
	ErrNotPlaying   = errors.New("game not in playing phase")
	ErrNotEnded     = errors.New("game not in a terminal phase")
	ErrEmptyGrid    = errors.New("cannot commit an empty grid")
	ErrWeatherFixed = errors.New("variant uses fixed weights")
)

// NewGame constructs a freshly reset domain game for the given variant rules.
func (s *Service) NewGame(rules domain.Rules, weights domain.Weights) *domain.Game {
	if rules.MaxAttempts <= 0 {
		rules.MaxAttempts = DefaultMaxAttempts
	}
	return domain.NewGame(rules, weights)
}

// StartGame moves a game out of the intro phase into play.
func (s *Service) StartGame(g *domain.Game) ([]Event, error) {
	if g.Phase != domain.PhaseIntro {
		return nil, ErrNotIntro
	}

	g.Phase = domain.PhasePlaying

	return []Event{
		{
			Kind: EventGameStarted,
			Payload: GameStartedPayload{
				Phase:        g.Phase,
				AttemptsLeft: g.AttemptsLeft,
				Available:    g.Board.Available,
				Weights:      displayWeights(g.Weights),
			},
		},
	}, nil
}

// MoveToGrid places an available item on the grid. Any successful move
// invalidates the last displayed verdict without consuming an attempt.
func (s *Service) MoveToGrid(g *domain.Game, itemID string) ([]Event, error) {
	return s.move(g, itemID, DestinationGrid)
}

// MoveToAvailable returns a placed item to the tray.
func (s *Service) MoveToAvailable(g *domain.Game, itemID string) ([]Event, error) {
	return s.move(g, itemID, DestinationAvailable)
}

func (s *Service) move(g *domain.Game, itemID, destination string) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}

	var err error
	if destination == DestinationGrid {
		g.Board.Available, g.Board.Placed, err = domain.MoveItem(g.Board.Available, g.Board.Placed, itemID)
	} else {
		g.Board.Placed, g.Board.Available, err = domain.MoveItem(g.Board.Placed, g.Board.Available, itemID)
	}
	if err != nil {
		return nil, err
	}

	g.HasCommitted = false

	eval := domain.Evaluate(g.Board.Placed, g.Weights, g.Rules)
	return []Event{
		{
			Kind: EventItemMoved,
			Payload: ItemMovedPayload{
				ItemID:      itemID,
				Destination: destination,
				PlacedCount: len(g.Board.Placed),
				Total:       domain.DisplayTotal(eval.Total),
			},
		},
	}, nil
}

// Commit freezes the current placement and evaluates it against the target
// range. An in-range total wins; anything else consumes an attempt, and the
// last failed attempt loses the game.
func (s *Service) Commit(g *domain.Game) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	if len(g.Board.Placed) == 0 {
		return nil, ErrEmptyGrid
	}

	eval := domain.Evaluate(g.Board.Placed, g.Weights, g.Rules)
	g.LastEval = eval
	g.HasCommitted = true

	if eval.Verdict == domain.VerdictInRange {
		g.Phase = domain.PhaseWon
	} else {
		g.AttemptsLeft--
		if g.AttemptsLeft <= 0 {
			g.AttemptsLeft = 0
			g.Phase = domain.PhaseLost
		}
	}

	events := []Event{
		{
			Kind: EventCommitResolved,
			Payload: CommitResolvedPayload{
				Total:        domain.DisplayTotal(eval.Total),
				Verdict:      eval.Verdict,
				AttemptsLeft: g.AttemptsLeft,
				Phase:        g.Phase,
			},
		},
	}

	if g.Phase == domain.PhaseWon || g.Phase == domain.PhaseLost {
		events = append(events, Event{
			Kind: EventGameEnded,
			Payload: GameEndedPayload{
				Outcome:      g.Phase,
				Total:        domain.DisplayTotal(eval.Total),
				AttemptsUsed: g.Rules.MaxAttempts - g.AttemptsLeft,
			},
		})
	}

	return events, nil
}

// SetWeather adjusts one weather slider (0..100) for dynamic-weight variants.
// Sliders are session-level and may be adjusted in any phase.
func (s *Service) SetWeather(g *domain.Game, cat domain.Category, intensity float64) ([]Event, error) {
	if g.Weights.Mode != domain.WeightModeDynamic {
		return nil, ErrWeatherFixed
	}

	g.Weights.SetWeather(cat, intensity)

	return []Event{
		{
			Kind: EventWeatherChanged,
			Payload: WeatherChangedPayload{
				Category:  cat,
				Intensity: g.Weights.WeatherIntensity(cat),
				Weights:   displayWeights(g.Weights),
			},
		},
	}, nil
}

// Replay fully resets a finished game back to its variant start phase.
func (s *Service) Replay(g *domain.Game) ([]Event, error) {
	if g.Phase != domain.PhaseWon && g.Phase != domain.PhaseLost {
		return nil, ErrNotEnded
	}

	g.Reset()

	return []Event{
		{
			Kind: EventGameReset,
			Payload: GameResetPayload{
				Phase:        g.Phase,
				AttemptsLeft: g.AttemptsLeft,
			},
		},
	}, nil
}

func displayWeights(w domain.Weights) map[domain.Category]float64 {
	out := make(map[domain.Category]float64, len(domain.Categories))
	for _, cat := range domain.Categories {
		out[cat] = w.DisplayWeight(cat)
	}
	return out
}
