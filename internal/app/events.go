package app

import "percity/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted    EventKind = "game_started"
	EventItemMoved      EventKind = "item_moved"
	EventCommitResolved EventKind = "commit_resolved"
	EventGameEnded      EventKind = "game_ended"
	EventWeatherChanged EventKind = "weather_changed"
	EventGameReset      EventKind = "game_reset"
)

// Move destinations reported in ItemMovedPayload.
const (
	DestinationGrid      = "grid"
	DestinationAvailable = "available"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	Phase        domain.Phase
	AttemptsLeft int
	Available    []domain.Item
	Weights      map[domain.Category]float64 // display-rounded
}

type ItemMovedPayload struct {
	ItemID      string
	Destination string
	PlacedCount int
	Total       float64 // display-rounded running total
}

type CommitResolvedPayload struct {
	Total        float64 // display-rounded
	Verdict      domain.Verdict
	AttemptsLeft int
	Phase        domain.Phase
}

type GameEndedPayload struct {
	Outcome      domain.Phase // won or lost
	Total        float64      // display-rounded
	AttemptsUsed int
}

type WeatherChangedPayload struct {
	Category  domain.Category
	Intensity float64                     // stored slider value on the 0..100 scale
	Weights   map[domain.Category]float64 // display-rounded
}

type GameResetPayload struct {
	Phase        domain.Phase
	AttemptsLeft int
}
