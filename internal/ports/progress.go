package ports

import "context"

// WattAward represents a single watts-currency change for a student.
type WattAward struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// ProgressPort defines the interface for managing the watts reward currency.
type ProgressPort interface {
	// GetWatts retrieves the current watts balance for a student.
	GetWatts(ctx context.Context, userID string) (int64, error)

	// AwardWatts applies multiple watt awards. Used when a game is won.
	AwardWatts(ctx context.Context, awards []WattAward) error
}

// StarterWattsPort grants the starter watts at most once per student.
type StarterWattsPort interface {
	// GrantStarterWattsOnce attempts to grant the one-time starter amount.
	// Returns granted=false when the grant was already made.
	GrantStarterWattsOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error)
}
