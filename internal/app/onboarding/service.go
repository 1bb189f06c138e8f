package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"percity/internal/ports"
)

const (
	defaultStarterWatts = 500
)

// Result captures non-fatal onboarding outcomes.
type Result struct {
	// ProfileUpdateErr is set when the profile update failed but onboarding continued.
	ProfileUpdateErr error
	// StarterWattsGranted is false when the grant had already been made.
	StarterWattsGranted bool
}

// Service handles post-auth onboarding for new students.
type Service struct {
	accounts ports.AccountPort
	starter  ports.StarterWattsPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service with required ports.
// accounts/starter must be non-nil; rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, starter ports.StarterWattsPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		starter:  starter,
		rng:      rng,
	}
}

// OnboardNewStudent initializes profile and watts wallet for a newly created
// account. Returns a Result with any non-fatal issues and an error if the
// starter grant cannot be made.
func (s *Service) OnboardNewStudent(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.starter == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	result := Result{}
	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, displayName, displayName); err != nil {
		// Profile updates are best-effort; the watts grant is more important.
		result.ProfileUpdateErr = err
	}

	granted, err := s.starter.GrantStarterWattsOnce(ctx, userID, defaultStarterWatts, map[string]interface{}{
		"reason": "starter_watts",
	})
	if err != nil {
		return result, fmt.Errorf("failed to grant starter watts: %w", err)
	}
	result.StarterWattsGranted = granted

	return result, nil
}

func (s *Service) generateFriendlyName() string {
	adjectives := []string{"Bright", "Breezy", "Sunny", "Rushing", "Sparky", "Gusty", "Radiant", "Steady", "Swift", "Clever"}
	nouns := []string{"Turbine", "Panel", "Dam", "Dynamo", "Circuit", "Reactor", "Grid", "Volt", "Current", "Spark"}

	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return fmt.Sprintf("%s%s%d", adj, noun, num)
}
