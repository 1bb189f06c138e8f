package onboarding

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

type fakeAccountPort struct {
	updateErr error
}

func (f fakeAccountPort) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	return f.updateErr
}

type fakeStarterWattsPort struct {
	grantErr error
	grants   []starterGrantCall
	granted  bool
}

type starterGrantCall struct {
	userID   string
	amount   int64
	metadata map[string]interface{}
}

func (f *fakeStarterWattsPort) GrantStarterWattsOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error) {
	f.grants = append(f.grants, starterGrantCall{
		userID:   userID,
		amount:   amount,
		metadata: metadata,
	})
	if f.grantErr != nil {
		return false, f.grantErr
	}
	return f.granted, nil
}

func TestOnboardNewStudent_GrantsStarterWatts(t *testing.T) {
	starter := &fakeStarterWattsPort{granted: true}
	service := NewService(fakeAccountPort{}, starter, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewStudent(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("OnboardNewStudent returned error: %v", err)
	}
	if result.ProfileUpdateErr != nil {
		t.Fatalf("Expected no profile update error, got %v", result.ProfileUpdateErr)
	}

	if len(starter.grants) != 1 {
		t.Fatalf("Expected 1 starter grant call, got %d", len(starter.grants))
	}
	if starter.grants[0].amount != defaultStarterWatts {
		t.Fatalf("Expected starter grant %d, got %d", defaultStarterWatts, starter.grants[0].amount)
	}
	if !result.StarterWattsGranted {
		t.Fatal("Expected starter watts to be marked as granted")
	}
}

func TestOnboardNewStudent_AccountUpdateFailureStillGrants(t *testing.T) {
	starter := &fakeStarterWattsPort{granted: true}
	service := NewService(fakeAccountPort{updateErr: errors.New("update failed")}, starter, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewStudent(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("OnboardNewStudent returned error: %v", err)
	}
	if result.ProfileUpdateErr == nil {
		t.Fatal("Expected profile update error to be captured")
	}
	if len(starter.grants) != 1 {
		t.Fatalf("Expected 1 starter grant call, got %d", len(starter.grants))
	}
}

func TestOnboardNewStudent_GrantFailureReturnsError(t *testing.T) {
	service := NewService(fakeAccountPort{}, &fakeStarterWattsPort{grantErr: errors.New("wallet failed")}, rand.New(rand.NewSource(1)))

	if _, err := service.OnboardNewStudent(context.Background(), "student-1"); err == nil {
		t.Fatal("Expected error when the starter grant fails")
	}
}

func TestOnboardNewStudent_AlreadyGranted(t *testing.T) {
	starter := &fakeStarterWattsPort{granted: false}
	service := NewService(fakeAccountPort{}, starter, rand.New(rand.NewSource(1)))

	result, err := service.OnboardNewStudent(context.Background(), "student-1")
	if err != nil {
		t.Fatalf("OnboardNewStudent returned error: %v", err)
	}
	if result.StarterWattsGranted {
		t.Fatal("Expected grant to be reported as already made")
	}
}
